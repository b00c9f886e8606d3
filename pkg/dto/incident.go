package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReportIncidentRequest struct {
	TaskID  *uuid.UUID `json:"task_id"`
	Message string     `json:"message"`
}

type IncidentResponse struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	TaskTitle  string     `json:"task_title"`
	CompanyID  uuid.UUID  `json:"company_id"`
	TeamName   *string    `json:"team_name,omitempty"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
