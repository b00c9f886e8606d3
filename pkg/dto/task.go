package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	CompanyID   *uuid.UUID `json:"company_id"`
	TeamName    *string    `json:"team_name,omitempty"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CompanyID   uuid.UUID `json:"company_id"`
	TeamName    *string   `json:"team_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
