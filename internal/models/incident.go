package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident is a reported problem linked to a task. TaskTitle is denormalised
// so the report stays readable after the task itself is trashed. ResolvedAt
// is set exactly once; a resolved incident never reopens.
type Incident struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	TaskTitle  string     `json:"task_title"`
	CompanyID  uuid.UUID  `json:"company_id"`
	TeamName   *string    `json:"team_name,omitempty"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (i *Incident) Resolved() bool {
	return i.ResolvedAt != nil
}
