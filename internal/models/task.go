package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the closed set of task states. StatusIncident is special:
// setting it with a note spawns a linked Incident.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusWaiting    TaskStatus = "waiting"
	StatusIncident   TaskStatus = "incident"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusWaiting, StatusIncident:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      TaskStatus `json:"status"`
	CompanyID   uuid.UUID  `json:"company_id"`
	TeamName    *string    `json:"team_name,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
