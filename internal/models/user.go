package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. The role determines which scoping
// fields on User are meaningful: managers and team members belong to a
// company, team members additionally to a named team within it.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTeam    Role = "team"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeam:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyID    *uuid.UUID `json:"company_id,omitempty"`
	TeamName     *string    `json:"team_name,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Trashed reports whether the account sits in the trash (soft-deleted).
func (u *User) Trashed() bool {
	return u.DeletedAt != nil
}

// Scope is the visibility of a user over tasks and incidents: admins see
// everything, managers their company, team members their company and team.
type Scope struct {
	Role      Role
	CompanyID *uuid.UUID
	TeamName  *string
}

func (u *User) Scope() Scope {
	return Scope{Role: u.Role, CompanyID: u.CompanyID, TeamName: u.TeamName}
}
