package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Role       string     `json:"role"`
	CompanyID  *uuid.UUID `json:"company_id,omitempty"`
	TeamName   *string    `json:"team_name,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

type UpdateUserRequest struct {
	Password        *string    `json:"password,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	ClearValidUntil bool       `json:"clear_valid_until,omitempty"`
}

type RestoreUserRequest struct {
	ValidUntil *time.Time `json:"valid_until"`
}

type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	CompanyID  *uuid.UUID `json:"company_id,omitempty"`
	TeamName   *string    `json:"team_name,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SweepExpiredResponse struct {
	ExpiredUsers []UserResponse `json:"expired_users"`
	Message      string         `json:"message"`
}
