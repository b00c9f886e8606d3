package dto

import (
	"time"

	"github.com/google/uuid"
)

type CompanyRequest struct {
	Name        string   `json:"name"`
	Teams       []string `json:"teams"`
	NumTeams    int      `json:"num_teams"`
	NumManagers int      `json:"num_managers"`
}

type CompanyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Teams       []string  `json:"teams"`
	NumTeams    int       `json:"num_teams"`
	NumManagers int       `json:"num_managers"`
	CreatedAt   time.Time `json:"created_at"`
}
