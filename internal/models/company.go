package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Teams is the list of team names that exist
// within the company; NumManagers and NumTeams cap how many distinct manager
// accounts and team names may be attached to it.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Teams       []string  `json:"teams"`
	NumTeams    int       `json:"num_teams"`
	NumManagers int       `json:"num_managers"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasTeam reports whether name is one of the company's declared teams.
func (c *Company) HasTeam(name string) bool {
	for _, t := range c.Teams {
		if t == name {
			return true
		}
	}
	return false
}
