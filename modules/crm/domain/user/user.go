package user

import (
	"time"

	"github.com/google/uuid"
)

// Authority levels. Level 1 carries org-wide authority; 4 is the lowest.
const (
	LevelOrgWide = 1
	LevelManager = 2
	LevelSenior  = 3
	LevelJunior  = 4
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Level     int        `json:"level"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Principal is the authenticated caller attached to every request by the
// authentication layer.
type Principal struct {
	ID        uuid.UUID  `json:"id"`
	Level     int        `json:"level"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Level: u.Level, ManagerID: u.ManagerID, TeamID: u.TeamID}
}

func ValidLevel(level int) bool {
	return level >= LevelOrgWide && level <= LevelJunior
}
