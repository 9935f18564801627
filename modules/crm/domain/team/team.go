package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("team not found")

type Team struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	LeaderID  *uuid.UUID `json:"leader_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (Team, error)
	Create(ctx context.Context, t Team) (Team, error)
}
