package deal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Stage string

const (
	StageOpen    Stage = "open"
	StageWon     Stage = "won"
	StageLost    Stage = "lost"
	StagePending Stage = "pending"
)

type Deal struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Stage     Stage           `json:"stage"`
	CompanyID *uuid.UUID      `json:"company_id,omitempty"`
	ContactID *uuid.UUID      `json:"contact_id,omitempty"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Repository interface {
	List(ctx context.Context) ([]Deal, error)
	Create(ctx context.Context, d Deal) (Deal, error)
	CountByContact(ctx context.Context, contactID uuid.UUID) (int64, error)
	// ReassignContact re-points every deal referencing fromID to toID and
	// returns the number of rows updated.
	ReassignContact(ctx context.Context, fromID, toID uuid.UUID) (int64, error)
}
