package contact

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("contact not found")

type Repository interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (Contact, error)
	// GetByEmail scopes the exact-email lookup to a single company.
	GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (Contact, error)
	Create(ctx context.Context, c Contact) (Contact, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}
