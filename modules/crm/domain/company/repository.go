package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("company not found")

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (Company, error)
	// GetByEmail returns the company with the exact (case-insensitive) email,
	// or the repository's not-found error.
	GetByEmail(ctx context.Context, email string) (Company, error)
	Create(ctx context.Context, c Company) (Company, error)
}
