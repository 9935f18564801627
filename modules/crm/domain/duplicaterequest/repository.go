package duplicaterequest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("duplicate request not found")

type Repository interface {
	Create(ctx context.Context, r DuplicateRequest) (DuplicateRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (DuplicateRequest, error)
	ListByStatus(ctx context.Context, status Status) ([]DuplicateRequest, error)
	// MarkReviewedIfPending atomically moves the request out of pending.
	// Returns false when the request was not pending (already reviewed or a
	// concurrent reviewer won the race); no row is touched in that case.
	MarkReviewedIfPending(ctx context.Context, id uuid.UUID, status Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error)
}
