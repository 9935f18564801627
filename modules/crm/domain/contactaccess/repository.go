package contactaccess

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("access request not found")

type Repository interface {
	CreateRequest(ctx context.Context, r AccessRequest) (AccessRequest, error)
	GetRequestByID(ctx context.Context, id uuid.UUID) (AccessRequest, error)
	// GetPendingRequest returns the pending request for the pair, or the
	// repository's not-found error.
	GetPendingRequest(ctx context.Context, requestedBy, contactID uuid.UUID) (AccessRequest, error)
	// MarkReviewedIfPending atomically moves the request out of pending;
	// false means it had already left pending.
	MarkReviewedIfPending(ctx context.Context, id uuid.UUID, status Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error)

	CreatePermission(ctx context.Context, p Permission) (Permission, error)
	HasPermission(ctx context.Context, userID, contactID uuid.UUID) (bool, error)
}
