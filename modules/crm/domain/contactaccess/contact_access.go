package contactaccess

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AccessRequest asks for durable read access to a contact's sensitive
// fields. At most one pending request exists per (requester, contact) pair.
type AccessRequest struct {
	ID          uuid.UUID  `json:"id"`
	RequestedBy uuid.UUID  `json:"requested_by"`
	ContactID   uuid.UUID  `json:"contact_id"`
	Reason      *string    `json:"reason,omitempty"`
	Status      Status     `json:"status"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Permission is the durable grant produced by an approved access request.
type Permission struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ContactID uuid.UUID `json:"contact_id"`
	GrantedBy uuid.UUID `json:"granted_by"`
	CreatedAt time.Time `json:"created_at"`
}
