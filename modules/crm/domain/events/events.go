package events

import (
	"time"

	"github.com/google/uuid"
)

// DuplicateFlagged is published when blind-create defers a submission to
// arbitration.
type DuplicateFlagged struct {
	RequestID            uuid.UUID  `json:"request_id"`
	EntityType           string     `json:"entity_type"`
	PotentialDuplicateID uuid.UUID  `json:"potential_duplicate_id"`
	TemporalContactID    *uuid.UUID `json:"temporal_contact_id,omitempty"`
	SubmittedBy          uuid.UUID  `json:"submitted_by"`
	OccurredAt           time.Time  `json:"occurred_at"`
}

// DuplicateRequestResolved is published once a request leaves pending.
// CanonicalID is the record submissions should reference going forward.
type DuplicateRequestResolved struct {
	RequestID   uuid.UUID  `json:"request_id"`
	EntityType  string     `json:"entity_type"`
	RequestType string     `json:"request_type"`
	Decision    string     `json:"decision"`
	CanonicalID *uuid.UUID `json:"canonical_id,omitempty"`
	ReviewedBy  uuid.UUID  `json:"reviewed_by"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// ContactAccessResolved is published on approval or rejection of a
// sensitive-field access request.
type ContactAccessResolved struct {
	RequestID  uuid.UUID `json:"request_id"`
	ContactID  uuid.UUID `json:"contact_id"`
	UserID     uuid.UUID `json:"user_id"`
	Decision   string    `json:"decision"`
	ReviewedBy uuid.UUID `json:"reviewed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ManagerAssigned is published after a validated manager reassignment.
type ManagerAssigned struct {
	UserID     uuid.UUID  `json:"user_id"`
	ManagerID  *uuid.UUID `json:"manager_id,omitempty"`
	AssignedBy uuid.UUID  `json:"assigned_by"`
	OccurredAt time.Time  `json:"occurred_at"`
}
