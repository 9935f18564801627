package contact

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusLead      Status = "lead"
	StatusQualified Status = "qualified"
	StatusCustomer  Status = "customer"
	// StatusPendingValidation marks a temporal placeholder created
	// mid-reconciliation, awaiting arbitration of a likely duplicate.
	StatusPendingValidation Status = "pending_validation"
)

func (s Status) Valid() bool {
	switch s {
	case StatusLead, StatusQualified, StatusCustomer, StatusPendingValidation:
		return true
	}
	return false
}

type Contact struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`

	// Sensitive fields, subject to the per-contact permission gate.
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Masked returns a projection with the sensitive fields cleared unless the
// caller holds permission. Never mutates the receiver.
func (c Contact) Masked(hasPermission bool) Contact {
	if hasPermission {
		return c
	}
	c.Email = nil
	c.Phone = nil
	c.Position = nil
	c.Notes = nil
	return c
}
