package duplicaterequest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityCompany EntityType = "company"
	EntityContact EntityType = "contact"
)

type RequestType string

const (
	// TypeManual is a human-initiated "please create X" request from a
	// submitter who cannot create records directly.
	TypeManual RequestType = "manual"
	// TypeFuzzyMatch is opened by the blind-create pipeline when a likely
	// duplicate is found.
	TypeFuzzyMatch RequestType = "fuzzy_match"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type DuplicateRequest struct {
	ID                   uuid.UUID       `json:"id"`
	EntityType           EntityType      `json:"entity_type"`
	RequestType          RequestType     `json:"request_type"`
	SubmittedBy          uuid.UUID       `json:"submitted_by"`
	PotentialDuplicateID *uuid.UUID      `json:"potential_duplicate_id,omitempty"`
	PayloadSchemaVersion int32           `json:"payload_schema_version"`
	Payload              json.RawMessage `json:"payload"`
	Status               Status          `json:"status"`
	ReviewedBy           *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt           *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
