package duplicaterequest

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PayloadSchemaV1 is the current submitted-data schema. Each (entity type,
// schema version) pair maps to exactly one payload struct so arbitration can
// replay the submission without probing untyped fields.
const PayloadSchemaV1 = 1

type CompanyPayloadV1 struct {
	Name    string    `json:"name"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Website string    `json:"website,omitempty"`
	OwnerID uuid.UUID `json:"owner_id"`
}

type ContactPayloadV1 struct {
	Name      string    `json:"name"`
	CompanyID uuid.UUID `json:"company_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Position  *string   `json:"position,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	// TemporalContactID references the pending_validation placeholder
	// created by blind-create; nil for manual requests.
	TemporalContactID *uuid.UUID `json:"temporal_contact_id,omitempty"`
}

func EncodeCompanyPayload(p CompanyPayloadV1) (json.RawMessage, error) {
	return json.Marshal(p)
}

func EncodeContactPayload(p ContactPayloadV1) (json.RawMessage, error) {
	return json.Marshal(p)
}

func DecodeCompanyPayload(r *DuplicateRequest) (CompanyPayloadV1, error) {
	var p CompanyPayloadV1
	if r.EntityType != EntityCompany {
		return p, fmt.Errorf("request %s has entity type %q, not %q", r.ID, r.EntityType, EntityCompany)
	}
	if r.PayloadSchemaVersion != PayloadSchemaV1 {
		return p, fmt.Errorf("request %s has unsupported payload schema %d", r.ID, r.PayloadSchemaVersion)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("decode company payload for request %s: %w", r.ID, err)
	}
	return p, nil
}

func DecodeContactPayload(r *DuplicateRequest) (ContactPayloadV1, error) {
	var p ContactPayloadV1
	if r.EntityType != EntityContact {
		return p, fmt.Errorf("request %s has entity type %q, not %q", r.ID, r.EntityType, EntityContact)
	}
	if r.PayloadSchemaVersion != PayloadSchemaV1 {
		return p, fmt.Errorf("request %s has unsupported payload schema %d", r.ID, r.PayloadSchemaVersion)
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return p, fmt.Errorf("decode contact payload for request %s: %w", r.ID, err)
	}
	return p, nil
}
