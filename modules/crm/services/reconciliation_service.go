package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/duplicaterequest"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/events"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
	"github.com/iota-uz/crm-sdk/pkg/similarity"
)

type BlindCreateStatus string

const (
	// BlindCreated: no duplicate found, a fresh record was persisted.
	BlindCreated BlindCreateStatus = "created"
	// BlindLinked: an existing record with the same email was reused.
	BlindLinked BlindCreateStatus = "linked"
	// BlindPending: a likely duplicate was flagged for arbitration.
	BlindPending BlindCreateStatus = "pending"
)

// BlindCreateResult always carries a usable outcome: data entry never
// blocks on human review.
type BlindCreateResult struct {
	Status    BlindCreateStatus `json:"status"`
	ID        *uuid.UUID        `json:"id,omitempty"`
	RequestID *uuid.UUID        `json:"request_id,omitempty"`
}

type CompanyInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

type ContactInput struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Email     *string   `json:"email" validate:"omitempty,email"`
	Phone     *string   `json:"phone"`
	Position  *string   `json:"position"`
	Notes     *string   `json:"notes"`
}

type ReconciliationService struct {
	companies company.Repository
	contacts  contact.Repository
	requests  duplicaterequest.Repository
	publisher eventbus.EventBus
	validate  *validator.Validate
	threshold float64
}

func NewReconciliationService(
	companies company.Repository,
	contacts contact.Repository,
	requests duplicaterequest.Repository,
	publisher eventbus.EventBus,
	threshold float64,
) *ReconciliationService {
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}
	return &ReconciliationService{
		companies: companies,
		contacts:  contacts,
		requests:  requests,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		threshold: threshold,
	}
}

// BlindCreateCompany reconciles a submitted company against existing
// records: exact email reuses the existing record, a fuzzy name match opens
// a pending request, otherwise the company is persisted directly.
func (s *ReconciliationService) BlindCreateCompany(ctx context.Context, in CompanyInput, p user.Principal) (*BlindCreateResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, errInvalidBody(err.Error())
	}

	type outcome struct {
		result  *BlindCreateResult
		flagged *events.DuplicateFlagged
	}

	out, err := inTx(ctx, func(txCtx context.Context) (outcome, error) {
		if in.Email != "" {
			existing, err := s.companies.GetByEmail(txCtx, in.Email)
			if err == nil {
				return outcome{result: &BlindCreateResult{Status: BlindLinked, ID: &existing.ID}}, nil
			}
			if !errors.Is(err, company.ErrNotFound) {
				return outcome{}, mapPgError(err)
			}
		}

		candidates, err := s.companies.List(txCtx)
		if err != nil {
			return outcome{}, mapPgError(err)
		}
		for _, candidate := range candidates {
			if !similarity.Similar(in.Name, candidate.Name, s.threshold) {
				continue
			}
			// Companies get no temporal record; the submission survives
			// only as the request payload.
			payload, err := duplicaterequest.EncodeCompanyPayload(duplicaterequest.CompanyPayloadV1{
				Name:    in.Name,
				Email:   in.Email,
				Phone:   in.Phone,
				Website: in.Website,
				OwnerID: p.ID,
			})
			if err != nil {
				return outcome{}, errInvariant("encode company payload", err)
			}
			req, err := s.requests.Create(txCtx, duplicaterequest.DuplicateRequest{
				EntityType:           duplicaterequest.EntityCompany,
				RequestType:          duplicaterequest.TypeFuzzyMatch,
				SubmittedBy:          p.ID,
				PotentialDuplicateID: &candidate.ID,
				PayloadSchemaVersion: duplicaterequest.PayloadSchemaV1,
				Payload:              payload,
				Status:               duplicaterequest.StatusPending,
			})
			if err != nil {
				return outcome{}, mapPgError(err)
			}
			return outcome{
				result: &BlindCreateResult{Status: BlindPending, RequestID: &req.ID},
				flagged: &events.DuplicateFlagged{
					RequestID:            req.ID,
					EntityType:           string(duplicaterequest.EntityCompany),
					PotentialDuplicateID: candidate.ID,
					SubmittedBy:          p.ID,
				},
			}, nil
		}

		created, err := s.companies.Create(txCtx, company.Company{
			Name:    in.Name,
			Email:   in.Email,
			Phone:   in.Phone,
			Website: in.Website,
			OwnerID: p.ID,
		})
		if err != nil {
			return outcome{}, mapPgError(err)
		}
		return outcome{result: &BlindCreateResult{Status: BlindCreated, ID: &created.ID}}, nil
	})
	if err != nil {
		return nil, err
	}

	recordBlindCreate(string(duplicaterequest.EntityCompany), string(out.result.Status))
	if out.flagged != nil {
		recordDuplicateFlagged(string(duplicaterequest.EntityCompany))
		out.flagged.OccurredAt = time.Now().UTC()
		s.publisher.Publish(*out.flagged)
	}
	return out.result, nil
}

// BlindCreateContact is the contact variant: the duplicate scan is scoped
// to the contact's company, and a fuzzy match persists a temporal
// pending_validation record so in-flight work (deals) can reference it.
func (s *ReconciliationService) BlindCreateContact(ctx context.Context, in ContactInput, p user.Principal) (*BlindCreateResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, errInvalidBody(err.Error())
	}

	type outcome struct {
		result  *BlindCreateResult
		flagged *events.DuplicateFlagged
	}

	out, err := inTx(ctx, func(txCtx context.Context) (outcome, error) {
		if _, err := s.companies.GetByID(txCtx, in.CompanyID); err != nil {
			if errors.Is(err, company.ErrNotFound) {
				return outcome{}, errNotFound("company not found", err)
			}
			return outcome{}, mapPgError(err)
		}

		if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
			existing, err := s.contacts.GetByEmail(txCtx, in.CompanyID, strings.TrimSpace(*in.Email))
			if err == nil {
				return outcome{result: &BlindCreateResult{Status: BlindLinked, ID: &existing.ID}}, nil
			}
			if !errors.Is(err, contact.ErrNotFound) {
				return outcome{}, mapPgError(err)
			}
		}

		candidates, err := s.contacts.ListByCompany(txCtx, in.CompanyID)
		if err != nil {
			return outcome{}, mapPgError(err)
		}
		for _, candidate := range candidates {
			if !similarity.Similar(in.Name, candidate.Name, s.threshold) {
				continue
			}

			temporal, err := s.contacts.Create(txCtx, contact.Contact{
				CompanyID: in.CompanyID,
				OwnerID:   p.ID,
				Name:      in.Name,
				Status:    contact.StatusPendingValidation,
				Email:     in.Email,
				Phone:     in.Phone,
				Position:  in.Position,
				Notes:     in.Notes,
			})
			if err != nil {
				return outcome{}, mapPgError(err)
			}

			payload, err := duplicaterequest.EncodeContactPayload(duplicaterequest.ContactPayloadV1{
				Name:              in.Name,
				CompanyID:         in.CompanyID,
				OwnerID:           p.ID,
				Email:             in.Email,
				Phone:             in.Phone,
				Position:          in.Position,
				Notes:             in.Notes,
				TemporalContactID: &temporal.ID,
			})
			if err != nil {
				return outcome{}, errInvariant("encode contact payload", err)
			}
			req, err := s.requests.Create(txCtx, duplicaterequest.DuplicateRequest{
				EntityType:           duplicaterequest.EntityContact,
				RequestType:          duplicaterequest.TypeFuzzyMatch,
				SubmittedBy:          p.ID,
				PotentialDuplicateID: &candidate.ID,
				PayloadSchemaVersion: duplicaterequest.PayloadSchemaV1,
				Payload:              payload,
				Status:               duplicaterequest.StatusPending,
			})
			if err != nil {
				return outcome{}, mapPgError(err)
			}
			return outcome{
				result: &BlindCreateResult{Status: BlindPending, ID: &temporal.ID, RequestID: &req.ID},
				flagged: &events.DuplicateFlagged{
					RequestID:            req.ID,
					EntityType:           string(duplicaterequest.EntityContact),
					PotentialDuplicateID: candidate.ID,
					TemporalContactID:    &temporal.ID,
					SubmittedBy:          p.ID,
				},
			}, nil
		}

		created, err := s.contacts.Create(txCtx, contact.Contact{
			CompanyID: in.CompanyID,
			OwnerID:   p.ID,
			Name:      in.Name,
			Status:    contact.StatusLead,
			Email:     in.Email,
			Phone:     in.Phone,
			Position:  in.Position,
			Notes:     in.Notes,
		})
		if err != nil {
			return outcome{}, mapPgError(err)
		}
		return outcome{result: &BlindCreateResult{Status: BlindCreated, ID: &created.ID}}, nil
	})
	if err != nil {
		return nil, err
	}

	recordBlindCreate(string(duplicaterequest.EntityContact), string(out.result.Status))
	if out.flagged != nil {
		recordDuplicateFlagged(string(duplicaterequest.EntityContact))
		out.flagged.OccurredAt = time.Now().UTC()
		s.publisher.Publish(*out.flagged)
	}
	return out.result, nil
}

// SubmitManualCompanyRequest opens a manual sign-off request for a
// submitter who cannot create companies directly.
func (s *ReconciliationService) SubmitManualCompanyRequest(ctx context.Context, in CompanyInput, p user.Principal) (*duplicaterequest.DuplicateRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, errInvalidBody(err.Error())
	}

	payload, err := duplicaterequest.EncodeCompanyPayload(duplicaterequest.CompanyPayloadV1{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Website: in.Website,
		OwnerID: p.ID,
	})
	if err != nil {
		return nil, errInvariant("encode company payload", err)
	}

	req, err := s.requests.Create(ctx, duplicaterequest.DuplicateRequest{
		EntityType:           duplicaterequest.EntityCompany,
		RequestType:          duplicaterequest.TypeManual,
		SubmittedBy:          p.ID,
		PayloadSchemaVersion: duplicaterequest.PayloadSchemaV1,
		Payload:              payload,
		Status:               duplicaterequest.StatusPending,
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return &req, nil
}

// SubmitManualContactRequest is the contact counterpart of
// SubmitManualCompanyRequest.
func (s *ReconciliationService) SubmitManualContactRequest(ctx context.Context, in ContactInput, p user.Principal) (*duplicaterequest.DuplicateRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, errInvalidBody(err.Error())
	}

	payload, err := duplicaterequest.EncodeContactPayload(duplicaterequest.ContactPayloadV1{
		Name:      in.Name,
		CompanyID: in.CompanyID,
		OwnerID:   p.ID,
		Email:     in.Email,
		Phone:     in.Phone,
		Position:  in.Position,
		Notes:     in.Notes,
	})
	if err != nil {
		return nil, errInvariant("encode contact payload", err)
	}

	req, err := s.requests.Create(ctx, duplicaterequest.DuplicateRequest{
		EntityType:           duplicaterequest.EntityContact,
		RequestType:          duplicaterequest.TypeManual,
		SubmittedBy:          p.ID,
		PayloadSchemaVersion: duplicaterequest.PayloadSchemaV1,
		Payload:              payload,
		Status:               duplicaterequest.StatusPending,
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return &req, nil
}
