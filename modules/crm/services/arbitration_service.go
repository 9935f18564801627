package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/duplicaterequest"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/events"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
)

// ArbitrationService resolves pending duplicate requests. The only legal
// transitions are pending→approved and pending→rejected; both are claimed
// with a conditional update so concurrent reviewers cannot double-apply
// side effects.
type ArbitrationService struct {
	requests  duplicaterequest.Repository
	contacts  contact.Repository
	companies company.Repository
	deals     deal.Repository
	publisher eventbus.EventBus
}

func NewArbitrationService(
	requests duplicaterequest.Repository,
	contacts contact.Repository,
	companies company.Repository,
	deals deal.Repository,
	publisher eventbus.EventBus,
) *ArbitrationService {
	return &ArbitrationService{
		requests:  requests,
		contacts:  contacts,
		companies: companies,
		deals:     deals,
		publisher: publisher,
	}
}

// Approve confirms the flagged record is a duplicate of the existing one.
// For contact fuzzy matches the temporal record's references are repointed
// to the canonical contact and the temporal record is removed.
func (s *ArbitrationService) Approve(ctx context.Context, requestID, reviewerID uuid.UUID) (*duplicaterequest.DuplicateRequest, error) {
	return s.resolve(ctx, requestID, reviewerID, duplicaterequest.StatusApproved)
}

// Reject declares the submission an independent record. Temporal contacts
// are promoted to lead; company submissions are materialized from the
// stored payload.
func (s *ArbitrationService) Reject(ctx context.Context, requestID, reviewerID uuid.UUID) (*duplicaterequest.DuplicateRequest, error) {
	return s.resolve(ctx, requestID, reviewerID, duplicaterequest.StatusRejected)
}

func (s *ArbitrationService) resolve(ctx context.Context, requestID, reviewerID uuid.UUID, decision duplicaterequest.Status) (*duplicaterequest.DuplicateRequest, error) {
	now := time.Now().UTC()

	type outcome struct {
		request   duplicaterequest.DuplicateRequest
		canonical *uuid.UUID
	}

	out, err := inTx(ctx, func(txCtx context.Context) (outcome, error) {
		req, err := s.requests.GetByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, duplicaterequest.ErrNotFound) {
				return outcome{}, errNotFound("duplicate request not found", err)
			}
			return outcome{}, mapPgError(err)
		}

		claimed, err := s.requests.MarkReviewedIfPending(txCtx, requestID, decision, reviewerID, now)
		if err != nil {
			return outcome{}, mapPgError(err)
		}
		if !claimed {
			recordWriteConflict("arbitration")
			return outcome{}, errConflict("request has already been reviewed", nil)
		}

		canonical, err := s.applySideEffects(txCtx, &req, decision)
		if err != nil {
			return outcome{}, err
		}

		req.Status = decision
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		return outcome{request: req, canonical: canonical}, nil
	})
	if err != nil {
		return nil, err
	}

	recordArbitration(string(out.request.EntityType), string(decision))
	s.publisher.Publish(events.DuplicateRequestResolved{
		RequestID:   out.request.ID,
		EntityType:  string(out.request.EntityType),
		RequestType: string(out.request.RequestType),
		Decision:    string(decision),
		CanonicalID: out.canonical,
		ReviewedBy:  reviewerID,
		OccurredAt:  now,
	})
	return &out.request, nil
}

// applySideEffects runs after the claim succeeded, so it executes at most
// once per request. It returns the canonical record id for the submission,
// when one exists.
func (s *ArbitrationService) applySideEffects(ctx context.Context, req *duplicaterequest.DuplicateRequest, decision duplicaterequest.Status) (*uuid.UUID, error) {
	if req.RequestType == duplicaterequest.TypeManual {
		// Manual requests are pure sign-off: status bookkeeping only.
		return nil, nil
	}

	switch req.EntityType {
	case duplicaterequest.EntityContact:
		return s.applyContactFuzzy(ctx, req, decision)
	case duplicaterequest.EntityCompany:
		return s.applyCompanyFuzzy(ctx, req, decision)
	default:
		return nil, errInvariant("unknown entity type on duplicate request", nil)
	}
}

func (s *ArbitrationService) applyContactFuzzy(ctx context.Context, req *duplicaterequest.DuplicateRequest, decision duplicaterequest.Status) (*uuid.UUID, error) {
	payload, err := duplicaterequest.DecodeContactPayload(req)
	if err != nil {
		return nil, errInvariant("malformed contact payload", err)
	}
	if payload.TemporalContactID == nil {
		return nil, errInvariant("contact fuzzy-match request without temporal record", nil)
	}

	if decision == duplicaterequest.StatusApproved {
		if req.PotentialDuplicateID == nil {
			return nil, errInvariant("fuzzy-match request without potential duplicate", nil)
		}
		if _, err := s.deals.ReassignContact(ctx, *payload.TemporalContactID, *req.PotentialDuplicateID); err != nil {
			return nil, mapPgError(err)
		}
		if err := s.contacts.Delete(ctx, *payload.TemporalContactID); err != nil {
			return nil, mapPgError(err)
		}
		return req.PotentialDuplicateID, nil
	}

	// Rejection promotes the temporal record into a permanent lead under
	// its original id.
	if err := s.contacts.UpdateStatus(ctx, *payload.TemporalContactID, contact.StatusLead); err != nil {
		return nil, mapPgError(err)
	}
	return payload.TemporalContactID, nil
}

func (s *ArbitrationService) applyCompanyFuzzy(ctx context.Context, req *duplicaterequest.DuplicateRequest, decision duplicaterequest.Status) (*uuid.UUID, error) {
	if decision == duplicaterequest.StatusApproved {
		// No temporal record exists for companies; the existing company is
		// canonical from here on.
		return req.PotentialDuplicateID, nil
	}

	payload, err := duplicaterequest.DecodeCompanyPayload(req)
	if err != nil {
		return nil, errInvariant("malformed company payload", err)
	}
	created, err := s.companies.Create(ctx, company.Company{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Website: payload.Website,
		OwnerID: payload.OwnerID,
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return &created.ID, nil
}
