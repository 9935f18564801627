package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contactaccess"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/events"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
)

// ContactAccessService gates the sensitive contact fields (email, phone,
// position, notes) behind per-contact grants, with the same pending-request
// arbitration pattern as duplicate handling.
type ContactAccessService struct {
	access    contactaccess.Repository
	contacts  contact.Repository
	publisher eventbus.EventBus
}

func NewContactAccessService(access contactaccess.Repository, contacts contact.Repository, publisher eventbus.EventBus) *ContactAccessService {
	return &ContactAccessService{access: access, contacts: contacts, publisher: publisher}
}

// HasPermission reports whether the user may read the contact's sensitive
// fields. Level-1 users hold implicit permission.
func (s *ContactAccessService) HasPermission(ctx context.Context, userID, contactID uuid.UUID, level int) (bool, error) {
	if level == user.LevelOrgWide {
		return true, nil
	}
	ok, err := s.access.HasPermission(ctx, userID, contactID)
	if err != nil {
		return false, mapPgError(err)
	}
	return ok, nil
}

// MaskContact returns a projection of c with sensitive fields cleared when
// hasPermission is false. Storage is never touched.
func (s *ContactAccessService) MaskContact(c contact.Contact, hasPermission bool) contact.Contact {
	return c.Masked(hasPermission)
}

// GetContact reads and masks a contact for the principal in one step.
func (s *ContactAccessService) GetContact(ctx context.Context, contactID uuid.UUID, p user.Principal) (contact.Contact, error) {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return contact.Contact{}, errNotFound("contact not found", err)
		}
		return contact.Contact{}, mapPgError(err)
	}
	ok, err := s.HasPermission(ctx, p.ID, contactID, p.Level)
	if err != nil {
		return contact.Contact{}, err
	}
	return c.Masked(ok), nil
}

// RequestAccess opens a pending access request, or returns the existing
// pending one for the same (user, contact) pair: submission is idempotent.
func (s *ContactAccessService) RequestAccess(ctx context.Context, userID, contactID uuid.UUID, reason *string) (*contactaccess.AccessRequest, error) {
	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return nil, errNotFound("contact not found", err)
		}
		return nil, mapPgError(err)
	}

	existing, err := s.access.GetPendingRequest(ctx, userID, contactID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, contactaccess.ErrNotFound) {
		return nil, mapPgError(err)
	}

	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	created, err := s.access.CreateRequest(ctx, contactaccess.AccessRequest{
		RequestedBy: userID,
		ContactID:   contactID,
		Reason:      reason,
		Status:      contactaccess.StatusPending,
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return &created, nil
}

// Approve grants the durable permission; the claim and the grant commit
// together.
func (s *ContactAccessService) Approve(ctx context.Context, requestID, reviewerID uuid.UUID) (*contactaccess.AccessRequest, error) {
	return s.resolve(ctx, requestID, reviewerID, contactaccess.StatusApproved)
}

// Reject closes the request without creating a grant.
func (s *ContactAccessService) Reject(ctx context.Context, requestID, reviewerID uuid.UUID) (*contactaccess.AccessRequest, error) {
	return s.resolve(ctx, requestID, reviewerID, contactaccess.StatusRejected)
}

func (s *ContactAccessService) resolve(ctx context.Context, requestID, reviewerID uuid.UUID, decision contactaccess.Status) (*contactaccess.AccessRequest, error) {
	now := time.Now().UTC()

	out, err := inTx(ctx, func(txCtx context.Context) (contactaccess.AccessRequest, error) {
		req, err := s.access.GetRequestByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, contactaccess.ErrNotFound) {
				return contactaccess.AccessRequest{}, errNotFound("access request not found", err)
			}
			return contactaccess.AccessRequest{}, mapPgError(err)
		}

		claimed, err := s.access.MarkReviewedIfPending(txCtx, requestID, decision, reviewerID, now)
		if err != nil {
			return contactaccess.AccessRequest{}, mapPgError(err)
		}
		if !claimed {
			recordWriteConflict("access_review")
			return contactaccess.AccessRequest{}, errConflict("request has already been reviewed", nil)
		}

		if decision == contactaccess.StatusApproved {
			if _, err := s.access.CreatePermission(txCtx, contactaccess.Permission{
				UserID:    req.RequestedBy,
				ContactID: req.ContactID,
				GrantedBy: reviewerID,
			}); err != nil {
				return contactaccess.AccessRequest{}, mapPgError(err)
			}
		}

		req.Status = decision
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(events.ContactAccessResolved{
		RequestID:  out.ID,
		ContactID:  out.ContactID,
		UserID:     out.RequestedBy,
		Decision:   string(decision),
		ReviewedBy: reviewerID,
		OccurredAt: now,
	})
	return &out, nil
}
