package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/duplicaterequest"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
)

func dealWithContact(name string, contactID *uuid.UUID) deal.Deal {
	return deal.Deal{
		Name:      name,
		Amount:    decimal.NewFromInt(2500),
		Stage:     deal.StageOpen,
		ContactID: contactID,
		OwnerID:   uuid.New(),
	}
}

type arbitrationFixture struct {
	requests  *fakeDuplicateRequestRepo
	contacts  *fakeContactRepo
	companies *fakeCompanyRepo
	deals     *fakeDealRepo
	svc       *ArbitrationService
	reviewer  uuid.UUID
}

func newArbitrationFixture() *arbitrationFixture {
	f := &arbitrationFixture{
		requests:  &fakeDuplicateRequestRepo{},
		contacts:  &fakeContactRepo{},
		companies: &fakeCompanyRepo{},
		deals:     &fakeDealRepo{},
		reviewer:  uuid.New(),
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f.svc = NewArbitrationService(f.requests, f.contacts, f.companies, f.deals, eventbus.NewEventPublisher(log))
	return f
}

// seedContactFuzzy runs a blind create against an existing similar contact
// and returns the pending request together with the temporal contact id.
func (f *arbitrationFixture) seedContactFuzzy(t *testing.T) (duplicaterequest.DuplicateRequest, uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	c, err := f.companies.Create(ctx, company.Company{Name: "Acme Corp"})
	require.NoError(t, err)
	canonical, err := f.contacts.Create(ctx, contact.Contact{
		CompanyID: c.ID, Name: "Roberto Silva", Status: contact.StatusCustomer,
	})
	require.NoError(t, err)

	recon := NewReconciliationService(f.companies, f.contacts, f.requests, f.svc.publisher, 0)
	res, err := recon.BlindCreateContact(ctx, ContactInput{
		CompanyID: c.ID, Name: "Roberto Silvas",
	}, user.Principal{ID: uuid.New(), Level: user.LevelSenior})
	require.NoError(t, err)
	require.Equal(t, BlindPending, res.Status)

	req, err := f.requests.GetByID(ctx, *res.RequestID)
	require.NoError(t, err)
	return req, *res.ID, canonical.ID
}

func TestArbitrationService_ApproveContactFuzzy(t *testing.T) {
	f := newArbitrationFixture()
	ctx := context.Background()

	req, temporalID, canonicalID := f.seedContactFuzzy(t)

	// A deal opened against the temporal record while review was pending.
	tid := temporalID
	_, err := f.deals.Create(ctx, dealWithContact("In-flight deal", &tid))
	require.NoError(t, err)

	resolved, err := f.svc.Approve(ctx, req.ID, f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, duplicaterequest.StatusApproved, resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	assert.Equal(t, f.reviewer, *resolved.ReviewedBy)
	assert.NotNil(t, resolved.ReviewedAt)

	// The temporal record is gone and its deals now point at the canonical
	// contact.
	_, err = f.contacts.GetByID(ctx, temporalID)
	assert.ErrorIs(t, err, contact.ErrNotFound)

	n, err := f.deals.CountByContact(ctx, canonicalID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestArbitrationService_RejectContactFuzzy(t *testing.T) {
	f := newArbitrationFixture()
	ctx := context.Background()

	req, temporalID, canonicalID := f.seedContactFuzzy(t)

	resolved, err := f.svc.Reject(ctx, req.ID, f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, duplicaterequest.StatusRejected, resolved.Status)

	// The temporal record survives under its original id as a lead.
	promoted, err := f.contacts.GetByID(ctx, temporalID)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusLead, promoted.Status)

	// The canonical record is untouched.
	canonical, err := f.contacts.GetByID(ctx, canonicalID)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusCustomer, canonical.Status)
}

func TestArbitrationService_CompanyFuzzy(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *arbitrationFixture) (duplicaterequest.DuplicateRequest, uuid.UUID) {
		t.Helper()
		existing, err := f.companies.Create(ctx, company.Company{Name: "Acme Corporation"})
		require.NoError(t, err)

		recon := NewReconciliationService(f.companies, f.contacts, f.requests, f.svc.publisher, 0)
		res, err := recon.BlindCreateCompany(ctx, CompanyInput{
			Name: "Acme Corporatian", Phone: "+1-555-0100",
		}, user.Principal{ID: uuid.New(), Level: user.LevelSenior})
		require.NoError(t, err)
		require.Equal(t, BlindPending, res.Status)

		req, err := f.requests.GetByID(ctx, *res.RequestID)
		require.NoError(t, err)
		return req, existing.ID
	}

	t.Run("approve keeps the existing company canonical", func(t *testing.T) {
		f := newArbitrationFixture()
		req, existingID := seed(t, f)

		resolved, err := f.svc.Approve(ctx, req.ID, f.reviewer)
		require.NoError(t, err)
		assert.Equal(t, duplicaterequest.StatusApproved, resolved.Status)
		require.NotNil(t, req.PotentialDuplicateID)
		assert.Equal(t, existingID, *req.PotentialDuplicateID)

		// Nothing new was materialized.
		assert.Len(t, f.companies.companies, 1)
	})

	t.Run("reject materializes the submission from the payload", func(t *testing.T) {
		f := newArbitrationFixture()
		req, _ := seed(t, f)

		resolved, err := f.svc.Reject(ctx, req.ID, f.reviewer)
		require.NoError(t, err)
		assert.Equal(t, duplicaterequest.StatusRejected, resolved.Status)

		require.Len(t, f.companies.companies, 2)
		created := f.companies.companies[1]
		assert.Equal(t, "Acme Corporatian", created.Name)
		assert.Equal(t, "+1-555-0100", created.Phone)
	})
}

func TestArbitrationService_ManualRequestIsStatusOnly(t *testing.T) {
	f := newArbitrationFixture()
	ctx := context.Background()

	recon := NewReconciliationService(f.companies, f.contacts, f.requests, f.svc.publisher, 0)
	req, err := recon.SubmitManualCompanyRequest(ctx, CompanyInput{Name: "Acme Corp"}, user.Principal{ID: uuid.New()})
	require.NoError(t, err)

	resolved, err := f.svc.Approve(ctx, req.ID, f.reviewer)
	require.NoError(t, err)
	assert.Equal(t, duplicaterequest.StatusApproved, resolved.Status)

	// Sign-off never creates records on its own.
	assert.Empty(t, f.companies.companies)
}

func TestArbitrationService_Terminality(t *testing.T) {
	f := newArbitrationFixture()
	ctx := context.Background()

	req, _, _ := f.seedContactFuzzy(t)

	_, err := f.svc.Approve(ctx, req.ID, f.reviewer)
	require.NoError(t, err)

	t.Run("second review conflicts", func(t *testing.T) {
		_, err := f.svc.Reject(ctx, req.ID, uuid.New())
		require.Error(t, err)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, 409, serviceErr.Status)

		stored, err := f.requests.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, duplicaterequest.StatusApproved, stored.Status)
	})

	t.Run("unknown request is not found", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, uuid.New(), f.reviewer)
		require.Error(t, err)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, 404, serviceErr.Status)
	})
}
