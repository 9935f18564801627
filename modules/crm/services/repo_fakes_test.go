package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contactaccess"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/duplicaterequest"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/team"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
)

// In-memory repositories used by the service tests. Services run their
// transactional closures directly when no pool is attached to the context,
// so these fakes never touch the database layer.

type fakeUserRepo struct {
	users []user.User
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u user.User) (user.User, error) {
	for i := range f.users {
		if f.users[i].ID == u.ID {
			u.UpdatedAt = time.Now()
			f.users[i] = u
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserRepo) SetManager(_ context.Context, id uuid.UUID, managerID *uuid.UUID) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].ManagerID = managerID
			f.users[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return user.ErrNotFound
}

type fakeTeamRepo struct {
	teams []team.Team
}

func (f *fakeTeamRepo) List(_ context.Context) ([]team.Team, error) {
	out := make([]team.Team, len(f.teams))
	copy(out, f.teams)
	return out, nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (team.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return team.Team{}, team.ErrNotFound
}

func (f *fakeTeamRepo) Create(_ context.Context, t team.Team) (team.Team, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	f.teams = append(f.teams, t)
	return t, nil
}

type fakeCompanyRepo struct {
	companies []company.Company
}

func (f *fakeCompanyRepo) List(_ context.Context) ([]company.Company, error) {
	out := make([]company.Company, len(f.companies))
	copy(out, f.companies)
	return out, nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (company.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return company.Company{}, company.ErrNotFound
}

func (f *fakeCompanyRepo) GetByEmail(_ context.Context, email string) (company.Company, error) {
	for _, c := range f.companies {
		if c.Email != "" && strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return company.Company{}, company.ErrNotFound
}

func (f *fakeCompanyRepo) Create(_ context.Context, c company.Company) (company.Company, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	f.companies = append(f.companies, c)
	return c, nil
}

type fakeContactRepo struct {
	contacts []contact.Contact
}

func (f *fakeContactRepo) ListByCompany(_ context.Context, companyID uuid.UUID) ([]contact.Contact, error) {
	var out []contact.Contact
	for _, c := range f.contacts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id uuid.UUID) (contact.Contact, error) {
	for _, c := range f.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (f *fakeContactRepo) GetByEmail(_ context.Context, companyID uuid.UUID, email string) (contact.Contact, error) {
	for _, c := range f.contacts {
		if c.CompanyID == companyID && c.Email != nil && strings.EqualFold(*c.Email, email) {
			return c, nil
		}
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (f *fakeContactRepo) Create(_ context.Context, c contact.Contact) (contact.Contact, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeContactRepo) UpdateStatus(_ context.Context, id uuid.UUID, status contact.Status) error {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts[i].Status = status
			f.contacts[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return contact.ErrNotFound
}

func (f *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return contact.ErrNotFound
}

type fakeDealRepo struct {
	deals []deal.Deal
}

func (f *fakeDealRepo) List(_ context.Context) ([]deal.Deal, error) {
	out := make([]deal.Deal, len(f.deals))
	copy(out, f.deals)
	return out, nil
}

func (f *fakeDealRepo) Create(_ context.Context, d deal.Deal) (deal.Deal, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	f.deals = append(f.deals, d)
	return d, nil
}

func (f *fakeDealRepo) CountByContact(_ context.Context, contactID uuid.UUID) (int64, error) {
	var n int64
	for _, d := range f.deals {
		if d.ContactID != nil && *d.ContactID == contactID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDealRepo) ReassignContact(_ context.Context, fromID, toID uuid.UUID) (int64, error) {
	var n int64
	for i := range f.deals {
		if f.deals[i].ContactID != nil && *f.deals[i].ContactID == fromID {
			to := toID
			f.deals[i].ContactID = &to
			f.deals[i].UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

type fakeDuplicateRequestRepo struct {
	requests []duplicaterequest.DuplicateRequest
}

func (f *fakeDuplicateRequestRepo) Create(_ context.Context, r duplicaterequest.DuplicateRequest) (duplicaterequest.DuplicateRequest, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now
	f.requests = append(f.requests, r)
	return r, nil
}

func (f *fakeDuplicateRequestRepo) GetByID(_ context.Context, id uuid.UUID) (duplicaterequest.DuplicateRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return duplicaterequest.DuplicateRequest{}, duplicaterequest.ErrNotFound
}

func (f *fakeDuplicateRequestRepo) ListByStatus(_ context.Context, status duplicaterequest.Status) ([]duplicaterequest.DuplicateRequest, error) {
	var out []duplicaterequest.DuplicateRequest
	for _, r := range f.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDuplicateRequestRepo) MarkReviewedIfPending(_ context.Context, id uuid.UUID, status duplicaterequest.Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error) {
	for i := range f.requests {
		if f.requests[i].ID != id {
			continue
		}
		if f.requests[i].Status != duplicaterequest.StatusPending {
			return false, nil
		}
		f.requests[i].Status = status
		f.requests[i].ReviewedBy = &reviewerID
		at := reviewedAt
		f.requests[i].ReviewedAt = &at
		f.requests[i].UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

type fakeContactAccessRepo struct {
	requests    []contactaccess.AccessRequest
	permissions []contactaccess.Permission
}

func (f *fakeContactAccessRepo) CreateRequest(_ context.Context, r contactaccess.AccessRequest) (contactaccess.AccessRequest, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now()
	r.CreatedAt, r.UpdatedAt = now, now
	f.requests = append(f.requests, r)
	return r, nil
}

func (f *fakeContactAccessRepo) GetRequestByID(_ context.Context, id uuid.UUID) (contactaccess.AccessRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return contactaccess.AccessRequest{}, contactaccess.ErrNotFound
}

func (f *fakeContactAccessRepo) GetPendingRequest(_ context.Context, requestedBy, contactID uuid.UUID) (contactaccess.AccessRequest, error) {
	for _, r := range f.requests {
		if r.RequestedBy == requestedBy && r.ContactID == contactID && r.Status == contactaccess.StatusPending {
			return r, nil
		}
	}
	return contactaccess.AccessRequest{}, contactaccess.ErrNotFound
}

func (f *fakeContactAccessRepo) MarkReviewedIfPending(_ context.Context, id uuid.UUID, status contactaccess.Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error) {
	for i := range f.requests {
		if f.requests[i].ID != id {
			continue
		}
		if f.requests[i].Status != contactaccess.StatusPending {
			return false, nil
		}
		f.requests[i].Status = status
		f.requests[i].ReviewedBy = &reviewerID
		at := reviewedAt
		f.requests[i].ReviewedAt = &at
		f.requests[i].UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (f *fakeContactAccessRepo) CreatePermission(_ context.Context, p contactaccess.Permission) (contactaccess.Permission, error) {
	for _, existing := range f.permissions {
		if existing.UserID == p.UserID && existing.ContactID == p.ContactID {
			return existing, nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	f.permissions = append(f.permissions, p)
	return p, nil
}

func (f *fakeContactAccessRepo) HasPermission(_ context.Context, userID, contactID uuid.UUID) (bool, error) {
	for _, p := range f.permissions {
		if p.UserID == userID && p.ContactID == contactID {
			return true, nil
		}
	}
	return false, nil
}
