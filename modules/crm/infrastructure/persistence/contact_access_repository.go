package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/contactaccess"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	accessRequestSelectQuery = `
        SELECT
            a.id,
            a.requested_by,
            a.contact_id,
            a.reason,
            a.status,
            a.reviewed_by,
            a.reviewed_at,
            a.created_at,
            a.updated_at
        FROM contact_access_requests a`

	accessRequestGetQuery = accessRequestSelectQuery + ` WHERE a.id = $1`

	accessRequestPendingQuery = accessRequestSelectQuery + `
        WHERE a.requested_by = $1 AND a.contact_id = $2 AND a.status = 'pending'`

	accessRequestInsertQuery = `
        INSERT INTO contact_access_requests (requested_by, contact_id, reason, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	accessRequestClaimQuery = `
        UPDATE contact_access_requests
        SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = now()
        WHERE id = $1 AND status = 'pending'`

	permissionInsertQuery = `
        INSERT INTO contact_permissions (user_id, contact_id, granted_by)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, contact_id) DO NOTHING
        RETURNING id, created_at`

	permissionExistsQuery = `
        SELECT EXISTS (
            SELECT 1 FROM contact_permissions WHERE user_id = $1 AND contact_id = $2
        )`
)

type PgContactAccessRepository struct{}

func NewContactAccessRepository() contactaccess.Repository {
	return &PgContactAccessRepository{}
}

func scanAccessRequest(row pgx.Row) (contactaccess.AccessRequest, error) {
	var r contactaccess.AccessRequest
	err := row.Scan(
		&r.ID,
		&r.RequestedBy,
		&r.ContactID,
		&r.Reason,
		&r.Status,
		&r.ReviewedBy,
		&r.ReviewedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (repo *PgContactAccessRepository) CreateRequest(ctx context.Context, r contactaccess.AccessRequest) (contactaccess.AccessRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contactaccess.AccessRequest{}, err
	}
	err = tx.QueryRow(ctx, accessRequestInsertQuery,
		r.RequestedBy,
		r.ContactID,
		r.Reason,
		r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return contactaccess.AccessRequest{}, errors.Wrap(err, "failed to create access request")
	}
	return r, nil
}

func (repo *PgContactAccessRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (contactaccess.AccessRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contactaccess.AccessRequest{}, err
	}
	r, err := scanAccessRequest(tx.QueryRow(ctx, accessRequestGetQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return contactaccess.AccessRequest{}, contactaccess.ErrNotFound
	}
	if err != nil {
		return contactaccess.AccessRequest{}, errors.Wrap(err, "failed to get access request")
	}
	return r, nil
}

func (repo *PgContactAccessRepository) GetPendingRequest(ctx context.Context, userID, contactID uuid.UUID) (contactaccess.AccessRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contactaccess.AccessRequest{}, err
	}
	r, err := scanAccessRequest(tx.QueryRow(ctx, accessRequestPendingQuery, userID, contactID))
	if errors.Is(err, pgx.ErrNoRows) {
		return contactaccess.AccessRequest{}, contactaccess.ErrNotFound
	}
	if err != nil {
		return contactaccess.AccessRequest{}, errors.Wrap(err, "failed to get pending access request")
	}
	return r, nil
}

func (repo *PgContactAccessRepository) MarkReviewedIfPending(ctx context.Context, id uuid.UUID, status contactaccess.Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, accessRequestClaimQuery, id, status, reviewerID, reviewedAt)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark access request reviewed")
	}
	return tag.RowsAffected() == 1, nil
}

func (repo *PgContactAccessRepository) CreatePermission(ctx context.Context, p contactaccess.Permission) (contactaccess.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contactaccess.Permission{}, err
	}
	err = tx.QueryRow(ctx, permissionInsertQuery, p.UserID, p.ContactID, p.GrantedBy).Scan(&p.ID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Grant already exists; approving twice is a no-op.
		return repo.getPermission(ctx, p.UserID, p.ContactID)
	}
	if err != nil {
		return contactaccess.Permission{}, errors.Wrap(err, "failed to create contact permission")
	}
	return p, nil
}

func (repo *PgContactAccessRepository) getPermission(ctx context.Context, userID, contactID uuid.UUID) (contactaccess.Permission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contactaccess.Permission{}, err
	}
	var p contactaccess.Permission
	err = tx.QueryRow(ctx, `
        SELECT id, user_id, contact_id, granted_by, created_at
        FROM contact_permissions
        WHERE user_id = $1 AND contact_id = $2`, userID, contactID).
		Scan(&p.ID, &p.UserID, &p.ContactID, &p.GrantedBy, &p.CreatedAt)
	if err != nil {
		return contactaccess.Permission{}, errors.Wrap(err, "failed to get contact permission")
	}
	return p, nil
}

func (repo *PgContactAccessRepository) HasPermission(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, permissionExistsQuery, userID, contactID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check contact permission")
	}
	return exists, nil
}
