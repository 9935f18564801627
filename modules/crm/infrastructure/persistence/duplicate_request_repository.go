package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/duplicaterequest"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	duplicateRequestSelectQuery = `
        SELECT
            r.id,
            r.entity_type,
            r.request_type,
            r.submitted_by,
            r.potential_duplicate_id,
            r.payload_schema_version,
            r.payload,
            r.status,
            r.reviewed_by,
            r.reviewed_at,
            r.created_at,
            r.updated_at
        FROM duplicate_requests r`

	duplicateRequestGetQuery = duplicateRequestSelectQuery + ` WHERE r.id = $1`

	duplicateRequestListByStatusQuery = duplicateRequestSelectQuery + ` WHERE r.status = $1 ORDER BY r.created_at`

	duplicateRequestInsertQuery = `
        INSERT INTO duplicate_requests
            (entity_type, request_type, submitted_by, potential_duplicate_id, payload_schema_version, payload, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	// The WHERE status = 'pending' clause is the arbitration race guard:
	// exactly one reviewer can move a request out of pending.
	duplicateRequestClaimQuery = `
        UPDATE duplicate_requests
        SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = now()
        WHERE id = $1 AND status = 'pending'`
)

type PgDuplicateRequestRepository struct{}

func NewDuplicateRequestRepository() duplicaterequest.Repository {
	return &PgDuplicateRequestRepository{}
}

func scanDuplicateRequest(row pgx.Row) (duplicaterequest.DuplicateRequest, error) {
	var r duplicaterequest.DuplicateRequest
	err := row.Scan(
		&r.ID,
		&r.EntityType,
		&r.RequestType,
		&r.SubmittedBy,
		&r.PotentialDuplicateID,
		&r.PayloadSchemaVersion,
		&r.Payload,
		&r.Status,
		&r.ReviewedBy,
		&r.ReviewedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (repo *PgDuplicateRequestRepository) Create(ctx context.Context, r duplicaterequest.DuplicateRequest) (duplicaterequest.DuplicateRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return duplicaterequest.DuplicateRequest{}, err
	}
	err = tx.QueryRow(ctx, duplicateRequestInsertQuery,
		r.EntityType,
		r.RequestType,
		r.SubmittedBy,
		r.PotentialDuplicateID,
		r.PayloadSchemaVersion,
		r.Payload,
		r.Status,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return duplicaterequest.DuplicateRequest{}, errors.Wrap(err, "failed to create duplicate request")
	}
	return r, nil
}

func (repo *PgDuplicateRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (duplicaterequest.DuplicateRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return duplicaterequest.DuplicateRequest{}, err
	}
	r, err := scanDuplicateRequest(tx.QueryRow(ctx, duplicateRequestGetQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return duplicaterequest.DuplicateRequest{}, duplicaterequest.ErrNotFound
	}
	if err != nil {
		return duplicaterequest.DuplicateRequest{}, errors.Wrap(err, "failed to get duplicate request")
	}
	return r, nil
}

func (repo *PgDuplicateRequestRepository) ListByStatus(ctx context.Context, status duplicaterequest.Status) ([]duplicaterequest.DuplicateRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, duplicateRequestListByStatusQuery, status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list duplicate requests")
	}
	defer rows.Close()

	var out []duplicaterequest.DuplicateRequest
	for rows.Next() {
		r, err := scanDuplicateRequest(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan duplicate request")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (repo *PgDuplicateRequestRepository) MarkReviewedIfPending(ctx context.Context, id uuid.UUID, status duplicaterequest.Status, reviewerID uuid.UUID, reviewedAt time.Time) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, duplicateRequestClaimQuery, id, status, reviewerID, reviewedAt)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark duplicate request reviewed")
	}
	return tag.RowsAffected() == 1, nil
}
