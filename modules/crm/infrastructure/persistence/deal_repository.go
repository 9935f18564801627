package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	dealSelectQuery = `
        SELECT
            d.id,
            d.name,
            d.amount,
            d.stage,
            d.company_id,
            d.contact_id,
            d.owner_id,
            d.created_at,
            d.updated_at
        FROM deals d`

	dealListQuery = dealSelectQuery + ` ORDER BY d.created_at`

	dealInsertQuery = `
        INSERT INTO deals (name, amount, stage, company_id, contact_id, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	dealCountByContactQuery = `SELECT COUNT(*) FROM deals WHERE contact_id = $1`

	dealReassignContactQuery = `UPDATE deals SET contact_id = $2, updated_at = now() WHERE contact_id = $1`
)

type PgDealRepository struct{}

func NewDealRepository() deal.Repository {
	return &PgDealRepository{}
}

func (r *PgDealRepository) List(ctx context.Context) ([]deal.Deal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, dealListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list deals")
	}
	defer rows.Close()

	var out []deal.Deal
	for rows.Next() {
		var d deal.Deal
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount, &d.Stage, &d.CompanyID, &d.ContactID, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan deal")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PgDealRepository) Create(ctx context.Context, d deal.Deal) (deal.Deal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return deal.Deal{}, err
	}
	err = tx.QueryRow(ctx, dealInsertQuery, d.Name, d.Amount, d.Stage, d.CompanyID, d.ContactID, d.OwnerID).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return deal.Deal{}, errors.Wrap(err, "failed to create deal")
	}
	return d, nil
}

func (r *PgDealRepository) CountByContact(ctx context.Context, contactID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.QueryRow(ctx, dealCountByContactQuery, contactID).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count deals")
	}
	return n, nil
}

func (r *PgDealRepository) ReassignContact(ctx context.Context, fromID, toID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, dealReassignContactQuery, fromID, toID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reassign deals")
	}
	return tag.RowsAffected(), nil
}
