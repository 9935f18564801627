package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	contactSelectQuery = `
        SELECT
            c.id,
            c.company_id,
            c.owner_id,
            c.name,
            c.status,
            c.email,
            c.phone,
            c.position,
            c.notes,
            c.created_at,
            c.updated_at
        FROM contacts c`

	contactListByCompanyQuery = contactSelectQuery + ` WHERE c.company_id = $1 ORDER BY c.name`

	contactGetQuery = contactSelectQuery + ` WHERE c.id = $1`

	contactGetByEmailQuery = contactSelectQuery + ` WHERE c.company_id = $1 AND lower(c.email) = lower($2)`

	contactInsertQuery = `
        INSERT INTO contacts (company_id, owner_id, name, status, email, phone, position, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	contactUpdateStatusQuery = `UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1`

	contactDeleteQuery = `DELETE FROM contacts WHERE id = $1`
)

type PgContactRepository struct{}

func NewContactRepository() contact.Repository {
	return &PgContactRepository{}
}

func scanContact(row pgx.Row) (contact.Contact, error) {
	var c contact.Contact
	err := row.Scan(&c.ID, &c.CompanyID, &c.OwnerID, &c.Name, &c.Status, &c.Email, &c.Phone, &c.Position, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PgContactRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]contact.Contact, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, contactListByCompanyQuery, companyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}
	defer rows.Close()

	var out []contact.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan contact")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgContactRepository) GetByID(ctx context.Context, id uuid.UUID) (contact.Contact, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contact.Contact{}, err
	}
	c, err := scanContact(tx.QueryRow(ctx, contactGetQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return contact.Contact{}, contact.ErrNotFound
	}
	if err != nil {
		return contact.Contact{}, errors.Wrap(err, "failed to get contact")
	}
	return c, nil
}

func (r *PgContactRepository) GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (contact.Contact, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contact.Contact{}, err
	}
	c, err := scanContact(tx.QueryRow(ctx, contactGetByEmailQuery, companyID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return contact.Contact{}, contact.ErrNotFound
	}
	if err != nil {
		return contact.Contact{}, errors.Wrap(err, "failed to get contact by email")
	}
	return c, nil
}

func (r *PgContactRepository) Create(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return contact.Contact{}, err
	}
	err = tx.QueryRow(ctx, contactInsertQuery, c.CompanyID, c.OwnerID, c.Name, c.Status, c.Email, c.Phone, c.Position, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return contact.Contact{}, errors.Wrap(err, "failed to create contact")
	}
	return c, nil
}

func (r *PgContactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status contact.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, contactUpdateStatusQuery, id, status)
	if err != nil {
		return errors.Wrap(err, "failed to update contact status")
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

func (r *PgContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, contactDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete contact")
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}
