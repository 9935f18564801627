package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	companySelectQuery = `
        SELECT
            c.id,
            c.name,
            c.email,
            c.phone,
            c.website,
            c.owner_id,
            c.created_at,
            c.updated_at
        FROM companies c`

	companyListQuery = companySelectQuery + ` ORDER BY c.name`

	companyGetQuery = companySelectQuery + ` WHERE c.id = $1`

	companyGetByEmailQuery = companySelectQuery + ` WHERE c.email <> '' AND lower(c.email) = lower($1)`

	companyInsertQuery = `
        INSERT INTO companies (name, email, phone, website, owner_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
)

type PgCompanyRepository struct{}

func NewCompanyRepository() company.Repository {
	return &PgCompanyRepository{}
}

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Website, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PgCompanyRepository) List(ctx context.Context) ([]company.Company, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, companyListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list companies")
	}
	defer rows.Close()

	var out []company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan company")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (company.Company, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return company.Company{}, err
	}
	c, err := scanCompany(tx.QueryRow(ctx, companyGetQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return company.Company{}, company.ErrNotFound
	}
	if err != nil {
		return company.Company{}, errors.Wrap(err, "failed to get company")
	}
	return c, nil
}

func (r *PgCompanyRepository) GetByEmail(ctx context.Context, email string) (company.Company, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return company.Company{}, err
	}
	c, err := scanCompany(tx.QueryRow(ctx, companyGetByEmailQuery, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return company.Company{}, company.ErrNotFound
	}
	if err != nil {
		return company.Company{}, errors.Wrap(err, "failed to get company by email")
	}
	return c, nil
}

func (r *PgCompanyRepository) Create(ctx context.Context, c company.Company) (company.Company, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return company.Company{}, err
	}
	err = tx.QueryRow(ctx, companyInsertQuery, c.Name, c.Email, c.Phone, c.Website, c.OwnerID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return company.Company{}, errors.Wrap(err, "failed to create company")
	}
	return c, nil
}
