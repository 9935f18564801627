package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	userSelectQuery = `
        SELECT
            u.id,
            u.name,
            u.role,
            u.level,
            u.manager_id,
            u.team_id,
            u.created_at,
            u.updated_at
        FROM users u`

	userListQuery = userSelectQuery + ` ORDER BY u.level, u.name`

	userGetQuery = userSelectQuery + ` WHERE u.id = $1`

	userInsertQuery = `
        INSERT INTO users (name, role, level, manager_id, team_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	userUpdateQuery = `
        UPDATE users
        SET name = $2, role = $3, level = $4, manager_id = $5, team_id = $6, updated_at = now()
        WHERE id = $1`

	userSetManagerQuery = `UPDATE users SET manager_id = $2, updated_at = now() WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Role, &u.Level, &u.ManagerID, &u.TeamID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PgUserRepository) List(ctx context.Context) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, userListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	u, err := scanUser(tx.QueryRow(ctx, userGetQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get user")
	}
	return u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	err = tx.QueryRow(ctx, userInsertQuery, u.Name, u.Role, u.Level, u.ManagerID, u.TeamID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to create user")
	}
	return u, nil
}

func (r *PgUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	tag, err := tx.Exec(ctx, userUpdateQuery, u.ID, u.Name, u.Role, u.Level, u.ManagerID, u.TeamID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *PgUserRepository) SetManager(ctx context.Context, id uuid.UUID, managerID *uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, userSetManagerQuery, id, managerID)
	if err != nil {
		return errors.Wrap(err, "failed to set manager")
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}
