package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/team"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

const (
	teamSelectQuery = `SELECT t.id, t.name, t.leader_id, t.created_at FROM teams t`

	teamListQuery = teamSelectQuery + ` ORDER BY t.name`

	teamGetQuery = teamSelectQuery + ` WHERE t.id = $1`

	teamInsertQuery = `
        INSERT INTO teams (name, leader_id)
        VALUES ($1, $2)
        RETURNING id, created_at`
)

type PgTeamRepository struct{}

func NewTeamRepository() team.Repository {
	return &PgTeamRepository{}
}

func (r *PgTeamRepository) List(ctx context.Context) ([]team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, teamListQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list teams")
	}
	defer rows.Close()

	var out []team.Team
	for rows.Next() {
		var t team.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.LeaderID, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan team")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PgTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return team.Team{}, err
	}
	var t team.Team
	err = tx.QueryRow(ctx, teamGetQuery, id).Scan(&t.ID, &t.Name, &t.LeaderID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return team.Team{}, team.ErrNotFound
	}
	if err != nil {
		return team.Team{}, errors.Wrap(err, "failed to get team")
	}
	return t, nil
}

func (r *PgTeamRepository) Create(ctx context.Context, t team.Team) (team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return team.Team{}, err
	}
	err = tx.QueryRow(ctx, teamInsertQuery, t.Name, t.LeaderID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return team.Team{}, errors.Wrap(err, "failed to create team")
	}
	return t, nil
}
