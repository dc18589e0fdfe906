package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arsalan-rana/cricket-bracket/models"
)

// PickRepository stores per-user match picks keyed by (user, match). The
// positional addressing of any backing sheet or table stays inside the
// implementation; callers only ever see match numbers.
type PickRepository interface {
	// GetPicks returns the user's picks for matches in the given range.
	GetPicks(ctx context.Context, exec SQLExecutor, user string, matches models.MatchRange) (models.PickSet, error)
	// GetPhasePicks returns every user's picks for matches in the range.
	GetPhasePicks(ctx context.Context, exec SQLExecutor, matches models.MatchRange) (map[string]models.PickSet, error)
	// SetPicks upserts the given picks for the user. Writing the same value
	// twice is a no-op (last write wins).
	SetPicks(ctx context.Context, exec SQLExecutor, user string, picks models.PickSet) error
	// SetPick upserts a single pick.
	SetPick(ctx context.Context, exec SQLExecutor, user string, match int, team string) error
}

type postgresPickRepository struct {
	db *sql.DB
}

func NewPostgresPickRepository(db *sql.DB) PickRepository {
	return &postgresPickRepository{db: db}
}

func (r *postgresPickRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPickRepository) GetPicks(ctx context.Context, exec SQLExecutor, user string, matches models.MatchRange) (models.PickSet, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT match, team
		FROM picks
		WHERE user_name = $1 AND match BETWEEN $2 AND $3`
	rows, err := executor.QueryContext(ctx, query, user, matches.Start, matches.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks for %s: %w", user, err)
	}
	defer rows.Close()

	picks := make(models.PickSet)
	for rows.Next() {
		var match int
		var team string
		if err := rows.Scan(&match, &team); err != nil {
			return nil, err
		}
		picks[match] = team
	}
	return picks, rows.Err()
}

func (r *postgresPickRepository) GetPhasePicks(ctx context.Context, exec SQLExecutor, matches models.MatchRange) (map[string]models.PickSet, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_name, match, team
		FROM picks
		WHERE match BETWEEN $1 AND $2`
	rows, err := executor.QueryContext(ctx, query, matches.Start, matches.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query phase picks: %w", err)
	}
	defer rows.Close()

	picks := make(map[string]models.PickSet)
	for rows.Next() {
		var user, team string
		var match int
		if err := rows.Scan(&user, &match, &team); err != nil {
			return nil, err
		}
		if picks[user] == nil {
			picks[user] = make(models.PickSet)
		}
		picks[user][match] = team
	}
	return picks, rows.Err()
}

func (r *postgresPickRepository) SetPicks(ctx context.Context, exec SQLExecutor, user string, picks models.PickSet) error {
	executor := r.getExecutor(exec)
	for match, team := range picks {
		if err := r.setPick(ctx, executor, user, match, team); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresPickRepository) SetPick(ctx context.Context, exec SQLExecutor, user string, match int, team string) error {
	return r.setPick(ctx, r.getExecutor(exec), user, match, team)
}

func (r *postgresPickRepository) setPick(ctx context.Context, executor SQLExecutor, user string, match int, team string) error {
	query := `
		INSERT INTO picks (user_name, match, team, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_name, match)
		DO UPDATE SET team = EXCLUDED.team, updated_at = NOW()`
	if _, err := executor.ExecContext(ctx, query, user, match, team); err != nil {
		return fmt.Errorf("failed to upsert pick (%s, match %d): %w", user, match, err)
	}
	return nil
}
