package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arsalan-rana/cricket-bracket/models"
)

// ResultRepository stores official match results. A result transitions from
// absent to a terminal winner value and may be overwritten by later admin
// corrections.
type ResultRepository interface {
	// GetResults returns winner by match for the given range. Matches with
	// no decided result are absent from the map.
	GetResults(ctx context.Context, exec SQLExecutor, matches models.MatchRange) (map[int]string, error)
	// SetResult upserts the winner for a match (last write wins).
	SetResult(ctx context.Context, exec SQLExecutor, match int, winner string) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) GetResults(ctx context.Context, exec SQLExecutor, matches models.MatchRange) (map[int]string, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT match, winner
		FROM results
		WHERE match BETWEEN $1 AND $2 AND winner <> ''`
	rows, err := executor.QueryContext(ctx, query, matches.Start, matches.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make(map[int]string)
	for rows.Next() {
		var match int
		var winner string
		if err := rows.Scan(&match, &winner); err != nil {
			return nil, err
		}
		results[match] = winner
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) SetResult(ctx context.Context, exec SQLExecutor, match int, winner string) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO results (match, winner, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (match)
		DO UPDATE SET winner = EXCLUDED.winner, updated_at = NOW()`
	if _, err := executor.ExecContext(ctx, query, match, winner); err != nil {
		return fmt.Errorf("failed to upsert result for match %d: %w", match, err)
	}
	return nil
}
