package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arsalan-rana/cricket-bracket/models"
)

// ActivityRepository is the append-only action journal: submissions, chip
// activations, fixture corrections, draft finalizations.
type ActivityRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry models.ActivityEntry) error
	ListRecent(ctx context.Context, exec SQLExecutor, limit int) ([]models.ActivityEntry, error)
}

type postgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) ActivityRepository {
	return &postgresActivityRepository{db: db}
}

func (r *postgresActivityRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresActivityRepository) Append(ctx context.Context, exec SQLExecutor, entry models.ActivityEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO activity_log (id, at, event_type, user_name, details)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	if _, err := executor.ExecContext(ctx, query,
		entry.ID, entry.Timestamp, entry.EventType, entry.User, entry.Details); err != nil {
		return fmt.Errorf("failed to append activity entry: %w", err)
	}
	return nil
}

func (r *postgresActivityRepository) ListRecent(ctx context.Context, exec SQLExecutor, limit int) ([]models.ActivityEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, at, event_type, user_name, details
		FROM activity_log
		ORDER BY at DESC
		LIMIT $1`
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ActivityEntry, 0, limit)
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.User, &e.Details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
