package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arsalan-rana/cricket-bracket/models"
)

var (
	// ErrChipSlotTaken is returned when a chip slot for the (user, phase)
	// already holds a different target match. Writing the same target again
	// succeeds, which makes registration retries idempotent.
	ErrChipSlotTaken = errors.New("chip slot already populated for this phase")
)

// ChipRepository stores per-(user, phase) chip usage. Each slot is
// write-once: populated slots only accept the identical value again.
type ChipRepository interface {
	GetChipUsage(ctx context.Context, exec SQLExecutor, user, phaseID string) (models.ChipUsage, error)
	ListByPhase(ctx context.Context, exec SQLExecutor, phaseID string) (map[string]models.ChipUsage, error)
	SetDoubleUp(ctx context.Context, exec SQLExecutor, user, phaseID string, match int) error
	SetWildcard(ctx context.Context, exec SQLExecutor, user, phaseID string, match int) error
}

type postgresChipRepository struct {
	db *sql.DB
}

func NewPostgresChipRepository(db *sql.DB) ChipRepository {
	return &postgresChipRepository{db: db}
}

func (r *postgresChipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresChipRepository) GetChipUsage(ctx context.Context, exec SQLExecutor, user, phaseID string) (models.ChipUsage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT double_up, wildcard
		FROM chips
		WHERE user_name = $1 AND phase = $2`
	var usage models.ChipUsage
	err := executor.QueryRowContext(ctx, query, user, phaseID).Scan(&usage.DoubleUp, &usage.Wildcard)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ChipUsage{}, nil
		}
		return models.ChipUsage{}, fmt.Errorf("failed to query chip usage for %s: %w", user, err)
	}
	return usage, nil
}

func (r *postgresChipRepository) ListByPhase(ctx context.Context, exec SQLExecutor, phaseID string) (map[string]models.ChipUsage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_name, double_up, wildcard
		FROM chips
		WHERE phase = $1`
	rows, err := executor.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chips for phase %s: %w", phaseID, err)
	}
	defer rows.Close()

	usages := make(map[string]models.ChipUsage)
	for rows.Next() {
		var user string
		var usage models.ChipUsage
		if err := rows.Scan(&user, &usage.DoubleUp, &usage.Wildcard); err != nil {
			return nil, err
		}
		usages[user] = usage
	}
	return usages, rows.Err()
}

// SetDoubleUp populates the double-up slot. The WHERE clause enforces the
// write-once invariant in the database itself: the update only lands when
// the slot is empty or already holds the same match.
func (r *postgresChipRepository) SetDoubleUp(ctx context.Context, exec SQLExecutor, user, phaseID string, match int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO chips (user_name, phase, double_up)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_name, phase)
		DO UPDATE SET double_up = EXCLUDED.double_up
		WHERE chips.double_up IS NULL OR chips.double_up = EXCLUDED.double_up`
	result, err := executor.ExecContext(ctx, query, user, phaseID, match)
	if err != nil {
		return fmt.Errorf("failed to set double up for %s in %s: %w", user, phaseID, err)
	}
	return checkAffectedRows(result, ErrChipSlotTaken)
}

func (r *postgresChipRepository) SetWildcard(ctx context.Context, exec SQLExecutor, user, phaseID string, match int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO chips (user_name, phase, wildcard)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_name, phase)
		DO UPDATE SET wildcard = EXCLUDED.wildcard
		WHERE chips.wildcard IS NULL OR chips.wildcard = EXCLUDED.wildcard`
	result, err := executor.ExecContext(ctx, query, user, phaseID, match)
	if err != nil {
		return fmt.Errorf("failed to set wildcard for %s in %s: %w", user, phaseID, err)
	}
	return checkAffectedRows(result, ErrChipSlotTaken)
}
