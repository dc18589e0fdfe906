package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arsalan-rana/cricket-bracket/models"
)

var ErrSubmissionNotFound = errors.New("submission record not found")

// SubmissionRepository stores the latest submission status and timestamp per
// (user, phase).
type SubmissionRepository interface {
	// GetStatus returns the submission record, or a zero record with status
	// NONE when the user has never saved for the phase.
	GetStatus(ctx context.Context, exec SQLExecutor, user, phaseID string) (models.Submission, error)
	ListByPhase(ctx context.Context, exec SQLExecutor, phaseID string) (map[string]models.Submission, error)
	SetStatus(ctx context.Context, exec SQLExecutor, submission models.Submission) error
	// FinalizeDrafts flips every DRAFT record for the phase to SUBMITTED and
	// returns the affected user names. The original save timestamp is kept,
	// so a draft saved before the deadline does not become a late submission.
	FinalizeDrafts(ctx context.Context, exec SQLExecutor, phaseID string) ([]string, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSubmissionRepository) GetStatus(ctx context.Context, exec SQLExecutor, user, phaseID string) (models.Submission, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT status, updated_at
		FROM submissions
		WHERE user_name = $1 AND phase = $2`
	submission := models.Submission{User: user, Phase: phaseID, Status: models.SubmissionNone}
	err := executor.QueryRowContext(ctx, query, user, phaseID).Scan(&submission.Status, &submission.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return submission, nil
		}
		return models.Submission{}, fmt.Errorf("failed to query submission for %s: %w", user, err)
	}
	return submission, nil
}

func (r *postgresSubmissionRepository) ListByPhase(ctx context.Context, exec SQLExecutor, phaseID string) (map[string]models.Submission, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT user_name, status, updated_at
		FROM submissions
		WHERE phase = $1`
	rows, err := executor.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions for phase %s: %w", phaseID, err)
	}
	defer rows.Close()

	submissions := make(map[string]models.Submission)
	for rows.Next() {
		s := models.Submission{Phase: phaseID}
		if err := rows.Scan(&s.User, &s.Status, &s.Timestamp); err != nil {
			return nil, err
		}
		submissions[s.User] = s
	}
	return submissions, rows.Err()
}

func (r *postgresSubmissionRepository) SetStatus(ctx context.Context, exec SQLExecutor, submission models.Submission) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO submissions (user_name, phase, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_name, phase)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	_, err := executor.ExecContext(ctx, query,
		submission.User, submission.Phase, submission.Status, submission.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert submission (%s, %s): %w", submission.User, submission.Phase, err)
	}
	return nil
}

func (r *postgresSubmissionRepository) FinalizeDrafts(ctx context.Context, exec SQLExecutor, phaseID string) ([]string, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE submissions
		SET status = $1
		WHERE phase = $2 AND status = $3
		RETURNING user_name`
	rows, err := executor.QueryContext(ctx, query,
		models.SubmissionSubmitted, phaseID, models.SubmissionDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize drafts for phase %s: %w", phaseID, err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
