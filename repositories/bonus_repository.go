package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// BonusRepository stores free-text bonus answers per (user, question) and the
// admin-resolved actual answers the engine scores against.
type BonusRepository interface {
	GetAnswers(ctx context.Context, exec SQLExecutor, user string) (map[string]string, error)
	ListAnswers(ctx context.Context, exec SQLExecutor) (map[string]map[string]string, error)
	SetAnswers(ctx context.Context, exec SQLExecutor, user string, answers map[string]string) error
	GetActualAnswers(ctx context.Context, exec SQLExecutor) (map[string]string, error)
	SetActualAnswer(ctx context.Context, exec SQLExecutor, questionID, answer string) error
}

type postgresBonusRepository struct {
	db *sql.DB
}

func NewPostgresBonusRepository(db *sql.DB) BonusRepository {
	return &postgresBonusRepository{db: db}
}

func (r *postgresBonusRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBonusRepository) GetAnswers(ctx context.Context, exec SQLExecutor, user string) (map[string]string, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT question_id, answer
		FROM bonus_answers
		WHERE user_name = $1`
	rows, err := executor.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonus answers for %s: %w", user, err)
	}
	defer rows.Close()

	answers := make(map[string]string)
	for rows.Next() {
		var questionID, answer string
		if err := rows.Scan(&questionID, &answer); err != nil {
			return nil, err
		}
		answers[questionID] = answer
	}
	return answers, rows.Err()
}

func (r *postgresBonusRepository) ListAnswers(ctx context.Context, exec SQLExecutor) (map[string]map[string]string, error) {
	executor := r.getExecutor(exec)
	query := `SELECT user_name, question_id, answer FROM bonus_answers`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonus answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[string]map[string]string)
	for rows.Next() {
		var user, questionID, answer string
		if err := rows.Scan(&user, &questionID, &answer); err != nil {
			return nil, err
		}
		if answers[user] == nil {
			answers[user] = make(map[string]string)
		}
		answers[user][questionID] = answer
	}
	return answers, rows.Err()
}

func (r *postgresBonusRepository) SetAnswers(ctx context.Context, exec SQLExecutor, user string, answers map[string]string) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bonus_answers (user_name, question_id, answer, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_name, question_id)
		DO UPDATE SET answer = EXCLUDED.answer, updated_at = NOW()`
	for questionID, answer := range answers {
		if _, err := executor.ExecContext(ctx, query, user, questionID, answer); err != nil {
			return fmt.Errorf("failed to upsert bonus answer (%s, %s): %w", user, questionID, err)
		}
	}
	return nil
}

func (r *postgresBonusRepository) GetActualAnswers(ctx context.Context, exec SQLExecutor) (map[string]string, error) {
	executor := r.getExecutor(exec)
	query := `SELECT question_id, answer FROM bonus_actuals`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actual bonus answers: %w", err)
	}
	defer rows.Close()

	actuals := make(map[string]string)
	for rows.Next() {
		var questionID, answer string
		if err := rows.Scan(&questionID, &answer); err != nil {
			return nil, err
		}
		actuals[questionID] = answer
	}
	return actuals, rows.Err()
}

func (r *postgresBonusRepository) SetActualAnswer(ctx context.Context, exec SQLExecutor, questionID, answer string) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO bonus_actuals (question_id, answer, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (question_id)
		DO UPDATE SET answer = EXCLUDED.answer, updated_at = NOW()`
	if _, err := executor.ExecContext(ctx, query, questionID, answer); err != nil {
		return fmt.Errorf("failed to upsert actual answer for %s: %w", questionID, err)
	}
	return nil
}
