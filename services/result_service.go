package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
)

// ResultService фиксирует исходы матчей и запускает пересчёт затронутой фазы.
type ResultService struct {
	cfg      *models.TournamentConfig
	results  repositories.ResultRepository
	bonuses  repositories.BonusRepository
	scoring  *ScoringService
	activity repositories.ActivityRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewResultService(
	cfg *models.TournamentConfig,
	results repositories.ResultRepository,
	bonuses repositories.BonusRepository,
	scoring *ScoringService,
	activity repositories.ActivityRepository,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		cfg:      cfg,
		results:  results,
		bonuses:  bonuses,
		scoring:  scoring,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// SetWinner records the match outcome. Winner must be one of the fixture's
// two teams or DRAW. Only the owning phase is rescored.
func (s *ResultService) SetWinner(ctx context.Context, match int, winner, adminName string) error {
	fixture := s.cfg.FixtureByMatch(match)
	if fixture == nil {
		return fmt.Errorf("%w: match %d", ErrFixtureNotFound, match)
	}
	if winner != fixture.Team1 && winner != fixture.Team2 && winner != models.WinnerDraw {
		return fmt.Errorf("%w: %q is not %s, %s or %s", ErrInvalidWinner, winner, fixture.Team1, fixture.Team2, models.WinnerDraw)
	}

	if err := s.results.SetResult(ctx, nil, match, winner); err != nil {
		return fmt.Errorf("store result for match %d: %w", match, err)
	}

	logActivity(ctx, s.activity, s.logger, s.now(), models.EventFixtureUpdated, adminName,
		fmt.Sprintf("match %d (%s vs %s) result: %s", match, fixture.Team1, fixture.Team2, winner))

	if err := s.scoring.RecomputePhase(ctx, fixture.Phase); err != nil {
		return fmt.Errorf("rescore phase %s: %w", fixture.Phase, err)
	}
	return nil
}

// SetBonusAnswer records the official answer to a bonus question and rescores
// bonus points.
func (s *ResultService) SetBonusAnswer(ctx context.Context, questionID, answer, adminName string) error {
	found := false
	for _, q := range s.cfg.BonusQuestions {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: unknown bonus question %q", ErrBonusPhaseMismatch, questionID)
	}

	if err := s.bonuses.SetActualAnswer(ctx, nil, questionID, answer); err != nil {
		return fmt.Errorf("store bonus answer %s: %w", questionID, err)
	}

	logActivity(ctx, s.activity, s.logger, s.now(), models.EventFixtureUpdated, adminName,
		fmt.Sprintf("bonus question %s answered: %s", questionID, answer))

	return s.scoring.RecomputeBonus(ctx)
}
