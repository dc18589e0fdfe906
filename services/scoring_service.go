package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arsalan-rana/cricket-bracket/live"
	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
	"github.com/arsalan-rana/cricket-bracket/storage"
	"github.com/arsalan-rana/cricket-bracket/tournament"
)

const leaderboardSnapshotKey = "leaderboard/latest.json"

// ScoringService пересчитывает очки по фазам и собирает таблицу лидеров.
// Результаты кэшируются в памяти и инвалидируются пересчётом.
type ScoringService struct {
	cfg         *models.TournamentConfig
	picks       repositories.PickRepository
	results     repositories.ResultRepository
	chips       repositories.ChipRepository
	submissions repositories.SubmissionRepository
	bonuses     repositories.BonusRepository
	hub         *live.Hub
	uploader    storage.FileUploader
	logger      *slog.Logger

	mu          sync.RWMutex
	phaseScores map[string]map[string]tournament.PhaseScore
	bonusPoints map[string]float64
}

func NewScoringService(
	cfg *models.TournamentConfig,
	picks repositories.PickRepository,
	results repositories.ResultRepository,
	chips repositories.ChipRepository,
	submissions repositories.SubmissionRepository,
	bonuses repositories.BonusRepository,
	hub *live.Hub,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *ScoringService {
	return &ScoringService{
		cfg:         cfg,
		picks:       picks,
		results:     results,
		chips:       chips,
		submissions: submissions,
		bonuses:     bonuses,
		hub:         hub,
		uploader:    uploader,
		logger:      logger,
		phaseScores: make(map[string]map[string]tournament.PhaseScore),
		bonusPoints: make(map[string]float64),
	}
}

// RecomputePhase rebuilds the cached scores for one phase from the stores,
// then publishes fresh standings.
func (s *ScoringService) RecomputePhase(ctx context.Context, phaseID string) error {
	if err := s.recomputePhase(ctx, phaseID); err != nil {
		return err
	}
	return s.publish(ctx)
}

func (s *ScoringService) recomputePhase(ctx context.Context, phaseID string) error {
	phase := s.cfg.PhaseByID(phaseID)
	if phase == nil {
		return fmt.Errorf("%w: %q", ErrPhaseNotFound, phaseID)
	}

	picks, err := s.picks.GetPhasePicks(ctx, nil, phase.MatchRange)
	if err != nil {
		return fmt.Errorf("load picks for phase %s: %w", phaseID, err)
	}
	results, err := s.results.GetResults(ctx, nil, phase.MatchRange)
	if err != nil {
		return fmt.Errorf("load results for phase %s: %w", phaseID, err)
	}
	chips, err := s.chips.ListByPhase(ctx, nil, phaseID)
	if err != nil {
		return fmt.Errorf("load chips for phase %s: %w", phaseID, err)
	}
	submissions, err := s.submissions.ListByPhase(ctx, nil, phaseID)
	if err != nil {
		return fmt.Errorf("load submissions for phase %s: %w", phaseID, err)
	}

	deadline, err := tournament.Deadline(s.cfg, phaseID)
	if err != nil {
		return err
	}

	fixtures := s.cfg.FixturesForPhase(phaseID)
	startTimes := make(map[int]time.Time, len(fixtures))
	for _, fixture := range fixtures {
		start, err := tournament.FixtureStartTime(s.cfg, fixture)
		if err != nil {
			// Матч без распознаваемой даты не обнуляется при опоздании.
			s.logger.Warn("unparsable fixture start time", "match", fixture.Match, "date", fixture.Date)
			continue
		}
		startTimes[fixture.Match] = start
	}

	scores, err := tournament.ScorePhase(tournament.PhaseScoreParams{
		Phase:       phase,
		Fixtures:    fixtures,
		Picks:       picks,
		Results:     results,
		Chips:       chips,
		Submissions: submissions,
		Rules:       s.cfg.Scoring,
		Deadline:    deadline,
		StartTimes:  startTimes,
	})
	if err != nil {
		return fmt.Errorf("score phase %s: %w", phaseID, err)
	}

	s.mu.Lock()
	s.phaseScores[phaseID] = scores
	s.mu.Unlock()

	s.logger.Info("phase rescored", "phase", phaseID, "users", len(scores), "decided_matches", len(results))
	return nil
}

// RecomputeAll rescores every phase concurrently, refreshes bonus points and
// publishes the result once.
func (s *ScoringService) RecomputeAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, phase := range s.cfg.Phases {
		phaseID := phase.ID
		g.Go(func() error {
			return s.recomputePhase(gctx, phaseID)
		})
	}
	g.Go(func() error {
		return s.recomputeBonus(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return s.publish(ctx)
}

// RecomputeBonus rescores bonus answers against the recorded actuals.
func (s *ScoringService) RecomputeBonus(ctx context.Context) error {
	if err := s.recomputeBonus(ctx); err != nil {
		return err
	}
	return s.publish(ctx)
}

func (s *ScoringService) recomputeBonus(ctx context.Context) error {
	if !s.cfg.Features.BonusQuestionsEnabled {
		return nil
	}
	actual, err := s.bonuses.GetActualAnswers(ctx, nil)
	if err != nil {
		return fmt.Errorf("load bonus actuals: %w", err)
	}
	if len(actual) == 0 {
		return nil
	}
	answers, err := s.bonuses.ListAnswers(ctx, nil)
	if err != nil {
		return fmt.Errorf("load bonus answers: %w", err)
	}

	points := make(map[string]float64, len(answers))
	for user, userAnswers := range answers {
		points[user] = tournament.ScoreBonus(userAnswers, actual, s.cfg.Scoring)
	}

	s.mu.Lock()
	s.bonusPoints = points
	s.mu.Unlock()
	return nil
}

// Leaderboard aggregates the cached phase scores into ordered standings. Ties
// break on the group-stage final submission time.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]tournament.Standing, error) {
	groupPhase := s.cfg.BonusPhaseID()
	groupSubmittedAt := make(map[string]time.Time)
	if groupPhase != "" {
		submissions, err := s.submissions.ListByPhase(ctx, nil, groupPhase)
		if err != nil {
			return nil, fmt.Errorf("load group submissions: %w", err)
		}
		for user, sub := range submissions {
			if sub.Status == models.SubmissionSubmitted {
				groupSubmittedAt[user] = sub.Timestamp
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return tournament.Aggregate(tournament.AggregateParams{
		PhaseScores:      s.phaseScores,
		Bonus:            s.bonusPoints,
		GroupSubmittedAt: groupSubmittedAt,
	}), nil
}

// PhaseScores returns the cached scores for a phase.
func (s *ScoringService) PhaseScores(phaseID string) (map[string]tournament.PhaseScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores, ok := s.phaseScores[phaseID]
	return scores, ok
}

// publish pushes fresh standings to websocket clients and, when an uploader
// is configured, stores a public JSON snapshot.
func (s *ScoringService) publish(ctx context.Context) error {
	standings, err := s.Leaderboard(ctx)
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(live.EventLeaderboardUpdated, standings)
	}

	if s.uploader != nil {
		snapshot, err := json.Marshal(map[string]interface{}{
			"generated_at": time.Now().UTC(),
			"tournament":   s.cfg.ID,
			"standings":    standings,
		})
		if err != nil {
			return fmt.Errorf("marshal leaderboard snapshot: %w", err)
		}
		if _, err := s.uploader.Upload(ctx, leaderboardSnapshotKey, "application/json", bytes.NewReader(snapshot)); err != nil {
			// Снимок вторичен; пересчёт уже применён.
			s.logger.Error("failed to upload leaderboard snapshot", "error", err)
		}
	}
	return nil
}
