package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
	"github.com/arsalan-rana/cricket-bracket/tournament"
)

// SubmissionService реализует машину состояний NONE → DRAFT → SUBMITTED и
// блокировку сабмитов после дедлайна.
type SubmissionService struct {
	cfg         *models.TournamentConfig
	picks       repositories.PickRepository
	submissions repositories.SubmissionRepository
	bonuses     repositories.BonusRepository
	activity    repositories.ActivityRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewSubmissionService(
	cfg *models.TournamentConfig,
	picks repositories.PickRepository,
	submissions repositories.SubmissionRepository,
	bonuses repositories.BonusRepository,
	activity repositories.ActivityRepository,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		cfg:         cfg,
		picks:       picks,
		submissions: submissions,
		bonuses:     bonuses,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

type SaveInput struct {
	User    string         `json:"-"`
	PhaseID string         `json:"phase"`
	Picks   models.PickSet `json:"picks"`
	// Final marks an explicit submit; false saves a draft.
	Final bool `json:"final"`
	// AcknowledgeLate must be set when submitting after the phase deadline.
	AcknowledgeLate bool `json:"acknowledge_late"`
}

type SaveResult struct {
	Status    models.SubmissionStatus `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Late      bool                    `json:"late,omitempty"`
	// Warning is non-blocking advice, e.g. a final group-stage submission
	// with no bonus answers on file.
	Warning string `json:"warning,omitempty"`
}

// Save validates and persists a pick set for (user, phase).
//
// Mutation is rejected outright once the deadline has passed and a final
// submission exists server-side. A draft-only user past the deadline may
// still submit once, but only through the explicit late acknowledgement gate.
func (s *SubmissionService) Save(ctx context.Context, input SaveInput) (*SaveResult, error) {
	phase := s.cfg.PhaseByID(input.PhaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: %q", ErrPhaseNotFound, input.PhaseID)
	}
	if err := s.validatePicks(phase, input.Picks); err != nil {
		return nil, err
	}

	now := s.now()
	past, err := tournament.IsPastDeadline(s.cfg, phase.ID, now)
	if err != nil {
		return nil, err
	}

	prior, err := s.submissions.GetStatus(ctx, nil, input.User, phase.ID)
	if err != nil {
		return nil, err
	}
	if past && prior.Status == models.SubmissionSubmitted {
		return nil, ErrSubmissionLocked
	}
	if past && !input.AcknowledgeLate {
		return nil, ErrLateAckRequired
	}

	fixtures := s.cfg.FixturesForPhase(phase.ID)
	if input.Final && len(input.Picks) != len(fixtures) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrIncompletePicks, len(input.Picks), len(fixtures))
	}

	if err := s.picks.SetPicks(ctx, nil, input.User, input.Picks); err != nil {
		return nil, err
	}

	status := models.SubmissionDraft
	eventType := models.EventDraftSaved
	if input.Final {
		status = models.SubmissionSubmitted
		eventType = models.EventSubmitted
		if prior.Status == models.SubmissionSubmitted {
			eventType = models.EventUpdated
		}
	}
	submission := models.Submission{
		User:      input.User,
		Phase:     phase.ID,
		Status:    status,
		Timestamp: now,
	}
	if err := s.submissions.SetStatus(ctx, nil, submission); err != nil {
		return nil, err
	}

	result := &SaveResult{Status: status, Timestamp: now, Late: past}
	if input.Final {
		result.Warning = s.bonusWarning(ctx, input.User, phase.ID)
	}

	logActivity(ctx, s.activity, s.logger, now, eventType, input.User,
		fmt.Sprintf("%s picks for %s", status, phase.Name))
	return result, nil
}

func (s *SubmissionService) validatePicks(phase *models.Phase, picks models.PickSet) error {
	for match, team := range picks {
		if !phase.MatchRange.Contains(match) {
			return fmt.Errorf("%w: match %d is outside %q", ErrMatchNotInPhase, match, phase.ID)
		}
		fixture := s.cfg.FixtureByMatch(match)
		if fixture == nil {
			return fmt.Errorf("%w: match %d", ErrFixtureNotFound, match)
		}
		if team != fixture.Team1 && team != fixture.Team2 {
			return fmt.Errorf("%w: %q for match %d", ErrUnknownTeam, team, match)
		}
	}
	return nil
}

// bonusWarning checks whether a finalized bonus-phase submission is missing
// bonus answers. Absence is a warning, never a rejection.
func (s *SubmissionService) bonusWarning(ctx context.Context, user, phaseID string) string {
	if !s.cfg.Features.BonusQuestionsEnabled || phaseID != s.cfg.BonusPhaseID() {
		return ""
	}
	answers, err := s.bonuses.GetAnswers(ctx, nil, user)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to check bonus answers", slog.Any("error", err))
		return ""
	}
	if len(answers) == 0 {
		return "no bonus answers on file; bonus questions remain open until the deadline"
	}
	return ""
}

// SubmissionState отражает статус сабмита вместе с количеством сохранённых пиков.
type SubmissionState struct {
	Status    models.SubmissionStatus `json:"status"`
	Timestamp *time.Time              `json:"timestamp,omitempty"`
	PickCount int                     `json:"pick_count"`
	Locked    bool                    `json:"locked"`
}

func (s *SubmissionService) Status(ctx context.Context, user, phaseID string) (*SubmissionState, error) {
	phase := s.cfg.PhaseByID(phaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: %q", ErrPhaseNotFound, phaseID)
	}
	submission, err := s.submissions.GetStatus(ctx, nil, user, phase.ID)
	if err != nil {
		return nil, err
	}
	picks, err := s.picks.GetPicks(ctx, nil, user, phase.MatchRange)
	if err != nil {
		return nil, err
	}
	past, err := tournament.IsPastDeadline(s.cfg, phase.ID, s.now())
	if err != nil {
		return nil, err
	}

	state := &SubmissionState{
		Status:    submission.Status,
		PickCount: len(picks),
		Locked:    past && submission.Status == models.SubmissionSubmitted,
	}
	if submission.Status != models.SubmissionNone {
		ts := submission.Timestamp
		state.Timestamp = &ts
	}
	return state, nil
}

// Picks returns the user's saved picks for a phase.
func (s *SubmissionService) Picks(ctx context.Context, user, phaseID string) (models.PickSet, error) {
	phase := s.cfg.PhaseByID(phaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: %q", ErrPhaseNotFound, phaseID)
	}
	return s.picks.GetPicks(ctx, nil, user, phase.MatchRange)
}

// FinalizeDrafts treats every unfinished draft for the phase as final. Run
// from the scheduler at the deadline, or by an admin.
func (s *SubmissionService) FinalizeDrafts(ctx context.Context, phaseID string) ([]string, error) {
	phase := s.cfg.PhaseByID(phaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: %q", ErrPhaseNotFound, phaseID)
	}
	users, err := s.submissions.FinalizeDrafts(ctx, nil, phase.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, user := range users {
		logActivity(ctx, s.activity, s.logger, now, models.EventDraftFinalized, user,
			fmt.Sprintf("draft auto-finalized for %s", phase.Name))
	}
	if len(users) > 0 {
		s.logger.InfoContext(ctx, "drafts finalized",
			slog.String("phase", phase.ID), slog.Int("count", len(users)))
	}
	return users, nil
}

// SaveBonusAnswers stores the user's bonus answers. Allowed while the bonus
// phase is open; afterwards only when no final submission locks the phase.
func (s *SubmissionService) SaveBonusAnswers(ctx context.Context, user string, answers map[string]string) error {
	if !s.cfg.Features.BonusQuestionsEnabled {
		return ErrBonusPhaseMismatch
	}
	phaseID := s.cfg.BonusPhaseID()
	now := s.now()
	past, err := tournament.IsPastDeadline(s.cfg, phaseID, now)
	if err != nil {
		return err
	}
	if past {
		prior, err := s.submissions.GetStatus(ctx, nil, user, phaseID)
		if err != nil {
			return err
		}
		if prior.Status == models.SubmissionSubmitted {
			return ErrSubmissionLocked
		}
	}
	known := make(map[string]bool, len(s.cfg.BonusQuestions))
	for _, q := range s.cfg.BonusQuestions {
		known[q.ID] = true
	}
	for questionID := range answers {
		if !known[questionID] {
			return fmt.Errorf("%w: unknown question %q", ErrBonusPhaseMismatch, questionID)
		}
	}
	if err := s.bonuses.SetAnswers(ctx, nil, user, answers); err != nil {
		return err
	}
	logActivity(ctx, s.activity, s.logger, now, models.EventBonusSaved, user,
		fmt.Sprintf("saved %d bonus answers", len(answers)))
	return nil
}

// BonusAnswers returns the user's saved bonus answers.
func (s *SubmissionService) BonusAnswers(ctx context.Context, user string) (map[string]string, error) {
	return s.bonuses.GetAnswers(ctx, nil, user)
}
