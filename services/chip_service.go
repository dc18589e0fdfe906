package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
	"github.com/arsalan-rana/cricket-bracket/tournament"
)

// ChipService применяет чипы Double Up и Wildcard: по одному слоту каждого
// типа на пользователя в фазе, только на ещё не начавшиеся матчи.
type ChipService struct {
	cfg      *models.TournamentConfig
	picks    repositories.PickRepository
	chips    repositories.ChipRepository
	activity repositories.ActivityRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewChipService(
	cfg *models.TournamentConfig,
	picks repositories.PickRepository,
	chips repositories.ChipRepository,
	activity repositories.ActivityRepository,
	logger *slog.Logger,
) *ChipService {
	return &ChipService{
		cfg:      cfg,
		picks:    picks,
		chips:    chips,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// ChipActivation is the outcome of a chip play.
type ChipActivation struct {
	Chip    tournament.ChipType `json:"chip"`
	Phase   string              `json:"phase"`
	Match   int                 `json:"match"`
	NewPick string              `json:"new_pick,omitempty"`
}

// ActivateDoubleUp records the double-up slot for the match's phase. The
// pick itself is untouched; the scoring engine doubles the match's points.
func (s *ChipService) ActivateDoubleUp(ctx context.Context, user string, match int) (*ChipActivation, error) {
	fixture, phase, err := s.chipTarget(match)
	if err != nil {
		return nil, err
	}
	if !s.cfg.DoubleUpAllowed(phase.ID) {
		return nil, ErrDoubleUpNotAllowed
	}
	if err := s.ensureNotStarted(*fixture); err != nil {
		return nil, err
	}

	if err := s.chips.SetDoubleUp(ctx, nil, user, phase.ID, match); err != nil {
		return nil, mapChipSlotError(err)
	}

	logActivity(ctx, s.activity, s.logger, s.now(), models.EventChipActivated, user,
		fmt.Sprintf("double up on match %d (%s)", match, phase.Name))
	return &ChipActivation{Chip: tournament.ChipDoubleUp, Phase: phase.ID, Match: match}, nil
}

// ActivateWildcard toggles the user's pick for the match and records the
// wildcard slot. The two writes hit separate stores with no transaction: if
// the slot write fails after the pick write landed, the caller receives
// ErrChipRegistrationIncomplete and must retry RegisterWildcard alone —
// re-running the full activation would toggle the pick back.
func (s *ChipService) ActivateWildcard(ctx context.Context, user string, match int) (*ChipActivation, error) {
	fixture, phase, err := s.chipTarget(match)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotStarted(*fixture); err != nil {
		return nil, err
	}

	usage, err := s.chips.GetChipUsage(ctx, nil, user, phase.ID)
	if err != nil {
		return nil, err
	}
	if usage.Wildcard != nil {
		if *usage.Wildcard == match {
			// Fully registered already; idempotent success.
			picks, err := s.picks.GetPicks(ctx, nil, user, phase.MatchRange)
			if err != nil {
				return nil, err
			}
			return &ChipActivation{Chip: tournament.ChipWildcard, Phase: phase.ID, Match: match, NewPick: picks[match]}, nil
		}
		return nil, ErrChipAlreadyUsed
	}

	picks, err := s.picks.GetPicks(ctx, nil, user, phase.MatchRange)
	if err != nil {
		return nil, err
	}
	newPick := tournament.ToggleWildcard(*fixture, picks[match])

	if err := s.picks.SetPick(ctx, nil, user, match, newPick); err != nil {
		return nil, err
	}
	if err := s.chips.SetWildcard(ctx, nil, user, phase.ID, match); err != nil {
		if mapped := mapChipSlotError(err); mapped == ErrChipAlreadyUsed {
			return nil, mapped
		}
		// Pick already swapped; only the registration half is outstanding.
		return nil, fmt.Errorf("%w: match %d: %v", ErrChipRegistrationIncomplete, match, err)
	}

	logActivity(ctx, s.activity, s.logger, s.now(), models.EventChipActivated, user,
		fmt.Sprintf("wildcard on match %d (%s), pick flipped to %s", match, phase.Name, newPick))
	return &ChipActivation{Chip: tournament.ChipWildcard, Phase: phase.ID, Match: match, NewPick: newPick}, nil
}

// RegisterWildcard retries only the chip-usage half of a wildcard activation
// that failed after the pick write. Idempotent by target match: registering
// the same match again succeeds without touching the pick.
func (s *ChipService) RegisterWildcard(ctx context.Context, user string, match int) error {
	_, phase, err := s.chipTarget(match)
	if err != nil {
		return err
	}
	if err := s.chips.SetWildcard(ctx, nil, user, phase.ID, match); err != nil {
		return mapChipSlotError(err)
	}
	return nil
}

// Usage returns chip usage per phase for the user. Phases where Double Up is
// not offered report a nil slot regardless of stored state.
func (s *ChipService) Usage(ctx context.Context, user string) (map[string]models.ChipUsage, error) {
	if !s.cfg.Features.ChipsEnabled {
		return nil, ErrChipsDisabled
	}
	usages := make(map[string]models.ChipUsage, len(s.cfg.Phases))
	for _, phase := range s.cfg.Phases {
		usage, err := s.chips.GetChipUsage(ctx, nil, user, phase.ID)
		if err != nil {
			return nil, err
		}
		if !s.cfg.DoubleUpAllowed(phase.ID) {
			usage.DoubleUp = nil
		}
		usages[phase.ID] = usage
	}
	return usages, nil
}

func (s *ChipService) chipTarget(match int) (*models.Fixture, *models.Phase, error) {
	if !s.cfg.Features.ChipsEnabled {
		return nil, nil, ErrChipsDisabled
	}
	fixture := s.cfg.FixtureByMatch(match)
	if fixture == nil {
		return nil, nil, fmt.Errorf("%w: match %d", ErrFixtureNotFound, match)
	}
	phase := s.cfg.PhaseByID(fixture.Phase)
	if phase == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrPhaseNotFound, fixture.Phase)
	}
	return fixture, phase, nil
}

func (s *ChipService) ensureNotStarted(fixture models.Fixture) error {
	start, err := tournament.FixtureStartTime(s.cfg, fixture)
	if err != nil {
		return err
	}
	if !s.now().Before(start) {
		return ErrChipTargetStarted
	}
	return nil
}

func mapChipSlotError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrChipSlotTaken) {
		return ErrChipAlreadyUsed
	}
	return err
}
