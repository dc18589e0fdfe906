package tournament

import (
	"fmt"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
)

const (
	deadlineLayout = "2006-01-02T15:04:05"
	fixtureLayout  = "2 January 2006 15:04"
)

// Location resolves the tournament's IANA timezone.
func Location(cfg *models.TournamentConfig) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTimezoneUnresolved, cfg.Timezone, err)
	}
	return loc, nil
}

// Deadline returns the submission deadline of a phase as an instant in the
// tournament timezone.
func Deadline(cfg *models.TournamentConfig, phaseID string) (time.Time, error) {
	phase := cfg.PhaseByID(phaseID)
	if phase == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrPhaseNotFound, phaseID)
	}
	loc, err := Location(cfg)
	if err != nil {
		return time.Time{}, err
	}
	deadline, err := time.ParseInLocation(deadlineLayout, phase.Deadline, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: phase %q: %v", ErrDeadlineUnparsable, phaseID, err)
	}
	return deadline, nil
}

// Deadlines returns every phase deadline keyed by phase id.
func Deadlines(cfg *models.TournamentConfig) (map[string]time.Time, error) {
	deadlines := make(map[string]time.Time, len(cfg.Phases))
	for _, p := range cfg.Phases {
		d, err := Deadline(cfg, p.ID)
		if err != nil {
			return nil, err
		}
		deadlines[p.ID] = d
	}
	return deadlines, nil
}

// CurrentPhase returns the first phase in config order whose deadline is
// still in the future. Config order breaks deadline ties. A nil phase means
// every deadline has passed (terminal state); lateness queries against
// individual phases remain valid.
func CurrentPhase(cfg *models.TournamentConfig, now time.Time) (*models.Phase, error) {
	for i := range cfg.Phases {
		deadline, err := Deadline(cfg, cfg.Phases[i].ID)
		if err != nil {
			return nil, err
		}
		if now.Before(deadline) {
			return &cfg.Phases[i], nil
		}
	}
	return nil, nil
}

// IsPastDeadline reports whether now is strictly after the phase deadline.
// There is no grace period.
func IsPastDeadline(cfg *models.TournamentConfig, phaseID string, now time.Time) (bool, error) {
	deadline, err := Deadline(cfg, phaseID)
	if err != nil {
		return false, err
	}
	return now.After(deadline), nil
}

// FixtureStartTime derives the scheduled first-ball instant of a fixture from
// its display date, the tournament year and the configured default start time.
func FixtureStartTime(cfg *models.TournamentConfig, fixture models.Fixture) (time.Time, error) {
	loc, err := Location(cfg)
	if err != nil {
		return time.Time{}, err
	}
	raw := fmt.Sprintf("%s %d %s", fixture.Date, cfg.Year, cfg.FixtureStartTime)
	start, err := time.ParseInLocation(fixtureLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: match %d (%q): %v", ErrStartTimeUnknown, fixture.Match, raw, err)
	}
	return start, nil
}

// ValidateConfig runs the structural model validation plus the temporal
// invariants: every deadline must parse in the configured timezone and
// deadlines must be ordered ascending along the phase list.
func ValidateConfig(cfg *models.TournamentConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	deadlines, err := Deadlines(cfg)
	if err != nil {
		return err
	}
	for i := 1; i < len(cfg.Phases); i++ {
		prev := deadlines[cfg.Phases[i-1].ID]
		cur := deadlines[cfg.Phases[i].ID]
		if cur.Before(prev) {
			return fmt.Errorf("%w: phase %q deadline precedes phase %q",
				ErrDeadlineUnparsable, cfg.Phases[i].ID, cfg.Phases[i-1].ID)
		}
	}
	return nil
}
