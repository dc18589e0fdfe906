package tournament

import (
	"fmt"
	"strings"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
)

// PhaseScoreParams carries everything ScorePhase needs. All maps are read
// only; ScorePhase is a pure function and may be recomputed any number of
// times for the same inputs.
type PhaseScoreParams struct {
	Phase    *models.Phase
	Fixtures []models.Fixture // the fixtures belonging to the phase

	// Picks maps user -> match -> picked team. Wildcard swaps are already
	// persisted in the pick store, so they arrive here pre-applied.
	Picks map[string]models.PickSet

	// Results maps match -> winner. An empty winner means the match is not
	// decided yet and is skipped, not treated as an error.
	Results map[int]string

	// Chips maps user -> chip usage for this phase. Only the Double Up slot
	// affects point values.
	Chips map[string]models.ChipUsage

	// Submissions maps user -> the latest submission record for the phase.
	// A timestamp after Deadline marks the submission late.
	Submissions map[string]models.Submission

	Rules    models.ScoringRules
	Deadline time.Time

	// StartTimes maps match -> scheduled start. Matches absent from the map
	// are never zeroed for lateness.
	StartTimes map[int]time.Time
}

// PhaseScore is a user's result for one phase. Points already includes the
// Double Up effect and late-match zeroing; Penalty is reported separately and
// subtracted at aggregation time.
type PhaseScore struct {
	User        string          `json:"user"`
	Points      float64         `json:"points"`
	MatchPoints map[int]float64 `json:"match_points"`
	Correct     int             `json:"correct"`
	LateDays    int             `json:"late_days,omitempty"`
	Penalty     float64         `json:"penalty,omitempty"`
}

// ScorePhase computes per-user points for one phase.
//
// Fixed phases award PointsPerCorrect per correct pick. Pool phases divide
// PoolSize equally across the phase's matches and split each match's share
// among its correct pickers; a match nobody called forfeits its share. A
// DRAW result awards the flat DrawPoints to every user with a pick on the
// match, under both scoring types.
func ScorePhase(p PhaseScoreParams) (map[string]PhaseScore, error) {
	if p.Phase.ScoringType != models.ScoringFixed && p.Phase.ScoringType != models.ScoringPool {
		return nil, fmt.Errorf("%w: phase %q has type %q", ErrInvalidScoringType, p.Phase.ID, p.Phase.ScoringType)
	}

	scores := make(map[string]PhaseScore)
	for _, user := range scoreUsers(p) {
		scores[user] = scoreUser(p, user)
	}
	return scores, nil
}

// scoreUsers collects every user visible to the phase: anyone with picks or a
// submission record, so that no-pick users still appear with zero points.
func scoreUsers(p PhaseScoreParams) []string {
	seen := make(map[string]bool, len(p.Picks))
	users := make([]string, 0, len(p.Picks))
	for user := range p.Picks {
		if !seen[user] {
			seen[user] = true
			users = append(users, user)
		}
	}
	for user := range p.Submissions {
		if !seen[user] {
			seen[user] = true
			users = append(users, user)
		}
	}
	return users
}

func scoreUser(p PhaseScoreParams, user string) PhaseScore {
	score := PhaseScore{
		User:        user,
		MatchPoints: make(map[int]float64, len(p.Fixtures)),
	}
	picks := p.Picks[user]
	usage := p.Chips[user]

	submission, hasSubmission := p.Submissions[user]
	late := hasSubmission && submission.Timestamp.After(p.Deadline)

	for _, fixture := range p.Fixtures {
		winner, decided := p.Results[fixture.Match]
		if !decided || winner == "" {
			continue
		}
		points := matchPoints(p, fixture, winner, picks)

		// No credit for a pick delivered after the match had started.
		if late && points > 0 {
			if start, ok := p.StartTimes[fixture.Match]; ok && !submission.Timestamp.Before(start) {
				points = 0
			}
		}

		if points > 0 && winner != models.WinnerDraw {
			score.Correct++
		}
		if usage.DoubleUp != nil && *usage.DoubleUp == fixture.Match {
			points *= 2
		}

		score.MatchPoints[fixture.Match] = points
		score.Points += points
	}

	if late {
		score.LateDays = LateDays(p.Deadline, submission.Timestamp)
		score.Penalty = float64(score.LateDays) * p.Rules.LatePenaltyPerDay
	}
	return score
}

// matchPoints returns the base points the user's pick earns on one decided
// fixture, before chip effects and late zeroing.
func matchPoints(p PhaseScoreParams, fixture models.Fixture, winner string, picks models.PickSet) float64 {
	pick, picked := picks[fixture.Match]
	if !picked {
		return 0
	}

	if winner == models.WinnerDraw {
		if p.Phase.DrawPoints != nil {
			return *p.Phase.DrawPoints
		}
		return 0
	}

	if pick != winner {
		return 0
	}

	switch p.Phase.ScoringType {
	case models.ScoringFixed:
		return *p.Phase.PointsPerCorrect
	case models.ScoringPool:
		correct := correctPickers(p.Picks, fixture.Match, winner)
		if correct == 0 {
			return 0
		}
		perMatch := *p.Phase.PoolSize / float64(len(p.Fixtures))
		return perMatch / float64(correct)
	}
	return 0
}

func correctPickers(picks map[string]models.PickSet, match int, winner string) int {
	count := 0
	for _, set := range picks {
		if set[match] == winner {
			count++
		}
	}
	return count
}

// ScoreBonus scores a user's bonus answers against the resolved actual
// answers. Matching is trimmed and case-insensitive; total bonus points are
// capped at BonusPointsCap.
func ScoreBonus(answers, actual map[string]string, rules models.ScoringRules) float64 {
	correct := 0
	for questionID, want := range actual {
		got, ok := answers[questionID]
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
			correct++
		}
	}
	points := float64(correct) * rules.BonusPointsPerCorrect
	if points > rules.BonusPointsCap {
		points = rules.BonusPointsCap
	}
	return points
}
