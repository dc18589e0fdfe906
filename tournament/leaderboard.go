package tournament

import (
	"math"
	"sort"
	"time"
)

// Standing is one leaderboard row. Total = sum of phase points + capped
// bonus - accumulated late penalties.
type Standing struct {
	Rank        int                `json:"rank"`
	User        string             `json:"user"`
	PhasePoints map[string]float64 `json:"phase_points"`
	BonusPoints float64            `json:"bonus_points"`
	Penalty     float64            `json:"penalty"`
	Total       float64            `json:"total"`
}

// AggregateParams combines independently cached per-phase scores. Recomputing
// a single phase only requires replacing its entry in PhaseScores and
// re-running Aggregate.
type AggregateParams struct {
	// PhaseScores maps phase id -> user -> score for that phase.
	PhaseScores map[string]map[string]PhaseScore

	// Bonus maps user -> capped bonus points.
	Bonus map[string]float64

	// GroupSubmittedAt maps user -> final group-stage submission time, the
	// tie-break key. Users without a recorded time lose ties.
	GroupSubmittedAt map[string]time.Time
}

// Aggregate folds per-phase scores into ordered standings. Sorting is by
// total descending; ties go to the earlier group-stage submission, then to
// user name for a stable final order.
func Aggregate(p AggregateParams) []Standing {
	byUser := make(map[string]*Standing)
	standingFor := func(user string) *Standing {
		s, ok := byUser[user]
		if !ok {
			s = &Standing{User: user, PhasePoints: make(map[string]float64)}
			byUser[user] = s
		}
		return s
	}

	for phaseID, scores := range p.PhaseScores {
		for user, score := range scores {
			s := standingFor(user)
			s.PhasePoints[phaseID] = round2(score.Points)
			s.Penalty += score.Penalty
		}
	}
	for user, bonus := range p.Bonus {
		standingFor(user).BonusPoints = bonus
	}

	standings := make([]Standing, 0, len(byUser))
	for _, s := range byUser {
		for _, pts := range s.PhasePoints {
			s.Total += pts
		}
		s.Total = round2(s.Total + s.BonusPoints - s.Penalty)
		standings = append(standings, *s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		ta, aOK := p.GroupSubmittedAt[a.User]
		tb, bOK := p.GroupSubmittedAt[b.User]
		switch {
		case aOK && bOK && !ta.Equal(tb):
			return ta.Before(tb)
		case aOK != bOK:
			return aOK
		}
		return a.User < b.User
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
