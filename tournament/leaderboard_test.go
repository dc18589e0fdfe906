package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTotals(t *testing.T) {
	standings := Aggregate(AggregateParams{
		PhaseScores: map[string]map[string]PhaseScore{
			"group-stage": {
				"alice": {User: "alice", Points: 120},
				"bob":   {User: "bob", Points: 100, Penalty: 20},
			},
			"super4": {
				"alice": {User: "alice", Points: 13.333333333},
			},
		},
		Bonus: map[string]float64{"alice": 20},
	})
	require.Len(t, standings, 2)

	alice := standings[0]
	assert.Equal(t, 1, alice.Rank)
	assert.Equal(t, "alice", alice.User)
	assert.Equal(t, 13.33, alice.PhasePoints["super4"])
	assert.Equal(t, 153.33, alice.Total)

	bob := standings[1]
	assert.Equal(t, 2, bob.Rank)
	assert.Equal(t, 20.0, bob.Penalty)
	assert.Equal(t, 80.0, bob.Total)
}

func TestAggregateTieBreaks(t *testing.T) {
	scores := map[string]map[string]PhaseScore{
		"group-stage": {
			"alice": {User: "alice", Points: 100},
			"bob":   {User: "bob", Points: 100},
			"carol": {User: "carol", Points: 100},
		},
	}
	early := time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 6, 22, 0, 0, 0, time.UTC)

	t.Run("earlier group submission wins the tie", func(t *testing.T) {
		standings := Aggregate(AggregateParams{
			PhaseScores: scores,
			GroupSubmittedAt: map[string]time.Time{
				"alice": late,
				"bob":   early,
				"carol": early.Add(time.Hour),
			},
		})
		assert.Equal(t, []string{"bob", "carol", "alice"}, userOrder(standings))
	})

	t.Run("a recorded time beats a missing one", func(t *testing.T) {
		standings := Aggregate(AggregateParams{
			PhaseScores: scores,
			GroupSubmittedAt: map[string]time.Time{
				"carol": late,
			},
		})
		assert.Equal(t, "carol", standings[0].User)
	})

	t.Run("name order is the final fallback", func(t *testing.T) {
		standings := Aggregate(AggregateParams{PhaseScores: scores})
		assert.Equal(t, []string{"alice", "bob", "carol"}, userOrder(standings))
	})
}

func TestAggregateRanksAreDense(t *testing.T) {
	standings := Aggregate(AggregateParams{
		PhaseScores: map[string]map[string]PhaseScore{
			"group-stage": {
				"alice": {User: "alice", Points: 50},
				"bob":   {User: "bob", Points: 70},
				"carol": {User: "carol", Points: 60},
			},
		},
	})
	require.Len(t, standings, 3)
	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, []string{"bob", "carol", "alice"}, userOrder(standings))
}

func userOrder(standings []Standing) []string {
	users := make([]string, len(standings))
	for i, s := range standings {
		users[i] = s.User
	}
	return users
}
