package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsalan-rana/cricket-bracket/models"
)

func f64(v float64) *float64 { return &v }

var testRules = models.ScoringRules{
	LatePenaltyPerDay:     10,
	BonusPointsCap:        30,
	BonusPointsPerCorrect: 10,
}

func fixedPhase() *models.Phase {
	return &models.Phase{
		ID:               "group-stage",
		Name:             "Group Stage",
		MatchRange:       models.MatchRange{Start: 1, End: 3},
		Deadline:         "2026-02-07T00:29:00",
		ScoringType:      models.ScoringFixed,
		PointsPerCorrect: f64(10),
		DrawPoints:       f64(5),
	}
}

func fixedFixtures() []models.Fixture {
	return []models.Fixture{
		{Match: 1, Team1: "India", Team2: "Pakistan", Phase: "group-stage"},
		{Match: 2, Team1: "Australia", Team2: "England", Phase: "group-stage"},
		{Match: 3, Team1: "Sri Lanka", Team2: "Ireland", Phase: "group-stage"},
	}
}

func poolPhase(poolSize float64, start, end int) *models.Phase {
	return &models.Phase{
		ID:          "super4",
		Name:        "Super 8s",
		MatchRange:  models.MatchRange{Start: start, End: end},
		Deadline:    "2026-02-21T08:00:00",
		ScoringType: models.ScoringPool,
		PoolSize:    f64(poolSize),
	}
}

func TestScorePhaseFixed(t *testing.T) {
	deadline := time.Date(2026, 2, 7, 5, 29, 0, 0, time.UTC)
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India", 2: "England", 3: "Sri Lanka"},
			"bob":   {1: "Pakistan", 2: "Australia"},
		},
		Results:  map[int]string{1: "India", 2: "Australia"},
		Rules:    testRules,
		Deadline: deadline,
	})
	require.NoError(t, err)

	// Match 3 is undecided and contributes nothing for anyone.
	alice := scores["alice"]
	assert.Equal(t, 10.0, alice.Points)
	assert.Equal(t, 1, alice.Correct)
	assert.Equal(t, 10.0, alice.MatchPoints[1])
	assert.Equal(t, 0.0, alice.MatchPoints[2])
	assert.NotContains(t, alice.MatchPoints, 3)

	bob := scores["bob"]
	assert.Equal(t, 10.0, bob.Points)
	assert.Equal(t, 1, bob.Correct)
}

func TestScorePhaseNoPickScoresZero(t *testing.T) {
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India"},
		},
		Results: map[int]string{1: "India", 2: "Australia"},
		Rules:   testRules,
	})
	require.NoError(t, err)

	alice := scores["alice"]
	assert.Equal(t, 10.0, alice.Points)
	assert.Equal(t, 0.0, alice.MatchPoints[2])
}

func TestScorePhaseDrawAwardsFlatPoints(t *testing.T) {
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India"},
			"bob":   {1: "Pakistan"},
			"carol": {2: "England"},
		},
		Results: map[int]string{1: models.WinnerDraw},
		Rules:   testRules,
	})
	require.NoError(t, err)

	// Every user with a pick on the drawn match gets DrawPoints regardless
	// of who they picked; carol has no pick on match 1 and gets nothing.
	assert.Equal(t, 5.0, scores["alice"].Points)
	assert.Equal(t, 5.0, scores["bob"].Points)
	assert.Equal(t, 0.0, scores["carol"].Points)

	// A draw is not a "correct" pick.
	assert.Equal(t, 0, scores["alice"].Correct)
}

func TestScorePhasePoolSplit(t *testing.T) {
	phase := poolPhase(100, 41, 45)
	fixtures := []models.Fixture{
		{Match: 41, Team1: "India", Team2: "Australia", Phase: "super4"},
		{Match: 42, Team1: "England", Team2: "Pakistan", Phase: "super4"},
		{Match: 43, Team1: "South Africa", Team2: "New Zealand", Phase: "super4"},
		{Match: 44, Team1: "Sri Lanka", Team2: "Afghanistan", Phase: "super4"},
		{Match: 45, Team1: "West Indies", Team2: "Ireland", Phase: "super4"},
	}

	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    phase,
		Fixtures: fixtures,
		Picks: map[string]models.PickSet{
			"alice": {41: "India", 42: "England"},
			"bob":   {41: "India", 42: "Pakistan"},
		},
		Results: map[int]string{41: "India", 42: "England"},
		Rules:   testRules,
	})
	require.NoError(t, err)

	// Pool 100 over 5 matches = 20 per match. Match 41 splits between both
	// correct pickers; match 42 goes entirely to alice.
	assert.InDelta(t, 10.0, scores["alice"].MatchPoints[41], 1e-9)
	assert.InDelta(t, 20.0, scores["alice"].MatchPoints[42], 1e-9)
	assert.InDelta(t, 30.0, scores["alice"].Points, 1e-9)

	assert.InDelta(t, 10.0, scores["bob"].MatchPoints[41], 1e-9)
	assert.InDelta(t, 0.0, scores["bob"].MatchPoints[42], 1e-9)
}

func TestScorePhasePoolForfeit(t *testing.T) {
	phase := poolPhase(100, 41, 42)
	fixtures := []models.Fixture{
		{Match: 41, Team1: "India", Team2: "Australia", Phase: "super4"},
		{Match: 42, Team1: "England", Team2: "Pakistan", Phase: "super4"},
	}

	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    phase,
		Fixtures: fixtures,
		Picks: map[string]models.PickSet{
			"alice": {41: "Australia"},
			"bob":   {41: "Australia"},
		},
		Results: map[int]string{41: "India"},
		Rules:   testRules,
	})
	require.NoError(t, err)

	// Nobody called match 41: its share is forfeited, not redistributed.
	assert.Equal(t, 0.0, scores["alice"].Points)
	assert.Equal(t, 0.0, scores["bob"].Points)
}

func TestScorePhasePoolNeverExceedsPerMatchShare(t *testing.T) {
	phase := poolPhase(160, 41, 44)
	fixtures := []models.Fixture{
		{Match: 41, Team1: "A", Team2: "B", Phase: "super4"},
		{Match: 42, Team1: "C", Team2: "D", Phase: "super4"},
		{Match: 43, Team1: "E", Team2: "F", Phase: "super4"},
		{Match: 44, Team1: "G", Team2: "H", Phase: "super4"},
	}
	picks := map[string]models.PickSet{
		"u1": {41: "A", 42: "C", 43: "E", 44: "G"},
		"u2": {41: "A", 42: "D", 43: "E"},
		"u3": {41: "B", 42: "C", 43: "E", 44: "H"},
	}
	results := map[int]string{41: "A", 42: "C", 43: "E", 44: "H"}

	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    phase,
		Fixtures: fixtures,
		Picks:    picks,
		Results:  results,
		Rules:    testRules,
	})
	require.NoError(t, err)

	perMatch := 160.0 / 4
	for match := 41; match <= 44; match++ {
		sum := 0.0
		for _, score := range scores {
			sum += score.MatchPoints[match]
		}
		assert.LessOrEqual(t, sum, perMatch+1e-9, "match %d pays out more than its share", match)
	}
}

func TestScorePhaseDoubleUp(t *testing.T) {
	target := 1
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India", 2: "England"},
			"bob":   {1: "Pakistan"},
		},
		Results: map[int]string{1: "India", 2: "Australia"},
		Chips: map[string]models.ChipUsage{
			"alice": {DoubleUp: &target},
			"bob":   {DoubleUp: &target},
		},
		Rules: testRules,
	})
	require.NoError(t, err)

	// Correct doubled pick: 10 -> 20. Correct count stays at 1.
	alice := scores["alice"]
	assert.Equal(t, 20.0, alice.Points)
	assert.Equal(t, 20.0, alice.MatchPoints[1])
	assert.Equal(t, 1, alice.Correct)

	// Doubling zero is still zero.
	assert.Equal(t, 0.0, scores["bob"].Points)
}

func TestScorePhaseLateSubmission(t *testing.T) {
	deadline := time.Date(2026, 2, 7, 5, 29, 0, 0, time.UTC)
	submittedAt := deadline.Add(26 * time.Hour)
	start1 := deadline.Add(1 * time.Hour)        // started before the late save
	start2 := submittedAt.Add(24 * time.Hour)    // still in the future

	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India", 2: "Australia"},
		},
		Results: map[int]string{1: "India", 2: "Australia"},
		Submissions: map[string]models.Submission{
			"alice": {User: "alice", Phase: "group-stage", Status: models.SubmissionSubmitted, Timestamp: submittedAt},
		},
		Rules:      testRules,
		Deadline:   deadline,
		StartTimes: map[int]time.Time{1: start1, 2: start2},
	})
	require.NoError(t, err)

	// Match 1 had already started when the picks arrived: zeroed. Match 2
	// had not: full credit. 26 hours late = 2 penalty days.
	alice := scores["alice"]
	assert.Equal(t, 0.0, alice.MatchPoints[1])
	assert.Equal(t, 10.0, alice.MatchPoints[2])
	assert.Equal(t, 2, alice.LateDays)
	assert.Equal(t, 20.0, alice.Penalty)
}

func TestScorePhaseOnTimeSubmissionHasNoPenalty(t *testing.T) {
	deadline := time.Date(2026, 2, 7, 5, 29, 0, 0, time.UTC)
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India"},
		},
		Results: map[int]string{1: "India"},
		Submissions: map[string]models.Submission{
			"alice": {User: "alice", Status: models.SubmissionSubmitted, Timestamp: deadline},
		},
		Rules:    testRules,
		Deadline: deadline,
	})
	require.NoError(t, err)

	// Exactly at the deadline is on time.
	assert.Equal(t, 0, scores["alice"].LateDays)
	assert.Equal(t, 0.0, scores["alice"].Penalty)
	assert.Equal(t, 10.0, scores["alice"].Points)
}

func TestScorePhaseIsIdempotent(t *testing.T) {
	params := PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks: map[string]models.PickSet{
			"alice": {1: "India", 2: "England"},
		},
		Results: map[int]string{1: "India", 2: "Australia"},
		Rules:   testRules,
	}

	first, err := ScorePhase(params)
	require.NoError(t, err)
	second, err := ScorePhase(params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScorePhaseSubmittedUserWithoutPicksAppears(t *testing.T) {
	scores, err := ScorePhase(PhaseScoreParams{
		Phase:    fixedPhase(),
		Fixtures: fixedFixtures(),
		Picks:    map[string]models.PickSet{},
		Results:  map[int]string{1: "India"},
		Submissions: map[string]models.Submission{
			"ghost": {User: "ghost", Status: models.SubmissionSubmitted},
		},
		Rules: testRules,
	})
	require.NoError(t, err)

	require.Contains(t, scores, "ghost")
	assert.Equal(t, 0.0, scores["ghost"].Points)
}

func TestScorePhaseRejectsUnknownScoringType(t *testing.T) {
	phase := fixedPhase()
	phase.ScoringType = "bonkers"

	_, err := ScorePhase(PhaseScoreParams{Phase: phase, Rules: testRules})
	assert.ErrorIs(t, err, ErrInvalidScoringType)
}

func TestScoreBonus(t *testing.T) {
	actual := map[string]string{
		"top-scorer":       "Suryakumar Yadav",
		"top-wicket-taker": "Rashid Khan",
		"most-sixes":       "Shimron Hetmyer",
		"most-catches":     "Suryakumar Yadav",
	}

	t.Run("case insensitive with whitespace", func(t *testing.T) {
		answers := map[string]string{
			"top-scorer":       "  suryakumar yadav ",
			"top-wicket-taker": "RASHID KHAN",
		}
		assert.Equal(t, 20.0, ScoreBonus(answers, actual, testRules))
	})

	t.Run("capped", func(t *testing.T) {
		answers := map[string]string{
			"top-scorer":       "Suryakumar Yadav",
			"top-wicket-taker": "Rashid Khan",
			"most-sixes":       "Shimron Hetmyer",
			"most-catches":     "Suryakumar Yadav",
		}
		assert.Equal(t, 30.0, ScoreBonus(answers, actual, testRules))
	})

	t.Run("wrong or missing answers score nothing", func(t *testing.T) {
		answers := map[string]string{
			"top-scorer": "Travis Head",
		}
		assert.Equal(t, 0.0, ScoreBonus(answers, actual, testRules))
		assert.Equal(t, 0.0, ScoreBonus(nil, actual, testRules))
	})
}

func TestLateDays(t *testing.T) {
	deadline := time.Date(2026, 2, 7, 5, 29, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"on time", deadline, 0},
		{"before deadline", deadline.Add(-time.Hour), 0},
		{"one second late", deadline.Add(time.Second), 1},
		{"just under a day", deadline.Add(24*time.Hour - time.Second), 1},
		{"exactly one day", deadline.Add(24 * time.Hour), 1},
		{"25 hours", deadline.Add(25 * time.Hour), 2},
		{"three days and change", deadline.Add(73 * time.Hour), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LateDays(deadline, tc.at))
		})
	}
}

func TestToggleWildcard(t *testing.T) {
	fixture := models.Fixture{Match: 1, Team1: "India", Team2: "Pakistan"}

	assert.Equal(t, "Pakistan", ToggleWildcard(fixture, "India"))
	assert.Equal(t, "India", ToggleWildcard(fixture, "Pakistan"))
	// No existing pick lands on team2.
	assert.Equal(t, "Pakistan", ToggleWildcard(fixture, ""))

	// The toggle is self-inverse.
	assert.Equal(t, "India", ToggleWildcard(fixture, ToggleWildcard(fixture, "India")))
}
