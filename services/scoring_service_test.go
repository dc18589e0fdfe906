package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsalan-rana/cricket-bracket/models"
)

type scoringFixture struct {
	svc         *ScoringService
	picks       *fakePickRepo
	results     *fakeResultRepo
	chips       *fakeChipRepo
	submissions *fakeSubmissionRepo
	bonuses     *fakeBonusRepo
}

func newScoringFixture(t *testing.T) *scoringFixture {
	t.Helper()
	f := &scoringFixture{
		picks:       newFakePickRepo(),
		results:     newFakeResultRepo(),
		chips:       newFakeChipRepo(),
		submissions: newFakeSubmissionRepo(),
		bonuses:     newFakeBonusRepo(),
	}
	f.svc = NewScoringService(testTournamentConfig(), f.picks, f.results, f.chips, f.submissions, f.bonuses, nil, nil, discardLogger())
	return f
}

func TestRecomputePhase(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	require.NoError(t, f.picks.SetPicks(ctx, nil, "alice", models.PickSet{1: "India", 2: "Australia"}))
	require.NoError(t, f.picks.SetPicks(ctx, nil, "bob", models.PickSet{1: "Pakistan", 2: "Australia"}))
	require.NoError(t, f.results.SetResult(ctx, nil, 1, "India"))
	require.NoError(t, f.results.SetResult(ctx, nil, 2, "Australia"))

	require.NoError(t, f.svc.RecomputePhase(ctx, "group-stage"))

	scores, ok := f.svc.PhaseScores("group-stage")
	require.True(t, ok)
	assert.Equal(t, 20.0, scores["alice"].Points)
	assert.Equal(t, 10.0, scores["bob"].Points)
}

func TestRecomputePhaseUnknownPhase(t *testing.T) {
	f := newScoringFixture(t)
	assert.ErrorIs(t, f.svc.RecomputePhase(context.Background(), "quarterfinals"), ErrPhaseNotFound)
}

func TestRecomputeAllAndLeaderboard(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	groupSubmit := time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, f.picks.SetPicks(ctx, nil, "alice", models.PickSet{1: "India", 2: "Australia", 3: "India"}))
	require.NoError(t, f.picks.SetPicks(ctx, nil, "bob", models.PickSet{1: "India", 2: "England", 3: "India"}))
	require.NoError(t, f.results.SetResult(ctx, nil, 1, "India"))
	require.NoError(t, f.results.SetResult(ctx, nil, 3, "India"))
	require.NoError(t, f.submissions.SetStatus(ctx, nil, models.Submission{
		User: "alice", Phase: "group-stage", Status: models.SubmissionSubmitted, Timestamp: groupSubmit,
	}))
	require.NoError(t, f.submissions.SetStatus(ctx, nil, models.Submission{
		User: "bob", Phase: "group-stage", Status: models.SubmissionSubmitted, Timestamp: groupSubmit.Add(time.Hour),
	}))

	// Bonus: one correct answer for bob.
	require.NoError(t, f.bonuses.SetActualAnswer(ctx, nil, "top-scorer", "Suryakumar Yadav"))
	require.NoError(t, f.bonuses.SetAnswers(ctx, nil, "bob", map[string]string{"top-scorer": "suryakumar yadav"}))

	require.NoError(t, f.svc.RecomputeAll(ctx))

	standings, err := f.svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	// Finals pool 260 over one match split between both correct pickers:
	// alice 10 + 130 = 140, bob 10 + 130 + 10 bonus = 150.
	assert.Equal(t, "bob", standings[0].User)
	assert.Equal(t, 150.0, standings[0].Total)
	assert.Equal(t, 10.0, standings[0].BonusPoints)
	assert.Equal(t, "alice", standings[1].User)
	assert.Equal(t, 140.0, standings[1].Total)
}

func TestLeaderboardTieBreaksOnGroupSubmissionTime(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()

	earlier := time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.picks.SetPicks(ctx, nil, "alice", models.PickSet{1: "India"}))
	require.NoError(t, f.picks.SetPicks(ctx, nil, "bob", models.PickSet{1: "India"}))
	require.NoError(t, f.results.SetResult(ctx, nil, 1, "India"))
	require.NoError(t, f.submissions.SetStatus(ctx, nil, models.Submission{
		User: "alice", Phase: "group-stage", Status: models.SubmissionSubmitted, Timestamp: earlier.Add(time.Hour),
	}))
	require.NoError(t, f.submissions.SetStatus(ctx, nil, models.Submission{
		User: "bob", Phase: "group-stage", Status: models.SubmissionSubmitted, Timestamp: earlier,
	}))

	require.NoError(t, f.svc.RecomputeAll(ctx))

	standings, err := f.svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "bob", standings[0].User)
	assert.Equal(t, "alice", standings[1].User)
}

func TestSetWinnerTriggersRescore(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()
	activity := &fakeActivityRepo{}
	resultSvc := NewResultService(testTournamentConfig(), f.results, f.bonuses, f.svc, activity, discardLogger())

	require.NoError(t, f.picks.SetPicks(ctx, nil, "alice", models.PickSet{1: "India"}))

	require.NoError(t, resultSvc.SetWinner(ctx, 1, "India", "admin"))

	scores, ok := f.svc.PhaseScores("group-stage")
	require.True(t, ok)
	assert.Equal(t, 10.0, scores["alice"].Points)
	assert.Contains(t, activity.eventTypes(), models.EventFixtureUpdated)

	// Результат можно поправить; пересчёт перезаписывает кэш.
	require.NoError(t, resultSvc.SetWinner(ctx, 1, "Pakistan", "admin"))
	scores, _ = f.svc.PhaseScores("group-stage")
	assert.Equal(t, 0.0, scores["alice"].Points)
}

func TestSetWinnerValidation(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()
	resultSvc := NewResultService(testTournamentConfig(), f.results, f.bonuses, f.svc, &fakeActivityRepo{}, discardLogger())

	assert.ErrorIs(t, resultSvc.SetWinner(ctx, 99, "India", "admin"), ErrFixtureNotFound)
	assert.ErrorIs(t, resultSvc.SetWinner(ctx, 1, "Bangladesh", "admin"), ErrInvalidWinner)

	// DRAW is always a legal outcome.
	require.NoError(t, resultSvc.SetWinner(ctx, 1, models.WinnerDraw, "admin"))
}

func TestSetBonusAnswerRescores(t *testing.T) {
	f := newScoringFixture(t)
	ctx := context.Background()
	resultSvc := NewResultService(testTournamentConfig(), f.results, f.bonuses, f.svc, &fakeActivityRepo{}, discardLogger())

	require.NoError(t, f.bonuses.SetAnswers(ctx, nil, "alice", map[string]string{"top-scorer": "Suryakumar Yadav"}))

	assert.ErrorIs(t, resultSvc.SetBonusAnswer(ctx, "best-haircut", "anyone", "admin"), ErrBonusPhaseMismatch)

	require.NoError(t, resultSvc.SetBonusAnswer(ctx, "top-scorer", "Suryakumar Yadav", "admin"))

	standings, err := f.svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 10.0, standings[0].BonusPoints)
}
