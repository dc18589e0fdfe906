package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
)

// In-memory repository doubles for service tests. Maps are keyed the same way
// the SQL tables are.

type fakePickRepo struct {
	picks   map[string]models.PickSet // user -> match -> team
	failSet error
}

func newFakePickRepo() *fakePickRepo {
	return &fakePickRepo{picks: make(map[string]models.PickSet)}
}

func (r *fakePickRepo) GetPicks(_ context.Context, _ repositories.SQLExecutor, user string, matches models.MatchRange) (models.PickSet, error) {
	out := make(models.PickSet)
	for match, team := range r.picks[user] {
		if matches.Contains(match) {
			out[match] = team
		}
	}
	return out, nil
}

func (r *fakePickRepo) GetPhasePicks(_ context.Context, _ repositories.SQLExecutor, matches models.MatchRange) (map[string]models.PickSet, error) {
	out := make(map[string]models.PickSet)
	for user, set := range r.picks {
		for match, team := range set {
			if matches.Contains(match) {
				if out[user] == nil {
					out[user] = make(models.PickSet)
				}
				out[user][match] = team
			}
		}
	}
	return out, nil
}

func (r *fakePickRepo) SetPicks(_ context.Context, _ repositories.SQLExecutor, user string, picks models.PickSet) error {
	if r.failSet != nil {
		return r.failSet
	}
	if r.picks[user] == nil {
		r.picks[user] = make(models.PickSet)
	}
	for match, team := range picks {
		r.picks[user][match] = team
	}
	return nil
}

func (r *fakePickRepo) SetPick(_ context.Context, _ repositories.SQLExecutor, user string, match int, team string) error {
	if r.failSet != nil {
		return r.failSet
	}
	if r.picks[user] == nil {
		r.picks[user] = make(models.PickSet)
	}
	r.picks[user][match] = team
	return nil
}

type submissionKey struct{ user, phase string }

type fakeSubmissionRepo struct {
	submissions map[submissionKey]models.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[submissionKey]models.Submission)}
}

func (r *fakeSubmissionRepo) GetStatus(_ context.Context, _ repositories.SQLExecutor, user, phaseID string) (models.Submission, error) {
	if sub, ok := r.submissions[submissionKey{user, phaseID}]; ok {
		return sub, nil
	}
	return models.Submission{User: user, Phase: phaseID, Status: models.SubmissionNone}, nil
}

func (r *fakeSubmissionRepo) ListByPhase(_ context.Context, _ repositories.SQLExecutor, phaseID string) (map[string]models.Submission, error) {
	out := make(map[string]models.Submission)
	for key, sub := range r.submissions {
		if key.phase == phaseID {
			out[key.user] = sub
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) SetStatus(_ context.Context, _ repositories.SQLExecutor, submission models.Submission) error {
	r.submissions[submissionKey{submission.User, submission.Phase}] = submission
	return nil
}

func (r *fakeSubmissionRepo) FinalizeDrafts(_ context.Context, _ repositories.SQLExecutor, phaseID string) ([]string, error) {
	var users []string
	for key, sub := range r.submissions {
		if key.phase == phaseID && sub.Status == models.SubmissionDraft {
			sub.Status = models.SubmissionSubmitted
			r.submissions[key] = sub
			users = append(users, key.user)
		}
	}
	sort.Strings(users)
	return users, nil
}

type chipKey struct{ user, phase string }

type fakeChipRepo struct {
	usage        map[chipKey]models.ChipUsage
	failWildcard error
}

func newFakeChipRepo() *fakeChipRepo {
	return &fakeChipRepo{usage: make(map[chipKey]models.ChipUsage)}
}

func (r *fakeChipRepo) GetChipUsage(_ context.Context, _ repositories.SQLExecutor, user, phaseID string) (models.ChipUsage, error) {
	return r.usage[chipKey{user, phaseID}], nil
}

func (r *fakeChipRepo) ListByPhase(_ context.Context, _ repositories.SQLExecutor, phaseID string) (map[string]models.ChipUsage, error) {
	out := make(map[string]models.ChipUsage)
	for key, usage := range r.usage {
		if key.phase == phaseID {
			out[key.user] = usage
		}
	}
	return out, nil
}

func (r *fakeChipRepo) SetDoubleUp(_ context.Context, _ repositories.SQLExecutor, user, phaseID string, match int) error {
	key := chipKey{user, phaseID}
	usage := r.usage[key]
	if usage.DoubleUp != nil && *usage.DoubleUp != match {
		return repositories.ErrChipSlotTaken
	}
	usage.DoubleUp = &match
	r.usage[key] = usage
	return nil
}

func (r *fakeChipRepo) SetWildcard(_ context.Context, _ repositories.SQLExecutor, user, phaseID string, match int) error {
	if r.failWildcard != nil {
		return r.failWildcard
	}
	key := chipKey{user, phaseID}
	usage := r.usage[key]
	if usage.Wildcard != nil && *usage.Wildcard != match {
		return repositories.ErrChipSlotTaken
	}
	usage.Wildcard = &match
	r.usage[key] = usage
	return nil
}

type bonusKey struct{ user, question string }

type fakeBonusRepo struct {
	answers map[bonusKey]string
	actuals map[string]string
}

func newFakeBonusRepo() *fakeBonusRepo {
	return &fakeBonusRepo{
		answers: make(map[bonusKey]string),
		actuals: make(map[string]string),
	}
}

func (r *fakeBonusRepo) GetAnswers(_ context.Context, _ repositories.SQLExecutor, user string) (map[string]string, error) {
	out := make(map[string]string)
	for key, answer := range r.answers {
		if key.user == user {
			out[key.question] = answer
		}
	}
	return out, nil
}

func (r *fakeBonusRepo) ListAnswers(_ context.Context, _ repositories.SQLExecutor) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for key, answer := range r.answers {
		if out[key.user] == nil {
			out[key.user] = make(map[string]string)
		}
		out[key.user][key.question] = answer
	}
	return out, nil
}

func (r *fakeBonusRepo) SetAnswers(_ context.Context, _ repositories.SQLExecutor, user string, answers map[string]string) error {
	for question, answer := range answers {
		r.answers[bonusKey{user, question}] = answer
	}
	return nil
}

func (r *fakeBonusRepo) GetActualAnswers(_ context.Context, _ repositories.SQLExecutor) (map[string]string, error) {
	out := make(map[string]string, len(r.actuals))
	for question, answer := range r.actuals {
		out[question] = answer
	}
	return out, nil
}

func (r *fakeBonusRepo) SetActualAnswer(_ context.Context, _ repositories.SQLExecutor, questionID, answer string) error {
	r.actuals[questionID] = answer
	return nil
}

type fakeResultRepo struct {
	results map[int]string
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[int]string)}
}

func (r *fakeResultRepo) GetResults(_ context.Context, _ repositories.SQLExecutor, matches models.MatchRange) (map[int]string, error) {
	out := make(map[int]string)
	for match, winner := range r.results {
		if matches.Contains(match) && winner != "" {
			out[match] = winner
		}
	}
	return out, nil
}

func (r *fakeResultRepo) SetResult(_ context.Context, _ repositories.SQLExecutor, match int, winner string) error {
	r.results[match] = winner
	return nil
}

type fakeActivityRepo struct {
	entries []models.ActivityEntry
}

func (r *fakeActivityRepo) Append(_ context.Context, _ repositories.SQLExecutor, entry models.ActivityEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeActivityRepo) ListRecent(_ context.Context, _ repositories.SQLExecutor, limit int) ([]models.ActivityEntry, error) {
	if len(r.entries) <= limit {
		return r.entries, nil
	}
	return r.entries[len(r.entries)-limit:], nil
}

func (r *fakeActivityRepo) eventTypes() []string {
	types := make([]string, len(r.entries))
	for i, e := range r.entries {
		types[i] = e.EventType
	}
	return types
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
