package models

import "time"

// SubmissionStatus соответствует состояниям жизненного цикла сабмита.
type SubmissionStatus string

const (
	SubmissionNone      SubmissionStatus = "NONE"
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
)

// PickSet maps match number to the team the user picked as winner.
type PickSet map[int]string

// Submission is the per-(user, phase) record of the latest save. Timestamp is
// the moment of the last write and doubles as the final-submission time once
// Status is SUBMITTED.
type Submission struct {
	User      string           `json:"user"`
	Phase     string           `json:"phase"`
	Status    SubmissionStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// ChipUsage holds the two independent chip slots for a (user, phase) pair.
// A populated slot is immutable: the engine rejects re-activation.
type ChipUsage struct {
	DoubleUp *int `json:"doubleUp,omitempty"`
	Wildcard *int `json:"wildcard,omitempty"`
}

// ActivityEntry — строка журнала действий (append-only).
type ActivityEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	User      string    `json:"user"`
	Details   string    `json:"details,omitempty"`
}

// Activity event types written by the services.
const (
	EventDraftSaved     = "DRAFT_SAVED"
	EventSubmitted      = "SUBMITTED"
	EventUpdated        = "UPDATED"
	EventDraftFinalized = "DRAFT_AUTO_FINALIZED"
	EventFixtureUpdated = "FIXTURE_UPDATED"
	EventChipActivated  = "CHIP_ACTIVATED"
	EventBonusSaved     = "BONUS_SAVED"
)
