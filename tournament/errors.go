package tournament

import "errors"

// Config and clock errors are fatal: they indicate a malformed tournament
// configuration or an unresolvable timezone, not a bad user request.
var (
	ErrPhaseNotFound      = errors.New("phase not found in tournament config")
	ErrFixtureNotFound    = errors.New("fixture not found in tournament config")
	ErrInvalidScoringType = errors.New("phase has unsupported scoring type")
	ErrTimezoneUnresolved = errors.New("cannot resolve tournament timezone")
	ErrDeadlineUnparsable = errors.New("cannot parse phase deadline")
	ErrStartTimeUnknown   = errors.New("cannot determine fixture start time")
)
