package tournament

import "time"

// LateDays is the named policy for the "days late" penalty basis: elapsed
// time past the deadline is bucketed into 24-hour windows, ceiling rounded.
// One second late counts as one day; 25 hours late counts as two.
func LateDays(deadline, submittedAt time.Time) int {
	if !submittedAt.After(deadline) {
		return 0
	}
	elapsed := submittedAt.Sub(deadline)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}
