package compliance

import (
	"math"
	"time"
)

// truncateDay drops the time-of-day component, keeping the instant's own
// location so results do not depend on the host timezone.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the whole-day distance from now to the expiration date.
// Both instants are truncated to midnight first; the division rounds up so a
// partial day (e.g. across a DST shift) still counts as a full day.
func DaysUntil(expiration, now time.Time) int {
	diff := truncateDay(expiration).Sub(truncateDay(now))
	return int(math.Ceil(diff.Hours() / 24))
}

// hasValidExpiration reports whether the agreement carries a usable
// expiration date. Zero values come from records whose date failed to parse
// upstream; those are excluded from date-dependent rules rather than
// aborting the whole analysis.
func hasValidExpiration(t time.Time) bool {
	return !t.IsZero()
}
