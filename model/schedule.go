package model

import "time"

// NextAfter returns the first instant strictly after t that falls on the
// schedule's day of week at its minute of day, in t's location.
func (r ResetSchedule) NextAfter(t time.Time) time.Time {
	// time.Date normalizes minute-of-day values past 59 into hours.
	candidate := time.Date(t.Year(), t.Month(), t.Day(), 0, r.MinuteOfDay, 0, 0, t.Location())
	for candidate.Weekday() != time.Weekday(r.DayOfWeek) || !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// LastCrossed returns the latest boundary instant that is strictly after
// lastReset and not after now. The second return is false when no boundary
// has been crossed yet. Walking forward from lastReset and keeping only the
// final boundary collapses any number of missed weeks into a single reset.
func (r ResetSchedule) LastCrossed(lastReset, now time.Time) (time.Time, bool) {
	boundary := r.NextAfter(lastReset)
	if boundary.After(now) {
		return time.Time{}, false
	}
	for {
		next := r.NextAfter(boundary)
		if next.After(now) {
			return boundary, true
		}
		boundary = next
	}
}
