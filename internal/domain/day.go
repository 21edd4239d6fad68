package domain

import "time"

// DayStart returns midnight at the start of t's calendar day, in t's own location.
// The input is never modified; applying DayStart to its own result returns the same instant.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayStartIn is DayStart evaluated in loc, so "today" follows the configured timezone
// rather than whatever location t happens to carry.
func DayStartIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return DayStart(t)
	}
	return DayStart(t.In(loc))
}

// OnOrAfter reports whether t falls on or after the given day boundary.
func OnOrAfter(t, dayStart time.Time) bool {
	return !t.Before(dayStart)
}
