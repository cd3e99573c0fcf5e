package ledger

import "time"

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date for year/month with the day clamped to the last
// valid day of that month (so day 31 in February yields Feb 28/29 instead of
// rolling over into March, which is what naive time.Date arithmetic does).
func ClampedDate(year int, month time.Month, day int) time.Time {
	// normalize month overflow/underflow first so the clamp applies to the
	// month actually targeted
	norm := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	y, m := norm.Year(), norm.Month()
	if max := daysIn(y, m); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances t by n months preserving the day-of-month where the
// target month supports it, clamping to the last valid day otherwise
// (Jan 31 + 1 month = Feb 28, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return ClampedDate(y, m+time.Month(n), d)
}
