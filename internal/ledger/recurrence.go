package ledger

import "time"

// NextOccurrence returns the occurrence that follows last for the given
// period. Monthly and yearly steps clamp the day-of-month, so a recurrence
// anchored on Jan 31 lands on Feb 28 rather than sliding into March.
func NextOccurrence(last time.Time, period RecurrencePeriod) time.Time {
	switch period {
	case Daily:
		return last.AddDate(0, 0, 1)
	case Weekly:
		return last.AddDate(0, 0, 7)
	case Monthly:
		return AddMonths(last, 1)
	case Yearly:
		y, m, d := last.Date()
		return ClampedDate(y+1, m, d)
	}
	return last
}

// Project advances from a record's stored date until the next occurrence is
// strictly after today, then reports it if it falls within
// [today, today+horizonDays]. It is a pure projection for "upcoming" views and
// never mutates the record: the stored date stays the anchor forever.
func Project(start time.Time, period RecurrencePeriod, today time.Time, horizonDays int) (time.Time, bool) {
	if !period.Valid() || horizonDays < 0 {
		return time.Time{}, false
	}
	limit := today.AddDate(0, 0, horizonDays)
	next := NextOccurrence(start, period)
	for !next.After(today) {
		next = NextOccurrence(next, period)
	}
	if next.After(limit) {
		return time.Time{}, false
	}
	return next, true
}
