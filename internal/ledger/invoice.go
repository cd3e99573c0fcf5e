package ledger

import (
	"fmt"
	"time"

	"finledger/internal/errs"
)

// InvoicePeriod is the billing window of a card for a given month. The window
// is half-open: an expense dated exactly on Start belongs to the prior
// invoice, one dated exactly on End belongs to this one.
type InvoicePeriod struct {
	// Start is the previous closing date (exclusive lower bound).
	Start time.Time
	// End is this month's closing date (inclusive upper bound).
	End time.Time
	// Due is when this invoice must be paid; always after End.
	Due time.Time
}

// Contains reports whether t falls within the period: Start < t <= End.
func (p InvoicePeriod) Contains(t time.Time) bool {
	return t.After(p.Start) && !t.After(p.End)
}

// ResolveInvoicePeriod computes the billing window of a card configured with
// closingDay/dueDay for the given month and year. Days beyond a month's length
// clamp to that month's last day (closing day 31 in February closes on
// Feb 28/29). When the due date would not fall after the closing date it
// advances one month: an invoice is always due after the period it settles.
func ResolveInvoicePeriod(closingDay, dueDay int, month time.Month, year int) (InvoicePeriod, error) {
	if closingDay < 1 || closingDay > 31 || dueDay < 1 || dueDay > 31 {
		return InvoicePeriod{}, fmt.Errorf("%w: closing and due days must be between 1 and 31", errs.ErrValidation)
	}
	if closingDay == dueDay {
		return InvoicePeriod{}, fmt.Errorf("%w: closing day must differ from due day", errs.ErrValidation)
	}
	if month < time.January || month > time.December {
		return InvoicePeriod{}, fmt.Errorf("%w: month must be between 1 and 12", errs.ErrValidation)
	}

	end := ClampedDate(year, month, closingDay)
	start := ClampedDate(year, month-1, closingDay)
	due := ClampedDate(year, month, dueDay)
	if !due.After(end) {
		due = AddMonths(due, 1)
	}
	return InvoicePeriod{Start: start, End: end, Due: due}, nil
}
