package ledger

import (
	"fmt"
	"time"

	"github.com/govalues/money"

	"finledger/internal/errs"
)

// Installment plans must have between 2 and 60 slices.
const (
	MinInstallments = 2
	MaxInstallments = 60
)

// PlanInstallments derives the dated, individually payable slices of an
// expense. Slices 1..count-1 carry the half-up rounded unit amount; the last
// slice absorbs the rounding residue so the amounts always sum exactly to
// total. Due date of slice i is the anchor advanced by i-1 months, day-of-month
// clamped to the target month. All slices start unpaid.
//
// The planner runs once, at creation. Installment plans are never re-planned:
// edits to a planned expense are rejected so already-paid slices cannot be
// reshuffled out from under the invoice balance.
func PlanInstallments(total money.Amount, anchor time.Time, count int) ([]Installment, error) {
	totalMinor, ok := total.MinorUnits()
	if !ok || totalMinor <= 0 {
		return nil, fmt.Errorf("%w: installment total must be positive", errs.ErrValidation)
	}
	if count < MinInstallments || count > MaxInstallments {
		return nil, fmt.Errorf("%w: installment count must be between %d and %d", errs.ErrValidation, MinInstallments, MaxInstallments)
	}
	curr := total.Curr().Code()

	// round(total/count) to the cent, half away from zero; total is positive
	unitMinor := (totalMinor + int64(count)/2) / int64(count)
	lastMinor := totalMinor - unitMinor*int64(count-1)
	if lastMinor <= 0 {
		// pathological totals (e.g. 3 cents in 60 slices) cannot be split
		// without zero or negative slices
		return nil, fmt.Errorf("%w: total too small for %d installments", errs.ErrValidation, count)
	}

	out := make([]Installment, 0, count)
	for i := 1; i <= count; i++ {
		minor := unitMinor
		if i == count {
			minor = lastMinor
		}
		amt, err := money.NewAmountFromMinorUnits(curr, minor)
		if err != nil {
			return nil, err
		}
		out = append(out, Installment{
			Number:  i,
			Amount:  amt,
			DueDate: AddMonths(anchor, i-1),
		})
	}
	return out, nil
}
