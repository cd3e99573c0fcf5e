package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/meta"
)

// IncomeInput carries the validated fields for a new income.
type IncomeInput struct {
	OwnerID       uuid.UUID
	CategoryID    uuid.UUID
	BankAccountID uuid.UUID
	Description   string
	Amount        money.Amount
	Date          time.Time
	Recurring     bool
	Period        ledger.RecurrencePeriod
	Metadata      meta.Metadata
}

// IncomePatch carries a partial income edit; nil fields stay unchanged.
type IncomePatch struct {
	CategoryID    *uuid.UUID
	BankAccountID *uuid.UUID
	Description   *string
	Amount        *money.Amount
	Date          *time.Time
	Recurring     *bool
	Period        *ledger.RecurrencePeriod
	Metadata      meta.Metadata
}

// ExpenseInput carries the validated fields for a new expense.
// InstallmentCount of zero means a one-off; 2-60 requests a plan.
type ExpenseInput struct {
	OwnerID          uuid.UUID
	CategoryID       uuid.UUID
	BankAccountID    uuid.UUID
	CardID           uuid.UUID
	Method           ledger.PaymentMethod
	Description      string
	TotalAmount      money.Amount
	Date             time.Time
	InstallmentCount int
	Recurring        bool
	Period           ledger.RecurrencePeriod
	Metadata         meta.Metadata
}

// ExpensePatch carries a partial expense edit; nil fields stay unchanged.
// There is deliberately no way to patch installment fields: planned expenses
// reject full edits and plans are never re-planned.
type ExpensePatch struct {
	CategoryID    *uuid.UUID
	BankAccountID *uuid.UUID
	CardID        *uuid.UUID
	Method        *ledger.PaymentMethod
	Description   *string
	TotalAmount   *money.Amount
	Date          *time.Time
	Recurring     *bool
	Period        *ledger.RecurrencePeriod
	Metadata      meta.Metadata
}

func positive(a money.Amount) bool {
	minor, ok := a.MinorUnits()
	return ok && minor > 0
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, msg)
}

func (in IncomeInput) validate() error {
	if in.OwnerID == uuid.Nil {
		return validationErr("owner is required")
	}
	if in.CategoryID == uuid.Nil {
		return validationErr("category is required")
	}
	if in.BankAccountID == uuid.Nil {
		return validationErr("bank account is required")
	}
	if in.Description == "" {
		return validationErr("description is required")
	}
	if !positive(in.Amount) {
		return validationErr("amount must be greater than zero")
	}
	if in.Date.IsZero() {
		return validationErr("date is required")
	}
	if in.Recurring && !in.Period.Valid() {
		return validationErr("unknown recurrence period")
	}
	if err := in.Metadata.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return nil
}

func (in ExpenseInput) validate() error {
	if in.OwnerID == uuid.Nil {
		return validationErr("owner is required")
	}
	if in.CategoryID == uuid.Nil {
		return validationErr("category is required")
	}
	if !in.Method.Valid() {
		return validationErr("unknown payment method")
	}
	if in.Method.UsesBank() && in.BankAccountID == uuid.Nil {
		return validationErr("bank account is required for " + string(in.Method))
	}
	if in.Method.UsesCard() && in.CardID == uuid.Nil {
		return validationErr("credit card is required for " + string(in.Method))
	}
	if in.Description == "" {
		return validationErr("description is required")
	}
	if !positive(in.TotalAmount) {
		return validationErr("total amount must be greater than zero")
	}
	if in.Date.IsZero() {
		return validationErr("date is required")
	}
	if in.InstallmentCount != 0 && in.Recurring {
		return validationErr("an expense cannot be both installment-based and recurring")
	}
	if in.InstallmentCount != 0 && (in.InstallmentCount < ledger.MinInstallments || in.InstallmentCount > ledger.MaxInstallments) {
		return validationErr("installment count must be between 2 and 60")
	}
	if in.Recurring && !in.Period.Valid() {
		return validationErr("unknown recurrence period")
	}
	if err := in.Metadata.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return nil
}

// merge applies the patch onto a copy of the stored income.
func (p IncomePatch) merge(old ledger.Income) ledger.Income {
	out := old
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.BankAccountID != nil {
		out.BankAccountID = *p.BankAccountID
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Recurring != nil {
		out.Recurring = *p.Recurring
	}
	if p.Period != nil {
		out.Period = *p.Period
	}
	if p.Metadata != nil {
		out.Metadata = p.Metadata.Clone()
	}
	return out
}

// merge applies the patch onto a copy of the stored expense, clearing the
// reference the merged payment method no longer uses so dependency counts
// stay honest.
func (p ExpensePatch) merge(old ledger.Expense) ledger.Expense {
	out := old
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.BankAccountID != nil {
		out.BankAccountID = *p.BankAccountID
	}
	if p.CardID != nil {
		out.CardID = *p.CardID
	}
	if p.Method != nil {
		out.Method = *p.Method
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.TotalAmount != nil {
		out.TotalAmount = *p.TotalAmount
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Recurring != nil {
		out.Recurring = *p.Recurring
	}
	if p.Period != nil {
		out.Period = *p.Period
	}
	if p.Metadata != nil {
		out.Metadata = p.Metadata.Clone()
	}
	if out.Method.UsesCard() {
		out.BankAccountID = uuid.Nil
	} else {
		out.CardID = uuid.Nil
	}
	return out
}
