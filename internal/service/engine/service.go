// Package engine implements the ledger consistency rules: every income or
// expense mutation applies its monetary effect to exactly one target balance,
// edits reverse the old effect before reapplying the new one, and deletions
// reverse what is actually still outstanding. All multi-entity steps run
// inside the store transaction under a per-owner lock.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/meta"
	"finledger/internal/storage"
)

// Service exposes the engine operations consumed by the HTTP layer.
type Service interface {
	CreateIncome(ctx context.Context, in IncomeInput) (ledger.Income, error)
	UpdateIncome(ctx context.Context, ownerID, id uuid.UUID, patch IncomePatch) (ledger.Income, error)
	DeleteIncome(ctx context.Context, ownerID, id uuid.UUID) error

	CreateExpense(ctx context.Context, in ExpenseInput) (ledger.Expense, error)
	UpdateExpense(ctx context.Context, ownerID, id uuid.UUID, patch ExpensePatch) (ledger.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error

	SetInstallmentPaid(ctx context.Context, ownerID, expenseID uuid.UUID, index int, paid bool, paidAt *time.Time) (InstallmentUpdate, error)

	Invoice(ctx context.Context, ownerID, cardID uuid.UUID, month time.Month, year int) (InvoiceView, error)
	UpcomingInstallments(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingInstallment, error)
	UpcomingRecurringIncomes(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingIncome, error)
	NextDueDates(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingDueDate, error)
}

type service struct {
	store    storage.TxStore
	receipts storage.ReceiptStore
	locks    ownerLocks
	now      func() time.Time
}

// New constructs the engine over a transactional store. receipts may be nil
// when no attachment store is configured.
func New(store storage.TxStore, receipts storage.ReceiptStore) Service {
	return &service{store: store, receipts: receipts, now: time.Now}
}

// checkCategory ensures the referenced category exists, belongs to the owner
// and has the expected kind.
func checkCategory(ctx context.Context, st storage.Store, ownerID, id uuid.UUID, kind ledger.CategoryKind) error {
	cat, err := st.GetCategory(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if cat.Kind != kind {
		return fmt.Errorf("%w: category %q is not a %s category", errs.ErrValidation, cat.Name, kind)
	}
	return nil
}

// checkCurrency rejects an amount denominated differently than the balance it
// would be applied to. Mismatches must surface before any balance mutation.
func checkCurrency(amount, balance money.Amount) error {
	if amount.Curr().Code() != balance.Curr().Code() {
		return fmt.Errorf("%w: amount currency %s does not match target currency %s",
			errs.ErrValidation, amount.Curr().Code(), balance.Curr().Code())
	}
	return nil
}

// checkTarget ensures the expense's resolved target entity exists and is
// denominated in the expense's currency.
func checkTarget(ctx context.Context, st storage.Store, ownerID uuid.UUID, e ledger.Expense) error {
	if e.Method.UsesCard() {
		card, err := st.GetCreditCard(ctx, ownerID, e.CardID)
		if err != nil {
			return err
		}
		return checkCurrency(e.TotalAmount, card.InvoiceBalance)
	}
	acc, err := st.GetBankAccount(ctx, ownerID, e.BankAccountID)
	if err != nil {
		return err
	}
	return checkCurrency(e.TotalAmount, acc.CurrentBalance)
}

func (s *service) CreateIncome(ctx context.Context, in IncomeInput) (ledger.Income, error) {
	if err := in.validate(); err != nil {
		return ledger.Income{}, err
	}
	unlock := s.locks.lock(in.OwnerID)
	defer unlock()

	var created ledger.Income
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		if err := checkCategory(ctx, st, in.OwnerID, in.CategoryID, ledger.CategoryIncome); err != nil {
			return err
		}
		acc, err := st.GetBankAccount(ctx, in.OwnerID, in.BankAccountID)
		if err != nil {
			return err
		}
		if err := checkCurrency(in.Amount, acc.CurrentBalance); err != nil {
			return err
		}
		inc := ledger.Income{
			ID:            uuid.New(),
			OwnerID:       in.OwnerID,
			CategoryID:    in.CategoryID,
			BankAccountID: in.BankAccountID,
			Description:   in.Description,
			Amount:        in.Amount,
			Date:          in.Date,
			Recurring:     in.Recurring,
			Period:        in.Period,
			Metadata:      in.Metadata.Clone(),
		}
		if created, err = st.CreateIncome(ctx, inc); err != nil {
			return err
		}
		return applyEffect(ctx, st, in.OwnerID, incomeEffect(created))
	})
	if err != nil {
		return ledger.Income{}, err
	}
	return created, nil
}

func (s *service) UpdateIncome(ctx context.Context, ownerID, id uuid.UUID, patch IncomePatch) (ledger.Income, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.Income{}, validationErr("owner and id are required")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var updated ledger.Income
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		old, err := st.GetIncome(ctx, ownerID, id)
		if err != nil {
			return err
		}
		merged := patch.merge(old)
		if !positive(merged.Amount) {
			return validationErr("amount must be greater than zero")
		}
		if merged.Recurring && !merged.Period.Valid() {
			return validationErr("unknown recurrence period")
		}
		if err := merged.Metadata.Validate(); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrValidation, err)
		}
		if err := checkCategory(ctx, st, ownerID, merged.CategoryID, ledger.CategoryIncome); err != nil {
			return err
		}
		acc, err := st.GetBankAccount(ctx, ownerID, merged.BankAccountID)
		if err != nil {
			return err
		}
		if err := checkCurrency(merged.Amount, acc.CurrentBalance); err != nil {
			return err
		}
		// Reverse the old effect on the old target, persist, then apply the
		// new effect on the new target. Both banks are touched when the
		// referenced account changed.
		if err := reverseEffect(ctx, st, ownerID, incomeEffect(old)); err != nil {
			return err
		}
		if updated, err = st.UpdateIncome(ctx, merged); err != nil {
			return err
		}
		return applyEffect(ctx, st, ownerID, incomeEffect(updated))
	})
	if err != nil {
		return ledger.Income{}, err
	}
	return updated, nil
}

func (s *service) DeleteIncome(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return validationErr("owner and id are required")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	return s.store.WithinTx(ctx, func(st storage.Store) error {
		inc, err := st.GetIncome(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := reverseEffect(ctx, st, ownerID, incomeEffect(inc)); err != nil {
			return err
		}
		s.removeReceipt(ctx, inc.Metadata)
		return st.DeleteIncome(ctx, ownerID, id)
	})
}

func (s *service) CreateExpense(ctx context.Context, in ExpenseInput) (ledger.Expense, error) {
	if err := in.validate(); err != nil {
		return ledger.Expense{}, err
	}
	unlock := s.locks.lock(in.OwnerID)
	defer unlock()

	var created ledger.Expense
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		if err := checkCategory(ctx, st, in.OwnerID, in.CategoryID, ledger.CategoryExpense); err != nil {
			return err
		}
		exp := ledger.Expense{
			ID:            uuid.New(),
			OwnerID:       in.OwnerID,
			CategoryID:    in.CategoryID,
			BankAccountID: in.BankAccountID,
			CardID:        in.CardID,
			Method:        in.Method,
			Description:   in.Description,
			TotalAmount:   in.TotalAmount,
			Date:          in.Date,
			Recurring:     in.Recurring,
			Period:        in.Period,
			Metadata:      in.Metadata.Clone(),
		}
		if in.Method.UsesCard() {
			exp.BankAccountID = uuid.Nil
		} else {
			exp.CardID = uuid.Nil
		}
		if err := checkTarget(ctx, st, in.OwnerID, exp); err != nil {
			return err
		}
		if in.InstallmentCount != 0 {
			plan, err := ledger.PlanInstallments(in.TotalAmount, in.Date, in.InstallmentCount)
			if err != nil {
				return err
			}
			exp.Installment = true
			exp.InstallmentCount = in.InstallmentCount
			exp.Installments = plan
		}
		var err error
		if created, err = st.CreateExpense(ctx, exp); err != nil {
			return err
		}
		return applyEffect(ctx, st, in.OwnerID, expenseEffect(created))
	})
	if err != nil {
		return ledger.Expense{}, err
	}
	return created, nil
}

func (s *service) UpdateExpense(ctx context.Context, ownerID, id uuid.UUID, patch ExpensePatch) (ledger.Expense, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.Expense{}, validationErr("owner and id are required")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var updated ledger.Expense
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		old, err := st.GetExpense(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if old.Installment {
			// A retroactive total/method/target change would diverge from the
			// already-applied invoice balance; only individual installments
			// may be toggled.
			return fmt.Errorf("%w: installment-based expenses can only be changed through their installments", errs.ErrConflict)
		}
		merged := patch.merge(old)
		if !merged.Method.Valid() {
			return validationErr("unknown payment method")
		}
		if merged.Method.UsesBank() && merged.BankAccountID == uuid.Nil {
			return validationErr("bank account is required for " + string(merged.Method))
		}
		if merged.Method.UsesCard() && merged.CardID == uuid.Nil {
			return validationErr("credit card is required for " + string(merged.Method))
		}
		if !positive(merged.TotalAmount) {
			return validationErr("total amount must be greater than zero")
		}
		if merged.Recurring && !merged.Period.Valid() {
			return validationErr("unknown recurrence period")
		}
		if err := merged.Metadata.Validate(); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrValidation, err)
		}
		if err := checkCategory(ctx, st, ownerID, merged.CategoryID, ledger.CategoryExpense); err != nil {
			return err
		}
		if err := checkTarget(ctx, st, ownerID, merged); err != nil {
			return err
		}
		if err := reverseEffect(ctx, st, ownerID, expenseEffect(old)); err != nil {
			return err
		}
		if updated, err = st.UpdateExpense(ctx, merged); err != nil {
			return err
		}
		return applyEffect(ctx, st, ownerID, expenseEffect(updated))
	})
	if err != nil {
		return ledger.Expense{}, err
	}
	return updated, nil
}

func (s *service) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return validationErr("owner and id are required")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	return s.store.WithinTx(ctx, func(st storage.Store) error {
		exp, err := st.GetExpense(ctx, ownerID, id)
		if err != nil {
			return err
		}
		ef, err := expenseReversalEffect(exp)
		if err != nil {
			return err
		}
		if err := applyEffect(ctx, st, ownerID, ef); err != nil {
			return err
		}
		s.removeReceipt(ctx, exp.Metadata)
		return st.DeleteExpense(ctx, ownerID, id)
	})
}

// InstallmentUpdate reports the result of toggling an installment.
type InstallmentUpdate struct {
	Installment ledger.Installment
	PaidCount   int
	Total       int
}

// SetInstallmentPaid toggles one installment between unpaid and paid. Paying
// settles the installment amount against the card invoice balance, unpaying
// charges it back. Toggling to the current state is a no-op, not an error.
// For a non-credit expense the toggle is persisted but has no balance effect.
func (s *service) SetInstallmentPaid(ctx context.Context, ownerID, expenseID uuid.UUID, index int, paid bool, paidAt *time.Time) (InstallmentUpdate, error) {
	if ownerID == uuid.Nil || expenseID == uuid.Nil {
		return InstallmentUpdate{}, validationErr("owner and id are required")
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	var out InstallmentUpdate
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		exp, err := st.GetExpense(ctx, ownerID, expenseID)
		if err != nil {
			return err
		}
		if !exp.Installment {
			return fmt.Errorf("%w: expense has no installment plan", errs.ErrState)
		}
		if index < 0 || index >= len(exp.Installments) {
			return fmt.Errorf("%w: installment index %d out of range", errs.ErrState, index)
		}
		ins := exp.Installments[index]
		if ins.Paid == paid {
			out = InstallmentUpdate{Installment: ins, PaidCount: exp.PaidCount(), Total: len(exp.Installments)}
			return nil
		}
		ins.Paid = paid
		if paid {
			when := s.now().UTC()
			if paidAt != nil {
				when = *paidAt
			}
			ins.PaidAt = &when
		} else {
			ins.PaidAt = nil
		}
		exp.Installments[index] = ins
		if _, err := st.UpdateExpense(ctx, exp); err != nil {
			return err
		}
		if exp.Method.UsesCard() && exp.CardID != uuid.Nil {
			dir := cardSettle
			if !paid {
				dir = cardCharge
			}
			if err := applyEffect(ctx, st, ownerID, effect{dir: dir, targetID: exp.CardID, amount: ins.Amount}); err != nil {
				return err
			}
		}
		out = InstallmentUpdate{Installment: ins, PaidCount: exp.PaidCount(), Total: len(exp.Installments)}
		return nil
	})
	if err != nil {
		return InstallmentUpdate{}, err
	}
	return out, nil
}

// removeReceipt deletes the record's stored receipt file, if any. Cleanup is
// best effort: a missing file must not block the delete.
func (s *service) removeReceipt(ctx context.Context, md meta.Metadata) {
	if s.receipts == nil {
		return
	}
	if ref, ok := md.Receipt(); ok && ref != "" {
		_ = s.receipts.Remove(ctx, ref)
	}
}
