// Package account implements bank account, credit card and category
// management: per-owner unique names, card closing/due day rules,
// delta-preserving initial balance edits, and the referential guard that
// blocks deleting anything still referenced by incomes or expenses.
package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/storage"
)

// Service exposes the management operations consumed by the HTTP layer.
type Service interface {
	CreateBankAccount(ctx context.Context, in BankAccountInput) (ledger.BankAccount, error)
	ListBankAccounts(ctx context.Context, ownerID uuid.UUID) ([]ledger.BankAccount, error)
	GetBankAccount(ctx context.Context, ownerID, id uuid.UUID) (ledger.BankAccount, error)
	UpdateBankAccount(ctx context.Context, ownerID, id uuid.UUID, patch BankAccountPatch) (ledger.BankAccount, error)
	DeleteBankAccount(ctx context.Context, ownerID, id uuid.UUID) error

	CreateCreditCard(ctx context.Context, in CreditCardInput) (ledger.CreditCard, error)
	ListCreditCards(ctx context.Context, ownerID uuid.UUID) ([]ledger.CreditCard, error)
	GetCreditCard(ctx context.Context, ownerID, id uuid.UUID) (ledger.CreditCard, error)
	UpdateCreditCard(ctx context.Context, ownerID, id uuid.UUID, patch CreditCardPatch) (ledger.CreditCard, error)
	DeleteCreditCard(ctx context.Context, ownerID, id uuid.UUID) error

	CreateCategory(ctx context.Context, in CategoryInput) (ledger.Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ledger.Category, error)
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (ledger.Category, error)
	UpdateCategory(ctx context.Context, ownerID, id uuid.UUID, patch CategoryPatch) (ledger.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error
}

type service struct {
	store storage.TxStore
}

func New(store storage.TxStore) Service { return &service{store: store} }

// BankAccountInput carries the fields for a new bank account. The current
// balance always starts equal to the initial balance.
type BankAccountInput struct {
	OwnerID        uuid.UUID
	Name           string
	Kind           ledger.AccountKind
	InitialBalance money.Amount
}

// BankAccountPatch carries a partial edit; nil fields stay unchanged.
type BankAccountPatch struct {
	Name           *string
	Kind           *ledger.AccountKind
	InitialBalance *money.Amount
	Active         *bool
}

type CreditCardInput struct {
	OwnerID    uuid.UUID
	Name       string
	Brand      ledger.CardBrand
	Limit      money.Amount
	ClosingDay int
	DueDay     int
}

type CreditCardPatch struct {
	Name       *string
	Brand      *ledger.CardBrand
	Limit      *money.Amount
	ClosingDay *int
	DueDay     *int
	Active     *bool
}

type CategoryInput struct {
	OwnerID uuid.UUID
	Name    string
	Kind    ledger.CategoryKind
	Color   string
	Icon    string
}

type CategoryPatch struct {
	Name   *string
	Color  *string
	Icon   *string
	Active *bool
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, msg)
}

func conflictErr(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrConflict, msg)
}

// --- Bank accounts ---

func (s *service) CreateBankAccount(ctx context.Context, in BankAccountInput) (ledger.BankAccount, error) {
	if in.OwnerID == uuid.Nil {
		return ledger.BankAccount{}, validationErr("owner is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ledger.BankAccount{}, validationErr("name is required")
	}
	if !in.Kind.Valid() {
		return ledger.BankAccount{}, validationErr("unknown account kind")
	}
	if err := s.ensureBankNameFree(ctx, in.OwnerID, in.Name, uuid.Nil); err != nil {
		return ledger.BankAccount{}, err
	}
	acct := ledger.BankAccount{
		ID:             uuid.New(),
		OwnerID:        in.OwnerID,
		Name:           strings.TrimSpace(in.Name),
		Kind:           in.Kind,
		InitialBalance: in.InitialBalance,
		CurrentBalance: in.InitialBalance,
		Active:         true,
	}
	return s.store.CreateBankAccount(ctx, acct)
}

func (s *service) ListBankAccounts(ctx context.Context, ownerID uuid.UUID) ([]ledger.BankAccount, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	return s.store.ListBankAccounts(ctx, ownerID)
}

func (s *service) GetBankAccount(ctx context.Context, ownerID, id uuid.UUID) (ledger.BankAccount, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.BankAccount{}, validationErr("owner and id are required")
	}
	return s.store.GetBankAccount(ctx, ownerID, id)
}

// UpdateBankAccount applies descriptive edits. An initial-balance edit shifts
// the current balance by the same delta so the accumulated transaction effect
// is preserved rather than wiped.
func (s *service) UpdateBankAccount(ctx context.Context, ownerID, id uuid.UUID, patch BankAccountPatch) (ledger.BankAccount, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.BankAccount{}, validationErr("owner and id are required")
	}
	var updated ledger.BankAccount
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		acct, err := st.GetBankAccount(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.Name != nil && !strings.EqualFold(*patch.Name, acct.Name) {
			if strings.TrimSpace(*patch.Name) == "" {
				return validationErr("name is required")
			}
			if err := s.ensureBankNameFree(ctx, ownerID, *patch.Name, id); err != nil {
				return err
			}
			acct.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Kind != nil {
			if !patch.Kind.Valid() {
				return validationErr("unknown account kind")
			}
			acct.Kind = *patch.Kind
		}
		if patch.InitialBalance != nil {
			delta, err := patch.InitialBalance.Sub(acct.InitialBalance)
			if err != nil {
				return err
			}
			next, err := acct.CurrentBalance.Add(delta)
			if err != nil {
				return err
			}
			acct.InitialBalance = *patch.InitialBalance
			acct.CurrentBalance = next
		}
		if patch.Active != nil {
			acct.Active = *patch.Active
		}
		updated, err = st.UpdateBankAccount(ctx, acct)
		return err
	})
	if err != nil {
		return ledger.BankAccount{}, err
	}
	return updated, nil
}

// DeleteBankAccount removes the account unless incomes or expenses still
// reference it. The count and the delete share one transaction; in a
// cross-process postgres deployment a read-committed count can still miss a
// concurrent insert, a documented limitation of the single-writer-per-user
// model.
func (s *service) DeleteBankAccount(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return validationErr("owner and id are required")
	}
	return s.store.WithinTx(ctx, func(st storage.Store) error {
		if _, err := st.GetBankAccount(ctx, ownerID, id); err != nil {
			return err
		}
		incomes, err := st.CountIncomesByBank(ctx, ownerID, id)
		if err != nil {
			return err
		}
		expenses, err := st.CountExpensesByBank(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if incomes > 0 || expenses > 0 {
			return conflictErr(fmt.Sprintf("bank account has dependents: %d incomes, %d expenses", incomes, expenses))
		}
		return st.DeleteBankAccount(ctx, ownerID, id)
	})
}

func (s *service) ensureBankNameFree(ctx context.Context, ownerID uuid.UUID, name string, selfID uuid.UUID) error {
	existing, err := s.store.ListBankAccounts(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != selfID && strings.EqualFold(other.Name, strings.TrimSpace(name)) {
			return conflictErr("a bank account with this name already exists")
		}
	}
	return nil
}

// --- Credit cards ---

func (s *service) CreateCreditCard(ctx context.Context, in CreditCardInput) (ledger.CreditCard, error) {
	if in.OwnerID == uuid.Nil {
		return ledger.CreditCard{}, validationErr("owner is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ledger.CreditCard{}, validationErr("name is required")
	}
	if !in.Brand.Valid() {
		return ledger.CreditCard{}, validationErr("unknown card brand")
	}
	if err := validateCardDays(in.ClosingDay, in.DueDay); err != nil {
		return ledger.CreditCard{}, err
	}
	if minor, ok := in.Limit.MinorUnits(); !ok || minor < 0 {
		return ledger.CreditCard{}, validationErr("limit must not be negative")
	}
	if err := s.ensureCardNameFree(ctx, in.OwnerID, in.Name, uuid.Nil); err != nil {
		return ledger.CreditCard{}, err
	}
	zero, err := money.NewAmountFromMinorUnits(in.Limit.Curr().Code(), 0)
	if err != nil {
		return ledger.CreditCard{}, err
	}
	card := ledger.CreditCard{
		ID:             uuid.New(),
		OwnerID:        in.OwnerID,
		Name:           strings.TrimSpace(in.Name),
		Brand:          in.Brand,
		Limit:          in.Limit,
		InvoiceBalance: zero,
		ClosingDay:     in.ClosingDay,
		DueDay:         in.DueDay,
		Active:         true,
	}
	return s.store.CreateCreditCard(ctx, card)
}

func (s *service) ListCreditCards(ctx context.Context, ownerID uuid.UUID) ([]ledger.CreditCard, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	return s.store.ListCreditCards(ctx, ownerID)
}

func (s *service) GetCreditCard(ctx context.Context, ownerID, id uuid.UUID) (ledger.CreditCard, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.CreditCard{}, validationErr("owner and id are required")
	}
	return s.store.GetCreditCard(ctx, ownerID, id)
}

func (s *service) UpdateCreditCard(ctx context.Context, ownerID, id uuid.UUID, patch CreditCardPatch) (ledger.CreditCard, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.CreditCard{}, validationErr("owner and id are required")
	}
	var updated ledger.CreditCard
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		card, err := st.GetCreditCard(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.Name != nil && !strings.EqualFold(*patch.Name, card.Name) {
			if strings.TrimSpace(*patch.Name) == "" {
				return validationErr("name is required")
			}
			if err := s.ensureCardNameFree(ctx, ownerID, *patch.Name, id); err != nil {
				return err
			}
			card.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Brand != nil {
			if !patch.Brand.Valid() {
				return validationErr("unknown card brand")
			}
			card.Brand = *patch.Brand
		}
		if patch.Limit != nil {
			if minor, ok := patch.Limit.MinorUnits(); !ok || minor < 0 {
				return validationErr("limit must not be negative")
			}
			card.Limit = *patch.Limit
		}
		closing, due := card.ClosingDay, card.DueDay
		if patch.ClosingDay != nil {
			closing = *patch.ClosingDay
		}
		if patch.DueDay != nil {
			due = *patch.DueDay
		}
		if err := validateCardDays(closing, due); err != nil {
			return err
		}
		card.ClosingDay, card.DueDay = closing, due
		if patch.Active != nil {
			card.Active = *patch.Active
		}
		updated, err = st.UpdateCreditCard(ctx, card)
		return err
	})
	if err != nil {
		return ledger.CreditCard{}, err
	}
	return updated, nil
}

func (s *service) DeleteCreditCard(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return validationErr("owner and id are required")
	}
	return s.store.WithinTx(ctx, func(st storage.Store) error {
		if _, err := st.GetCreditCard(ctx, ownerID, id); err != nil {
			return err
		}
		expenses, err := st.CountExpensesByCard(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if expenses > 0 {
			return conflictErr(fmt.Sprintf("credit card has dependents: %d expenses", expenses))
		}
		return st.DeleteCreditCard(ctx, ownerID, id)
	})
}

func (s *service) ensureCardNameFree(ctx context.Context, ownerID uuid.UUID, name string, selfID uuid.UUID) error {
	existing, err := s.store.ListCreditCards(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != selfID && strings.EqualFold(other.Name, strings.TrimSpace(name)) {
			return conflictErr("a credit card with this name already exists")
		}
	}
	return nil
}

func validateCardDays(closing, due int) error {
	if closing < 1 || closing > 31 {
		return validationErr("closing day must be between 1 and 31")
	}
	if due < 1 || due > 31 {
		return validationErr("due day must be between 1 and 31")
	}
	if closing == due {
		return validationErr("closing day must differ from due day")
	}
	return nil
}

// --- Categories ---

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (ledger.Category, error) {
	if in.OwnerID == uuid.Nil {
		return ledger.Category{}, validationErr("owner is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ledger.Category{}, validationErr("name is required")
	}
	if !in.Kind.Valid() {
		return ledger.Category{}, validationErr("category kind must be income or expense")
	}
	if err := s.ensureCategoryNameFree(ctx, in.OwnerID, in.Name, uuid.Nil); err != nil {
		return ledger.Category{}, err
	}
	cat := ledger.Category{
		ID:      uuid.New(),
		OwnerID: in.OwnerID,
		Name:    strings.TrimSpace(in.Name),
		Kind:    in.Kind,
		Color:   in.Color,
		Icon:    in.Icon,
		Active:  true,
	}
	return s.store.CreateCategory(ctx, cat)
}

func (s *service) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ledger.Category, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	return s.store.ListCategories(ctx, ownerID)
}

func (s *service) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (ledger.Category, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.Category{}, validationErr("owner and id are required")
	}
	return s.store.GetCategory(ctx, ownerID, id)
}

// UpdateCategory applies descriptive edits. The kind is immutable: flipping an
// income category to expense would orphan the kind checks of every record
// already referencing it.
func (s *service) UpdateCategory(ctx context.Context, ownerID, id uuid.UUID, patch CategoryPatch) (ledger.Category, error) {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return ledger.Category{}, validationErr("owner and id are required")
	}
	var updated ledger.Category
	err := s.store.WithinTx(ctx, func(st storage.Store) error {
		cat, err := st.GetCategory(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.Name != nil && !strings.EqualFold(*patch.Name, cat.Name) {
			if strings.TrimSpace(*patch.Name) == "" {
				return validationErr("name is required")
			}
			if err := s.ensureCategoryNameFree(ctx, ownerID, *patch.Name, id); err != nil {
				return err
			}
			cat.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			cat.Color = *patch.Color
		}
		if patch.Icon != nil {
			cat.Icon = *patch.Icon
		}
		if patch.Active != nil {
			cat.Active = *patch.Active
		}
		updated, err = st.UpdateCategory(ctx, cat)
		return err
	})
	if err != nil {
		return ledger.Category{}, err
	}
	return updated, nil
}

func (s *service) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return validationErr("owner and id are required")
	}
	return s.store.WithinTx(ctx, func(st storage.Store) error {
		if _, err := st.GetCategory(ctx, ownerID, id); err != nil {
			return err
		}
		incomes, err := st.CountIncomesByCategory(ctx, ownerID, id)
		if err != nil {
			return err
		}
		expenses, err := st.CountExpensesByCategory(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if incomes > 0 || expenses > 0 {
			return conflictErr(fmt.Sprintf("category has dependents: %d incomes, %d expenses", incomes, expenses))
		}
		return st.DeleteCategory(ctx, ownerID, id)
	})
}

func (s *service) ensureCategoryNameFree(ctx context.Context, ownerID uuid.UUID, name string, selfID uuid.UUID) error {
	existing, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != selfID && strings.EqualFold(other.Name, strings.TrimSpace(name)) {
			return conflictErr("a category with this name already exists")
		}
	}
	return nil
}
