// Package memory provides a map-backed implementation of the storage contract
// used for development and tests. It keeps code paths easy to follow while
// allowing the postgres backend to be plugged in unchanged.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/storage"
)

// Store is an in-memory implementation of storage.TxStore. Individual
// operations are guarded by an RWMutex; WithinTx serializes whole mutation
// sequences behind a dedicated transaction lock. There is no rollback: the
// service layer validates before it mutates, so a mid-sequence failure can
// only come from the store itself, which here cannot fail.
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	users      map[uuid.UUID]struct{}
	banks      map[uuid.UUID]ledger.BankAccount
	cards      map[uuid.UUID]ledger.CreditCard
	categories map[uuid.UUID]ledger.Category
	incomes    map[uuid.UUID]ledger.Income
	expenses   map[uuid.UUID]ledger.Expense
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]struct{}),
		banks:      make(map[uuid.UUID]ledger.BankAccount),
		cards:      make(map[uuid.UUID]ledger.CreditCard),
		categories: make(map[uuid.UUID]ledger.Category),
		incomes:    make(map[uuid.UUID]ledger.Income),
		expenses:   make(map[uuid.UUID]ledger.Expense),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedUser(u ledger.User) { s.mu.Lock(); s.users[u.ID] = struct{}{}; s.mu.Unlock() }

// WithinTx runs fn atomically with respect to other WithinTx calls. All
// service-layer mutation sequences go through here.
func (s *Store) WithinTx(_ context.Context, fn func(storage.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// copyExpense detaches the slices and maps shared with callers.
func copyExpense(e ledger.Expense) ledger.Expense {
	out := e
	if e.Installments != nil {
		out.Installments = make([]ledger.Installment, len(e.Installments))
		copy(out.Installments, e.Installments)
	}
	out.Metadata = e.Metadata.Clone()
	return out
}

func copyIncome(in ledger.Income) ledger.Income {
	out := in
	out.Metadata = in.Metadata.Clone()
	return out
}

// --- Bank accounts ---

func (s *Store) ListBankAccounts(_ context.Context, ownerID uuid.UUID) ([]ledger.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.BankAccount, 0)
	for _, a := range s.banks {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) GetBankAccount(_ context.Context, ownerID, id uuid.UUID) (ledger.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.banks[id]
	if !ok || a.OwnerID != ownerID {
		return ledger.BankAccount{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) CreateBankAccount(_ context.Context, a ledger.BankAccount) (ledger.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banks[a.ID] = a
	return a, nil
}

func (s *Store) UpdateBankAccount(_ context.Context, a ledger.BankAccount) (ledger.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[a.ID]; !ok {
		return ledger.BankAccount{}, errs.ErrNotFound
	}
	s.banks[a.ID] = a
	return a, nil
}

func (s *Store) DeleteBankAccount(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.banks[id]
	if !ok || a.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.banks, id)
	return nil
}

// --- Credit cards ---

func (s *Store) ListCreditCards(_ context.Context, ownerID uuid.UUID) ([]ledger.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.CreditCard, 0)
	for _, c := range s.cards {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetCreditCard(_ context.Context, ownerID, id uuid.UUID) (ledger.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok || c.OwnerID != ownerID {
		return ledger.CreditCard{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCreditCard(_ context.Context, c ledger.CreditCard) (ledger.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCreditCard(_ context.Context, c ledger.CreditCard) (ledger.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; !ok {
		return ledger.CreditCard{}, errs.ErrNotFound
	}
	s.cards[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCreditCard(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok || c.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

// --- Categories ---

func (s *Store) ListCategories(_ context.Context, ownerID uuid.UUID) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Category, 0)
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id uuid.UUID) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return ledger.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return ledger.Category{}, errs.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- Incomes ---

func (s *Store) ListIncomes(_ context.Context, ownerID uuid.UUID) ([]ledger.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Income, 0)
	for _, in := range s.incomes {
		if in.OwnerID == ownerID {
			out = append(out, copyIncome(in))
		}
	}
	return out, nil
}

func (s *Store) GetIncome(_ context.Context, ownerID, id uuid.UUID) (ledger.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.incomes[id]
	if !ok || in.OwnerID != ownerID {
		return ledger.Income{}, errs.ErrNotFound
	}
	return copyIncome(in), nil
}

func (s *Store) CreateIncome(_ context.Context, in ledger.Income) (ledger.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes[in.ID] = copyIncome(in)
	return in, nil
}

func (s *Store) UpdateIncome(_ context.Context, in ledger.Income) (ledger.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incomes[in.ID]; !ok {
		return ledger.Income{}, errs.ErrNotFound
	}
	s.incomes[in.ID] = copyIncome(in)
	return in, nil
}

func (s *Store) DeleteIncome(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.incomes[id]
	if !ok || in.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.incomes, id)
	return nil
}

// --- Expenses ---

func (s *Store) ListExpenses(_ context.Context, ownerID uuid.UUID) ([]ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Expense, 0)
	for _, e := range s.expenses {
		if e.OwnerID == ownerID {
			out = append(out, copyExpense(e))
		}
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, ownerID, id uuid.UUID) (ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return ledger.Expense{}, errs.ErrNotFound
	}
	return copyExpense(e), nil
}

func (s *Store) CreateExpense(_ context.Context, e ledger.Expense) (ledger.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = copyExpense(e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e ledger.Expense) (ledger.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return ledger.Expense{}, errs.ErrNotFound
	}
	s.expenses[e.ID] = copyExpense(e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// --- Dependency counts ---

func (s *Store) CountIncomesByBank(_ context.Context, ownerID, bankID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, in := range s.incomes {
		if in.OwnerID == ownerID && in.BankAccountID == bankID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountExpensesByBank(_ context.Context, ownerID, bankID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.expenses {
		if e.OwnerID == ownerID && e.BankAccountID == bankID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountExpensesByCard(_ context.Context, ownerID, cardID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.expenses {
		if e.OwnerID == ownerID && e.CardID == cardID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountIncomesByCategory(_ context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, in := range s.incomes {
		if in.OwnerID == ownerID && in.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountExpensesByCategory(_ context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.expenses {
		if e.OwnerID == ownerID && e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
