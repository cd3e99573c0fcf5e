// Package storage declares the ownership-scoped persistence contract shared by
// the memory and postgres backends. Every read and write is keyed by the owner
// so one user can never observe or mutate another user's records.
package storage

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/ledger"
)

// Store is the repository surface consumed by the service layer.
type Store interface {
	// Bank accounts
	ListBankAccounts(ctx context.Context, ownerID uuid.UUID) ([]ledger.BankAccount, error)
	GetBankAccount(ctx context.Context, ownerID, id uuid.UUID) (ledger.BankAccount, error)
	CreateBankAccount(ctx context.Context, a ledger.BankAccount) (ledger.BankAccount, error)
	UpdateBankAccount(ctx context.Context, a ledger.BankAccount) (ledger.BankAccount, error)
	DeleteBankAccount(ctx context.Context, ownerID, id uuid.UUID) error

	// Credit cards
	ListCreditCards(ctx context.Context, ownerID uuid.UUID) ([]ledger.CreditCard, error)
	GetCreditCard(ctx context.Context, ownerID, id uuid.UUID) (ledger.CreditCard, error)
	CreateCreditCard(ctx context.Context, c ledger.CreditCard) (ledger.CreditCard, error)
	UpdateCreditCard(ctx context.Context, c ledger.CreditCard) (ledger.CreditCard, error)
	DeleteCreditCard(ctx context.Context, ownerID, id uuid.UUID) error

	// Categories
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ledger.Category, error)
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (ledger.Category, error)
	CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error

	// Incomes
	ListIncomes(ctx context.Context, ownerID uuid.UUID) ([]ledger.Income, error)
	GetIncome(ctx context.Context, ownerID, id uuid.UUID) (ledger.Income, error)
	CreateIncome(ctx context.Context, in ledger.Income) (ledger.Income, error)
	UpdateIncome(ctx context.Context, in ledger.Income) (ledger.Income, error)
	DeleteIncome(ctx context.Context, ownerID, id uuid.UUID) error

	// Expenses
	ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]ledger.Expense, error)
	GetExpense(ctx context.Context, ownerID, id uuid.UUID) (ledger.Expense, error)
	CreateExpense(ctx context.Context, e ledger.Expense) (ledger.Expense, error)
	UpdateExpense(ctx context.Context, e ledger.Expense) (ledger.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error

	// Dependency counts backing the referential guard
	CountIncomesByBank(ctx context.Context, ownerID, bankID uuid.UUID) (int, error)
	CountExpensesByBank(ctx context.Context, ownerID, bankID uuid.UUID) (int, error)
	CountExpensesByCard(ctx context.Context, ownerID, cardID uuid.UUID) (int, error)
	CountIncomesByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error)
	CountExpensesByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error)
}

// TxStore runs a function atomically. The memory backend serializes
// transactions behind a store-wide lock; the postgres backend opens a real
// transaction and hands fn a Store bound to it. Multi-entity mutations
// (reverse -> persist -> reapply, count -> delete) must go through WithinTx so
// a failure or timeout never leaves a reversed-but-not-reapplied state.
type TxStore interface {
	Store
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// ReceiptStore removes stored receipt files when their owning record is
// deleted. Upload and serving are outside the engine; it only needs cleanup.
type ReceiptStore interface {
	Remove(ctx context.Context, ref string) error
}
