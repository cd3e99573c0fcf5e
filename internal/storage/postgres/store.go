package postgres

// Package postgres provides a pgx-backed storage implementation satisfying the
// storage contract used by the service layer.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under migrations/. This package focuses on mapping between the
// domain entities and SQL rows; amounts are stored as minor units plus an ISO
// currency code, mirroring the wire representation.

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/meta"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Store
// methods run against it so the same code serves pooled and transactional use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store holds a pgx connection pool and implements storage.TxStore. All
// methods are safe for concurrent use.
type Store struct {
	db   querier
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil { return nil, err }
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil { return nil, err }
	if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
	return &Store{db: pool, pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// amount maps a (currency, minor) row pair back to a money.Amount.
func amount(curr string, minor int64) money.Amount {
	a, _ := money.NewAmountFromMinorUnits(curr, minor)
	return a
}

// minor extracts the minor-unit magnitude for storage.
func minor(a money.Amount) int64 {
	m, _ := a.MinorUnits()
	return m
}

// nilUUID maps uuid.Nil to SQL null for optional references.
func nilUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil { return nil }
	return &id
}

func fromNilUUID(p *uuid.UUID) uuid.UUID {
	if p == nil { return uuid.Nil }
	return *p
}

func unmarshalMeta(b []byte) meta.Metadata {
	if len(b) == 0 { return nil }
	var m meta.Metadata
	if err := m.UnmarshalJSON(b); err != nil { return nil }
	return m
}

// --- Bank accounts ---

const bankCols = `id, owner_id, name, kind, currency, initial_minor, current_minor, active`

func scanBank(row pgx.Row) (ledger.BankAccount, error) {
	var a ledger.BankAccount
	var curr string
	var initMinor, curMinor int64
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Kind, &curr, &initMinor, &curMinor, &a.Active)
	if err != nil { return ledger.BankAccount{}, err }
	a.InitialBalance = amount(curr, initMinor)
	a.CurrentBalance = amount(curr, curMinor)
	return a, nil
}

func (s *Store) ListBankAccounts(ctx context.Context, ownerID uuid.UUID) ([]ledger.BankAccount, error) {
	rows, err := s.db.Query(ctx, `
		select `+bankCols+` from bank_accounts where owner_id = $1 order by name
	`, ownerID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.BankAccount, 0)
	for rows.Next() {
		a, err := scanBank(rows)
		if err != nil { return nil, err }
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetBankAccount(ctx context.Context, ownerID, id uuid.UUID) (ledger.BankAccount, error) {
	a, err := scanBank(s.db.QueryRow(ctx, `
		select `+bankCols+` from bank_accounts where id = $1 and owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) { return ledger.BankAccount{}, errs.ErrNotFound }
	return a, err
}

func (s *Store) CreateBankAccount(ctx context.Context, a ledger.BankAccount) (ledger.BankAccount, error) {
	_, err := s.db.Exec(ctx, `
		insert into bank_accounts (id, owner_id, name, kind, currency, initial_minor, current_minor, active)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.OwnerID, a.Name, a.Kind, a.CurrentBalance.Curr().Code(), minor(a.InitialBalance), minor(a.CurrentBalance), a.Active)
	if err != nil { return ledger.BankAccount{}, err }
	return a, nil
}

func (s *Store) UpdateBankAccount(ctx context.Context, a ledger.BankAccount) (ledger.BankAccount, error) {
	ct, err := s.db.Exec(ctx, `
		update bank_accounts
		set name=$1, kind=$2, initial_minor=$3, current_minor=$4, active=$5
		where id=$6 and owner_id=$7
	`, a.Name, a.Kind, minor(a.InitialBalance), minor(a.CurrentBalance), a.Active, a.ID, a.OwnerID)
	if err != nil { return ledger.BankAccount{}, err }
	if ct.RowsAffected() == 0 { return ledger.BankAccount{}, errs.ErrNotFound }
	return a, nil
}

func (s *Store) DeleteBankAccount(ctx context.Context, ownerID, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `delete from bank_accounts where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return nil
}

// --- Credit cards ---

const cardCols = `id, owner_id, name, brand, currency, limit_minor, invoice_minor, closing_day, due_day, active`

func scanCard(row pgx.Row) (ledger.CreditCard, error) {
	var c ledger.CreditCard
	var curr string
	var limitMinor, invoiceMinor int64
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Brand, &curr, &limitMinor, &invoiceMinor, &c.ClosingDay, &c.DueDay, &c.Active)
	if err != nil { return ledger.CreditCard{}, err }
	c.Limit = amount(curr, limitMinor)
	c.InvoiceBalance = amount(curr, invoiceMinor)
	return c, nil
}

func (s *Store) ListCreditCards(ctx context.Context, ownerID uuid.UUID) ([]ledger.CreditCard, error) {
	rows, err := s.db.Query(ctx, `
		select `+cardCols+` from credit_cards where owner_id = $1 order by name
	`, ownerID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.CreditCard, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil { return nil, err }
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCreditCard(ctx context.Context, ownerID, id uuid.UUID) (ledger.CreditCard, error) {
	c, err := scanCard(s.db.QueryRow(ctx, `
		select `+cardCols+` from credit_cards where id = $1 and owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) { return ledger.CreditCard{}, errs.ErrNotFound }
	return c, err
}

func (s *Store) CreateCreditCard(ctx context.Context, c ledger.CreditCard) (ledger.CreditCard, error) {
	_, err := s.db.Exec(ctx, `
		insert into credit_cards (id, owner_id, name, brand, currency, limit_minor, invoice_minor, closing_day, due_day, active)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, c.ID, c.OwnerID, c.Name, c.Brand, c.Limit.Curr().Code(), minor(c.Limit), minor(c.InvoiceBalance), c.ClosingDay, c.DueDay, c.Active)
	if err != nil { return ledger.CreditCard{}, err }
	return c, nil
}

func (s *Store) UpdateCreditCard(ctx context.Context, c ledger.CreditCard) (ledger.CreditCard, error) {
	ct, err := s.db.Exec(ctx, `
		update credit_cards
		set name=$1, brand=$2, limit_minor=$3, invoice_minor=$4, closing_day=$5, due_day=$6, active=$7
		where id=$8 and owner_id=$9
	`, c.Name, c.Brand, minor(c.Limit), minor(c.InvoiceBalance), c.ClosingDay, c.DueDay, c.Active, c.ID, c.OwnerID)
	if err != nil { return ledger.CreditCard{}, err }
	if ct.RowsAffected() == 0 { return ledger.CreditCard{}, errs.ErrNotFound }
	return c, nil
}

func (s *Store) DeleteCreditCard(ctx context.Context, ownerID, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `delete from credit_cards where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return nil
}

// --- Categories ---

const categoryCols = `id, owner_id, name, kind, color, icon, active`

func scanCategory(row pgx.Row) (ledger.Category, error) {
	var c ledger.Category
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Kind, &c.Color, &c.Icon, &c.Active)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]ledger.Category, error) {
	rows, err := s.db.Query(ctx, `
		select `+categoryCols+` from categories where owner_id = $1 order by kind, name
	`, ownerID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil { return nil, err }
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (ledger.Category, error) {
	c, err := scanCategory(s.db.QueryRow(ctx, `
		select `+categoryCols+` from categories where id = $1 and owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Category{}, errs.ErrNotFound }
	return c, err
}

func (s *Store) CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	_, err := s.db.Exec(ctx, `
		insert into categories (id, owner_id, name, kind, color, icon, active)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, c.ID, c.OwnerID, c.Name, c.Kind, c.Color, c.Icon, c.Active)
	if err != nil { return ledger.Category{}, err }
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	ct, err := s.db.Exec(ctx, `
		update categories set name=$1, color=$2, icon=$3, active=$4 where id=$5 and owner_id=$6
	`, c.Name, c.Color, c.Icon, c.Active, c.ID, c.OwnerID)
	if err != nil { return ledger.Category{}, err }
	if ct.RowsAffected() == 0 { return ledger.Category{}, errs.ErrNotFound }
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `delete from categories where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return nil
}

// --- Incomes ---

const incomeCols = `id, owner_id, category_id, bank_account_id, description, currency, amount_minor, date, recurring, period, metadata`

func scanIncome(row pgx.Row) (ledger.Income, error) {
	var in ledger.Income
	var curr string
	var amtMinor int64
	var period *string
	var mdBytes []byte
	err := row.Scan(&in.ID, &in.OwnerID, &in.CategoryID, &in.BankAccountID, &in.Description, &curr, &amtMinor, &in.Date, &in.Recurring, &period, &mdBytes)
	if err != nil { return ledger.Income{}, err }
	in.Amount = amount(curr, amtMinor)
	if period != nil { in.Period = ledger.RecurrencePeriod(*period) }
	in.Metadata = unmarshalMeta(mdBytes)
	return in, nil
}

func periodArg(p ledger.RecurrencePeriod) *string {
	if p == "" { return nil }
	s := string(p)
	return &s
}

func (s *Store) ListIncomes(ctx context.Context, ownerID uuid.UUID) ([]ledger.Income, error) {
	rows, err := s.db.Query(ctx, `
		select `+incomeCols+` from incomes where owner_id = $1 order by date asc, id asc
	`, ownerID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.Income, 0)
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil { return nil, err }
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) GetIncome(ctx context.Context, ownerID, id uuid.UUID) (ledger.Income, error) {
	in, err := scanIncome(s.db.QueryRow(ctx, `
		select `+incomeCols+` from incomes where id = $1 and owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Income{}, errs.ErrNotFound }
	return in, err
}

func (s *Store) CreateIncome(ctx context.Context, in ledger.Income) (ledger.Income, error) {
	md, _ := in.Metadata.MarshalStableJSON()
	_, err := s.db.Exec(ctx, `
		insert into incomes (id, owner_id, category_id, bank_account_id, description, currency, amount_minor, date, recurring, period, metadata)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, in.ID, in.OwnerID, in.CategoryID, in.BankAccountID, in.Description, in.Amount.Curr().Code(), minor(in.Amount), in.Date, in.Recurring, periodArg(in.Period), md)
	if err != nil { return ledger.Income{}, err }
	return in, nil
}

func (s *Store) UpdateIncome(ctx context.Context, in ledger.Income) (ledger.Income, error) {
	md, _ := in.Metadata.MarshalStableJSON()
	ct, err := s.db.Exec(ctx, `
		update incomes
		set category_id=$1, bank_account_id=$2, description=$3, currency=$4, amount_minor=$5, date=$6, recurring=$7, period=$8, metadata=$9
		where id=$10 and owner_id=$11
	`, in.CategoryID, in.BankAccountID, in.Description, in.Amount.Curr().Code(), minor(in.Amount), in.Date, in.Recurring, periodArg(in.Period), md, in.ID, in.OwnerID)
	if err != nil { return ledger.Income{}, err }
	if ct.RowsAffected() == 0 { return ledger.Income{}, errs.ErrNotFound }
	return in, nil
}

func (s *Store) DeleteIncome(ctx context.Context, ownerID, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `delete from incomes where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return nil
}

// --- Expenses ---

const expenseCols = `id, owner_id, category_id, bank_account_id, card_id, method, description, currency, total_minor, date, installment, installment_count, recurring, period, metadata`

func scanExpense(row pgx.Row) (ledger.Expense, error) {
	var e ledger.Expense
	var bankID, cardID *uuid.UUID
	var curr string
	var totMinor int64
	var period *string
	var mdBytes []byte
	err := row.Scan(&e.ID, &e.OwnerID, &e.CategoryID, &bankID, &cardID, &e.Method, &e.Description, &curr, &totMinor, &e.Date, &e.Installment, &e.InstallmentCount, &e.Recurring, &period, &mdBytes)
	if err != nil { return ledger.Expense{}, err }
	e.BankAccountID = fromNilUUID(bankID)
	e.CardID = fromNilUUID(cardID)
	e.TotalAmount = amount(curr, totMinor)
	if period != nil { e.Period = ledger.RecurrencePeriod(*period) }
	e.Metadata = unmarshalMeta(mdBytes)
	return e, nil
}

// loadInstallments attaches plan rows to the given expenses, keyed by id.
func (s *Store) loadInstallments(ctx context.Context, curr map[uuid.UUID]string, idx map[uuid.UUID]*ledger.Expense) error {
	if len(idx) == 0 { return nil }
	ids := make([]uuid.UUID, 0, len(idx))
	for id := range idx { ids = append(ids, id) }
	rows, err := s.db.Query(ctx, `
		select expense_id, number, amount_minor, due_date, paid, paid_at
		from expense_installments
		where expense_id = any($1)
		order by expense_id, number
	`, ids)
	if err != nil { return err }
	defer rows.Close()
	for rows.Next() {
		var expenseID uuid.UUID
		var inst ledger.Installment
		var amtMinor int64
		var paidAt *time.Time
		if err := rows.Scan(&expenseID, &inst.Number, &amtMinor, &inst.DueDate, &inst.Paid, &paidAt); err != nil { return err }
		e := idx[expenseID]
		if e == nil { continue }
		inst.Amount = amount(curr[expenseID], amtMinor)
		inst.PaidAt = paidAt
		e.Installments = append(e.Installments, inst)
	}
	return rows.Err()
}

func (s *Store) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]ledger.Expense, error) {
	rows, err := s.db.Query(ctx, `
		select `+expenseCols+` from expenses where owner_id = $1 order by date asc, id asc
	`, ownerID)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make([]ledger.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil { return nil, err }
		out = append(out, e)
	}
	if err := rows.Err(); err != nil { return nil, err }
	idx := make(map[uuid.UUID]*ledger.Expense)
	curr := make(map[uuid.UUID]string)
	for i := range out {
		if out[i].Installment {
			idx[out[i].ID] = &out[i]
			curr[out[i].ID] = out[i].TotalAmount.Curr().Code()
		}
	}
	if err := s.loadInstallments(ctx, curr, idx); err != nil { return nil, err }
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, ownerID, id uuid.UUID) (ledger.Expense, error) {
	e, err := scanExpense(s.db.QueryRow(ctx, `
		select `+expenseCols+` from expenses where id = $1 and owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) { return ledger.Expense{}, errs.ErrNotFound }
	if err != nil { return ledger.Expense{}, err }
	if e.Installment {
		idx := map[uuid.UUID]*ledger.Expense{e.ID: &e}
		curr := map[uuid.UUID]string{e.ID: e.TotalAmount.Curr().Code()}
		if err := s.loadInstallments(ctx, curr, idx); err != nil { return ledger.Expense{}, err }
	}
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e ledger.Expense) (ledger.Expense, error) {
	md, _ := e.Metadata.MarshalStableJSON()
	_, err := s.db.Exec(ctx, `
		insert into expenses (id, owner_id, category_id, bank_account_id, card_id, method, description, currency, total_minor, date, installment, installment_count, recurring, period, metadata)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, e.ID, e.OwnerID, e.CategoryID, nilUUID(e.BankAccountID), nilUUID(e.CardID), e.Method, e.Description,
		e.TotalAmount.Curr().Code(), minor(e.TotalAmount), e.Date, e.Installment, e.InstallmentCount, e.Recurring, periodArg(e.Period), md)
	if err != nil { return ledger.Expense{}, err }
	if err := s.saveInstallments(ctx, e); err != nil { return ledger.Expense{}, err }
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e ledger.Expense) (ledger.Expense, error) {
	md, _ := e.Metadata.MarshalStableJSON()
	ct, err := s.db.Exec(ctx, `
		update expenses
		set category_id=$1, bank_account_id=$2, card_id=$3, method=$4, description=$5, currency=$6,
		    total_minor=$7, date=$8, installment=$9, installment_count=$10, recurring=$11, period=$12, metadata=$13
		where id=$14 and owner_id=$15
	`, e.CategoryID, nilUUID(e.BankAccountID), nilUUID(e.CardID), e.Method, e.Description, e.TotalAmount.Curr().Code(),
		minor(e.TotalAmount), e.Date, e.Installment, e.InstallmentCount, e.Recurring, periodArg(e.Period), md, e.ID, e.OwnerID)
	if err != nil { return ledger.Expense{}, err }
	if ct.RowsAffected() == 0 { return ledger.Expense{}, errs.ErrNotFound }
	if _, err := s.db.Exec(ctx, `delete from expense_installments where expense_id=$1`, e.ID); err != nil {
		return ledger.Expense{}, err
	}
	if err := s.saveInstallments(ctx, e); err != nil { return ledger.Expense{}, err }
	return e, nil
}

func (s *Store) saveInstallments(ctx context.Context, e ledger.Expense) error {
	for _, inst := range e.Installments {
		if _, err := s.db.Exec(ctx, `
			insert into expense_installments (expense_id, number, amount_minor, due_date, paid, paid_at)
			values ($1,$2,$3,$4,$5,$6)
		`, e.ID, inst.Number, minor(inst.Amount), inst.DueDate, inst.Paid, inst.PaidAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	ct, err := s.db.Exec(ctx, `delete from expenses where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil { return err }
	if ct.RowsAffected() == 0 { return errs.ErrNotFound }
	return nil
}

// --- Dependency counts ---

func (s *Store) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *Store) CountIncomesByBank(ctx context.Context, ownerID, bankID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `select count(*) from incomes where owner_id=$1 and bank_account_id=$2`, ownerID, bankID)
}

func (s *Store) CountExpensesByBank(ctx context.Context, ownerID, bankID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `select count(*) from expenses where owner_id=$1 and bank_account_id=$2`, ownerID, bankID)
}

func (s *Store) CountExpensesByCard(ctx context.Context, ownerID, cardID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `select count(*) from expenses where owner_id=$1 and card_id=$2`, ownerID, cardID)
}

func (s *Store) CountIncomesByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `select count(*) from incomes where owner_id=$1 and category_id=$2`, ownerID, categoryID)
}

func (s *Store) CountExpensesByCategory(ctx context.Context, ownerID, categoryID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `select count(*) from expenses where owner_id=$1 and category_id=$2`, ownerID, categoryID)
}
