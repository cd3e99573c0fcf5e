// Package ledger holds the finance-tracker domain: bank accounts, credit
// cards, categories, incomes and expenses, plus the pure money/date rules
// (installment planning, invoice periods, recurrence projection) that keep
// them consistent.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/meta"
)

// AccountKind enumerates the supported bank account types.
type AccountKind string

const (
	AccountChecking   AccountKind = "checking"
	AccountSavings    AccountKind = "savings"
	AccountInvestment AccountKind = "investment"
)

// Valid reports whether the kind is one of the supported account types.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountChecking, AccountSavings, AccountInvestment:
		return true
	}
	return false
}

// CardBrand enumerates the accepted credit card networks.
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandElo        CardBrand = "elo"
	BrandAmex       CardBrand = "amex"
	BrandHipercard  CardBrand = "hipercard"
	BrandOther      CardBrand = "other"
)

func (b CardBrand) Valid() bool {
	switch b {
	case BrandVisa, BrandMastercard, BrandElo, BrandAmex, BrandHipercard, BrandOther:
		return true
	}
	return false
}

// CategoryKind splits categories between the income and expense sides.
// An income may only reference an income category, and likewise for expenses.
type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

func (k CategoryKind) Valid() bool {
	return k == CategoryIncome || k == CategoryExpense
}

// PaymentMethod determines which balance an expense affects: bank-backed
// methods debit the account, credit charges the card invoice.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodDebit    PaymentMethod = "debit"
	MethodCredit   PaymentMethod = "credit"
	MethodPix      PaymentMethod = "pix"
	MethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodDebit, MethodCredit, MethodPix, MethodTransfer:
		return true
	}
	return false
}

// UsesBank reports whether the method settles against a bank account.
func (m PaymentMethod) UsesBank() bool {
	switch m {
	case MethodCash, MethodDebit, MethodPix, MethodTransfer:
		return true
	}
	return false
}

// UsesCard reports whether the method accrues on a credit card invoice.
func (m PaymentMethod) UsesCard() bool { return m == MethodCredit }

// RecurrencePeriod tags how often a recurring income or expense repeats.
type RecurrencePeriod string

const (
	Daily   RecurrencePeriod = "daily"
	Weekly  RecurrencePeriod = "weekly"
	Monthly RecurrencePeriod = "monthly"
	Yearly  RecurrencePeriod = "yearly"
)

func (p RecurrencePeriod) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// User captures the owner of tracker data.
type User struct {
	ID    uuid.UUID
	Email *string
}

// BankAccount represents a user's bank account. CurrentBalance is a running
// total owned by the mutation engine: nothing recomputes it from transactions
// at read time, so every mutation path must reverse before it reapplies.
type BankAccount struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Kind           AccountKind
	InitialBalance money.Amount
	CurrentBalance money.Amount
	Active         bool
}

// Deposit adds amt to the current balance and returns the new balance.
func (b *BankAccount) Deposit(amt money.Amount) (money.Amount, error) {
	next, err := b.CurrentBalance.Add(amt)
	if err != nil {
		return b.CurrentBalance, err
	}
	b.CurrentBalance = next
	return next, nil
}

// Withdraw subtracts amt from the current balance and returns the new balance.
// Balances may go negative: overdrafts are the user's business, not ours.
func (b *BankAccount) Withdraw(amt money.Amount) (money.Amount, error) {
	next, err := b.CurrentBalance.Sub(amt)
	if err != nil {
		return b.CurrentBalance, err
	}
	b.CurrentBalance = next
	return next, nil
}

// CreditCard represents a user's credit card. InvoiceBalance tracks what the
// user still owes: it grows when a credit expense is recorded and shrinks only
// when an installment is explicitly marked paid, never on a statement date.
type CreditCard struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Brand          CardBrand
	Limit          money.Amount
	InvoiceBalance money.Amount
	// ClosingDay is the day-of-month the billing period ends (1-31, clamped
	// to shorter months). DueDay is when payment is due and must differ.
	ClosingDay int
	DueDay     int
	Active     bool
}

// Charge adds amt to the outstanding invoice balance and returns it.
func (c *CreditCard) Charge(amt money.Amount) (money.Amount, error) {
	next, err := c.InvoiceBalance.Add(amt)
	if err != nil {
		return c.InvoiceBalance, err
	}
	c.InvoiceBalance = next
	return next, nil
}

// Settle subtracts amt from the outstanding invoice balance and returns it.
func (c *CreditCard) Settle(amt money.Amount) (money.Amount, error) {
	next, err := c.InvoiceBalance.Sub(amt)
	if err != nil {
		return c.InvoiceBalance, err
	}
	c.InvoiceBalance = next
	return next, nil
}

// AvailableLimit returns Limit minus the outstanding invoice balance.
func (c CreditCard) AvailableLimit() (money.Amount, error) {
	return c.Limit.Sub(c.InvoiceBalance)
}

// Category labels incomes and expenses. Names are unique per owner.
type Category struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Kind    CategoryKind
	Color   string
	Icon    string
	Active  bool
}

// Income is money entering a bank account.
type Income struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	CategoryID    uuid.UUID
	BankAccountID uuid.UUID
	Description   string
	Amount        money.Amount
	Date          time.Time
	Recurring     bool
	Period        RecurrencePeriod
	Metadata      meta.Metadata `json:"metadata,omitempty"`
}

// Installment is one dated, independently payable slice of an expense.
// Numbers are 1-based and contiguous; amounts sum exactly to the parent total.
type Installment struct {
	Number  int
	Amount  money.Amount
	DueDate time.Time
	Paid    bool
	PaidAt  *time.Time
}

// Expense is money leaving either a bank account (cash/debit/pix/transfer) or
// accruing on a credit card invoice (credit). An expense is either a one-off,
// an installment plan, or recurring; plan and recurrence are mutually
// exclusive.
type Expense struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	CategoryID  uuid.UUID
	// BankAccountID is set for bank-backed methods, CardID for credit.
	BankAccountID    uuid.UUID
	CardID           uuid.UUID
	Method           PaymentMethod
	Description      string
	TotalAmount      money.Amount
	Date             time.Time
	Installment      bool
	InstallmentCount int
	Installments     []Installment
	Recurring        bool
	Period           RecurrencePeriod
	Metadata         meta.Metadata `json:"metadata,omitempty"`
}

// Outstanding returns the amount still owed on the expense: the sum of unpaid
// installments for a plan, the full total otherwise. This is the amount a
// deletion must reverse so already-settled installments are not reversed twice.
func (e Expense) Outstanding() (money.Amount, error) {
	if !e.Installment {
		return e.TotalAmount, nil
	}
	out, err := e.TotalAmount.Sub(e.TotalAmount) // zero in the expense currency
	if err != nil {
		return e.TotalAmount, err
	}
	for _, ins := range e.Installments {
		if ins.Paid {
			continue
		}
		if out, err = out.Add(ins.Amount); err != nil {
			return e.TotalAmount, err
		}
	}
	return out, nil
}

// PaidCount returns how many installments have been marked paid.
func (e Expense) PaidCount() int {
	n := 0
	for _, ins := range e.Installments {
		if ins.Paid {
			n++
		}
	}
	return n
}
