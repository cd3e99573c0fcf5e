package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/ledger"
	"finledger/internal/meta"
	"finledger/internal/service/engine"
)

// Amounts cross the wire as integer minor units plus an ISO currency code.

type postBankRequest struct {
	OwnerID      uuid.UUID          `json:"owner_id"`
	Name         string             `json:"name"`
	Kind         ledger.AccountKind `json:"kind"`
	Currency     string             `json:"currency"`
	InitialMinor int64              `json:"initial_minor"`
}

type patchBankRequest struct {
	OwnerID      uuid.UUID           `json:"owner_id"`
	Name         *string             `json:"name"`
	Kind         *ledger.AccountKind `json:"kind"`
	Currency     *string             `json:"currency"`
	InitialMinor *int64              `json:"initial_minor"`
	Active       *bool               `json:"active"`
}

type bankResponse struct {
	ID           uuid.UUID          `json:"id"`
	OwnerID      uuid.UUID          `json:"owner_id"`
	Name         string             `json:"name"`
	Kind         ledger.AccountKind `json:"kind"`
	Currency     string             `json:"currency"`
	InitialMinor int64              `json:"initial_minor"`
	CurrentMinor int64              `json:"current_minor"`
	Active       bool               `json:"active"`
}

func toBankResponse(a ledger.BankAccount) bankResponse {
	initMinor, _ := a.InitialBalance.MinorUnits()
	curMinor, _ := a.CurrentBalance.MinorUnits()
	return bankResponse{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Name:         a.Name,
		Kind:         a.Kind,
		Currency:     a.CurrentBalance.Curr().Code(),
		InitialMinor: initMinor,
		CurrentMinor: curMinor,
		Active:       a.Active,
	}
}

type postCardRequest struct {
	OwnerID    uuid.UUID        `json:"owner_id"`
	Name       string           `json:"name"`
	Brand      ledger.CardBrand `json:"brand"`
	Currency   string           `json:"currency"`
	LimitMinor int64            `json:"limit_minor"`
	ClosingDay int              `json:"closing_day"`
	DueDay     int              `json:"due_day"`
}

type patchCardRequest struct {
	OwnerID    uuid.UUID         `json:"owner_id"`
	Name       *string           `json:"name"`
	Brand      *ledger.CardBrand `json:"brand"`
	Currency   *string           `json:"currency"`
	LimitMinor *int64            `json:"limit_minor"`
	ClosingDay *int              `json:"closing_day"`
	DueDay     *int              `json:"due_day"`
	Active     *bool             `json:"active"`
}

type cardResponse struct {
	ID           uuid.UUID        `json:"id"`
	OwnerID      uuid.UUID        `json:"owner_id"`
	Name         string           `json:"name"`
	Brand        ledger.CardBrand `json:"brand"`
	Currency     string           `json:"currency"`
	LimitMinor   int64            `json:"limit_minor"`
	InvoiceMinor int64            `json:"invoice_minor"`
	ClosingDay   int              `json:"closing_day"`
	DueDay       int              `json:"due_day"`
	Active       bool             `json:"active"`
}

func toCardResponse(c ledger.CreditCard) cardResponse {
	limitMinor, _ := c.Limit.MinorUnits()
	invoiceMinor, _ := c.InvoiceBalance.MinorUnits()
	return cardResponse{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Name:         c.Name,
		Brand:        c.Brand,
		Currency:     c.Limit.Curr().Code(),
		LimitMinor:   limitMinor,
		InvoiceMinor: invoiceMinor,
		ClosingDay:   c.ClosingDay,
		DueDay:       c.DueDay,
		Active:       c.Active,
	}
}

type postCategoryRequest struct {
	OwnerID uuid.UUID           `json:"owner_id"`
	Name    string              `json:"name"`
	Kind    ledger.CategoryKind `json:"kind"`
	Color   string              `json:"color"`
	Icon    string              `json:"icon"`
}

type patchCategoryRequest struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Name    *string   `json:"name"`
	Color   *string   `json:"color"`
	Icon    *string   `json:"icon"`
	Active  *bool     `json:"active"`
}

type categoryResponse struct {
	ID      uuid.UUID           `json:"id"`
	OwnerID uuid.UUID           `json:"owner_id"`
	Name    string              `json:"name"`
	Kind    ledger.CategoryKind `json:"kind"`
	Color   string              `json:"color,omitempty"`
	Icon    string              `json:"icon,omitempty"`
	Active  bool                `json:"active"`
}

func toCategoryResponse(c ledger.Category) categoryResponse {
	return categoryResponse{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name, Kind: c.Kind, Color: c.Color, Icon: c.Icon, Active: c.Active}
}

type postIncomeRequest struct {
	OwnerID       uuid.UUID               `json:"owner_id"`
	CategoryID    uuid.UUID               `json:"category_id"`
	BankAccountID uuid.UUID               `json:"bank_account_id"`
	Description   string                  `json:"description"`
	Currency      string                  `json:"currency"`
	AmountMinor   int64                   `json:"amount_minor"`
	Date          time.Time               `json:"date"`
	Recurring     bool                    `json:"recurring"`
	Period        ledger.RecurrencePeriod `json:"period,omitempty"`
	Metadata      meta.Metadata           `json:"metadata,omitempty"`
}

type patchIncomeRequest struct {
	OwnerID       uuid.UUID                `json:"owner_id"`
	CategoryID    *uuid.UUID               `json:"category_id"`
	BankAccountID *uuid.UUID               `json:"bank_account_id"`
	Description   *string                  `json:"description"`
	Currency      *string                  `json:"currency"`
	AmountMinor   *int64                   `json:"amount_minor"`
	Date          *time.Time               `json:"date"`
	Recurring     *bool                    `json:"recurring"`
	Period        *ledger.RecurrencePeriod `json:"period"`
	Metadata      meta.Metadata            `json:"metadata,omitempty"`
}

type incomeResponse struct {
	ID            uuid.UUID               `json:"id"`
	OwnerID       uuid.UUID               `json:"owner_id"`
	CategoryID    uuid.UUID               `json:"category_id"`
	BankAccountID uuid.UUID               `json:"bank_account_id"`
	Description   string                  `json:"description"`
	Currency      string                  `json:"currency"`
	AmountMinor   int64                   `json:"amount_minor"`
	Date          time.Time               `json:"date"`
	Recurring     bool                    `json:"recurring"`
	Period        ledger.RecurrencePeriod `json:"period,omitempty"`
	Metadata      meta.Metadata           `json:"metadata,omitempty"`
}

func toIncomeResponse(in ledger.Income) incomeResponse {
	amtMinor, _ := in.Amount.MinorUnits()
	return incomeResponse{
		ID:            in.ID,
		OwnerID:       in.OwnerID,
		CategoryID:    in.CategoryID,
		BankAccountID: in.BankAccountID,
		Description:   in.Description,
		Currency:      in.Amount.Curr().Code(),
		AmountMinor:   amtMinor,
		Date:          in.Date,
		Recurring:     in.Recurring,
		Period:        in.Period,
		Metadata:      in.Metadata,
	}
}

type postExpenseRequest struct {
	OwnerID          uuid.UUID               `json:"owner_id"`
	CategoryID       uuid.UUID               `json:"category_id"`
	BankAccountID    uuid.UUID               `json:"bank_account_id"`
	CardID           uuid.UUID               `json:"card_id"`
	Method           ledger.PaymentMethod    `json:"method"`
	Description      string                  `json:"description"`
	Currency         string                  `json:"currency"`
	TotalMinor       int64                   `json:"total_minor"`
	Date             time.Time               `json:"date"`
	InstallmentCount int                     `json:"installment_count"`
	Recurring        bool                    `json:"recurring"`
	Period           ledger.RecurrencePeriod `json:"period,omitempty"`
	Metadata         meta.Metadata           `json:"metadata,omitempty"`
}

type patchExpenseRequest struct {
	OwnerID       uuid.UUID                `json:"owner_id"`
	CategoryID    *uuid.UUID               `json:"category_id"`
	BankAccountID *uuid.UUID               `json:"bank_account_id"`
	CardID        *uuid.UUID               `json:"card_id"`
	Method        *ledger.PaymentMethod    `json:"method"`
	Description   *string                  `json:"description"`
	Currency      *string                  `json:"currency"`
	TotalMinor    *int64                   `json:"total_minor"`
	Date          *time.Time               `json:"date"`
	Recurring     *bool                    `json:"recurring"`
	Period        *ledger.RecurrencePeriod `json:"period"`
	Metadata      meta.Metadata            `json:"metadata,omitempty"`
}

type installmentResponse struct {
	Number      int        `json:"number"`
	AmountMinor int64      `json:"amount_minor"`
	DueDate     time.Time  `json:"due_date"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

func toInstallmentResponse(i ledger.Installment) installmentResponse {
	amtMinor, _ := i.Amount.MinorUnits()
	return installmentResponse{Number: i.Number, AmountMinor: amtMinor, DueDate: i.DueDate, Paid: i.Paid, PaidAt: i.PaidAt}
}

type expenseResponse struct {
	ID               uuid.UUID               `json:"id"`
	OwnerID          uuid.UUID               `json:"owner_id"`
	CategoryID       uuid.UUID               `json:"category_id"`
	BankAccountID    uuid.UUID               `json:"bank_account_id,omitempty"`
	CardID           uuid.UUID               `json:"card_id,omitempty"`
	Method           ledger.PaymentMethod    `json:"method"`
	Description      string                  `json:"description"`
	Currency         string                  `json:"currency"`
	TotalMinor       int64                   `json:"total_minor"`
	Date             time.Time               `json:"date"`
	Installment      bool                    `json:"installment"`
	InstallmentCount int                     `json:"installment_count,omitempty"`
	Installments     []installmentResponse   `json:"installments,omitempty"`
	Recurring        bool                    `json:"recurring"`
	Period           ledger.RecurrencePeriod `json:"period,omitempty"`
	Metadata         meta.Metadata           `json:"metadata,omitempty"`
}

func toExpenseResponse(e ledger.Expense) expenseResponse {
	totMinor, _ := e.TotalAmount.MinorUnits()
	resp := expenseResponse{
		ID:               e.ID,
		OwnerID:          e.OwnerID,
		CategoryID:       e.CategoryID,
		BankAccountID:    e.BankAccountID,
		CardID:           e.CardID,
		Method:           e.Method,
		Description:      e.Description,
		Currency:         e.TotalAmount.Curr().Code(),
		TotalMinor:       totMinor,
		Date:             e.Date,
		Installment:      e.Installment,
		InstallmentCount: e.InstallmentCount,
		Recurring:        e.Recurring,
		Period:           e.Period,
		Metadata:         e.Metadata,
	}
	for _, inst := range e.Installments {
		resp.Installments = append(resp.Installments, toInstallmentResponse(inst))
	}
	return resp
}

type setInstallmentRequest struct {
	OwnerID uuid.UUID  `json:"owner_id"`
	Paid    bool       `json:"paid"`
	PaidAt  *time.Time `json:"paid_at"`
}

type installmentUpdateResponse struct {
	Installment installmentResponse `json:"installment"`
	PaidCount   int                 `json:"paid_count"`
	Total       int                 `json:"total"`
}

type invoiceResponse struct {
	CardID           uuid.UUID         `json:"card_id"`
	Month            int               `json:"month"`
	Year             int               `json:"year"`
	OpensAfter       time.Time         `json:"opens_after"`
	ClosesAt         time.Time         `json:"closes_at"`
	DueDate          time.Time         `json:"due_date"`
	Currency         string            `json:"currency"`
	TotalMinor       int64             `json:"total_minor"`
	ItemCount        int               `json:"item_count"`
	InstallmentCount int               `json:"installment_count"`
	AvailableMinor   int64             `json:"available_minor"`
	Expenses         []expenseResponse `json:"expenses"`
}

func toInvoiceResponse(v engine.InvoiceView) invoiceResponse {
	totMinor, _ := v.Total.MinorUnits()
	availMinor, _ := v.AvailableLimit.MinorUnits()
	resp := invoiceResponse{
		CardID:           v.Card.ID,
		Month:            int(v.Month),
		Year:             v.Year,
		OpensAfter:       v.Period.Start,
		ClosesAt:         v.Period.End,
		DueDate:          v.Period.Due,
		Currency:         v.Total.Curr().Code(),
		TotalMinor:       totMinor,
		ItemCount:        v.ItemCount,
		InstallmentCount: v.InstallmentCount,
		AvailableMinor:   availMinor,
		Expenses:         make([]expenseResponse, 0, len(v.Expenses)),
	}
	for _, e := range v.Expenses {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}
	return resp
}

type upcomingInstallmentResponse struct {
	ExpenseID         uuid.UUID `json:"expense_id"`
	Number            int       `json:"number"`
	TotalInstallments int       `json:"total_installments"`
	Description       string    `json:"description"`
	CategoryID        uuid.UUID `json:"category_id"`
	CardID            uuid.UUID `json:"card_id,omitempty"`
	Currency          string    `json:"currency"`
	AmountMinor       int64     `json:"amount_minor"`
	DueDate           time.Time `json:"due_date"`
	DaysLeft          int       `json:"days_left"`
}

func toUpcomingInstallmentResponse(u engine.UpcomingInstallment) upcomingInstallmentResponse {
	amtMinor, _ := u.Amount.MinorUnits()
	return upcomingInstallmentResponse{
		ExpenseID:         u.ExpenseID,
		Number:            u.Number,
		TotalInstallments: u.TotalInstallments,
		Description:       u.Description,
		CategoryID:        u.CategoryID,
		CardID:            u.CardID,
		Currency:          u.Amount.Curr().Code(),
		AmountMinor:       amtMinor,
		DueDate:           u.DueDate,
		DaysLeft:          u.DaysLeft,
	}
}

type upcomingIncomeResponse struct {
	Income   incomeResponse `json:"income"`
	NextDate time.Time      `json:"next_date"`
	DaysLeft int            `json:"days_left"`
}

type upcomingDueDateResponse struct {
	CardID     uuid.UUID `json:"card_id"`
	CardName   string    `json:"card_name"`
	DueDate    time.Time `json:"due_date"`
	Currency   string    `json:"currency"`
	TotalMinor int64     `json:"total_minor"`
	DaysLeft   int       `json:"days_left"`
}

// parseAmount converts a wire (currency, minor) pair. The zero minor value is
// allowed here; services decide whether zero is acceptable for the field.
func parseAmount(curr string, minorUnits int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(curr, minorUnits)
}
