package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/ledger"
)

// InvoiceView is the statement of one card for one billing period.
type InvoiceView struct {
	Card             ledger.CreditCard
	Period           ledger.InvoicePeriod
	Month            time.Month
	Year             int
	Total            money.Amount
	ItemCount        int
	InstallmentCount int
	AvailableLimit   money.Amount
	Expenses         []ledger.Expense
}

// UpcomingInstallment is one unpaid installment due within the horizon.
type UpcomingInstallment struct {
	ExpenseID         uuid.UUID
	Index             int
	Number            int
	TotalInstallments int
	Description       string
	CategoryID        uuid.UUID
	CardID            uuid.UUID
	Amount            money.Amount
	DueDate           time.Time
	DaysLeft          int
}

// UpcomingIncome is the projected next occurrence of a recurring income.
type UpcomingIncome struct {
	Income   ledger.Income
	NextDate time.Time
	DaysLeft int
}

// UpcomingDueDate is a card invoice falling due within the horizon.
type UpcomingDueDate struct {
	CardID   uuid.UUID
	CardName string
	DueDate  time.Time
	Total    money.Amount
	DaysLeft int
}

// today truncates the engine clock to a UTC calendar date; all horizon
// arithmetic is day-granular.
func (s *service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// Invoice resolves the billing period of a card for month/year and gathers
// the expenses whose date falls inside the half-open window. An expense dated
// exactly on the period start belongs to the prior invoice.
func (s *service) Invoice(ctx context.Context, ownerID, cardID uuid.UUID, month time.Month, year int) (InvoiceView, error) {
	if ownerID == uuid.Nil || cardID == uuid.Nil {
		return InvoiceView{}, validationErr("owner and card are required")
	}
	card, err := s.store.GetCreditCard(ctx, ownerID, cardID)
	if err != nil {
		return InvoiceView{}, err
	}
	period, err := ledger.ResolveInvoicePeriod(card.ClosingDay, card.DueDay, month, year)
	if err != nil {
		return InvoiceView{}, err
	}
	all, err := s.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return InvoiceView{}, err
	}

	curr := card.Limit.Curr().Code()
	var totalMinor int64
	view := InvoiceView{Card: card, Period: period, Month: month, Year: year, Expenses: make([]ledger.Expense, 0)}
	for _, e := range all {
		if e.CardID != cardID || !period.Contains(e.Date) {
			continue
		}
		minor, _ := e.TotalAmount.MinorUnits()
		totalMinor += minor
		view.ItemCount++
		if e.Installment {
			for _, ins := range e.Installments {
				if period.Contains(ins.DueDate) {
					view.InstallmentCount++
				}
			}
		} else {
			view.InstallmentCount++
		}
		view.Expenses = append(view.Expenses, e)
	}
	if view.Total, err = money.NewAmountFromMinorUnits(curr, totalMinor); err != nil {
		return InvoiceView{}, err
	}
	if view.AvailableLimit, err = card.Limit.Sub(view.Total); err != nil {
		return InvoiceView{}, err
	}
	sort.Slice(view.Expenses, func(i, j int) bool { return view.Expenses[i].Date.Before(view.Expenses[j].Date) })
	return view, nil
}

// UpcomingInstallments lists unpaid installments due within the next N days.
func (s *service) UpcomingInstallments(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingInstallment, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	if days < 0 {
		return nil, validationErr("days must not be negative")
	}
	all, err := s.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	limit := today.AddDate(0, 0, days)
	out := make([]UpcomingInstallment, 0)
	for _, e := range all {
		if !e.Installment {
			continue
		}
		for i, ins := range e.Installments {
			if ins.Paid || ins.DueDate.Before(today) || ins.DueDate.After(limit) {
				continue
			}
			out = append(out, UpcomingInstallment{
				ExpenseID:         e.ID,
				Index:             i,
				Number:            ins.Number,
				TotalInstallments: len(e.Installments),
				Description:       e.Description,
				CategoryID:        e.CategoryID,
				CardID:            e.CardID,
				Amount:            ins.Amount,
				DueDate:           ins.DueDate,
				DaysLeft:          daysBetween(today, ins.DueDate),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// UpcomingRecurringIncomes projects the next occurrence of each recurring
// income and keeps those landing within the next N days. The stored records
// are never advanced; this is a pure view.
func (s *service) UpcomingRecurringIncomes(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingIncome, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	if days < 0 {
		return nil, validationErr("days must not be negative")
	}
	all, err := s.store.ListIncomes(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := make([]UpcomingIncome, 0)
	for _, inc := range all {
		if !inc.Recurring {
			continue
		}
		next, ok := ledger.Project(inc.Date, inc.Period, today, days)
		if !ok {
			continue
		}
		out = append(out, UpcomingIncome{Income: inc, NextDate: next, DaysLeft: daysBetween(today, next)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDate.Before(out[j].NextDate) })
	return out, nil
}

// NextDueDates projects each active card's invoice due dates over the next N
// days, with the invoice total of the period each due date settles.
func (s *service) NextDueDates(ctx context.Context, ownerID uuid.UUID, days int) ([]UpcomingDueDate, error) {
	if ownerID == uuid.Nil {
		return nil, validationErr("owner is required")
	}
	if days < 0 {
		return nil, validationErr("days must not be negative")
	}
	cards, err := s.store.ListCreditCards(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	limit := today.AddDate(0, 0, days)
	out := make([]UpcomingDueDate, 0)
	for _, card := range cards {
		if !card.Active {
			continue
		}
		curr := card.Limit.Curr().Code()
		// Start one cycle back: when dueDay < closingDay the period closing
		// last month falls due this month. Three cycles forward cover any
		// horizon up to ~60 days.
		for i := -1; i <= 2; i++ {
			target := ledger.AddMonths(today, i)
			period, err := ledger.ResolveInvoicePeriod(card.ClosingDay, card.DueDay, target.Month(), target.Year())
			if err != nil {
				return nil, err
			}
			if period.Due.Before(today) || period.Due.After(limit) {
				continue
			}
			var totalMinor int64
			for _, e := range all {
				if e.CardID == card.ID && period.Contains(e.Date) {
					minor, _ := e.TotalAmount.MinorUnits()
					totalMinor += minor
				}
			}
			total, err := money.NewAmountFromMinorUnits(curr, totalMinor)
			if err != nil {
				return nil, err
			}
			out = append(out, UpcomingDueDate{
				CardID:   card.ID,
				CardName: card.Name,
				DueDate:  period.Due,
				Total:    total,
				DaysLeft: daysBetween(today, period.Due),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}
