package httpapi

import (
	"net/http"

	"github.com/govalues/money"

	"finledger/internal/service/engine"
)

// patchAmount resolves an optional wire amount. Currency and minor units
// travel together: one without the other is a client error.
func patchAmount(curr *string, minorUnits *int64) (*money.Amount, bool) {
	if curr == nil && minorUnits == nil {
		return nil, true
	}
	if curr == nil || minorUnits == nil {
		return nil, false
	}
	a, err := money.NewAmountFromMinorUnits(*curr, *minorUnits)
	if err != nil {
		return nil, false
	}
	return &a, true
}

// --- Incomes ---

func (s *Server) postIncome(w http.ResponseWriter, r *http.Request) {
	var req postIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	amt, err := parseAmount(req.Currency, req.AmountMinor)
	if err != nil {
		badRequest(w, "invalid amount: "+err.Error())
		return
	}
	in, err := s.engine.CreateIncome(r.Context(), engine.IncomeInput{
		OwnerID:       req.OwnerID,
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		Description:   req.Description,
		Amount:        amt,
		Date:          req.Date,
		Recurring:     req.Recurring,
		Period:        req.Period,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toIncomeResponse(in))
}

func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	incomes, err := s.reader.ListIncomes(r.Context(), ownerID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getIncome(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	in, err := s.reader.GetIncome(r.Context(), ownerID, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toIncomeResponse(in))
}

func (s *Server) patchIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	amt, ok := patchAmount(req.Currency, req.AmountMinor)
	if !ok {
		badRequest(w, "amount_minor and currency must be provided together")
		return
	}
	in, err := s.engine.UpdateIncome(r.Context(), req.OwnerID, id, engine.IncomePatch{
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		Description:   req.Description,
		Amount:        amt,
		Date:          req.Date,
		Recurring:     req.Recurring,
		Period:        req.Period,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toIncomeResponse(in))
}

func (s *Server) deleteIncome(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.engine.DeleteIncome(r.Context(), ownerID, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Expenses ---

func (s *Server) postExpense(w http.ResponseWriter, r *http.Request) {
	var req postExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	amt, err := parseAmount(req.Currency, req.TotalMinor)
	if err != nil {
		badRequest(w, "invalid amount: "+err.Error())
		return
	}
	e, err := s.engine.CreateExpense(r.Context(), engine.ExpenseInput{
		OwnerID:          req.OwnerID,
		CategoryID:       req.CategoryID,
		BankAccountID:    req.BankAccountID,
		CardID:           req.CardID,
		Method:           req.Method,
		Description:      req.Description,
		TotalAmount:      amt,
		Date:             req.Date,
		InstallmentCount: req.InstallmentCount,
		Recurring:        req.Recurring,
		Period:           req.Period,
		Metadata:         req.Metadata,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	expenses, err := s.reader.ListExpenses(r.Context(), ownerID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	e, err := s.reader.GetExpense(r.Context(), ownerID, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) patchExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	amt, ok := patchAmount(req.Currency, req.TotalMinor)
	if !ok {
		badRequest(w, "total_minor and currency must be provided together")
		return
	}
	e, err := s.engine.UpdateExpense(r.Context(), req.OwnerID, id, engine.ExpensePatch{
		CategoryID:    req.CategoryID,
		BankAccountID: req.BankAccountID,
		CardID:        req.CardID,
		Method:        req.Method,
		Description:   req.Description,
		TotalAmount:   amt,
		Date:          req.Date,
		Recurring:     req.Recurring,
		Period:        req.Period,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.engine.DeleteExpense(r.Context(), ownerID, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
