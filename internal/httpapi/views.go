package httpapi

import (
	"net/http"
	"time"
)

const defaultHorizonDays = 30

func (s *Server) setInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	number, ok := intFromPath(r, "number")
	if !ok || number < 1 {
		badRequest(w, "invalid installment number")
		return
	}
	var req setInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	upd, err := s.engine.SetInstallmentPaid(r.Context(), req.OwnerID, id, number-1, req.Paid, req.PaidAt)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, installmentUpdateResponse{
		Installment: toInstallmentResponse(upd.Installment),
		PaidCount:   upd.PaidCount,
		Total:       upd.Total,
	})
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	cardID, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	now := time.Now().UTC()
	month := intFromQuery(r, "month", int(now.Month()))
	year := intFromQuery(r, "year", now.Year())
	view, err := s.engine.Invoice(r.Context(), ownerID, cardID, time.Month(month), year)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toInvoiceResponse(view))
}

func (s *Server) upcomingInstallments(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	days := intFromQuery(r, "days", defaultHorizonDays)
	items, err := s.engine.UpcomingInstallments(r.Context(), ownerID, days)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]upcomingInstallmentResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toUpcomingInstallmentResponse(it))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) upcomingIncomes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	days := intFromQuery(r, "days", defaultHorizonDays)
	items, err := s.engine.UpcomingRecurringIncomes(r.Context(), ownerID, days)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]upcomingIncomeResponse, 0, len(items))
	for _, it := range items {
		out = append(out, upcomingIncomeResponse{
			Income:   toIncomeResponse(it.Income),
			NextDate: it.NextDate,
			DaysLeft: it.DaysLeft,
		})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) cardDueDates(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	days := intFromQuery(r, "days", defaultHorizonDays)
	items, err := s.engine.NextDueDates(r.Context(), ownerID, days)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]upcomingDueDateResponse, 0, len(items))
	for _, it := range items {
		totMinor, _ := it.Total.MinorUnits()
		out = append(out, upcomingDueDateResponse{
			CardID:     it.CardID,
			CardName:   it.CardName,
			DueDate:    it.DueDate,
			Currency:   it.Total.Curr().Code(),
			TotalMinor: totMinor,
			DaysLeft:   it.DaysLeft,
		})
	}
	toJSON(w, http.StatusOK, out)
}
