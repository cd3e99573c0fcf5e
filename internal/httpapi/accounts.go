package httpapi

import (
	"net/http"

	"finledger/internal/service/account"
)

// --- Bank accounts ---

func (s *Server) postBank(w http.ResponseWriter, r *http.Request) {
	var req postBankRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	initial, err := parseAmount(req.Currency, req.InitialMinor)
	if err != nil {
		badRequest(w, "invalid amount: "+err.Error())
		return
	}
	a, err := s.accounts.CreateBankAccount(r.Context(), account.BankAccountInput{
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		Kind:           req.Kind,
		InitialBalance: initial,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toBankResponse(a))
}

func (s *Server) listBanks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	banks, err := s.accounts.ListBankAccounts(r.Context(), ownerID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]bankResponse, 0, len(banks))
	for _, a := range banks {
		out = append(out, toBankResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getBank(w http.ResponseWriter, r *http.Request) {
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
	a, err := s.accounts.GetBankAccount(r.Context(), ownerID, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBankResponse(a))
}

func (s *Server) patchBank(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchBankRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	initial, ok := patchAmount(req.Currency, req.InitialMinor)
	if !ok {
		badRequest(w, "initial_minor and currency must be provided together")
		return
	}
	a, err := s.accounts.UpdateBankAccount(r.Context(), req.OwnerID, id, account.BankAccountPatch{
		Name:           req.Name,
		Kind:           req.Kind,
		InitialBalance: initial,
		Active:         req.Active,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toBankResponse(a))
}

func (s *Server) deleteBank(w http.ResponseWriter, r *http.Request) {
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
	if err := s.accounts.DeleteBankAccount(r.Context(), ownerID, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Credit cards ---

func (s *Server) postCard(w http.ResponseWriter, r *http.Request) {
	var req postCardRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	limit, err := parseAmount(req.Currency, req.LimitMinor)
	if err != nil {
		badRequest(w, "invalid amount: "+err.Error())
		return
	}
	c, err := s.accounts.CreateCreditCard(r.Context(), account.CreditCardInput{
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		Brand:      req.Brand,
		Limit:      limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCardResponse(c))
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	cards, err := s.accounts.ListCreditCards(r.Context(), ownerID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
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
	c, err := s.accounts.GetCreditCard(r.Context(), ownerID, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCardResponse(c))
}

func (s *Server) patchCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchCardRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	limit, ok := patchAmount(req.Currency, req.LimitMinor)
	if !ok {
		badRequest(w, "limit_minor and currency must be provided together")
		return
	}
	c, err := s.accounts.UpdateCreditCard(r.Context(), req.OwnerID, id, account.CreditCardPatch{
		Name:       req.Name,
		Brand:      req.Brand,
		Limit:      limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		Active:     req.Active,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCardResponse(c))
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
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
	if err := s.accounts.DeleteCreditCard(r.Context(), ownerID, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
	var req postCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.accounts.CreateCategory(r.Context(), account.CategoryInput{
		OwnerID: req.OwnerID,
		Name:    req.Name,
		Kind:    req.Kind,
		Color:   req.Color,
		Icon:    req.Icon,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromQuery(r)
	if !ok {
		badRequest(w, "owner_id is required")
		return
	}
	cats, err := s.accounts.ListCategories(r.Context(), ownerID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
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
	c, err := s.accounts.GetCategory(r.Context(), ownerID, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) patchCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req patchCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.accounts.UpdateCategory(r.Context(), req.OwnerID, id, account.CategoryPatch{
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
		Active: req.Active,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
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
	if err := s.accounts.DeleteCategory(r.Context(), ownerID, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
