package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/ledger"
	"finledger/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func testAmount(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func setup(t *testing.T) (http.Handler, *memory.Store, uuid.UUID, ledger.BankAccount, ledger.CreditCard, ledger.Category, ledger.Category) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	user := ledger.User{ID: uuid.New()}
	store.SeedUser(user)

	bank := ledger.BankAccount{
		ID:             uuid.New(),
		OwnerID:        user.ID,
		Name:           "Checking",
		Kind:           ledger.AccountChecking,
		InitialBalance: testAmount(t, 100000),
		CurrentBalance: testAmount(t, 100000),
		Active:         true,
	}
	card := ledger.CreditCard{
		ID:             uuid.New(),
		OwnerID:        user.ID,
		Name:           "Main Card",
		Brand:          ledger.BrandVisa,
		Limit:          testAmount(t, 500000),
		InvoiceBalance: testAmount(t, 0),
		ClosingDay:     28,
		DueDay:         10,
		Active:         true,
	}
	catInc := ledger.Category{ID: uuid.New(), OwnerID: user.ID, Name: "Salary", Kind: ledger.CategoryIncome, Active: true}
	catExp := ledger.Category{ID: uuid.New(), OwnerID: user.ID, Name: "Groceries", Kind: ledger.CategoryExpense, Active: true}
	if _, err := store.CreateBankAccount(ctx, bank); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	if _, err := store.CreateCreditCard(ctx, card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	if _, err := store.CreateCategory(ctx, catInc); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if _, err := store.CreateCategory(ctx, catExp); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	h := New(store, memory.NewReceipts(), nil, testLogger()).Handler()
	return h, store, user.ID, bank, card, catInc, catExp
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostIncome_CreatesAndDeposits(t *testing.T) {
	h, _, ownerID, bank, _, catInc, _ := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/incomes", map[string]any{
		"owner_id":        ownerID.String(),
		"category_id":     catInc.ID.String(),
		"bank_account_id": bank.ID.String(),
		"description":     "March salary",
		"currency":        "BRL",
		"amount_minor":    50000,
		"date":            "2025-03-05T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created incomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.AmountMinor != 50000 || created.Currency != "BRL" {
		t.Fatalf("unexpected response: %+v", created)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/banks/"+bank.ID.String()+"?owner_id="+ownerID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var b bankResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.CurrentMinor != 150000 {
		t.Fatalf("bank balance: got %d, want 150000", b.CurrentMinor)
	}
}

func TestPostIncome_ValidationAndUnknownFields(t *testing.T) {
	h, _, ownerID, bank, _, catInc, _ := setup(t)

	// unknown field
	rec := doJSON(t, h, http.MethodPost, "/v1/incomes", map[string]any{
		"owner_id": ownerID.String(),
		"surprise": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// zero amount
	rec = doJSON(t, h, http.MethodPost, "/v1/incomes", map[string]any{
		"owner_id":        ownerID.String(),
		"category_id":     catInc.ID.String(),
		"bank_account_id": bank.ID.String(),
		"description":     "Nothing",
		"currency":        "BRL",
		"amount_minor":    0,
		"date":            "2025-03-05T00:00:00Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var er errResp
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != "validation_error" {
		t.Fatalf("unexpected code: %q", er.Code)
	}
}

func TestExpenseInstallmentFlow(t *testing.T) {
	h, _, ownerID, _, card, _, catExp := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/expenses", map[string]any{
		"owner_id":          ownerID.String(),
		"category_id":       catExp.ID.String(),
		"card_id":           card.ID.String(),
		"method":            "credit",
		"description":       "Laptop",
		"currency":          "BRL",
		"total_minor":       120000,
		"date":              "2025-03-10T00:00:00Z",
		"installment_count": 12,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var exp expenseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &exp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !exp.Installment || len(exp.Installments) != 12 {
		t.Fatalf("expected 12 installments: %+v", exp)
	}

	// pay the first installment
	rec = doJSON(t, h, http.MethodPatch, "/v1/expenses/"+exp.ID.String()+"/installments/1", map[string]any{
		"owner_id": ownerID.String(),
		"paid":     true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var upd installmentUpdateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &upd); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !upd.Installment.Paid || upd.PaidCount != 1 || upd.Total != 12 {
		t.Fatalf("unexpected update: %+v", upd)
	}

	// card invoice reflects the settled slice
	rec = doJSON(t, h, http.MethodGet, "/v1/cards/"+card.ID.String()+"?owner_id="+ownerID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var c cardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.InvoiceMinor != 110000 {
		t.Fatalf("invoice: got %d, want 110000", c.InvoiceMinor)
	}

	// editing a planned expense is rejected
	rec = doJSON(t, h, http.MethodPatch, "/v1/expenses/"+exp.ID.String(), map[string]any{
		"owner_id":    ownerID.String(),
		"description": "Laptop Pro",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	// toggling an out-of-range installment is an invalid state
	rec = doJSON(t, h, http.MethodPatch, "/v1/expenses/"+exp.ID.String()+"/installments/13", map[string]any{
		"owner_id": ownerID.String(),
		"paid":     true,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetInvoice(t *testing.T) {
	h, _, ownerID, _, card, _, catExp := setup(t)

	mk := func(desc, date string, minor int64) {
		t.Helper()
		rec := doJSON(t, h, http.MethodPost, "/v1/expenses", map[string]any{
			"owner_id":    ownerID.String(),
			"category_id": catExp.ID.String(),
			"card_id":     card.ID.String(),
			"method":      "credit",
			"description": desc,
			"currency":    "BRL",
			"total_minor": minor,
			"date":        date,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %q: %d %s", desc, rec.Code, rec.Body.String())
		}
	}
	mk("inside", "2025-03-01T00:00:00Z", 10000)
	mk("outside", "2025-03-29T00:00:00Z", 9000)

	rec := doJSON(t, h, http.MethodGet, "/v1/cards/"+card.ID.String()+"/invoice?owner_id="+ownerID.String()+"&month=3&year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var inv invoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.ItemCount != 1 || inv.TotalMinor != 10000 {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	wantDue := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	if !inv.DueDate.Equal(wantDue) {
		t.Fatalf("due date: got %v, want %v", inv.DueDate, wantDue)
	}
}

func TestBankCRUDAndGuards(t *testing.T) {
	h, _, ownerID, bank, _, _, catExp := setup(t)

	// duplicate name conflicts
	rec := doJSON(t, h, http.MethodPost, "/v1/banks", map[string]any{
		"owner_id":      ownerID.String(),
		"name":          "checking",
		"kind":          "savings",
		"currency":      "BRL",
		"initial_minor": 0,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	// unknown id is 404
	rec = doJSON(t, h, http.MethodGet, "/v1/banks/"+uuid.NewString()+"?owner_id="+ownerID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	// referenced bank cannot be deleted
	rec = doJSON(t, h, http.MethodPost, "/v1/expenses", map[string]any{
		"owner_id":        ownerID.String(),
		"category_id":     catExp.ID.String(),
		"bank_account_id": bank.ID.String(),
		"method":          "debit",
		"description":     "Groceries",
		"currency":        "BRL",
		"total_minor":     5000,
		"date":            "2025-03-10T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodDelete, "/v1/banks/"+bank.ID.String()+"?owner_id="+ownerID.String(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOwnershipScoping(t *testing.T) {
	h, _, _, bank, _, _, _ := setup(t)
	// a different owner cannot see the bank account
	rec := doJSON(t, h, http.MethodGet, "/v1/banks/"+bank.ID.String()+"?owner_id="+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign owner, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _, _, _, _, _, _ := setup(t)
	if rec := doJSON(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: got %d", rec.Code)
	}
}
