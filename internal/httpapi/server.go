// Package httpapi wires the HTTP surface of the finance service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"finledger/internal/ledger"
	"finledger/internal/service/account"
	"finledger/internal/service/engine"
	"finledger/internal/storage"
)

// Reader abstracts the read-side operations the API serves directly, without
// going through the mutation engine.
type Reader interface {
	ListIncomes(ctx context.Context, ownerID uuid.UUID) ([]ledger.Income, error)
	GetIncome(ctx context.Context, ownerID, id uuid.UUID) (ledger.Income, error)
	ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]ledger.Expense, error)
	GetExpense(ctx context.Context, ownerID, id uuid.UUID) (ledger.Expense, error)
}

// ReadyChecker reports backend connectivity for the readiness probe.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
	engine   engine.Service
	accounts account.Service
	reader   Reader
	ready    ReadyChecker
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware. ready may be nil
// when the backend has no connectivity to probe (the in-memory store).
func New(store storage.TxStore, receipts storage.ReceiptStore, ready ReadyChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		engine:   engine.New(store, receipts),
		accounts: account.New(store),
		reader:   store,
		ready:    ready,
		log:      logger,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Incomes (v1)
	s.rt.Post("/v1/incomes", s.postIncome)
	s.rt.Get("/v1/incomes", s.listIncomes)
	s.rt.Get("/v1/incomes/upcoming", s.upcomingIncomes)
	s.rt.Get("/v1/incomes/{id}", s.getIncome)
	s.rt.Patch("/v1/incomes/{id}", s.patchIncome)
	s.rt.Delete("/v1/incomes/{id}", s.deleteIncome)
	// Expenses (v1)
	s.rt.Post("/v1/expenses", s.postExpense)
	s.rt.Get("/v1/expenses", s.listExpenses)
	s.rt.Get("/v1/expenses/upcoming-installments", s.upcomingInstallments)
	s.rt.Get("/v1/expenses/{id}", s.getExpense)
	s.rt.Patch("/v1/expenses/{id}", s.patchExpense)
	s.rt.Delete("/v1/expenses/{id}", s.deleteExpense)
	s.rt.Patch("/v1/expenses/{id}/installments/{number}", s.setInstallmentPaid)
	// Bank accounts (v1)
	s.rt.Post("/v1/banks", s.postBank)
	s.rt.Get("/v1/banks", s.listBanks)
	s.rt.Get("/v1/banks/{id}", s.getBank)
	s.rt.Patch("/v1/banks/{id}", s.patchBank)
	s.rt.Delete("/v1/banks/{id}", s.deleteBank)
	// Credit cards (v1)
	s.rt.Post("/v1/cards", s.postCard)
	s.rt.Get("/v1/cards", s.listCards)
	s.rt.Get("/v1/cards/due-dates", s.cardDueDates)
	s.rt.Get("/v1/cards/{id}", s.getCard)
	s.rt.Patch("/v1/cards/{id}", s.patchCard)
	s.rt.Delete("/v1/cards/{id}", s.deleteCard)
	s.rt.Get("/v1/cards/{id}/invoice", s.getInvoice)
	// Categories (v1)
	s.rt.Post("/v1/categories", s.postCategory)
	s.rt.Get("/v1/categories", s.listCategories)
	s.rt.Get("/v1/categories/{id}", s.getCategory)
	s.rt.Patch("/v1/categories/{id}", s.patchCategory)
	s.rt.Delete("/v1/categories/{id}", s.deleteCategory)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
