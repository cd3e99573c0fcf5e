package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/joho/godotenv"

	"finledger/internal/httpapi"
	"finledger/internal/ledger"
	"finledger/internal/service/account"
	"finledger/internal/storage"
	"finledger/internal/storage/memory"
	pgstore "finledger/internal/storage/postgres"
)

func main() {
	// Load .env if present; real env always wins.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	var srvMux http.Handler
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		// Use Postgres store when DATABASE_URL is provided
		if err := pgstore.Migrate(dsn); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		if devSeedEnabled() {
			user, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				seedFixtures(ctx, logger, "postgres", pg, user)
			}
		}
		srvMux = httpapi.New(pg, nil, pg, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		store := memory.New()
		user := ledger.User{ID: uuid.New()}
		store.SeedUser(user)
		seedFixtures(ctx, logger, "memory", store, user)
		srvMux = httpapi.New(store, memory.NewReceipts(), nil, logger).Handler()
		logger.Info("storage backend: memory")
	}

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("finledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

func devSeedEnabled() bool {
	dev := strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED")))
	return dev == "1" || dev == "true" || dev == "yes"
}

// seedFixtures creates a starter bank account, credit card and categories
// through the account service so all validation and balance rules apply.
func seedFixtures(ctx context.Context, l *slog.Logger, backend string, store storage.TxStore, user ledger.User) {
	svc := account.New(store)
	initial, _ := money.NewAmountFromMinorUnits("BRL", 100000)
	bank, err := svc.CreateBankAccount(ctx, account.BankAccountInput{
		OwnerID:        user.ID,
		Name:           "Checking",
		Kind:           ledger.AccountChecking,
		InitialBalance: initial,
	})
	if err != nil {
		l.Error("dev seed: bank account", "err", err)
		return
	}
	limit, _ := money.NewAmountFromMinorUnits("BRL", 500000)
	card, err := svc.CreateCreditCard(ctx, account.CreditCardInput{
		OwnerID:    user.ID,
		Name:       "Main Card",
		Brand:      ledger.BrandVisa,
		Limit:      limit,
		ClosingDay: 28,
		DueDay:     10,
	})
	if err != nil {
		l.Error("dev seed: credit card", "err", err)
		return
	}
	salary, err := svc.CreateCategory(ctx, account.CategoryInput{OwnerID: user.ID, Name: "Salary", Kind: ledger.CategoryIncome})
	if err != nil {
		l.Error("dev seed: category", "err", err)
		return
	}
	groceries, err := svc.CreateCategory(ctx, account.CategoryInput{OwnerID: user.ID, Name: "Groceries", Kind: ledger.CategoryExpense})
	if err != nil {
		l.Error("dev seed: category", "err", err)
		return
	}
	l.Info("DEV seed ("+backend+")",
		"user_id", user.ID.String(),
		"bank_account_id", bank.ID.String(),
		"card_id", card.ID.String(),
		"income_category_id", salary.ID.String(),
		"expense_category_id", groceries.ID.String(),
	)
	printDevSeedBanner(user, bank, card, salary, groceries)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(user ledger.User, bank ledger.BankAccount, card ledger.CreditCard, salary, groceries ledger.Category) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", user.ID.String())
	fmt.Printf("bank_account_id: %s\n", bank.ID.String())
	fmt.Printf("card_id: %s\n", card.ID.String())
	fmt.Printf("income_category_id: %s\n", salary.ID.String())
	fmt.Printf("expense_category_id: %s\n", groceries.ID.String())
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
