package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"finledger/internal/errs"
	"finledger/internal/ledger"
	"finledger/internal/storage/memory"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func minorOf(t *testing.T, a money.Amount) int64 {
	t.Helper()
	m, ok := a.MinorUnits()
	if !ok {
		t.Fatalf("amount not representable in minor units")
	}
	return m
}

func setup(t *testing.T) (Service, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.New()
	user := ledger.User{ID: uuid.New()}
	store.SeedUser(user)
	return New(store), store, user.ID
}

func TestCreateBankAccount_StartsAtInitialBalance(t *testing.T) {
	svc, _, ownerID := setup(t)
	a, err := svc.CreateBankAccount(context.Background(), BankAccountInput{
		OwnerID:        ownerID,
		Name:           "  Checking  ",
		Kind:           ledger.AccountChecking,
		InitialBalance: amt(t, 100000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Name != "Checking" {
		t.Fatalf("name should be trimmed, got %q", a.Name)
	}
	if got := minorOf(t, a.CurrentBalance); got != 100000 {
		t.Fatalf("current balance: got %d, want 100000", got)
	}
	if !a.Active {
		t.Fatalf("new accounts start active")
	}
}

func TestCreateBankAccount_DuplicateNameCaseInsensitive(t *testing.T) {
	svc, _, ownerID := setup(t)
	ctx := context.Background()
	if _, err := svc.CreateBankAccount(ctx, BankAccountInput{OwnerID: ownerID, Name: "Checking", Kind: ledger.AccountChecking, InitialBalance: amt(t, 0)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateBankAccount(ctx, BankAccountInput{OwnerID: ownerID, Name: "CHECKING", Kind: ledger.AccountSavings, InitialBalance: amt(t, 0)})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// another owner may reuse the name
	otherOwner := uuid.New()
	if _, err := svc.CreateBankAccount(ctx, BankAccountInput{OwnerID: otherOwner, Name: "Checking", Kind: ledger.AccountChecking, InitialBalance: amt(t, 0)}); err != nil {
		t.Fatalf("other owner create: %v", err)
	}
}

func TestUpdateBankAccount_InitialBalanceShiftsCurrentByDelta(t *testing.T) {
	svc, store, ownerID := setup(t)
	ctx := context.Background()
	a, err := svc.CreateBankAccount(ctx, BankAccountInput{OwnerID: ownerID, Name: "Checking", Kind: ledger.AccountChecking, InitialBalance: amt(t, 100000)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// simulate accumulated activity: current drops to 70000
	a.CurrentBalance = amt(t, 70000)
	if _, err := store.UpdateBankAccount(ctx, a); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	newInitial := amt(t, 120000)
	updated, err := svc.UpdateBankAccount(ctx, ownerID, a.ID, BankAccountPatch{InitialBalance: &newInitial})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := minorOf(t, updated.InitialBalance); got != 120000 {
		t.Fatalf("initial: got %d, want 120000", got)
	}
	// +20000 delta carries over, preserving the -30000 of activity
	if got := minorOf(t, updated.CurrentBalance); got != 90000 {
		t.Fatalf("current: got %d, want 90000", got)
	}
}

func TestDeleteBankAccount_ReferentialGuard(t *testing.T) {
	svc, store, ownerID := setup(t)
	ctx := context.Background()
	a, err := svc.CreateBankAccount(ctx, BankAccountInput{OwnerID: ownerID, Name: "Checking", Kind: ledger.AccountChecking, InitialBalance: amt(t, 0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inc := ledger.Income{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		CategoryID:    uuid.New(),
		BankAccountID: a.ID,
		Description:   "Salary",
		Amount:        amt(t, 1000),
		Date:          time.Now().UTC(),
	}
	if _, err := store.CreateIncome(ctx, inc); err != nil {
		t.Fatalf("seed income: %v", err)
	}

	if err := svc.DeleteBankAccount(ctx, ownerID, a.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict while referenced, got %v", err)
	}
	if err := store.DeleteIncome(ctx, ownerID, inc.ID); err != nil {
		t.Fatalf("remove income: %v", err)
	}
	if err := svc.DeleteBankAccount(ctx, ownerID, a.ID); err != nil {
		t.Fatalf("delete after unreferencing: %v", err)
	}
	if _, err := svc.GetBankAccount(ctx, ownerID, a.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCreateCreditCard_Validation(t *testing.T) {
	svc, _, ownerID := setup(t)
	ctx := context.Background()
	if _, err := svc.CreateCreditCard(ctx, CreditCardInput{
		OwnerID:    ownerID,
		Name:       "Card",
		Brand:      ledger.BrandVisa,
		Limit:      amt(t, 500000),
		ClosingDay: 10,
		DueDay:     10,
	}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("closing == due must be rejected, got %v", err)
	}
	if _, err := svc.CreateCreditCard(ctx, CreditCardInput{
		OwnerID:    ownerID,
		Name:       "Card",
		Brand:      ledger.CardBrand("diners"),
		Limit:      amt(t, 500000),
		ClosingDay: 28,
		DueDay:     10,
	}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("unknown brand must be rejected, got %v", err)
	}
	card, err := svc.CreateCreditCard(ctx, CreditCardInput{
		OwnerID:    ownerID,
		Name:       "Card",
		Brand:      ledger.BrandVisa,
		Limit:      amt(t, 500000),
		ClosingDay: 28,
		DueDay:     10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := minorOf(t, card.InvoiceBalance); got != 0 {
		t.Fatalf("invoice balance must start at zero, got %d", got)
	}
}

func TestUpdateCreditCard_MergedDaysValidated(t *testing.T) {
	svc, _, ownerID := setup(t)
	ctx := context.Background()
	card, err := svc.CreateCreditCard(ctx, CreditCardInput{
		OwnerID:    ownerID,
		Name:       "Card",
		Brand:      ledger.BrandVisa,
		Limit:      amt(t, 500000),
		ClosingDay: 28,
		DueDay:     10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// moving the due day onto the current closing day must fail
	due := 28
	if _, err := svc.UpdateCreditCard(ctx, ownerID, card.ID, CreditCardPatch{DueDay: &due}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	closing := 5
	updated, err := svc.UpdateCreditCard(ctx, ownerID, card.ID, CreditCardPatch{ClosingDay: &closing})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ClosingDay != 5 || updated.DueDay != 10 {
		t.Fatalf("unexpected days: %d/%d", updated.ClosingDay, updated.DueDay)
	}
}

func TestDeleteCreditCard_ReferentialGuard(t *testing.T) {
	svc, store, ownerID := setup(t)
	ctx := context.Background()
	card, err := svc.CreateCreditCard(ctx, CreditCardInput{
		OwnerID:    ownerID,
		Name:       "Card",
		Brand:      ledger.BrandMastercard,
		Limit:      amt(t, 100000),
		ClosingDay: 28,
		DueDay:     10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	exp := ledger.Expense{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CategoryID:  uuid.New(),
		CardID:      card.ID,
		Method:      ledger.MethodCredit,
		Description: "Dinner",
		TotalAmount: amt(t, 5000),
		Date:        time.Now().UTC(),
	}
	if _, err := store.CreateExpense(ctx, exp); err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	if err := svc.DeleteCreditCard(ctx, ownerID, card.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict while referenced, got %v", err)
	}
}

func TestCategory_KindImmutableAndGuarded(t *testing.T) {
	svc, store, ownerID := setup(t)
	ctx := context.Background()
	cat, err := svc.CreateCategory(ctx, CategoryInput{OwnerID: ownerID, Name: "Salary", Kind: ledger.CategoryIncome})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	name := "Wages"
	updated, err := svc.UpdateCategory(ctx, ownerID, cat.ID, CategoryPatch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Kind != ledger.CategoryIncome {
		t.Fatalf("kind must not change, got %s", updated.Kind)
	}

	inc := ledger.Income{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		CategoryID:    cat.ID,
		BankAccountID: uuid.New(),
		Description:   "Salary",
		Amount:        amt(t, 1000),
		Date:          time.Now().UTC(),
	}
	if _, err := store.CreateIncome(ctx, inc); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if err := svc.DeleteCategory(ctx, ownerID, cat.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict while referenced, got %v", err)
	}
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	svc, _, ownerID := setup(t)
	ctx := context.Background()
	if _, err := svc.CreateCategory(ctx, CategoryInput{OwnerID: ownerID, Name: "Food", Kind: ledger.CategoryExpense}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, CategoryInput{OwnerID: ownerID, Name: "food", Kind: ledger.CategoryExpense}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
