package ledger

import (
	"testing"
	"time"

	"github.com/govalues/money"
)

func amt(t *testing.T, minor int64) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromMinorUnits("BRL", minor)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func planMinor(t *testing.T, plan []Installment, i int) int64 {
	t.Helper()
	m, ok := plan[i].Amount.MinorUnits()
	if !ok {
		t.Fatalf("installment %d amount not representable", i)
	}
	return m
}

func TestPlanInstallments_EvenSplit(t *testing.T) {
	anchor := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	plan, err := PlanInstallments(amt(t, 120000), anchor, 12)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(plan))
	}
	var sum int64
	for i, ins := range plan {
		if ins.Number != i+1 {
			t.Fatalf("installment %d has number %d", i, ins.Number)
		}
		if ins.Paid || ins.PaidAt != nil {
			t.Fatalf("installment %d should start unpaid", i)
		}
		if got := planMinor(t, plan, i); got != 10000 {
			t.Fatalf("installment %d: expected 10000, got %d", i, got)
		}
		sum += planMinor(t, plan, i)
	}
	if sum != 120000 {
		t.Fatalf("plan sums to %d, want 120000", sum)
	}
}

func TestPlanInstallments_ResidueOnLast(t *testing.T) {
	anchor := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	plan, err := PlanInstallments(amt(t, 10000), anchor, 3)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// 10000/3 rounds half up to 3333; last absorbs the residue
	if got := planMinor(t, plan, 0); got != 3333 {
		t.Fatalf("unit installment: expected 3333, got %d", got)
	}
	if got := planMinor(t, plan, 2); got != 3334 {
		t.Fatalf("last installment: expected 3334, got %d", got)
	}
	var sum int64
	for i := range plan {
		sum += planMinor(t, plan, i)
	}
	if sum != 10000 {
		t.Fatalf("plan sums to %d, want 10000", sum)
	}
}

func TestPlanInstallments_DueDatesClampShortMonths(t *testing.T) {
	// Jan 31 anchor: February has no 31st, so the second due date clamps
	anchor := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	plan, err := PlanInstallments(amt(t, 30000), anchor, 3)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan[0].DueDate.Equal(anchor) {
		t.Fatalf("first due date: got %v, want anchor", plan[0].DueDate)
	}
	feb := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !plan[1].DueDate.Equal(feb) {
		t.Fatalf("second due date: got %v, want %v", plan[1].DueDate, feb)
	}
	mar := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	if !plan[2].DueDate.Equal(mar) {
		t.Fatalf("third due date: got %v, want %v", plan[2].DueDate, mar)
	}
}

func TestPlanInstallments_CountBounds(t *testing.T) {
	anchor := time.Now().UTC()
	if _, err := PlanInstallments(amt(t, 1000), anchor, 1); err == nil {
		t.Fatalf("expected error for count below minimum")
	}
	if _, err := PlanInstallments(amt(t, 1000), anchor, MaxInstallments+1); err == nil {
		t.Fatalf("expected error for count above maximum")
	}
}

func TestPlanInstallments_RejectsVanishingLast(t *testing.T) {
	// 3 cents over 2 installments: unit rounds to 2, last would be 1 -> fine.
	// 2 cents over 3 installments would need a unit of 1 and last of 0.
	anchor := time.Now().UTC()
	if _, err := PlanInstallments(amt(t, 2), anchor, 3); err == nil {
		t.Fatalf("expected error when last installment would not be positive")
	}
}
