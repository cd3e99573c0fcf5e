package ledger

import (
	"testing"
	"time"
)

func TestResolveInvoicePeriod_Window(t *testing.T) {
	// closing on the 28th, due on the 10th of the next month
	p, err := ResolveInvoicePeriod(28, 10, time.March, 2025)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantStart := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC)
	wantDue := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("window: got %v..%v, want %v..%v", p.Start, p.End, wantStart, wantEnd)
	}
	if !p.Due.Equal(wantDue) {
		t.Fatalf("due: got %v, want %v (must advance past closing)", p.Due, wantDue)
	}
}

func TestResolveInvoicePeriod_DueAfterClosingSameMonth(t *testing.T) {
	// due day after closing day in the same month needs no advance
	p, err := ResolveInvoicePeriod(5, 15, time.June, 2025)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !p.Due.Equal(want) {
		t.Fatalf("due: got %v, want %v", p.Due, want)
	}
}

func TestResolveInvoicePeriod_FebruaryClamp(t *testing.T) {
	p, err := ResolveInvoicePeriod(31, 10, time.February, 2025)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantEnd := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !p.End.Equal(wantEnd) {
		t.Fatalf("end: got %v, want %v", p.End, wantEnd)
	}
	wantStart := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Fatalf("start: got %v, want %v", p.Start, wantStart)
	}
}

func TestInvoicePeriod_BoundaryMembership(t *testing.T) {
	p, err := ResolveInvoicePeriod(28, 10, time.March, 2025)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Contains(p.Start) {
		t.Fatalf("expense dated exactly on the previous closing belongs to the prior invoice")
	}
	if !p.Contains(p.End) {
		t.Fatalf("expense dated exactly on the closing belongs to this invoice")
	}
	if !p.Contains(p.Start.AddDate(0, 0, 1)) {
		t.Fatalf("day after previous closing should be inside the window")
	}
	if p.Contains(p.End.AddDate(0, 0, 1)) {
		t.Fatalf("day after closing should be outside the window")
	}
}

func TestResolveInvoicePeriod_Rejections(t *testing.T) {
	if _, err := ResolveInvoicePeriod(10, 10, time.March, 2025); err == nil {
		t.Fatalf("expected error when closing day equals due day")
	}
	if _, err := ResolveInvoicePeriod(0, 10, time.March, 2025); err == nil {
		t.Fatalf("expected error for closing day 0")
	}
	if _, err := ResolveInvoicePeriod(10, 32, time.March, 2025); err == nil {
		t.Fatalf("expected error for due day 32")
	}
	if _, err := ResolveInvoicePeriod(10, 20, time.Month(13), 2025); err == nil {
		t.Fatalf("expected error for month 13")
	}
}
