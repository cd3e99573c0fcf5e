package ledger

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name   string
		last   time.Time
		period RecurrencePeriod
		want   time.Time
	}{
		{"daily", date(2025, time.March, 10), Daily, date(2025, time.March, 11)},
		{"weekly", date(2025, time.March, 10), Weekly, date(2025, time.March, 17)},
		{"monthly", date(2025, time.March, 10), Monthly, date(2025, time.April, 10)},
		{"monthly clamps", date(2025, time.January, 31), Monthly, date(2025, time.February, 28)},
		{"yearly", date(2025, time.March, 10), Yearly, date(2026, time.March, 10)},
		{"yearly leap clamps", date(2024, time.February, 29), Yearly, date(2025, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextOccurrence(tc.last, tc.period); !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProject_WithinHorizon(t *testing.T) {
	start := date(2025, time.January, 5)
	today := date(2025, time.March, 1)
	next, ok := Project(start, Monthly, today, 30)
	if !ok {
		t.Fatalf("expected a projection within 30 days")
	}
	if want := date(2025, time.March, 5); !next.Equal(want) {
		t.Fatalf("got %v, want %v", next, want)
	}
}

func TestProject_BeyondHorizon(t *testing.T) {
	start := date(2025, time.January, 5)
	today := date(2025, time.March, 6)
	// next monthly occurrence is April 5, 30 days out from March 6
	if _, ok := Project(start, Monthly, today, 7); ok {
		t.Fatalf("expected no projection within 7 days")
	}
	if next, ok := Project(start, Monthly, today, 30); !ok || !next.Equal(date(2025, time.April, 5)) {
		t.Fatalf("expected April 5 within 30 days, got %v ok=%v", next, ok)
	}
}

func TestProject_NeverMutatesAnchor(t *testing.T) {
	// an old anchor far in the past still projects from today
	start := date(2020, time.June, 15)
	today := date(2025, time.March, 1)
	next, ok := Project(start, Monthly, today, 31)
	if !ok {
		t.Fatalf("expected projection")
	}
	if want := date(2025, time.March, 15); !next.Equal(want) {
		t.Fatalf("got %v, want %v", next, want)
	}
}

func TestProject_InvalidInputs(t *testing.T) {
	if _, ok := Project(date(2025, time.January, 1), RecurrencePeriod("fortnightly"), date(2025, time.February, 1), 30); ok {
		t.Fatalf("unknown period should not project")
	}
	if _, ok := Project(date(2025, time.January, 1), Monthly, date(2025, time.February, 1), -1); ok {
		t.Fatalf("negative horizon should not project")
	}
}

func TestAddMonths_Clamping(t *testing.T) {
	if got := AddMonths(date(2025, time.January, 31), 1); !got.Equal(date(2025, time.February, 28)) {
		t.Fatalf("Jan 31 + 1 month: got %v", got)
	}
	if got := AddMonths(date(2024, time.January, 31), 1); !got.Equal(date(2024, time.February, 29)) {
		t.Fatalf("leap Jan 31 + 1 month: got %v", got)
	}
	if got := AddMonths(date(2025, time.November, 30), 3); !got.Equal(date(2026, time.February, 28)) {
		t.Fatalf("year rollover: got %v", got)
	}
}
