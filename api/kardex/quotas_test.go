package kardex

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInstallmentDueDates(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	dates := installmentDueDates(start, 3)
	want := []time.Time{
		start,
		time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("date[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestInstallmentDueDatesEmpty(t *testing.T) {
	if got := installmentDueDates(time.Now(), 0); len(got) != 0 {
		t.Errorf("count 0 should yield no dates, got %d", len(got))
	}
}

func TestScheduleGuard(t *testing.T) {
	tests := []struct {
		name        string
		mensualidad string
		count       int
		wantBlocked bool
	}{
		{"valid", "500", 12, false},
		{"zero fee", "0", 12, true},
		{"negative fee", "-100", 12, true},
		{"zero count", "500", 0, true},
		{"negative count", "500", -3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warn := scheduleGuard(decimal.RequireFromString(tt.mensualidad), tt.count)
			if (warn != "") != tt.wantBlocked {
				t.Errorf("scheduleGuard(%s, %d) = %q, blocked=%v", tt.mensualidad, tt.count, warn, tt.wantBlocked)
			}
		})
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := endOfMonth(tt.in); !got.Equal(tt.want) {
			t.Errorf("endOfMonth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
