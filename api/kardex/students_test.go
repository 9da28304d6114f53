package kardex

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEnrollmentStart(t *testing.T) {
	fechaPago := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("explicit start month wins", func(t *testing.T) {
		got := enrollmentStart("2024-01-01", fechaPago)
		if got.Format("2006-01-02") != "2024-01-01" {
			t.Errorf("got %v, want 2024-01-01", got)
		}
	})
	t.Run("payment date when no start month", func(t *testing.T) {
		got := enrollmentStart("", fechaPago)
		if !got.Equal(fechaPago) {
			t.Errorf("got %v, want %v", got, fechaPago)
		}
	})
	t.Run("now when nothing available", func(t *testing.T) {
		got := enrollmentStart("", time.Time{})
		if got.IsZero() {
			t.Error("start date should never be zero")
		}
	})
}

func TestInvestmentFor(t *testing.T) {
	got := investmentFor(decimal.RequireFromString("500"), 12)
	if !got.Equal(decimal.RequireFromString("6000")) {
		t.Errorf("investmentFor(500, 12) = %s, want 6000", got)
	}
}
