package kardex

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"CampusPagosGo/internal/config"
)

func TestNormalizeStudentCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "20240123", "20240123"},
		{"lowercase", "ab123", "AB123"},
		{"compound keeps first token", "AB-1/2", "AB1"},
		{"surrounding spaces", "  20240123  ", "20240123"},
		{"punctuation stripped", "2024.01-23", "20240123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStudentCode(tt.in); got != tt.want {
				t.Errorf("NormalizeStudentCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeStudentCodeSynthetic(t *testing.T) {
	got := NormalizeStudentCode("  /  ")
	if !strings.HasPrefix(got, config.SyntheticCarnetPrefix) {
		t.Fatalf("empty carnet should get synthetic code, got %q", got)
	}
	if len(got) != len(config.SyntheticCarnetPrefix)+8 {
		t.Errorf("synthetic code %q has unexpected length", got)
	}
	if again := NormalizeStudentCode(""); again == got {
		t.Errorf("synthetic codes should be unique, got %q twice", got)
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "250", "250"},
		{"quetzal prefix", "Q1,000.50", "1000.50"},
		{"lowercase q with space", "q 250.00", "250.00"},
		{"dollar sign", "$30", "30"},
		{"garbage", "n/a", "0"},
		{"empty", "", "0"},
		{"negative", "-15.25", "-15.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmount(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("NormalizeAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"excel serial", "44562", "2022-01-01"},
		{"excel serial fractional", "44562.75", "2022-01-01"},
		{"excel serial before phantom leap day", "1", "1900-01-01"},
		{"dd/mm/yyyy", "15/03/2024", "2024-03-15"},
		{"ambiguous day first", "03/04/2024", "2024-04-03"},
		{"short year", "15/03/24", "2024-03-15"},
		{"iso", "2024-03-15", "2024-03-15"},
		{"iso with time", "2024-03-15 10:30:00", "2024-03-15"},
		{"dashes", "15-03-2024", "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.in).Format(config.DateFormat)
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateFallback(t *testing.T) {
	// Unparseable input must still produce a usable date.
	got := NormalizeDate("sin fecha")
	if got.IsZero() {
		t.Fatal("fallback date should not be zero")
	}
}

func TestParseExcelSerialDateRejects(t *testing.T) {
	for _, in := range []string{"abc", "0.5", "-3", "400000", "15/03/2024"} {
		if _, err := parseExcelSerialDate(in); err == nil {
			t.Errorf("parseExcelSerialDate(%q) should fail", in)
		}
	}
}

func TestNormalizeReceiptNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "545109", "545109"},
		{"compound", "545109 / 1740192", "545109"},
		{"dashed", "no-123", "NO123"},
		{"spaces", "  98 76  ", "9876"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeReceiptNumber(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeReceiptNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeReceiptNumber(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeBankName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"alias short", "bi", "BANCO INDUSTRIAL"},
		{"alias already canonical", "Banco Industrial", "BANCO INDUSTRIAL"},
		{"collapsed spaces", "  banco   industrial ", "BANCO INDUSTRIAL"},
		{"gyt", "G&T", "BANCO G&T CONTINENTAL"},
		{"banrural split", "ban rural", "BANRURAL"},
		{"unknown passes through", "Banco Azteca", "BANCO AZTECA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBankName(tt.in); got != tt.want {
				t.Errorf("NormalizeBankName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
