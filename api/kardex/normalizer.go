package kardex

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"CampusPagosGo/internal/config"
)

// Field normalizers are total: malformed input degrades to a safe default,
// never an error. Historical files are too dirty for anything stricter.

// NormalizeStudentCode uppercases a carnet, keeps only the first token of a
// compound value (e.g. "AB-1/2") and strips everything non-alphanumeric.
// An empty result gets a synthetic unique code so the row still anchors.
func NormalizeStudentCode(raw string) string {
	code := firstToken(raw)
	code = keepAlnum(strings.ToUpper(code))
	if code == "" {
		return config.SyntheticCarnetPrefix + strings.ToUpper(uuid.New().String()[:8])
	}
	return code
}

// NormalizeAmount strips currency symbols and thousands separators. Anything
// that still does not parse is zero.
func NormalizeAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "Q", "")
	s = strings.ReplaceAll(s, "q", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeDate accepts Excel serial numbers and the usual string layouts.
// Unparseable input falls back to now.
func NormalizeDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Now()
	}
	if t, err := parseExcelSerialDate(s); err == nil {
		return t
	}
	// dd/mm layouts first: these files come from Guatemalan banks.
	layouts := []string{
		"02/01/2006", "2/1/2006", "02/01/06", "2/1/06",
		"02-01-2006", "2-1-2006",
		config.DateFormat, "2006/01/02",
		"01/02/2006", "1/2/2006",
		"02-Jan-2006", "02-Jan-06", "2 Jan 2006",
		"2006-01-02 15:04:05", time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse(config.DateFormat, s[:10]); err == nil {
			return t
		}
	}
	return time.Now()
}

// parseExcelSerialDate converts an Excel serial (possibly with a fractional
// day) counted from 1899-12-30. Serials below 60 predate the phantom
// 1900-02-29 that Excel inserts, so they need a one-day shift.
func parseExcelSerialDate(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if f < 1 || f > 300000 {
		return time.Time{}, strconv.ErrRange
	}
	days := int(f)
	frac := f - float64(days)
	if days < 60 {
		days++
	}
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	t := base.AddDate(0, 0, days)
	return t.Add(time.Duration(frac * float64(24*time.Hour))), nil
}

// NormalizeReceiptNumber takes the first token of compound receipts like
// "545109 / 1740192", strips non-alphanumerics and uppercases. Idempotent.
func NormalizeReceiptNumber(raw string) string {
	return keepAlnum(strings.ToUpper(firstToken(raw)))
}

// NormalizeBankName trims, uppercases and folds known synonyms to one
// canonical label so the same bank never produces two fingerprints.
func NormalizeBankName(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := config.BankAliases[s]; ok {
		return canonical
	}
	return s
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func keepAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
