package shorthand

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

var (
	dateToken   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	amountToken = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	saleSerial  = regexp.MustCompile(`^(\d+)\.$`)
)

// looksLikeDate reports whether tok has the D/M/YY shape. The values may
// still be out of bounds; parseShortDate validates them.
func looksLikeDate(tok string) bool {
	return dateToken.MatchString(tok)
}

// parseShortDate parses a D/M/YY token, day first, mapping two-digit
// years to 2000+YY. Day or month out of bounds is a hard error naming the
// offending token rather than a guess.
func parseShortDate(tok string) (models.Date, error) {
	m := dateToken.FindStringSubmatch(tok)
	if m == nil {
		return models.Date{}, fmt.Errorf("malformed date %q, want D/M/YY", tok)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if day < 1 || day > 31 {
		return models.Date{}, fmt.Errorf("invalid day in date %q", tok)
	}
	if month < 1 || month > 12 {
		return models.Date{}, fmt.Errorf("invalid month in date %q", tok)
	}
	return models.NewDate(2000+year, time.Month(month), day), nil
}

// isAmount reports whether tok is a plain positive number token.
func isAmount(tok string) bool {
	return amountToken.MatchString(tok)
}

// parseAmount parses a positive currency amount.
func parseAmount(tok string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", tok)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %q", tok)
	}
	return d, nil
}

// saleNumber extracts the serial from a numbered-sale prefix ("7." -> 7).
func saleNumber(tok string) (int, bool) {
	m := saleSerial.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
