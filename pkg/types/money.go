package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCents renders integer cents as a fixed two-decimal amount ("30.00").
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// ParseAmount converts a decimal amount string into cents. Amounts with more
// than two fractional digits or negative values are rejected.
func ParseAmount(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than two decimals", raw)
	}
	return cents.IntPart(), nil
}
