package btcdca

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The analysis keeps every sum exact; quantizing happens only when a value is
// derived (btc*price cost basis) or displayed.

// Q8 quantizes to 8 decimal places, rounding half up. Used for BTC quantities.
func Q8(d decimal.Decimal) decimal.Decimal { return d.Round(8) }

// Q2 quantizes to 2 decimal places, rounding half up. Used for percentages.
func Q2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Q0 quantizes to the integer, rounding half up. Used for currency amounts.
func Q0(d decimal.Decimal) decimal.Decimal { return d.Round(0) }

// ParseOptionalDecimal coerces a raw field to an optional decimal value.
// An empty or whitespace-only string is absent, not zero. Any other text must
// be a valid decimal literal; malformed text is a hard error because it
// signals a corrupted export.
func ParseOptionalDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("malformed decimal %q: %w", s, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// orZero returns the value of an optional decimal, or exact zero when absent.
func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
