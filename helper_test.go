package btcdca

import (
	"time"

	"github.com/shopspring/decimal"
)

// dec is a helper for tests to build a decimal from a literal.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ndec is a helper for tests to build a present optional decimal.
func ndec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// at is a helper for tests to build a UTC instant.
func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}
