// Package btcdca analyzes a personal Bitcoin dollar-cost-averaging export:
// it normalizes the export's transaction rows into one canonical record
// shape, and computes the aggregate investment statistics rendered by the
// report and chart packages.
package btcdca

import (
	"strings"
	"time"

	"github.com/janw/btcdca/date"
	"github.com/shopspring/decimal"
)

// Record is the canonical transaction row every computation works on.
// Numeric fields are optional: the source schemas omit the currency legs a
// transaction does not have, and absent is not the same as zero.
type Record struct {
	// Time is the transaction instant. The zero value marks a row whose
	// timestamp could not be recovered; such rows are excluded from analysis.
	Time time.Time

	Type        string // free-form transaction type ("Purchase", "Deposit", ...)
	Description string

	AmountEUR decimal.NullDecimal
	FeeEUR    decimal.NullDecimal
	AmountBTC decimal.NullDecimal
	FeeBTC    decimal.NullDecimal
	Price     decimal.NullDecimal // EUR per BTC, when the source provides it
	CostBasis decimal.NullDecimal // EUR, when the source provides it directly
}

// IsPurchase reports whether the record is purchase-classified. Only the
// transaction type participates in this decision.
func (r Record) IsPurchase() bool {
	switch strings.ToLower(r.Type) {
	case "purchase", "trade":
		return true
	}
	return false
}

// IsExecuted reports whether the record carries a BTC amount. A purchase
// without one is an order intent that never filled.
func (r Record) IsExecuted() bool { return r.AmountBTC.Valid }

// Day returns the calendar day of the record.
func (r Record) Day() date.Date { return date.FromTime(r.Time) }
