package btcdca

import "github.com/shopspring/decimal"

// CostBasisSource tags how a record's cost basis was determined. The tag
// surfaces verbatim in the audit section of the report.
type CostBasisSource string

const (
	// CostBasisProvided means the source schema carried the cost basis.
	CostBasisProvided CostBasisSource = "provided"
	// CostBasisAmountEUR means the cost basis is the absolute EUR leg.
	CostBasisAmountEUR CostBasisSource = "amount_eur"
	// CostBasisBTCTimesPrice means the cost basis is amount_btc * price.
	CostBasisBTCTimesPrice CostBasisSource = "btc*price"
	// CostBasisMissing means no field allowed a cost basis to be derived.
	CostBasisMissing CostBasisSource = "missing"
)

// ResolveCostBasis determines the EUR cost basis of a record. Exactly one of
// the four fallback tiers fires, in order: the provided cost basis, the
// absolute EUR amount, amount_btc*price quantized to 8 places, or exact zero.
func ResolveCostBasis(r Record) (decimal.Decimal, CostBasisSource) {
	if r.CostBasis.Valid {
		return r.CostBasis.Decimal, CostBasisProvided
	}
	if r.AmountEUR.Valid {
		return r.AmountEUR.Decimal.Abs(), CostBasisAmountEUR
	}
	if r.AmountBTC.Valid && r.Price.Valid {
		return Q8(r.AmountBTC.Decimal.Mul(r.Price.Decimal)), CostBasisBTCTimesPrice
	}
	return decimal.Zero, CostBasisMissing
}
