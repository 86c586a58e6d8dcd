package btcdca

import (
	"sort"
	"strings"

	"github.com/janw/btcdca/date"
	"github.com/shopspring/decimal"
)

// MonthlyBucket accumulates the real purchases of one calendar month.
type MonthlyBucket struct {
	EUR      decimal.Decimal
	BTC      decimal.Decimal
	Count    int
	MinPrice decimal.NullDecimal // lowest observed purchase price, absent if no row carried one
	MaxPrice decimal.NullDecimal
}

// AvgPrice returns the bucket's average entry price, or exact zero for an
// empty BTC sum.
func (b MonthlyBucket) AvgPrice() decimal.Decimal {
	if b.BTC.IsZero() {
		return decimal.Zero
	}
	return b.EUR.Div(b.BTC)
}

// QuarterlyBucket accumulates the real purchases of one calendar quarter.
type QuarterlyBucket struct {
	EUR   decimal.Decimal
	BTC   decimal.Decimal
	Count int
}

// AvgPrice returns the bucket's average entry price, or exact zero for an
// empty BTC sum.
func (b QuarterlyBucket) AvgPrice() decimal.Decimal {
	if b.BTC.IsZero() {
		return decimal.Zero
	}
	return b.EUR.Div(b.BTC)
}

// Inferred is an audit entry for a real purchase whose cost basis had to be
// derived rather than read from the source.
type Inferred struct {
	Record Record
	Cost   decimal.Decimal
	Source CostBasisSource
}

// AmountCount is one line of the deposit distribution.
type AmountCount struct {
	Amount decimal.Decimal
	Count  int
}

// Analysis is the aggregation result: a snapshot computed once per run from
// the full record set and never mutated afterwards.
type Analysis struct {
	// Records is the time-ordered set the analysis ran on, i.e. every input
	// record that carried a parseable timestamp.
	Records []Record

	PurchasesAll  []Record // purchase-classified records
	RealPurchases []Record // purchases with a BTC amount
	NonExecuted   []Record // purchases without one

	Inferred []Inferred

	TotalBTC decimal.Decimal
	TotalEUR decimal.Decimal
	AvgPrice decimal.Decimal // weighted average entry price, zero if no BTC

	Monthly   map[string]*MonthlyBucket   // keyed "YYYY-MM"
	Quarterly map[string]*QuarterlyBucket // keyed "YYYY-Qn"

	FeeEURTotal decimal.Decimal // over all records, not only purchases
	FeeBTCTotal decimal.Decimal

	Deposits      []Record
	Withdrawals   []Record
	Sends         []Record
	SendReversals []Record

	DepositTotal        decimal.Decimal
	WithdrawalTotal     decimal.Decimal
	SendTotalBTC        decimal.Decimal
	SendTotalBTCExclRev decimal.Decimal

	PurchaseDays      int // distinct days with at least one real purchase
	MultiPurchaseDays int // days with more than one
	MaxPerDay         int

	NonExecByDesc    map[string]int // keyed by trimmed description, "" is its own bucket
	NonExecAmountEUR decimal.Decimal

	depositCounts map[string]AmountCount // keyed by normalized amount string

	StartDate date.Date
	EndDate   date.Date
}

// Analyze runs the aggregation over the normalized record set. Records
// without a timestamp are dropped first, the rest are processed in ascending
// time order.
func Analyze(records []Record) *Analysis {
	rows := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Time.IsZero() {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	a := &Analysis{
		Records:       rows,
		Monthly:       make(map[string]*MonthlyBucket),
		Quarterly:     make(map[string]*QuarterlyBucket),
		NonExecByDesc: make(map[string]int),
		depositCounts: make(map[string]AmountCount),
	}

	for _, r := range rows {
		if !r.IsPurchase() {
			continue
		}
		a.PurchasesAll = append(a.PurchasesAll, r)
		if r.IsExecuted() {
			a.RealPurchases = append(a.RealPurchases, r)
		} else {
			a.NonExecuted = append(a.NonExecuted, r)
		}
	}

	a.aggregatePurchases()
	a.aggregateFees()
	a.aggregateByType()
	a.aggregateDays()
	a.aggregateNonExecuted()

	if len(rows) > 0 {
		a.StartDate = rows[0].Day()
		a.EndDate = rows[len(rows)-1].Day()
	}
	return a
}

func (a *Analysis) aggregatePurchases() {
	for _, r := range a.RealPurchases {
		cost, source := ResolveCostBasis(r)
		a.TotalBTC = a.TotalBTC.Add(orZero(r.AmountBTC))
		a.TotalEUR = a.TotalEUR.Add(cost)
		if source != CostBasisProvided {
			a.Inferred = append(a.Inferred, Inferred{Record: r, Cost: cost, Source: source})
		}

		day := r.Day()
		m := a.Monthly[day.MonthKey()]
		if m == nil {
			m = &MonthlyBucket{}
			a.Monthly[day.MonthKey()] = m
		}
		m.EUR = m.EUR.Add(cost)
		m.BTC = m.BTC.Add(orZero(r.AmountBTC))
		m.Count++
		if r.Price.Valid {
			if !m.MinPrice.Valid || r.Price.Decimal.LessThan(m.MinPrice.Decimal) {
				m.MinPrice = r.Price
			}
			if !m.MaxPrice.Valid || r.Price.Decimal.GreaterThan(m.MaxPrice.Decimal) {
				m.MaxPrice = r.Price
			}
		}

		q := a.Quarterly[day.QuarterKey()]
		if q == nil {
			q = &QuarterlyBucket{}
			a.Quarterly[day.QuarterKey()] = q
		}
		q.EUR = q.EUR.Add(cost)
		q.BTC = q.BTC.Add(orZero(r.AmountBTC))
		q.Count++
	}

	if !a.TotalBTC.IsZero() {
		a.AvgPrice = a.TotalEUR.Div(a.TotalBTC)
	}
}

func (a *Analysis) aggregateFees() {
	for _, r := range a.Records {
		a.FeeEURTotal = a.FeeEURTotal.Add(orZero(r.FeeEUR))
		a.FeeBTCTotal = a.FeeBTCTotal.Add(orZero(r.FeeBTC))
	}
}

func (a *Analysis) aggregateByType() {
	for _, r := range a.Records {
		switch r.Type {
		case "Deposit":
			a.Deposits = append(a.Deposits, r)
			a.DepositTotal = a.DepositTotal.Add(orZero(r.AmountEUR))
			if r.AmountEUR.Valid {
				key := r.AmountEUR.Decimal.String()
				c := a.depositCounts[key]
				c.Amount = r.AmountEUR.Decimal
				c.Count++
				a.depositCounts[key] = c
			}
		case "Withdrawal":
			a.Withdrawals = append(a.Withdrawals, r)
			a.WithdrawalTotal = a.WithdrawalTotal.Add(orZero(r.AmountEUR))
		case "Send":
			a.Sends = append(a.Sends, r)
			a.SendTotalBTC = a.SendTotalBTC.Add(orZero(r.AmountBTC))
			if isReversal(r) {
				a.SendReversals = append(a.SendReversals, r)
			} else {
				a.SendTotalBTCExclRev = a.SendTotalBTCExclRev.Add(orZero(r.AmountBTC))
			}
		}
	}
}

func isReversal(r Record) bool {
	return strings.EqualFold(strings.TrimSpace(r.Description), "reversal")
}

func (a *Analysis) aggregateDays() {
	byDay := make(map[date.Date]int)
	for _, r := range a.RealPurchases {
		byDay[r.Day()]++
	}
	a.PurchaseDays = len(byDay)
	for _, n := range byDay {
		if n > 1 {
			a.MultiPurchaseDays++
		}
		if n > a.MaxPerDay {
			a.MaxPerDay = n
		}
	}
}

// aggregateNonExecuted sums the EUR leg of non-executed purchases signed,
// unlike cost-basis resolution which takes the absolute value: these rows
// are order intents, not realized spend.
func (a *Analysis) aggregateNonExecuted() {
	for _, r := range a.NonExecuted {
		a.NonExecByDesc[strings.TrimSpace(r.Description)]++
		a.NonExecAmountEUR = a.NonExecAmountEUR.Add(orZero(r.AmountEUR))
	}
}

// MonthKeys returns the monthly bucket keys in ascending order.
func (a *Analysis) MonthKeys() []string {
	keys := make([]string, 0, len(a.Monthly))
	for k := range a.Monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// QuarterKeys returns the quarterly bucket keys in ascending order.
func (a *Analysis) QuarterKeys() []string {
	keys := make([]string, 0, len(a.Quarterly))
	for k := range a.Quarterly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DepositDistribution returns the deposit amount frequencies sorted by
// ascending amount.
func (a *Analysis) DepositDistribution() []AmountCount {
	dist := make([]AmountCount, 0, len(a.depositCounts))
	for _, c := range a.depositCounts {
		dist = append(dist, c)
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].Amount.LessThan(dist[j].Amount) })
	return dist
}

// NonExecDescriptions returns the non-executed breakdown keys in ascending
// order, for deterministic rendering.
func (a *Analysis) NonExecDescriptions() []string {
	keys := make([]string, 0, len(a.NonExecByDesc))
	for k := range a.NonExecByDesc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
