package btcdca

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustLoad(t *testing.T, export string) []Record {
	t.Helper()
	records, err := LoadRecords(strings.NewReader(export))
	if err != nil {
		t.Fatalf("LoadRecords() failed: %v", err)
	}
	return records
}

func TestAnalyzeWideEndToEnd(t *testing.T) {
	a := Analyze(mustLoad(t, wideExport))

	if !a.TotalBTC.Equal(dec("0.01")) {
		t.Errorf("TotalBTC = %s, want 0.01", a.TotalBTC)
	}
	if !a.TotalEUR.Equal(dec("500")) {
		t.Errorf("TotalEUR = %s, want 500", a.TotalEUR)
	}
	if !a.AvgPrice.Equal(dec("50000")) {
		t.Errorf("AvgPrice = %s, want 50000", a.AvgPrice)
	}

	if len(a.Monthly) != 1 {
		t.Fatalf("Monthly has %d buckets, want 1", len(a.Monthly))
	}
	jan := a.Monthly["2023-01"]
	if jan == nil {
		t.Fatalf("Monthly missing bucket 2023-01, got keys %v", a.MonthKeys())
	}
	if !jan.EUR.Equal(dec("500")) || !jan.BTC.Equal(dec("0.01")) || jan.Count != 1 {
		t.Errorf("bucket 2023-01 = %+v, want eur=500 btc=0.01 count=1", jan)
	}
	if !jan.MinPrice.Valid || !jan.MinPrice.Decimal.Equal(dec("50000")) || !jan.MaxPrice.Decimal.Equal(dec("50000")) {
		t.Errorf("bucket 2023-01 min/max price = %+v/%+v, want both 50000", jan.MinPrice, jan.MaxPrice)
	}

	if q := a.Quarterly["2023-Q1"]; q == nil || !q.EUR.Equal(dec("500")) {
		t.Errorf("Quarterly[2023-Q1] = %+v, want eur=500", q)
	}

	if len(a.Withdrawals) != 1 || !a.WithdrawalTotal.Equal(dec("100")) {
		t.Errorf("withdrawals = %d total %s, want 1 total 100", len(a.Withdrawals), a.WithdrawalTotal)
	}
	if got, want := a.StartDate.String(), "2023-01-05"; got != want {
		t.Errorf("StartDate = %s, want %s", got, want)
	}
	if got, want := a.EndDate.String(), "2023-02-01"; got != want {
		t.Errorf("EndDate = %s, want %s", got, want)
	}

	// Fees sum over all records, not only purchases.
	if !a.FeeEURTotal.Equal(dec("1.5")) {
		t.Errorf("FeeEURTotal = %s, want 1.5", a.FeeEURTotal)
	}
}

func TestAnalyzePairBackfilledCostBasis(t *testing.T) {
	a := Analyze(mustLoad(t, pairExport))

	if !a.TotalBTC.Equal(dec("0.02")) || !a.TotalEUR.Equal(dec("900")) {
		t.Errorf("totals = %s BTC / %s EUR, want 0.02 / 900", a.TotalBTC, a.TotalEUR)
	}
	// The back-filled cost basis counts as provided, so nothing is audited
	// as inferred.
	if len(a.Inferred) != 0 {
		t.Errorf("Inferred has %d entries, want 0", len(a.Inferred))
	}
	if jan := a.Monthly["2023-01"]; jan == nil || !jan.EUR.Equal(dec("900")) || !jan.BTC.Equal(dec("0.02")) {
		t.Errorf("Monthly[2023-01] = %+v, want eur=900 btc=0.02", jan)
	}
}

// mixedRecords covers several months, non-executed purchases, and every
// other transaction type. Deliberately out of time order.
func mixedRecords() []Record {
	return []Record{
		{Time: at(2023, time.April, 2, 9), Type: "purchase", AmountBTC: ndec("0.005"), Price: ndec("60000")},
		{Time: at(2023, time.January, 5, 10), Type: "Purchase", AmountBTC: ndec("0.01"), CostBasis: ndec("500"), Price: ndec("50000")},
		{Time: at(2023, time.January, 5, 18), Type: "Trade", AmountBTC: ndec("0.02"), AmountEUR: ndec("-900"), Price: ndec("45000")},
		{Time: at(2023, time.February, 1, 9), Type: "Purchase", AmountEUR: ndec("-50"), Description: " Target Order "},
		{Time: at(2023, time.February, 2, 9), Type: "Trade"},
		{Time: at(2023, time.January, 10, 9), Type: "Deposit", AmountEUR: ndec("100")},
		{Time: at(2023, time.February, 10, 9), Type: "Deposit", AmountEUR: ndec("100")},
		{Time: at(2023, time.March, 10, 9), Type: "Deposit", AmountEUR: ndec("250.5")},
		{Time: at(2023, time.March, 15, 9), Type: "Withdrawal", AmountEUR: ndec("50")},
		{Time: at(2023, time.March, 20, 9), Type: "Send", AmountBTC: ndec("-0.005"), Description: "Reversal "},
		{Time: at(2023, time.March, 21, 9), Type: "Send", AmountBTC: ndec("-0.01"), Description: "to cold storage"},
		{Time: at(2023, time.March, 25, 9), Type: "Staking", FeeEUR: ndec("0.5")},
	}
}

func TestAnalyzePartitions(t *testing.T) {
	a := Analyze(mixedRecords())

	if len(a.PurchasesAll) != 5 {
		t.Errorf("PurchasesAll = %d, want 5", len(a.PurchasesAll))
	}
	if len(a.RealPurchases)+len(a.NonExecuted) != len(a.PurchasesAll) {
		t.Errorf("real (%d) + non-executed (%d) != all purchases (%d)",
			len(a.RealPurchases), len(a.NonExecuted), len(a.PurchasesAll))
	}
	for _, r := range a.RealPurchases {
		if !r.IsExecuted() {
			t.Errorf("real purchase without BTC amount: %+v", r)
		}
	}
	for _, r := range a.NonExecuted {
		if r.IsExecuted() {
			t.Errorf("non-executed purchase with BTC amount: %+v", r)
		}
	}
}

func TestAnalyzeTotalsAndBuckets(t *testing.T) {
	a := Analyze(mixedRecords())

	if !a.TotalBTC.Equal(dec("0.035")) {
		t.Errorf("TotalBTC = %s, want 0.035", a.TotalBTC)
	}
	// 500 provided + 900 from the EUR leg + 0.005*60000.
	if !a.TotalEUR.Equal(dec("1700")) {
		t.Errorf("TotalEUR = %s, want 1700", a.TotalEUR)
	}
	if !a.AvgPrice.Equal(a.TotalEUR.Div(a.TotalBTC)) {
		t.Errorf("AvgPrice = %s, want TotalEUR/TotalBTC", a.AvgPrice)
	}

	// The monthly buckets partition the real purchase set: their sums must
	// equal the grand totals exactly.
	sumEUR, sumBTC, sumCount := decimal.Zero, decimal.Zero, 0
	for _, key := range a.MonthKeys() {
		b := a.Monthly[key]
		sumEUR = sumEUR.Add(b.EUR)
		sumBTC = sumBTC.Add(b.BTC)
		sumCount += b.Count
	}
	if !sumEUR.Equal(a.TotalEUR) || !sumBTC.Equal(a.TotalBTC) || sumCount != len(a.RealPurchases) {
		t.Errorf("monthly sums = %s EUR / %s BTC / %d, want %s / %s / %d",
			sumEUR, sumBTC, sumCount, a.TotalEUR, a.TotalBTC, len(a.RealPurchases))
	}

	// Same for the quarterly buckets.
	sumEUR, sumBTC = decimal.Zero, decimal.Zero
	for _, key := range a.QuarterKeys() {
		sumEUR = sumEUR.Add(a.Quarterly[key].EUR)
		sumBTC = sumBTC.Add(a.Quarterly[key].BTC)
	}
	if !sumEUR.Equal(a.TotalEUR) || !sumBTC.Equal(a.TotalBTC) {
		t.Errorf("quarterly sums = %s EUR / %s BTC, want %s / %s", sumEUR, sumBTC, a.TotalEUR, a.TotalBTC)
	}

	jan := a.Monthly["2023-01"]
	if jan == nil || jan.Count != 2 || !jan.MinPrice.Decimal.Equal(dec("45000")) || !jan.MaxPrice.Decimal.Equal(dec("50000")) {
		t.Errorf("Monthly[2023-01] = %+v, want count=2 min=45000 max=50000", jan)
	}
	if got := a.QuarterKeys(); len(got) != 2 || got[0] != "2023-Q1" || got[1] != "2023-Q2" {
		t.Errorf("QuarterKeys() = %v, want [2023-Q1 2023-Q2]", got)
	}
}

func TestAnalyzeInferredAudit(t *testing.T) {
	a := Analyze(mixedRecords())

	// Two real purchases had no provided cost basis: the EUR-leg one and
	// the btc*price one, in time order.
	if len(a.Inferred) != 2 {
		t.Fatalf("Inferred has %d entries, want 2", len(a.Inferred))
	}
	if a.Inferred[0].Source != CostBasisAmountEUR || !a.Inferred[0].Cost.Equal(dec("900")) {
		t.Errorf("Inferred[0] = %s %s, want 900 amount_eur", a.Inferred[0].Cost, a.Inferred[0].Source)
	}
	if a.Inferred[1].Source != CostBasisBTCTimesPrice || !a.Inferred[1].Cost.Equal(dec("300")) {
		t.Errorf("Inferred[1] = %s %s, want 300 btc*price", a.Inferred[1].Cost, a.Inferred[1].Source)
	}
}

func TestAnalyzeTypePartitions(t *testing.T) {
	a := Analyze(mixedRecords())

	if len(a.Deposits) != 3 || !a.DepositTotal.Equal(dec("450.5")) {
		t.Errorf("deposits = %d total %s, want 3 total 450.5", len(a.Deposits), a.DepositTotal)
	}
	if len(a.Withdrawals) != 1 || !a.WithdrawalTotal.Equal(dec("50")) {
		t.Errorf("withdrawals = %d total %s, want 1 total 50", len(a.Withdrawals), a.WithdrawalTotal)
	}
	if len(a.Sends) != 2 || len(a.SendReversals) != 1 {
		t.Errorf("sends = %d reversals %d, want 2 and 1", len(a.Sends), len(a.SendReversals))
	}
	if !a.SendTotalBTC.Equal(dec("-0.015")) {
		t.Errorf("SendTotalBTC = %s, want -0.015", a.SendTotalBTC)
	}
	if !a.SendTotalBTCExclRev.Equal(dec("-0.01")) {
		t.Errorf("SendTotalBTCExclRev = %s, want -0.01", a.SendTotalBTCExclRev)
	}

	dist := a.DepositDistribution()
	if len(dist) != 2 {
		t.Fatalf("DepositDistribution has %d entries, want 2", len(dist))
	}
	if !dist[0].Amount.Equal(dec("100")) || dist[0].Count != 2 {
		t.Errorf("dist[0] = %s x%d, want 100 x2", dist[0].Amount, dist[0].Count)
	}
	if !dist[1].Amount.Equal(dec("250.5")) || dist[1].Count != 1 {
		t.Errorf("dist[1] = %s x%d, want 250.5 x1", dist[1].Amount, dist[1].Count)
	}
}

func TestAnalyzeDayConcentration(t *testing.T) {
	a := Analyze(mixedRecords())

	if a.PurchaseDays != 2 {
		t.Errorf("PurchaseDays = %d, want 2", a.PurchaseDays)
	}
	if a.MultiPurchaseDays != 1 {
		t.Errorf("MultiPurchaseDays = %d, want 1", a.MultiPurchaseDays)
	}
	if a.MaxPerDay != 2 {
		t.Errorf("MaxPerDay = %d, want 2", a.MaxPerDay)
	}
}

func TestAnalyzeNonExecuted(t *testing.T) {
	a := Analyze(mixedRecords())

	if len(a.NonExecuted) != 2 {
		t.Fatalf("NonExecuted has %d entries, want 2", len(a.NonExecuted))
	}
	// The EUR sum of non-executed rows stays signed, unlike cost-basis
	// resolution.
	if !a.NonExecAmountEUR.Equal(dec("-50")) {
		t.Errorf("NonExecAmountEUR = %s, want -50", a.NonExecAmountEUR)
	}
	if got := a.NonExecByDesc["Target Order"]; got != 1 {
		t.Errorf("NonExecByDesc[Target Order] = %d, want 1", got)
	}
	if got := a.NonExecByDesc[""]; got != 1 {
		t.Errorf("NonExecByDesc[\"\"] = %d, want 1", got)
	}
}

func TestAnalyzeOrdering(t *testing.T) {
	a := Analyze(mixedRecords())

	if got, want := a.StartDate.String(), "2023-01-05"; got != want {
		t.Errorf("StartDate = %s, want %s", got, want)
	}
	if got, want := a.EndDate.String(), "2023-04-02"; got != want {
		t.Errorf("EndDate = %s, want %s", got, want)
	}
	for i := 1; i < len(a.Records); i++ {
		if a.Records[i].Time.Before(a.Records[i-1].Time) {
			t.Fatalf("Records not in ascending time order at index %d", i)
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil)

	if !a.AvgPrice.IsZero() {
		t.Errorf("AvgPrice = %s, want 0", a.AvgPrice)
	}
	if a.MaxPerDay != 0 || a.PurchaseDays != 0 {
		t.Errorf("day stats = %d/%d, want 0/0", a.PurchaseDays, a.MaxPerDay)
	}
	if !a.StartDate.IsZero() || !a.EndDate.IsZero() {
		t.Errorf("dates = %v/%v, want zero", a.StartDate, a.EndDate)
	}
}

func TestMonthlyBucketAvgPriceZeroGuard(t *testing.T) {
	b := MonthlyBucket{EUR: dec("100")}
	if !b.AvgPrice().IsZero() {
		t.Errorf("AvgPrice() with zero BTC = %s, want 0", b.AvgPrice())
	}
}
