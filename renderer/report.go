// Package renderer turns an analysis snapshot into the markdown report.
//
// The numeric contract is fixed: currency amounts render with 0 decimal
// places, percentages with 2, BTC quantities with 8, all rounded half up at
// formatting time only. The underlying totals stay exact.
package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/janw/btcdca"
	"github.com/janw/btcdca/date"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// PriceContext is the optional market context interpolated into the report.
// The analysis itself never fetches or validates it.
type PriceContext struct {
	CurrentPrice decimal.Decimal
	PriceDate    string // observation date, free-form, "" to omit
	FXRate       string // "1 EUR = X USD" reference rate, "" to omit
	FXDate       string
}

// money formats a currency amount per the display contract.
func money(d decimal.Decimal) string { return btcdca.Q0(d).String() }

// btc formats a BTC quantity per the display contract.
func btc(d decimal.Decimal) string { return d.StringFixed(8) }

// percent formats a percentage per the display contract.
func percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

func fmtTime(r btcdca.Record) string { return r.Time.Format("2006-01-02 15:04:05") }

// ReportMarkdown renders the full analysis report. price may be nil.
func ReportMarkdown(a *btcdca.Analysis, price *PriceContext) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	startYear, endYear := 0, 0
	if len(a.Records) > 0 {
		startYear, endYear = a.StartDate.Year(), a.EndDate.Year()
	}

	title := "Strike DCA Analysis (Real Purchases)"
	periodLabel := "In the analysis period"
	switch {
	case startYear != 0 && startYear == endYear:
		title = fmt.Sprintf("Strike %d DCA Analysis (Real Purchases)", startYear)
		periodLabel = fmt.Sprintf("In %d", startYear)
	case startYear != 0:
		title = fmt.Sprintf("Strike %d-%d DCA Analysis (Real Purchases)", startYear, endYear)
		periodLabel = fmt.Sprintf("In %d–%d", startYear, endYear)
	}

	doc.H1(title)

	doc.H2("Executive Summary")
	doc.PlainText(fmt.Sprintf(
		"%s %s BTC were purchased for %s EUR; the weighted average entry price is %s EUR/BTC.",
		periodLabel, btc(a.TotalBTC), money(a.TotalEUR), money(a.AvgPrice)))

	var quarterParts []string
	for _, key := range a.QuarterKeys() {
		quarterParts = append(quarterParts, fmt.Sprintf("%s: %s", key, money(a.Quarterly[key].AvgPrice())))
	}
	if len(quarterParts) > 0 {
		doc.PlainText("Quarterly average buy price (EUR/BTC): " + strings.Join(quarterParts, "; ") + ".")
	}

	if price != nil {
		doc.PlainText(marketLine(a, price))
	}

	doc.H2("Definitions")
	doc.BulletList(
		"**Real purchases**: `Transaction Type = Purchase/Trade` **and** `Amount BTC` present.",
		"**Cost basis**: if empty, derived from `Amount EUR` or `Amount BTC * BTC Price`.",
		"**Non-executed purchases**: Purchase rows without BTC amount (e.g., initiated/cancelled target orders).",
	)

	doc.H2("Overview")
	overview := []string{}
	if len(a.Records) > 0 {
		overview = append(overview, fmt.Sprintf("Period: %s to %s", a.StartDate, a.EndDate))
	}
	overview = append(overview,
		fmt.Sprintf("Real purchases: %d", len(a.RealPurchases)),
		fmt.Sprintf("Purchase days: %d (days with >1 purchase: %d, max/day: %d)",
			a.PurchaseDays, a.MultiPurchaseDays, a.MaxPerDay),
		fmt.Sprintf("BTC purchased: %s", btc(a.TotalBTC)),
		fmt.Sprintf("Invested (EUR, cost basis): %s", money(a.TotalEUR)),
		fmt.Sprintf("Average entry price: %s EUR/BTC", money(a.AvgPrice)),
	)
	doc.BulletList(overview...)

	doc.H2("Fees")
	doc.BulletList(
		fmt.Sprintf("Total EUR fees: %s", money(a.FeeEURTotal)),
		fmt.Sprintf("Total BTC fees: %s", btc(a.FeeBTCTotal)),
	)

	doc.H2("Monthly Overview (Real Purchases)")
	doc.Table(monthlyTable(a))

	doc.H2("Other Transaction Types")
	others := []string{
		fmt.Sprintf("Deposits: %d (Total EUR: %s)", len(a.Deposits), money(a.DepositTotal)),
		fmt.Sprintf("Withdrawals: %d (Total EUR: %s)", len(a.Withdrawals), money(a.WithdrawalTotal)),
		fmt.Sprintf("Sends: %d (Net BTC: %s; excluding reversals: %s)",
			len(a.Sends), btc(a.SendTotalBTC), btc(a.SendTotalBTCExclRev)),
	}
	if len(a.SendReversals) > 0 {
		others = append(others, fmt.Sprintf("Send reversals: %d", len(a.SendReversals)))
	}
	doc.BulletList(others...)

	doc.H2("Non-Executed Purchase Events")
	doc.BulletList(
		fmt.Sprintf("Count: %d", len(a.NonExecuted)),
		fmt.Sprintf("Sum Amount EUR (signed): %s", money(a.NonExecAmountEUR)),
	)
	if len(a.NonExecByDesc) > 0 {
		doc.PlainText("Breakdown by description:")
		var breakdown []string
		for _, desc := range a.NonExecDescriptions() {
			label := desc
			if label == "" {
				label = "(empty)"
			}
			breakdown = append(breakdown, fmt.Sprintf("%s: %d", label, a.NonExecByDesc[desc]))
		}
		doc.BulletList(breakdown...)
	}

	if len(a.Inferred) > 0 {
		doc.H2("Purchases With Derived Cost Basis")
		doc.Table(inferredTable(a))
	}

	doc.H2("Data Quality / Checks")
	doc.BulletList(
		fmt.Sprintf("Purchase rows without BTC amount: %d", len(a.NonExecuted)),
		fmt.Sprintf("Purchase rows with derived cost basis: %d", len(a.Inferred)),
	)

	doc.H2("Deposit Distribution")
	doc.Table(depositTable(a))

	return doc.String()
}

// marketLine states where the market stands relative to the average entry
// and the unrealized P/L. Every ratio guards a zero denominator.
func marketLine(a *btcdca.Analysis, price *PriceContext) string {
	hundred := decimal.NewFromInt(100)

	delta := decimal.Zero
	if !a.AvgPrice.IsZero() {
		delta = price.CurrentPrice.Sub(a.AvgPrice).Div(a.AvgPrice).Mul(hundred)
	}
	currentValue := price.CurrentPrice.Mul(a.TotalBTC)
	pnl := currentValue.Sub(a.TotalEUR)
	pnlPct := decimal.Zero
	if !a.TotalEUR.IsZero() {
		pnlPct = pnl.Div(a.TotalEUR).Mul(hundred)
	}

	direction := "above"
	if delta.IsNegative() {
		direction = "below"
	}
	fxNote := ""
	if price.FXRate != "" && price.FXDate != "" {
		fxNote = fmt.Sprintf("; FX %s: 1 EUR = %s USD", price.FXDate, price.FXRate)
	}
	dateNote := ""
	if price.PriceDate != "" {
		dateNote = fmt.Sprintf(" (as of %s%s)", price.PriceDate, fxNote)
	}
	return fmt.Sprintf(
		"At a current BTC price of %s EUR%s, the market price is about %s%% %s the average entry; "+
			"unrealized P/L is %s EUR (%s) based on purchased BTC.",
		money(price.CurrentPrice), dateNote, delta.Abs().StringFixed(2), direction,
		money(pnl), percent(pnlPct))
}

func monthlyTable(a *btcdca.Analysis) md.TableSet {
	t := md.TableSet{
		Header: []string{"Month", "EUR Spent", "BTC Bought", "Avg Price (EUR/BTC)", "Min Price", "Max Price", "# Purchases"},
	}
	for _, key := range a.MonthKeys() {
		b := a.Monthly[key]
		monthNum, _ := strconv.Atoi(strings.SplitN(key, "-", 2)[1])
		minP, maxP := "", ""
		if b.MinPrice.Valid {
			minP = money(b.MinPrice.Decimal)
		}
		if b.MaxPrice.Valid {
			maxP = money(b.MaxPrice.Decimal)
		}
		t.Rows = append(t.Rows, []string{
			date.MonthAbbr(monthNum),
			money(b.EUR),
			btc(b.BTC),
			money(b.AvgPrice()),
			minP,
			maxP,
			strconv.Itoa(b.Count),
		})
	}
	return t
}

func inferredTable(a *btcdca.Analysis) md.TableSet {
	t := md.TableSet{
		Header: []string{"Date (UTC)", "BTC", "Price", "Cost Basis", "Source", "Description"},
	}
	for _, inf := range a.Inferred {
		price := decimal.Zero
		if inf.Record.Price.Valid {
			price = inf.Record.Price.Decimal
		}
		amount := decimal.Zero
		if inf.Record.AmountBTC.Valid {
			amount = inf.Record.AmountBTC.Decimal
		}
		t.Rows = append(t.Rows, []string{
			fmtTime(inf.Record),
			btc(amount),
			money(price),
			money(inf.Cost),
			string(inf.Source),
			strings.TrimSpace(inf.Record.Description),
		})
	}
	return t
}

func depositTable(a *btcdca.Analysis) md.TableSet {
	t := md.TableSet{Header: []string{"EUR Amount", "Count"}}
	for _, ac := range a.DepositDistribution() {
		t.Rows = append(t.Rows, []string{money(ac.Amount), strconv.Itoa(ac.Count)})
	}
	return t
}
