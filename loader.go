package btcdca

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The export comes in one of two column schemas. The schema is detected once
// per file from the header row, then every data row is normalized into a
// Record.
//
// The "wide" schema has one column per currency leg plus a combined
// date-time column. The "pair" schema has two generic amount/fee/currency
// slots and separate Completed/Initiated date and time columns.

// Timestamp formats of the export. The day is not zero-padded in the format
// so both "Jan 05 2023" and "Jan 5 2023" parse.
const (
	dateTimeFormat = "Jan 2 2006 15:04:05"
	dateOnlyFormat = "Jan 2 2006"
)

const wideSchemaMarker = "Date & Time (UTC)"

// LoadFile reads the whole export file and normalizes it into records.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open export file: %w", err)
	}
	defer f.Close()
	records, err := LoadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return records, nil
}

// LoadRecords reads a delimited export from r and normalizes every data row.
// Rows without a recoverable timestamp are kept with a zero Time; the
// analysis filters them out. A malformed numeric field is a hard error.
func LoadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("export is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header row: %w", err)
	}

	cols := make(map[string]int, len(header))
	wide := false
	for i, name := range header {
		name = strings.TrimSpace(name)
		cols[name] = i
		if name == wideSchemaMarker {
			wide = true
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read row at line %d: %w", line, err)
		}

		fields := rawRow{cols: cols, row: row}
		var rec Record
		if wide {
			rec, err = normalizeWide(fields)
		} else {
			rec, err = normalizePair(fields)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// rawRow gives named access to the cells of one data row. Missing columns
// and cells beyond the row's length read as "".
type rawRow struct {
	cols map[string]int
	row  []string
}

func (r rawRow) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return r.row[i]
}

func (r rawRow) decimal(name string) (d decimal.NullDecimal, err error) {
	d, err = ParseOptionalDecimal(r.get(name))
	if err != nil {
		return d, fmt.Errorf("column %q: %w", name, err)
	}
	return d, nil
}

// normalizeWide maps the wide schema field-to-field.
func normalizeWide(r rawRow) (Record, error) {
	rec := Record{
		Type:        strings.TrimSpace(r.get("Transaction Type")),
		Description: r.get("Description"),
	}

	if t, err := time.Parse(dateTimeFormat, strings.TrimSpace(r.get(wideSchemaMarker))); err == nil {
		rec.Time = t
	}

	var err error
	if rec.AmountEUR, err = r.decimal("Amount EUR"); err != nil {
		return rec, err
	}
	if rec.FeeEUR, err = r.decimal("Fee EUR"); err != nil {
		return rec, err
	}
	if rec.AmountBTC, err = r.decimal("Amount BTC"); err != nil {
		return rec, err
	}
	if rec.FeeBTC, err = r.decimal("Fee BTC"); err != nil {
		return rec, err
	}
	if rec.Price, err = r.decimal("BTC Price"); err != nil {
		return rec, err
	}
	if rec.CostBasis, err = r.decimal("Cost Basis (EUR)"); err != nil {
		return rec, err
	}
	return rec, nil
}

// normalizePair maps the generic two-slot schema: whichever slot's currency
// code is exactly "EUR" (after trimming) feeds the EUR leg, whichever is
// "BTC" feeds the BTC leg. A slot matching neither leaves the leg absent.
func normalizePair(r rawRow) (Record, error) {
	rec := Record{
		Type:        strings.TrimSpace(r.get("Transaction Type")),
		Description: r.get("Description"),
	}

	rec.Time = parseDateTimeParts(r.get("Completed Date (UTC)"), r.get("Completed Time (UTC)"))
	if rec.Time.IsZero() {
		rec.Time = parseDateTimeParts(r.get("Initiated Date (UTC)"), r.get("Initiated Time (UTC)"))
	}

	amount1, err := r.decimal("Amount 1")
	if err != nil {
		return rec, err
	}
	amount2, err := r.decimal("Amount 2")
	if err != nil {
		return rec, err
	}
	fee1, err := r.decimal("Fee 1")
	if err != nil {
		return rec, err
	}
	fee2, err := r.decimal("Fee 2")
	if err != nil {
		return rec, err
	}

	cur1 := strings.TrimSpace(r.get("Currency 1"))
	cur2 := strings.TrimSpace(r.get("Currency 2"))

	pick := func(want string) (decimal.NullDecimal, decimal.NullDecimal) {
		switch want {
		case cur1:
			return amount1, fee1
		case cur2:
			return amount2, fee2
		}
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	rec.AmountEUR, rec.FeeEUR = pick("EUR")
	rec.AmountBTC, rec.FeeBTC = pick("BTC")

	if rec.Price, err = r.decimal("BTC Price"); err != nil {
		return rec, err
	}

	// This schema never carries a cost basis column; back-fill it from the
	// EUR leg so downstream resolution sees it as provided.
	if rec.AmountEUR.Valid {
		rec.CostBasis = decimal.NullDecimal{Decimal: rec.AmountEUR.Decimal.Abs(), Valid: true}
	}
	return rec, nil
}

// parseDateTimeParts combines separate date and time cells into an instant.
// A date without a time parses as midnight; a time without a date, or no
// parseable date at all, yields the zero time.
func parseDateTimeParts(dateStr, timeStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	switch {
	case dateStr != "" && timeStr != "":
		if t, err := time.Parse(dateTimeFormat, dateStr+" "+timeStr); err == nil {
			return t
		}
	case dateStr != "":
		if t, err := time.Parse(dateOnlyFormat, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}
