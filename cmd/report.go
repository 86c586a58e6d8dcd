package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/janw/btcdca"
	"github.com/janw/btcdca/charts"
	"github.com/janw/btcdca/date"
	"github.com/janw/btcdca/renderer"
	"github.com/shopspring/decimal"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	currentPrice     string
	currentPriceDate string
	fxRate           string
	fxDate           string
	fetchPrice       bool
	noCharts         bool
	noPDF            bool
	pdfEngine        string
	reportDir        string
	// processed
	price *renderer.PriceContext
}

func (*reportCmd) Name() string { return "report" }

func (*reportCmd) Synopsis() string { return "analyze a DCA export and write the report files" }

func (*reportCmd) Usage() string {
	return `dcastat report [flags] <input.csv> [output.md]

  Analyzes the export, writes the markdown report, the monthly charts image
  and, when pandoc is available, a PDF combining both.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currentPrice, "current-price-eur", "", "Current BTC price in EUR, for P/L context.")
	f.StringVar(&c.currentPriceDate, "current-price-date", "", "Date of the current BTC price (YYYY-MM-DD).")
	f.StringVar(&c.fxRate, "fx-rate", "", "FX reference: 1 EUR = X USD.")
	f.StringVar(&c.fxDate, "fx-date", "", "FX reference date (YYYY-MM-DD).")
	f.BoolVar(&c.fetchPrice, "fetch-price", false, "Fetch the current BTC/EUR price instead of supplying it.")
	f.BoolVar(&c.noCharts, "no-charts", false, "Skip chart generation.")
	f.BoolVar(&c.noPDF, "no-pdf", false, "Skip PDF generation.")
	f.StringVar(&c.pdfEngine, "pdf-engine", "", "Pandoc PDF engine (default: "+btcdca.DefaultPDFEngine+").")
	f.StringVar(&c.reportDir, "report-dir", "", "Override the report directory path.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing input export file")
		return subcommands.ExitUsageError
	}
	input := f.Arg(0)

	if err := c.initPrice(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	reportDir := c.reportDir
	if reportDir == "" {
		reportDir = filepath.Join(filepath.Dir(input), "Report")
	}
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create report directory: %v\n", err)
		return subcommands.ExitFailure
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outputName := stem + "-analysis.md"
	if f.NArg() > 1 {
		outputName = filepath.Base(f.Arg(1))
	}
	outputPath := filepath.Join(reportDir, outputName)
	chartPath := filepath.Join(reportDir, stem+"-charts.png")
	pdfPath := filepath.Join(reportDir, stem+"-analysis.pdf")

	analysis, err := loadAnalysis(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.fetchPrice && c.price == nil {
		if price, on, err := btcdca.FetchCurrentPrice(); err != nil {
			log.Printf("Warning: could not fetch the current price: %v", err)
		} else {
			c.price = &renderer.PriceContext{CurrentPrice: price, PriceDate: on.String()}
		}
	}

	md := renderer.ReportMarkdown(analysis, c.price)
	if err := os.WriteFile(outputPath, []byte(md), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write report: %v\n", err)
		return subcommands.ExitFailure
	}

	if !c.noCharts {
		if err := charts.Render(analysis, chartPath); err != nil {
			log.Printf("Chart generation failed: %v", err)
		}
	}

	if !c.noPDF {
		c.writePDF(md, reportDir, stem, chartPath, pdfPath)
	}

	fmt.Printf("Wrote %s\n", outputPath)
	if _, err := os.Stat(chartPath); err == nil {
		fmt.Printf("Wrote %s\n", chartPath)
	}
	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Printf("Wrote %s\n", pdfPath)
	}
	return subcommands.ExitSuccess
}

// initPrice validates the market context flags. The price must be a decimal
// number; the dates, when given, must be ISO dates.
func (c *reportCmd) initPrice() error {
	if c.currentPrice == "" {
		return nil
	}
	price, err := decimal.NewFromString(c.currentPrice)
	if err != nil {
		return fmt.Errorf("invalid -current-price-eur %q: %w", c.currentPrice, err)
	}
	for _, d := range []string{c.currentPriceDate, c.fxDate} {
		if d == "" {
			continue
		}
		if _, err := date.Parse(d); err != nil {
			return err
		}
	}
	c.price = &renderer.PriceContext{
		CurrentPrice: price,
		PriceDate:    c.currentPriceDate,
		FXRate:       c.fxRate,
		FXDate:       c.fxDate,
	}
	return nil
}

// writePDF combines the report and chart image and converts them with
// pandoc. Every failure here degrades to a warning.
func (c *reportCmd) writePDF(md, reportDir, stem, chartPath, pdfPath string) {
	if _, err := os.Stat(chartPath); err != nil {
		log.Print("PDF generation skipped: chart image not found.")
		return
	}
	combined := filepath.Join(reportDir, stem+"-combined.md")
	text := btcdca.InsertImageAfterH1(md, filepath.Base(chartPath))
	if err := os.WriteFile(combined, []byte(text), 0644); err != nil {
		log.Printf("PDF generation failed: %v", err)
		return
	}
	if err := btcdca.RunPandoc(combined, pdfPath, c.pdfEngine); err != nil {
		log.Printf("PDF generation failed: %v", err)
	}
}
