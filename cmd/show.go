package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/janw/btcdca"
	"github.com/janw/btcdca/renderer"
)

// showCmd renders the report to the terminal instead of writing files.
type showCmd struct {
	fetchPrice bool
}

func (*showCmd) Name() string { return "show" }

func (*showCmd) Synopsis() string { return "render the analysis report in the terminal" }

func (*showCmd) Usage() string {
	return `dcastat show [-fetch-price] <input.csv>

  Analyzes the export and renders the report in the terminal.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fetchPrice, "fetch-price", false, "Fetch the current BTC/EUR price for P/L context.")
}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing input export file")
		return subcommands.ExitUsageError
	}

	analysis, err := loadAnalysis(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var price *renderer.PriceContext
	if c.fetchPrice {
		current, on, err := btcdca.FetchCurrentPrice()
		if err != nil {
			log.Printf("Warning: could not fetch the current price: %v", err)
		} else {
			price = &renderer.PriceContext{CurrentPrice: current, PriceDate: on.String()}
		}
	}

	printMarkdown(renderer.ReportMarkdown(analysis, price))
	return subcommands.ExitSuccess
}
