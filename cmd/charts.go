package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/janw/btcdca/charts"
)

// chartsCmd generates only the charts image, from a fresh analysis pass.
type chartsCmd struct {
	output string
}

func (*chartsCmd) Name() string { return "charts" }

func (*chartsCmd) Synopsis() string { return "render the monthly purchase charts as a PNG" }

func (*chartsCmd) Usage() string {
	return `dcastat charts [-o <output.png>] <input.csv>

  Renders the monthly purchase charts (average price, BTC bought, EUR spent,
  purchase count) to a PNG image.
`
}

func (c *chartsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output PNG path. Defaults to <input>-charts.png next to the input.")
}

func (c *chartsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing input export file")
		return subcommands.ExitUsageError
	}
	input := f.Arg(0)

	output := c.output
	if output == "" {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(filepath.Dir(input), stem+"-charts.png")
	}

	analysis, err := loadAnalysis(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := charts.Render(analysis, output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %s\n", output)
	return subcommands.ExitSuccess
}
