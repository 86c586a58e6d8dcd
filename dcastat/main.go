package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/janw/btcdca/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the CLI surface for shell completion. Install with
// COMP_INSTALL=1 dcastat.
var completion = &complete.Command{
	Sub: map[string]*complete.Command{
		"report": {
			Flags: map[string]complete.Predictor{
				"current-price-eur":  predict.Nothing,
				"current-price-date": predict.Nothing,
				"fx-rate":            predict.Nothing,
				"fx-date":            predict.Nothing,
				"fetch-price":        predict.Nothing,
				"no-charts":          predict.Nothing,
				"no-pdf":             predict.Nothing,
				"pdf-engine":         predict.Set{"xelatex", "pdflatex", "lualatex"},
				"report-dir":         predict.Dirs("*"),
			},
			Args: predict.Files("*.csv"),
		},
		"show": {
			Flags: map[string]complete.Predictor{"fetch-price": predict.Nothing},
			Args:  predict.Files("*.csv"),
		},
		"charts": {
			Flags: map[string]complete.Predictor{"o": predict.Files("*.png")},
			Args:  predict.Files("*.csv"),
		},
		"assist": {
			Flags: map[string]complete.Predictor{"model": predict.Nothing},
			Args:  predict.Files("*.csv"),
		},
	},
}

func main() {
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
