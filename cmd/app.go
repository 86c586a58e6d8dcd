// Package cmd implements the CLI application to analyze a DCA export.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/janw/btcdca"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "report")
	c.Register(&showCmd{}, "report")
	c.Register(&chartsCmd{}, "report")
	c.Register(&assistCmd{}, "assist")
}

// loadAnalysis runs the load-normalize-aggregate pipeline on one export file.
func loadAnalysis(path string) (*btcdca.Analysis, error) {
	records, err := btcdca.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return btcdca.Analyze(records), nil
}

// printMarkdown renders markdown for the terminal. If pretty rendering
// fails, the raw markdown is still printed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render markdown: %v\n", err)
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
