package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/janw/btcdca/renderer"
	"google.golang.org/genai"
)

// assistCmd asks Gemini for a plain-language reading of the report.
type assistCmd struct {
	model string
}

func (*assistCmd) Name() string { return "assist" }

func (*assistCmd) Synopsis() string { return "summarize the analysis report with Gemini" }

func (*assistCmd) Usage() string {
	return `dcastat assist [-model <name>] <input.csv>

  Analyzes the export and asks Gemini for a short plain-language summary of
  the report. Requires Gemini API credentials in the environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "gemini-2.5-flash", "Gemini model to use for the summary.")
}

const assistPrompt = "You are a personal finance assistant. Summarize the following " +
	"Bitcoin DCA analysis report in a few short paragraphs for its owner: what was " +
	"invested, at what average price, how concentrated the buying was, and anything " +
	"unusual in the data quality sections. Answer in plain language.\n\n"

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing input export file")
		return subcommands.ExitUsageError
	}

	analysis, err := loadAnalysis(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report := renderer.ReportMarkdown(analysis, nil)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	chat, err := client.Chats.Create(ctx, c.model, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting Gemini chat:", err)
		return subcommands.ExitFailure
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: assistPrompt + report})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error asking Gemini:", err)
		return subcommands.ExitFailure
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no response from Gemini")
		return subcommands.ExitFailure
	}

	printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
	return subcommands.ExitSuccess
}
