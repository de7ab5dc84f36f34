package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/ledgercheck/internal/engine/gemini"
	"github.com/rezonia/ledgercheck/internal/engine/openai"
	"github.com/rezonia/ledgercheck/internal/engine/tesseract"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List OCR engines and their availability",
	Long: `List the OCR engines this build knows about and whether each one is
usable with the current configuration.

Tesseract needs the native library and trained data installed locally.
The vision engines need an API key, via flag or environment variable.`,
	RunE: runEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, args []string) error {
	registered := buildRegistry().Names()
	active := make(map[string]bool, len(registered))
	for _, name := range registered {
		active[name] = true
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENGINE\tKIND\tSTATUS")
	fmt.Fprintln(tw, "------\t----\t------")

	tessStatus := "ready"
	if !tesseract.Available() {
		tessStatus = "trained data missing"
	}
	fmt.Fprintf(tw, "%s\tlocal OCR\t%s\n", tesseract.Name, tessStatus)

	geminiStatus := "no API key (set GEMINI_API_KEY)"
	if active[gemini.Name] {
		geminiStatus = "ready"
	}
	fmt.Fprintf(tw, "%s\tvision API\t%s\n", gemini.Name, geminiStatus)

	openaiStatus := "no API key (set OPENAI_API_KEY)"
	if active[openai.Name] {
		openaiStatus = "ready"
	}
	fmt.Fprintf(tw, "%s\tvision API\t%s\n", openai.Name, openaiStatus)

	return tw.Flush()
}
