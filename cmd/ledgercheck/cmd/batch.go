package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/ledgercheck/internal/batch"
	"github.com/rezonia/ledgercheck/internal/export"
	"github.com/rezonia/ledgercheck/internal/model"
)

var (
	batchOutput      string
	batchEngines     []string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Verify many documents concurrently",
	Long: `Verify a set of documents with a bounded worker pool. Accepts files,
directories, and glob patterns; directories are walked recursively for
supported extensions.

One failing document never aborts the batch: failures are counted and
reported in the summary alongside the per-document results.

Examples:
  ledgercheck batch scans/
  ledgercheck batch scans/ --workers 8
  ledgercheck batch 'receipts/*.png' -f xlsx -o results.xlsx
  ledgercheck batch scans/ --engine tesseract --engine openai -f csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output file (default: stdout)")
	batchCmd.Flags().StringSliceVar(&batchEngines, "engine", nil, "OCR engines to run (default: all registered)")
	batchCmd.Flags().IntVar(&batchConcurrency, "workers", 0, "Maximum concurrent documents (0 = number of CPUs)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to check")
	}

	printVerbose("Found %d files to check\n", len(files))

	p, err := buildPipeline()
	if err != nil {
		return err
	}
	engines, err := buildRegistry().Select(batchEngines)
	if err != nil {
		return err
	}

	docs := make([]model.Document, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		docs = append(docs, model.Document{ID: file, Data: data})
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: batchLogLevel(),
	}))

	coordinator := batch.NewCoordinator(p, engines,
		batch.WithMaxConcurrency(batchConcurrency),
		batch.WithLogger(logger),
	)
	summary := coordinator.Run(cmd.Context(), docs)

	return outputSummary(summary)
}

func batchLogLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func outputSummary(summary model.BatchSummary) error {
	outputFile = batchOutput
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	defer closeFn()

	switch outputFormat {
	case "json":
		return export.WriteJSON(w, summary)
	case "csv":
		if outputFile != "" {
			if _, err := w.Write(export.BOM); err != nil {
				return err
			}
		}
		cw := export.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		if err := cw.WriteSummary(summary); err != nil {
			return err
		}
		return cw.Flush()
	case "xlsx":
		return export.WriteXLSX(w, summary)
	case "table":
		if err := outputTable(w, summary.Documents); err != nil {
			return err
		}
		return summaryFooter(w, summary)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func summaryFooter(w *os.File, summary model.BatchSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Processed:\t%d\n", summary.Processed)
	fmt.Fprintf(tw, "Succeeded:\t%d\n", summary.Succeeded)
	fmt.Fprintf(tw, "Failed:\t%d\n", summary.Failed)
	if summary.Skipped > 0 {
		fmt.Fprintf(tw, "Skipped:\t%d\n", summary.Skipped)
	}
	fmt.Fprintf(tw, "Verified:\t%d\n", summary.Verified)
	fmt.Fprintf(tw, "Mismatched:\t%d\n", summary.Mismatched)
	fmt.Fprintf(tw, "Unverifiable:\t%d\n", summary.Unverifiable)
	fmt.Fprintf(tw, "Elapsed:\t%s\n", summary.Elapsed)
	return tw.Flush()
}
