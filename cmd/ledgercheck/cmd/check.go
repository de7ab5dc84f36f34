package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/export"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

var (
	outputFile   string
	checkTimeout time.Duration
	engineNames  []string
	compareAll   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Verify receipt or invoice files",
	Long: `Check one or more scanned documents: OCR the image, extract the
monetary amounts, locate the declared total, and verify that the line
items sum to it within the configured tolerance.

Supported formats:
  - Images: .png, .jpg, .jpeg, .tiff, .bmp
  - PDF: .pdf (first page is rasterized)

Each document ends up in one of three states:
  verified      items sum to the declared total within tolerance
  mismatch      a total was found but the items do not add up
  unverifiable  no declared total could be located

Examples:
  ledgercheck check receipt.png
  ledgercheck check receipt.png --engine tesseract --engine gemini
  ledgercheck check scans/*.jpg -f table
  ledgercheck check invoice.pdf -o result.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "Processing timeout per document")
	checkCmd.Flags().StringSliceVar(&engineNames, "engine", nil, "OCR engines to run (default: all registered)")
	checkCmd.Flags().BoolVar(&compareAll, "compare", false, "Run every registered engine and emit pairwise comparisons")
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	names := engineNames
	if compareAll {
		// Comparisons need every engine's view.
		names = nil
	}
	engines, err := buildRegistry().Select(names)
	if err != nil {
		return err
	}

	results := make([]model.DocumentResult, 0, len(files))
	for _, file := range files {
		printVerbose("Checking: %s\n", file)

		result := checkFile(p, engines, file)
		results = append(results, result)

		if !result.Success {
			printVerbose("  Error: %s\n", result.ErrMessage)
		} else if v := result.BestVerification(); v != nil {
			printVerbose("  Status: %s\n", v.Status)
		}
	}

	return outputResults(results)
}

func checkFile(p *pipeline.Pipeline, engines []engine.Engine, filePath string) model.DocumentResult {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	data, err := os.ReadFile(filePath)
	if err != nil {
		derr := model.NewDocumentError(filePath, fmt.Errorf("failed to read file: %w", err))
		return model.DocumentResult{
			DocumentID: filePath,
			Err:        derr,
			ErrMessage: derr.Error(),
		}
	}

	doc := model.Document{
		ID:   filePath,
		Data: data,
		MIME: mimeFromExt(filepath.Ext(filePath)),
	}
	return p.Process(ctx, doc, engines)
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if !info.IsDir() && isSupportedFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp":
		return true
	default:
		return false
	}
}

func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func openOutput() (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func outputResults(results []model.DocumentResult) error {
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	defer closeFn()

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "csv":
		if outputFile != "" {
			// Excel on Windows needs the BOM to pick UTF-8.
			if _, err := w.Write(export.BOM); err != nil {
				return err
			}
		}
		cw := export.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		for i := range results {
			if err := cw.WriteDocument(&results[i]); err != nil {
				return err
			}
		}
		return cw.Flush()
	case "xlsx":
		var summary model.BatchSummary
		for i := range results {
			summary.Add(results[i])
		}
		return export.WriteXLSX(w, summary)
	case "table":
		return outputTable(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputTable(w *os.File, results []model.DocumentResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tSTATUS\tITEMS\tITEMS SUM\tTOTAL\tDIFFERENCE")
	fmt.Fprintln(tw, "--------\t------\t-----\t---------\t-----\t----------")

	for i := range results {
		r := &results[i]
		if !r.Success {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\n", r.DocumentID, r.ErrMessage)
			continue
		}

		v := r.BestVerification()
		if v == nil {
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t\n", r.DocumentID, model.StatusUnverifiable)
			continue
		}

		total := ""
		diff := ""
		if v.Total != nil {
			total = v.Total.StringFixed(2)
			diff = v.Difference.StringFixed(2)
		}
		items := 0
		for j := range r.EngineResults {
			if er := &r.EngineResults[j]; er.OK() && er.Extraction != nil {
				items = len(er.Extraction.Items)
				break
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.DocumentID, v.Status, items, v.ItemsSum.StringFixed(2), total, diff)
	}

	return tw.Flush()
}
