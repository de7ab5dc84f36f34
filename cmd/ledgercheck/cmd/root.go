package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/engine/gemini"
	"github.com/rezonia/ledgercheck/internal/engine/openai"
	"github.com/rezonia/ledgercheck/internal/engine/tesseract"
	"github.com/rezonia/ledgercheck/internal/money"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	toleranceStr string
	languages    []string
	psm          int

	openaiAPIKey  string
	openaiBaseURL string
	openaiModel   string
	geminiAPIKey  string
	geminiModel   string
)

var rootCmd = &cobra.Command{
	Use:   "ledgercheck",
	Short: "Verify scanned receipts and invoices by OCR arithmetic",
	Long: `ledgercheck extracts monetary amounts from scanned receipts and
invoices, finds the declared total, and checks that the line items
actually sum to it.

Supports:
  - Tesseract OCR (local, no API key needed)
  - Gemini vision transcription (requires GEMINI_API_KEY)
  - OpenAI-compatible vision transcription (requires OPENAI_API_KEY)
  - Cross-engine comparison when more than one engine runs

Examples:
  # Check a single receipt with local OCR
  ledgercheck check receipt.png

  # Check with two engines and compare
  ledgercheck check receipt.png --engine tesseract --engine gemini

  # Batch a directory of scans into a spreadsheet
  ledgercheck batch scans/ -f xlsx -o results.xlsx

  # Start the HTTP API
  ledgercheck serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, xlsx, table)")
	rootCmd.PersistentFlags().StringVar(&toleranceStr, "tolerance", "0.02", "Absolute verification tolerance")
	rootCmd.PersistentFlags().StringSliceVar(&languages, "lang", nil, "OCR language hints (e.g. eng, spa)")
	rootCmd.PersistentFlags().IntVar(&psm, "psm", 0, "Tesseract page segmentation mode (0 = engine default)")
	rootCmd.PersistentFlags().StringVar(&openaiAPIKey, "openai-api-key", "", "API key for OpenAI-compatible vision OCR (env: OPENAI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&openaiBaseURL, "openai-base-url", "", "Base URL for OpenAI-compatible API (env: OPENAI_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&openaiModel, "openai-model", "", "Vision model for the OpenAI engine (env: OPENAI_MODEL)")
	rootCmd.PersistentFlags().StringVar(&geminiAPIKey, "gemini-api-key", "", "API key for Gemini vision OCR (env: GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&geminiModel, "gemini-model", "", "Vision model for the Gemini engine (env: GEMINI_MODEL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if openaiAPIKey == "" {
		openaiAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if openaiBaseURL == "" {
		openaiBaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if openaiModel == "" {
		openaiModel = os.Getenv("OPENAI_MODEL")
	}
	if geminiAPIKey == "" {
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if geminiModel == "" {
		geminiModel = os.Getenv("GEMINI_MODEL")
	}
}

// buildRegistry registers every engine the current configuration can run.
// Tesseract is always registered; the vision engines only when a key is
// configured, so selecting them by name without a key fails early.
func buildRegistry() *engine.Registry {
	registry := engine.NewRegistry()
	registry.Register(tesseract.New(tesseract.WithLanguages(languages...)))

	if geminiAPIKey != "" {
		var opts []gemini.Option
		if geminiModel != "" {
			opts = append(opts, gemini.WithModel(geminiModel))
		}
		registry.Register(gemini.New(geminiAPIKey, opts...))
	}
	if openaiAPIKey != "" {
		var opts []openai.Option
		if openaiBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(openaiBaseURL))
		}
		if openaiModel != "" {
			opts = append(opts, openai.WithModel(openaiModel))
		}
		registry.Register(openai.New(openaiAPIKey, opts...))
	}

	return registry
}

func buildPipeline() (*pipeline.Pipeline, error) {
	tolerance, err := money.FromString(strings.TrimSpace(toleranceStr))
	if err != nil {
		return nil, fmt.Errorf("invalid tolerance %q: %w", toleranceStr, err)
	}
	if tolerance.IsNegative() {
		return nil, fmt.Errorf("tolerance must not be negative: %s", toleranceStr)
	}

	return pipeline.New(
		pipeline.WithTolerance(tolerance),
		pipeline.WithLanguages(languages...),
		pipeline.WithPSM(psm),
	), nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
