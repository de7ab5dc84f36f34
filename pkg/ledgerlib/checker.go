package ledgerlib

import (
	"context"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rezonia/ledgercheck/internal/batch"
	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/engine/gemini"
	"github.com/rezonia/ledgercheck/internal/engine/openai"
	"github.com/rezonia/ledgercheck/internal/engine/tesseract"
	"github.com/rezonia/ledgercheck/internal/extract"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/pipeline"
	"github.com/rezonia/ledgercheck/internal/verify"
)

// CheckerOptions configures a Checker
type CheckerOptions struct {
	// Tolerance is the absolute verification tolerance. Zero value means
	// the default of 0.02.
	Tolerance decimal.Decimal

	// Languages are OCR language hints passed to every engine.
	Languages []string

	// GeminiAPIKey enables the Gemini vision engine when non-empty.
	GeminiAPIKey string

	// OpenAIAPIKey enables the OpenAI-compatible vision engine when
	// non-empty.
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// IncludeAdjustments counts tax, tip, and discount lines as items.
	IncludeAdjustments bool

	// MaxConcurrency bounds CheckBatch. Zero means the number of CPUs.
	MaxConcurrency int
}

// DefaultCheckerOptions returns options for local-only verification
func DefaultCheckerOptions() CheckerOptions {
	return CheckerOptions{}
}

// Checker verifies documents using the internal pipeline
type Checker struct {
	pipeline *pipeline.Pipeline
	registry *engine.Registry
	options  CheckerOptions
}

// NewChecker creates a checker with the given options
func NewChecker(opts CheckerOptions) *Checker {
	tolerance := opts.Tolerance
	if tolerance.IsZero() {
		tolerance = verify.DefaultTolerance
	}

	p := pipeline.New(
		pipeline.WithTolerance(tolerance),
		pipeline.WithLanguages(opts.Languages...),
		pipeline.WithClassifierConfig(extract.Config{
			IncludeAdjustments: opts.IncludeAdjustments,
		}),
	)

	registry := engine.NewRegistry()
	registry.Register(tesseract.New(tesseract.WithLanguages(opts.Languages...)))
	if opts.GeminiAPIKey != "" {
		registry.Register(gemini.New(opts.GeminiAPIKey))
	}
	if opts.OpenAIAPIKey != "" {
		var oopts []openai.Option
		if opts.OpenAIBaseURL != "" {
			oopts = append(oopts, openai.WithBaseURL(opts.OpenAIBaseURL))
		}
		registry.Register(openai.New(opts.OpenAIAPIKey, oopts...))
	}

	return &Checker{
		pipeline: p,
		registry: registry,
		options:  opts,
	}
}

// NewDefaultChecker creates a checker with default options
func NewDefaultChecker() *Checker {
	return NewChecker(DefaultCheckerOptions())
}

// Engines returns the names of the registered engines
func (c *Checker) Engines() []string {
	return c.registry.Names()
}

// Check verifies a single document with the named engines. An empty
// engines list runs every registered engine.
func (c *Checker) Check(ctx context.Context, doc Document, engines ...string) (DocumentResult, error) {
	selected, err := c.registry.Select(engines)
	if err != nil {
		return DocumentResult{DocumentID: doc.ID}, err
	}
	return c.pipeline.Process(ctx, doc, selected), nil
}

// CheckReader verifies a document read from r
func (c *Checker) CheckReader(ctx context.Context, id string, r io.Reader, engines ...string) (DocumentResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return DocumentResult{DocumentID: id}, &model.ParseError{Message: "failed to read input", Cause: err}
	}
	return c.Check(ctx, Document{ID: id, Data: data}, engines...)
}

// CheckFile verifies a document on disk, using the path as its ID
func (c *Checker) CheckFile(ctx context.Context, path string, engines ...string) (DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DocumentResult{DocumentID: path}, err
	}
	return c.Check(ctx, Document{ID: path, Data: data}, engines...)
}

// CheckBatch verifies many documents concurrently and returns the
// aggregate summary. One failing document never aborts the batch.
func (c *Checker) CheckBatch(ctx context.Context, docs []Document, engines ...string) (BatchSummary, error) {
	selected, err := c.registry.Select(engines)
	if err != nil {
		return BatchSummary{}, err
	}

	coordinator := batch.NewCoordinator(c.pipeline, selected,
		batch.WithMaxConcurrency(c.options.MaxConcurrency),
	)
	return coordinator.Run(ctx, docs), nil
}
