// Package pipeline drives one document through OCR, extraction,
// classification, and verification, across one or more engines.
package pipeline

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/extract"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
	"github.com/rezonia/ledgercheck/internal/verify"
)

// Pipeline assembles the extraction stages behind a single Process call.
// All stages below the engine boundary are pure, so a Pipeline is safe for
// concurrent use.
type Pipeline struct {
	parserCfg     money.Config
	classifierCfg extract.Config
	tolerance     decimal.Decimal
	languages     []string
	psm           int

	extractor  *extract.Extractor
	classifier *extract.Classifier
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithParserConfig sets the amount parser configuration
func WithParserConfig(cfg money.Config) Option {
	return func(p *Pipeline) {
		p.parserCfg = cfg
	}
}

// WithClassifierConfig sets the classifier configuration
func WithClassifierConfig(cfg extract.Config) Option {
	return func(p *Pipeline) {
		p.classifierCfg = cfg
	}
}

// WithTolerance sets the absolute verification tolerance
func WithTolerance(tolerance decimal.Decimal) Option {
	return func(p *Pipeline) {
		p.tolerance = tolerance
	}
}

// WithLanguages sets OCR language hints passed to every engine
func WithLanguages(langs ...string) Option {
	return func(p *Pipeline) {
		p.languages = append([]string(nil), langs...)
	}
}

// WithPSM sets the Tesseract page segmentation mode hint
func WithPSM(psm int) Option {
	return func(p *Pipeline) {
		p.psm = psm
	}
}

// New creates a pipeline with the given options
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		parserCfg: money.DefaultConfig(),
		tolerance: verify.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.extractor = extract.NewExtractor(p.parserCfg)
	p.classifier = extract.NewClassifier(p.classifierCfg)
	return p
}

// Process runs one document through every requested engine and assembles a
// DocumentResult. Engine runs execute concurrently; the result slice follows
// the caller's engine order. One engine's failure never aborts its siblings:
// it is captured in that engine's result.
func (p *Pipeline) Process(ctx context.Context, doc model.Document, engines []engine.Engine) model.DocumentResult {
	result := model.DocumentResult{DocumentID: doc.ID}

	if len(engines) == 0 {
		result.Err = model.NewDocumentError(doc.ID, errors.New("no engines requested"))
		result.ErrMessage = result.Err.Error()
		return result
	}

	prepared, err := engine.Prepare(doc)
	if err != nil {
		result.Err = model.NewDocumentError(doc.ID, err)
		result.ErrMessage = result.Err.Error()
		return result
	}

	results := make([]model.EngineResult, len(engines))
	g, gctx := errgroup.WithContext(ctx)
	for i, eng := range engines {
		g.Go(func() error {
			results[i] = p.runEngine(gctx, prepared, eng)
			return nil
		})
	}
	// Engine failures are captured per result, so Wait never errors.
	_ = g.Wait()

	result.EngineResults = results
	var causes []error
	for i := range results {
		if results[i].OK() {
			result.Success = true
		} else {
			causes = append(causes, results[i].Err)
		}
	}
	if !result.Success {
		result.Err = model.NewDocumentError(doc.ID, causes...)
		result.ErrMessage = result.Err.Error()
	}
	if len(engines) > 1 {
		result.Comparisons = Compare(results)
	}
	return result
}

func (p *Pipeline) runEngine(ctx context.Context, doc model.Document, eng engine.Engine) model.EngineResult {
	er := model.EngineResult{
		EngineName: eng.Name(),
		Confidence: engine.ConfidenceUnknown,
	}

	res, err := eng.Recognize(ctx, engine.Request{
		Image:     doc.Data,
		MIME:      doc.MIME,
		Languages: p.languages,
		PSM:       p.psm,
	})
	er.Elapsed = res.Elapsed
	if err != nil {
		er.Err = model.AsEngineError(eng.Name(), err)
		return er
	}
	er.Confidence = res.Confidence

	extraction := p.classifier.Classify(res.Text, p.extractor.Extract(res.Text))
	verification := verify.Verify(extraction, p.tolerance)
	er.Extraction = &extraction
	er.Verification = &verification
	return er
}
