// Package tesseract adapts a local Tesseract installation (via gosseract)
// to the engine boundary.
package tesseract

import (
	"context"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
)

// Name is the registry name of this engine.
const Name = "tesseract"

// Engine runs OCR through the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// Option configures the engine
type Option func(*Engine)

// WithLanguages sets the default language hints used when a request carries
// none.
func WithLanguages(langs ...string) Option {
	return func(e *Engine) {
		e.languages = append([]string(nil), langs...)
	}
}

// New constructs a Tesseract-backed engine
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return Name }

// Available reports whether a usable Tesseract installation with trained
// data was found.
func Available() bool {
	langs, err := gosseract.GetAvailableLanguages()
	return err == nil && len(langs) > 0
}

// Recognize performs OCR on a single image. Missing trained data surfaces
// as KindUnavailable; a rejected input as KindFailure.
func (e *Engine) Recognize(ctx context.Context, req engine.Request) (engine.Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "context cancelled", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(req.Image); err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "set image", err)
	}

	langs := req.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return engine.Result{}, model.NewEngineError(Name, model.KindUnavailable, "trained data not installed", err)
		}
	}
	if req.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(req.PSM)); err != nil {
			return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "set page segmentation mode", err)
		}
	}
	for k, v := range req.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "set variable "+k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "recognize text", err)
	}

	return engine.Result{
		Text:       strings.TrimSpace(text),
		Confidence: wordConfidence(c),
		Elapsed:    time.Since(start),
	}, nil
}

// wordConfidence averages per-word recognition confidence into [0,1].
func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return engine.ConfidenceUnknown
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
