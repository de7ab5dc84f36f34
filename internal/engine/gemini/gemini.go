// Package gemini adapts the Google Gemini vision API to the engine boundary,
// using the model as a plain text transcriber.
package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
)

// Name is the registry name of this engine.
const Name = "gemini"

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Engine transcribes document images through Gemini.
type Engine struct {
	apiKey string
	model  string
}

// Option configures the engine
type Option func(*Engine)

// WithModel overrides the Gemini model name
func WithModel(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.model = name
		}
	}
}

// New constructs a Gemini-backed engine. An empty API key is allowed here;
// it surfaces as KindUnavailable at recognition time so batch runs can
// report it per engine instead of failing construction.
func New(apiKey string, opts ...Option) *Engine {
	e := &Engine{
		apiKey: apiKey,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Recognize(ctx context.Context, req engine.Request) (engine.Result, error) {
	start := time.Now()
	if e.apiKey == "" {
		return engine.Result{}, model.NewEngineError(Name, model.KindUnavailable, "api key not configured", nil)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindUnavailable, "creating gemini client", err)
	}
	defer client.Close()

	// genai.ImageData wants the bare format suffix, not the MIME type.
	format := strings.TrimPrefix(req.MIME, "image/")
	parts := []genai.Part{
		genai.ImageData(format, req.Image),
		genai.Text(engine.TranscriptionPrompt),
	}

	resp, err := client.GenerativeModel(e.model).GenerateContent(ctx, parts...)
	if err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "generating content", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "empty response", nil)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return engine.Result{
		Text:       strings.TrimSpace(text.String()),
		Confidence: engine.ConfidenceUnknown,
		Elapsed:    time.Since(start),
	}, nil
}
