// Package openai adapts any OpenAI-compatible vision API (OpenAI, OpenRouter,
// local gateways) to the engine boundary, using the model as a plain text
// transcriber.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
)

// Name is the registry name of this engine.
const Name = "openai"

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Engine transcribes document images through an OpenAI-compatible chat API.
type Engine struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

// Option configures the engine
type Option func(*Engine)

// WithBaseURL sets a custom API base URL
func WithBaseURL(url string) Option {
	return func(e *Engine) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithModel overrides the vision model
func WithModel(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.model = name
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// New constructs an OpenAI-compatible vision engine. An empty API key
// surfaces as KindUnavailable at recognition time.
func New(apiKey string, opts ...Option) *Engine {
	e := &Engine{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		timeout: DefaultTimeout,
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

	client := oai.NewClient(
		option.WithAPIKey(e.apiKey),
		option.WithBaseURL(e.baseURL),
		option.WithHTTPClient(&http.Client{Timeout: e.timeout}),
	)

	b64 := base64.StdEncoding.EncodeToString(req.Image)
	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MIME, b64)

	contentParts := []oai.ChatCompletionContentPartUnionParam{
		oai.TextContentPart(engine.TranscriptionPrompt),
		oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}
	messages := []oai.ChatCompletionMessageParamUnion{
		oai.UserMessage(contentParts),
	}

	resp, err := client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:       e.model,
		Messages:    messages,
		MaxTokens:   param.NewOpt[int64](4096),
		Temperature: param.NewOpt[float64](0),
	})
	if err != nil {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return engine.Result{}, model.NewEngineError(Name, model.KindFailure, "no choices in response", nil)
	}

	return engine.Result{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Confidence: engine.ConfidenceUnknown,
		Elapsed:    time.Since(start),
	}, nil
}
