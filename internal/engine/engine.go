// Package engine defines the OCR backend boundary. The core pipeline depends
// only on the Engine interface; backend specifics (Tesseract flags, API
// credentials) stay below it.
package engine

import (
	"context"
	"time"
)

// ConfidenceUnknown marks a backend that does not report recognition
// confidence.
const ConfidenceUnknown = -1.0

// Request is a single image submitted for recognition.
type Request struct {
	// Image is the encoded raster payload (PNG/JPEG/TIFF/BMP).
	Image []byte
	// MIME declares the image content type.
	MIME string
	// Languages is a list of language hints (e.g. "eng", "spa") backends
	// may use to select trained data.
	Languages []string
	// PSM is the Tesseract page segmentation mode hint; zero means backend
	// default. Non-Tesseract backends ignore it.
	PSM int
	// Variables passes backend-specific knobs without widening the API.
	Variables map[string]string
}

// Result is a backend's raw output for one request.
type Result struct {
	// Text is the recognized plain text, line structure preserved.
	Text string
	// Confidence is the backend's own confidence in [0,1], or
	// ConfidenceUnknown.
	Confidence float64
	// Elapsed is the backend call duration.
	Elapsed time.Duration
}

// Engine is the uniform adapter contract every OCR backend implements.
// Failures are reported as *model.EngineError: KindUnavailable when the
// backend is missing or misconfigured, KindFailure when it rejected this
// input.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) (Result, error)
}

// TranscriptionPrompt instructs vision-model backends to act as a plain OCR
// engine: verbatim text out, nothing else. Shared by the Gemini and
// OpenAI-compatible adapters.
const TranscriptionPrompt = `Transcribe ALL text visible in this document image exactly as it appears.

Rules:
- Output plain text only, no commentary and no markdown.
- Preserve the original line breaks: each printed line of the document is one output line.
- Keep labels and their amounts on the same line (e.g. "Total  $25.50").
- Transcribe numbers and currency symbols exactly as printed.
- Do not summarize, translate, or correct anything.`
