package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonetaryAmount is a single detected monetary value, anchored to the OCR
// line it came from. Value is always an exact decimal; float64 is never used
// for money anywhere in this codebase.
type MonetaryAmount struct {
	Value      decimal.Decimal `json:"value"`
	Symbol     string          `json:"symbol,omitempty"`
	RawText    string          `json:"raw_text"`
	SourceLine int             `json:"source_line"`
}

// Role tags an amount as a line item or the declared total
type Role string

const (
	RoleItem  Role = "item"
	RoleTotal Role = "total"
)

// ClassifiedAmount is a MonetaryAmount with its classified role and the
// confidence of the classification heuristic, in [0,1].
type ClassifiedAmount struct {
	MonetaryAmount
	Role       Role    `json:"role"`
	Confidence float64 `json:"confidence"`
}

// TotalSource records which heuristic selected the total
type TotalSource string

const (
	// TotalByKeyword means a total-keyword line anchored the total.
	TotalByKeyword TotalSource = "keyword"
	// TotalByLargest means the largest-amount fallback selected the total.
	TotalByLargest TotalSource = "largest"
	// TotalNone means no confident total candidate was found.
	TotalNone TotalSource = "none"
)

// ExtractionResult holds the classified amounts for one OCR text.
// Total is nil when no confident candidate was found (an ambiguous total is
// not an error; it propagates as StatusUnverifiable).
type ExtractionResult struct {
	RawText     string             `json:"raw_text"`
	Items       []ClassifiedAmount `json:"items"`
	Total       *ClassifiedAmount  `json:"total,omitempty"`
	TotalSource TotalSource        `json:"total_source"`
}

// Status is the three-way verification outcome. The three states require
// different user reactions and are never collapsed together.
type Status string

const (
	// StatusVerified means the item sum matched the declared total.
	StatusVerified Status = "verified"
	// StatusMismatch means a total was found but the sums disagree.
	StatusMismatch Status = "mismatch"
	// StatusUnverifiable means no total was detected, so there is nothing
	// to compare against.
	StatusUnverifiable Status = "unverifiable"
)

// VerificationResult is the outcome of comparing the item sum against the
// declared total. Difference is meaningless when Total is nil.
type VerificationResult struct {
	ItemsSum        decimal.Decimal  `json:"items_sum"`
	Total           *decimal.Decimal `json:"total,omitempty"`
	Difference      decimal.Decimal  `json:"difference"`
	WithinTolerance bool             `json:"within_tolerance"`
	Tolerance       decimal.Decimal  `json:"tolerance"`
	Status          Status           `json:"status"`
}

// EngineResult is the full pipeline output for one (document, engine) pair.
// Confidence is the OCR backend's own confidence in [0,1], or -1 when the
// backend does not report one.
type EngineResult struct {
	EngineName   string              `json:"engine"`
	Extraction   *ExtractionResult   `json:"extraction,omitempty"`
	Verification *VerificationResult `json:"verification,omitempty"`
	Confidence   float64             `json:"confidence"`
	Elapsed      time.Duration       `json:"elapsed"`
	Err          *EngineError        `json:"error,omitempty"`
}

// OK reports whether the engine run produced a usable extraction
func (r *EngineResult) OK() bool {
	return r.Err == nil
}

// EnginePair is a derived comparison between two engine runs over the same
// document.
type EnginePair struct {
	EngineA        string           `json:"engine_a"`
	EngineB        string           `json:"engine_b"`
	TextSimilarity float64          `json:"text_similarity"`
	TotalsAgree    bool             `json:"totals_agree"`
	SumDifference  *decimal.Decimal `json:"sum_difference,omitempty"`
}

// Document is a single input to the pipeline: raw image (or PDF) bytes plus
// a caller-chosen identifier. Decoding and preprocessing happen upstream.
type Document struct {
	ID   string
	Data []byte
	MIME string
}

// DocumentResult aggregates all engine runs for one document. Success is
// true when at least one engine produced a usable result.
type DocumentResult struct {
	DocumentID    string         `json:"document_id"`
	EngineResults []EngineResult `json:"engine_results"`
	Comparisons   []EnginePair   `json:"comparisons,omitempty"`
	Success       bool           `json:"success"`
	Err           *DocumentError `json:"-"`
	ErrMessage    string         `json:"error,omitempty"`
}

// BestVerification returns the verification from the first successful engine
// run, in caller-requested engine order.
func (r *DocumentResult) BestVerification() *VerificationResult {
	for i := range r.EngineResults {
		if er := &r.EngineResults[i]; er.OK() && er.Verification != nil {
			return er.Verification
		}
	}
	return nil
}

// BatchSummary aggregates a batch run. Documents is completion-ordered, not
// submission-ordered; correlate by DocumentID.
type BatchSummary struct {
	Processed    int              `json:"processed"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	Skipped      int              `json:"skipped"`
	Verified     int              `json:"verified"`
	Mismatched   int              `json:"mismatched"`
	Unverifiable int              `json:"unverifiable"`
	Elapsed      time.Duration    `json:"elapsed"`
	Documents    []DocumentResult `json:"documents"`
}

// Add folds one document result into the summary counters
func (s *BatchSummary) Add(dr DocumentResult) {
	s.Processed++
	if dr.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
	if v := dr.BestVerification(); v != nil {
		switch v.Status {
		case StatusVerified:
			s.Verified++
		case StatusMismatch:
			s.Mismatched++
		case StatusUnverifiable:
			s.Unverifiable++
		}
	}
	s.Documents = append(s.Documents, dr)
}
