// Package ledgerlib provides a public API for OCR-based receipt and
// invoice verification.
//
// This package exposes the core types for extracting monetary amounts
// from scanned documents and verifying that the line items sum to the
// declared total.
//
// Example usage:
//
//	checker := ledgerlib.NewDefaultChecker()
//	result, err := checker.CheckFile(ctx, "receipt.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.BestVerification().Status)
package ledgerlib

import "github.com/rezonia/ledgercheck/internal/model"

// Re-export core types for public API
type (
	MonetaryAmount     = model.MonetaryAmount
	ClassifiedAmount   = model.ClassifiedAmount
	ExtractionResult   = model.ExtractionResult
	VerificationResult = model.VerificationResult
	EngineResult       = model.EngineResult
	EnginePair         = model.EnginePair
	Document           = model.Document
	DocumentResult     = model.DocumentResult
	BatchSummary       = model.BatchSummary
	Status             = model.Status
	Role               = model.Role
	TotalSource        = model.TotalSource
)

// Re-export verification statuses
const (
	StatusVerified     = model.StatusVerified
	StatusMismatch     = model.StatusMismatch
	StatusUnverifiable = model.StatusUnverifiable
)

// Re-export amount roles
const (
	RoleItem  = model.RoleItem
	RoleTotal = model.RoleTotal
)

// Re-export error types
type (
	ParseError    = model.ParseError
	EngineError   = model.EngineError
	DocumentError = model.DocumentError
)
