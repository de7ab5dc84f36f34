package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes engine-level failures
type ErrorKind string

const (
	// KindUnavailable means the backend is missing or misconfigured
	// (binary not installed, credentials absent).
	KindUnavailable ErrorKind = "unavailable"
	// KindFailure means the backend accepted the request but returned an error.
	KindFailure ErrorKind = "failure"
)

// ParseError represents a token that could not be parsed as a monetary amount
type ParseError struct {
	Token   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse %q: %s (%v)", e.Token, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse %q: %s", e.Token, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(token, message string, cause error) *ParseError {
	return &ParseError{
		Token:   token,
		Message: message,
		Cause:   cause,
	}
}

// EngineError represents an OCR backend failure for one (document, engine) run
type EngineError struct {
	Engine  string    `json:"engine"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine %s %s: %s (%v)", e.Engine, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("engine %s %s: %s", e.Engine, e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewEngineError creates a new engine error
func NewEngineError(engine string, kind ErrorKind, message string, cause error) *EngineError {
	return &EngineError{
		Engine:  engine,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// AsEngineError extracts an EngineError from an error chain. Errors that are
// not already EngineErrors are wrapped as KindFailure.
func AsEngineError(engine string, err error) *EngineError {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee
	}
	return NewEngineError(engine, KindFailure, err.Error(), err)
}

// DocumentError means no engine produced a usable result for a document
type DocumentError struct {
	DocumentID string
	Causes     []error
}

func (e *DocumentError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("document %s: processing failed", e.DocumentID)
	}
	msgs := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("document %s: %s", e.DocumentID, strings.Join(msgs, "; "))
}

func (e *DocumentError) Unwrap() []error {
	return e.Causes
}

// NewDocumentError creates a new document error
func NewDocumentError(documentID string, causes ...error) *DocumentError {
	return &DocumentError{
		DocumentID: documentID,
		Causes:     causes,
	}
}
