// Package export serializes batch results for downstream consumers.
// Amount values are written as exact decimal strings, never floats, and
// durations in ISO-8601 form, so exported numbers round-trip without drift.
package export

import (
	"encoding/json"
	"io"

	"github.com/rezonia/ledgercheck/internal/model"
)

// WriteJSON writes the full batch summary as indented JSON
func WriteJSON(w io.Writer, summary model.BatchSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// WriteDocumentJSON writes a single document result as indented JSON
func WriteDocumentJSON(w io.Writer, result model.DocumentResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
