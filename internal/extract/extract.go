// Package extract turns raw OCR text into classified monetary amounts.
//
// The extractor walks the text line by line and pulls at most one amount per
// line (the rightmost parseable token, matching the right-aligned amount
// column of most documents). The classifier then partitions those amounts
// into line items and a declared total.
package extract

import (
	"regexp"
	"strings"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
)

// amountRe matches well-formed monetary tokens: an optional sign, optional
// thousands grouping, and a two-digit decimal part.
var amountRe = regexp.MustCompile(`[+-]?\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\b|[+-]?\d+[.,]\d{2}\b`)

// fuzzyAmountRe additionally admits glyphs Tesseract commonly confuses with
// digits. It is consulted only when amountRe finds nothing on a line, so a
// clean read is never second-guessed.
var fuzzyAmountRe = regexp.MustCompile(`[+-]?[0-9OolI|SB]+[.,][0-9OolI|SB]{2}\b`)

// Extractor scans OCR text for monetary amounts
type Extractor struct {
	parser *money.Parser
	fuzzy  bool
}

// NewExtractor creates an extractor around the given amount parser. The
// fuzzy token scan is enabled iff the parser's OCR repair is.
func NewExtractor(cfg money.Config) *Extractor {
	return &Extractor{
		parser: money.NewParser(cfg),
		fuzzy:  cfg.FixConfusions,
	}
}

// Extract returns one parsed amount per line containing at least one
// parseable token, in document order. Lines with no parseable amount are
// dropped, not errored.
func (e *Extractor) Extract(text string) []model.MonetaryAmount {
	var amounts []model.MonetaryAmount
	for i, line := range strings.Split(text, "\n") {
		if amt, ok := e.extractLine(line, i); ok {
			amounts = append(amounts, amt)
		}
	}
	return amounts
}

// extractLine finds the rightmost parseable amount token on a line.
func (e *Extractor) extractLine(line string, idx int) (model.MonetaryAmount, bool) {
	tokens := amountRe.FindAllString(line, -1)
	if len(tokens) == 0 && e.fuzzy {
		tokens = fuzzyAmountRe.FindAllString(line, -1)
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		amt, err := e.parser.Parse(tokens[i], idx)
		if err != nil {
			continue
		}
		return amt, true
	}
	return model.MonetaryAmount{}, false
}
