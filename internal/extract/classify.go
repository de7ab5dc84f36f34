package extract

import (
	"regexp"
	"strings"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
)

// Keyword is a total-marker phrase with its match strength. Stronger phrases
// (grand total, amount due) outrank weaker ones (subtotal); the weight also
// becomes the classification confidence of the matched total.
type Keyword struct {
	Phrase string
	Weight float64
}

// DefaultTotalKeywords covers English and Spanish total markers, mirroring
// the documents this tool is pointed at.
func DefaultTotalKeywords() []Keyword {
	return []Keyword{
		{Phrase: "grand total", Weight: 1.0},
		{Phrase: "gran total", Weight: 1.0},
		{Phrase: "total due", Weight: 1.0},
		{Phrase: "amount due", Weight: 1.0},
		{Phrase: "total a pagar", Weight: 1.0},
		{Phrase: "importe total", Weight: 1.0},
		{Phrase: "balance due", Weight: 0.95},
		{Phrase: "total", Weight: 0.9},
		{Phrase: "balance", Weight: 0.8},
		{Phrase: "subtotal", Weight: 0.5},
		{Phrase: "sub total", Weight: 0.5},
	}
}

// DefaultAdjustmentKeywords marks tax/discount/shipping lines that are not
// plain line items.
func DefaultAdjustmentKeywords() []string {
	return []string{
		"tax", "vat", "iva", "impuesto",
		"discount", "descuento",
		"shipping", "envio", "delivery",
		"tip", "propina",
		"surcharge",
	}
}

// Config controls classification policy. Policies are explicit, never
// inferred from the document.
type Config struct {
	// TotalKeywords anchor the declared total. Empty means defaults.
	TotalKeywords []Keyword
	// AdjustmentKeywords mark tax/discount/shipping lines. Empty means
	// defaults.
	AdjustmentKeywords []string
	// IncludeAdjustments counts adjustment lines as items instead of
	// dropping them.
	IncludeAdjustments bool
	// DisableLargestFallback turns off the largest-amount total heuristic
	// used when no keyword matches. The fallback can misread single-item
	// documents, so it is switchable.
	DisableLargestFallback bool
}

const (
	itemConfidence       = 0.9
	adjustmentConfidence = 0.6
	fallbackConfidence   = 0.3
)

// Classifier partitions extracted amounts into item/total roles
type Classifier struct {
	cfg     Config
	totals  []compiledKeyword
	adjusts []*regexp.Regexp
}

type compiledKeyword struct {
	re     *regexp.Regexp
	weight float64
}

// NewClassifier compiles the configured keyword lists
func NewClassifier(cfg Config) *Classifier {
	keywords := cfg.TotalKeywords
	if len(keywords) == 0 {
		keywords = DefaultTotalKeywords()
	}
	adjustments := cfg.AdjustmentKeywords
	if len(adjustments) == 0 {
		adjustments = DefaultAdjustmentKeywords()
	}

	c := &Classifier{cfg: cfg}
	for _, kw := range keywords {
		c.totals = append(c.totals, compiledKeyword{
			re:     phraseRegexp(kw.Phrase),
			weight: kw.Weight,
		})
	}
	for _, phrase := range adjustments {
		c.adjusts = append(c.adjusts, phraseRegexp(phrase))
	}
	return c
}

// phraseRegexp builds a case-insensitive whole-word matcher where spaces in
// the phrase tolerate arbitrary whitespace.
func phraseRegexp(phrase string) *regexp.Regexp {
	words := strings.Fields(regexp.QuoteMeta(strings.ToLower(phrase)))
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
}

// Classify partitions amounts into items and a total. When no confident
// total candidate exists the result carries a nil Total and TotalNone, which
// downstream verification reports as unverifiable rather than mismatched.
func (c *Classifier) Classify(rawText string, amounts []model.MonetaryAmount) model.ExtractionResult {
	result := model.ExtractionResult{
		RawText:     rawText,
		TotalSource: model.TotalNone,
	}
	if len(amounts) == 0 {
		return result
	}

	lines := strings.Split(rawText, "\n")
	lineText := func(i int) string {
		if i >= 0 && i < len(lines) {
			return lines[i]
		}
		return ""
	}

	// Keyword pass: strongest marker wins; on equal strength the later line
	// wins, since totals sit near the document end.
	totalIdx := -1
	totalWeight := 0.0
	for i, amt := range amounts {
		w := c.totalWeight(lineText(amt.SourceLine))
		if w > 0 && w >= totalWeight {
			totalIdx, totalWeight = i, w
		}
	}

	if totalIdx >= 0 {
		result.Total = &model.ClassifiedAmount{
			MonetaryAmount: amounts[totalIdx],
			Role:           model.RoleTotal,
			Confidence:     totalWeight,
		}
		result.TotalSource = model.TotalByKeyword
	} else if !c.cfg.DisableLargestFallback {
		if i, ok := largestCoveringRest(amounts); ok {
			totalIdx = i
			result.Total = &model.ClassifiedAmount{
				MonetaryAmount: amounts[i],
				Role:           model.RoleTotal,
				Confidence:     fallbackConfidence,
			}
			result.TotalSource = model.TotalByLargest
		}
	}

	for i, amt := range amounts {
		if i == totalIdx {
			continue
		}
		line := lineText(amt.SourceLine)
		if c.totalWeight(line) > 0 {
			// Total/subtotal markers that lost the total race are
			// aggregates, not items; counting them would double-book.
			continue
		}
		confidence := itemConfidence
		if c.isAdjustment(line) {
			if !c.cfg.IncludeAdjustments {
				continue
			}
			confidence = adjustmentConfidence
		}
		result.Items = append(result.Items, model.ClassifiedAmount{
			MonetaryAmount: amt,
			Role:           model.RoleItem,
			Confidence:     confidence,
		})
	}

	return result
}

func (c *Classifier) totalWeight(line string) float64 {
	best := 0.0
	for _, kw := range c.totals {
		if kw.weight > best && kw.re.MatchString(line) {
			best = kw.weight
		}
	}
	return best
}

func (c *Classifier) isAdjustment(line string) bool {
	for _, re := range c.adjusts {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// largestCoveringRest finds the single largest amount and accepts it as the
// total only when it covers the sum of everything else. With fewer than two
// remaining amounts the signal is too weak to call.
func largestCoveringRest(amounts []model.MonetaryAmount) (int, bool) {
	if len(amounts) < 3 {
		return -1, false
	}
	largest := 0
	for i := 1; i < len(amounts); i++ {
		if amounts[i].Value.GreaterThan(amounts[largest].Value) {
			largest = i
		}
	}
	rest := money.Zero
	for i, amt := range amounts {
		if i != largest {
			rest = rest.Add(amt.Value)
		}
	}
	if amounts[largest].Value.GreaterThanOrEqual(rest) {
		return largest, true
	}
	return -1, false
}
