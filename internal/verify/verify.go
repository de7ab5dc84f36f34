// Package verify checks that classified line items sum to the declared total.
package verify

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
)

// DefaultTolerance is the absolute allowed difference between the item sum
// and the declared total.
var DefaultTolerance = money.MustFromString("0.02")

// Verify sums the item amounts exactly and compares against the declared
// total. A missing total yields StatusUnverifiable, which is distinct from a
// numeric mismatch. Pure computation: deterministic for given inputs and
// independent of item order.
func Verify(extraction model.ExtractionResult, tolerance decimal.Decimal) model.VerificationResult {
	sum := money.Zero
	for _, item := range extraction.Items {
		sum = sum.Add(item.Value)
	}

	result := model.VerificationResult{
		ItemsSum:  sum,
		Tolerance: tolerance,
	}

	if extraction.Total == nil {
		result.Status = model.StatusUnverifiable
		return result
	}

	total := extraction.Total.Value
	result.Total = &total
	result.Difference = money.AbsDiff(sum, total)
	result.WithinTolerance = result.Difference.LessThanOrEqual(tolerance)
	if result.WithinTolerance {
		result.Status = model.StatusVerified
	} else {
		result.Status = model.StatusMismatch
	}
	return result
}
