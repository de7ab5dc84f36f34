package pipeline

import (
	"strings"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
)

// Compare derives pairwise agreement metrics over the successful engine runs
// of one document. It introduces no new data, only a comparison view.
func Compare(results []model.EngineResult) []model.EnginePair {
	var pairs []model.EnginePair
	for i := range results {
		if !results[i].OK() {
			continue
		}
		for j := i + 1; j < len(results); j++ {
			if !results[j].OK() {
				continue
			}
			pairs = append(pairs, comparePair(&results[i], &results[j]))
		}
	}
	return pairs
}

func comparePair(a, b *model.EngineResult) model.EnginePair {
	pair := model.EnginePair{
		EngineA:        a.EngineName,
		EngineB:        b.EngineName,
		TextSimilarity: TextSimilarity(a.Extraction.RawText, b.Extraction.RawText),
		TotalsAgree:    totalsAgree(a.Extraction.Total, b.Extraction.Total),
	}
	if a.Verification != nil && b.Verification != nil {
		diff := money.AbsDiff(a.Verification.ItemsSum, b.Verification.ItemsSum)
		pair.SumDifference = &diff
	}
	return pair
}

// totalsAgree holds when both engines found the same declared total, or both
// found none.
func totalsAgree(a, b *model.ClassifiedAmount) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Value.Equal(b.Value)
}

// TextSimilarity is the Sørensen–Dice coefficient over lowercased word sets,
// in [0,1]. Identical texts score 1, disjoint texts 0.
func TextSimilarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(wa)+len(wb))
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
