package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "total 5.75", "total 5.75", 1.0},
		{"case insensitive", "Total 5.75", "TOTAL 5.75", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"both empty", "", "", 1.0},
		{"one empty", "total", "", 0.0},
		{"half overlap", "a b", "b c", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, pipeline.TextSimilarity(tt.a, tt.b), 0.001)
		})
	}
}

func okResult(name, text, total string) model.EngineResult {
	er := model.EngineResult{EngineName: name}
	extraction := model.ExtractionResult{RawText: text}
	if total != "" {
		extraction.Total = &model.ClassifiedAmount{
			MonetaryAmount: model.MonetaryAmount{Value: money.MustFromString(total)},
			Role:           model.RoleTotal,
		}
	}
	er.Extraction = &extraction
	er.Verification = &model.VerificationResult{ItemsSum: money.Zero}
	return er
}

func TestCompare_SkipsFailedResults(t *testing.T) {
	results := []model.EngineResult{
		okResult("a", "total 5.75", "5.75"),
		{EngineName: "b", Err: &model.EngineError{Engine: "b", Kind: model.KindFailure}},
		okResult("c", "total 5.75", "5.75"),
	}

	pairs := pipeline.Compare(results)

	require.Len(t, pairs, 1)
	assert.Equal(t, "a", pairs[0].EngineA)
	assert.Equal(t, "c", pairs[0].EngineB)
}

func TestCompare_TotalsAgreement(t *testing.T) {
	agree := pipeline.Compare([]model.EngineResult{
		okResult("a", "x", "5.75"),
		okResult("b", "y", "5.75"),
	})
	require.Len(t, agree, 1)
	assert.True(t, agree[0].TotalsAgree)

	disagree := pipeline.Compare([]model.EngineResult{
		okResult("a", "x", "5.75"),
		okResult("b", "y", "6.00"),
	})
	require.Len(t, disagree, 1)
	assert.False(t, disagree[0].TotalsAgree)

	// Both finding no total is agreement; only one finding a total is not.
	bothNone := pipeline.Compare([]model.EngineResult{
		okResult("a", "x", ""),
		okResult("b", "y", ""),
	})
	require.Len(t, bothNone, 1)
	assert.True(t, bothNone[0].TotalsAgree)

	oneNone := pipeline.Compare([]model.EngineResult{
		okResult("a", "x", "5.75"),
		okResult("b", "y", ""),
	})
	require.Len(t, oneNone, 1)
	assert.False(t, oneNone[0].TotalsAgree)
}

func TestCompare_AllPairs(t *testing.T) {
	results := []model.EngineResult{
		okResult("a", "x", "1.00"),
		okResult("b", "x", "1.00"),
		okResult("c", "x", "1.00"),
	}

	pairs := pipeline.Compare(results)
	assert.Len(t, pairs, 3)
}
