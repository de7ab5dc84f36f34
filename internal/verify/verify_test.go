package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
	"github.com/rezonia/ledgercheck/internal/verify"
)

func item(value string) model.ClassifiedAmount {
	return model.ClassifiedAmount{
		MonetaryAmount: model.MonetaryAmount{Value: money.MustFromString(value)},
		Role:           model.RoleItem,
	}
}

func total(value string) *model.ClassifiedAmount {
	return &model.ClassifiedAmount{
		MonetaryAmount: model.MonetaryAmount{Value: money.MustFromString(value)},
		Role:           model.RoleTotal,
	}
}

func TestVerify_Verified(t *testing.T) {
	extraction := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("10.00"), item("15.50")},
		Total: total("25.50"),
	}

	result := verify.Verify(extraction, verify.DefaultTolerance)

	assert.Equal(t, model.StatusVerified, result.Status)
	assert.True(t, result.WithinTolerance)
	assert.True(t, result.ItemsSum.Equal(money.MustFromString("25.50")))
	require.NotNil(t, result.Total)
	assert.True(t, result.Difference.IsZero())
}

func TestVerify_VerifiedWithinTolerance(t *testing.T) {
	extraction := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("10.00"), item("15.50")},
		Total: total("25.52"),
	}

	result := verify.Verify(extraction, verify.DefaultTolerance)

	assert.Equal(t, model.StatusVerified, result.Status)
	assert.True(t, result.Difference.Equal(money.MustFromString("0.02")))
}

func TestVerify_Mismatch(t *testing.T) {
	extraction := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("10.00"), item("15.50")},
		Total: total("26.00"),
	}

	result := verify.Verify(extraction, verify.DefaultTolerance)

	assert.Equal(t, model.StatusMismatch, result.Status)
	assert.False(t, result.WithinTolerance)
	assert.True(t, result.Difference.Equal(money.MustFromString("0.50")))
}

func TestVerify_NoTotalIsUnverifiable(t *testing.T) {
	// A missing total is a distinct outcome, not a mismatch.
	extraction := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("10.00"), item("15.50")},
	}

	result := verify.Verify(extraction, verify.DefaultTolerance)

	assert.Equal(t, model.StatusUnverifiable, result.Status)
	assert.Nil(t, result.Total)
	assert.True(t, result.ItemsSum.Equal(money.MustFromString("25.50")))
}

func TestVerify_NoItems(t *testing.T) {
	extraction := model.ExtractionResult{Total: total("0.00")}

	result := verify.Verify(extraction, verify.DefaultTolerance)

	assert.Equal(t, model.StatusVerified, result.Status)
	assert.True(t, result.ItemsSum.IsZero())
}

func TestVerify_CustomTolerance(t *testing.T) {
	extraction := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("10.00")},
		Total: total("10.40"),
	}

	loose := verify.Verify(extraction, money.MustFromString("0.50"))
	assert.Equal(t, model.StatusVerified, loose.Status)

	strict := verify.Verify(extraction, money.MustFromString("0.00"))
	assert.Equal(t, model.StatusMismatch, strict.Status)
}

func TestVerify_ExactCentArithmetic(t *testing.T) {
	// 0.10 added ten times is exactly 1.00. Float arithmetic would miss;
	// decimal arithmetic must not.
	items := make([]model.ClassifiedAmount, 10)
	for i := range items {
		items[i] = item("0.10")
	}
	extraction := model.ExtractionResult{Items: items, Total: total("1.00")}

	result := verify.Verify(extraction, money.MustFromString("0.00"))

	assert.Equal(t, model.StatusVerified, result.Status)
	assert.True(t, result.Difference.IsZero())
}

func TestVerify_OrderIndependent(t *testing.T) {
	a := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("1.11"), item("2.22"), item("3.33")},
		Total: total("6.66"),
	}
	b := model.ExtractionResult{
		Items: []model.ClassifiedAmount{item("3.33"), item("1.11"), item("2.22")},
		Total: total("6.66"),
	}

	ra := verify.Verify(a, verify.DefaultTolerance)
	rb := verify.Verify(b, verify.DefaultTolerance)

	assert.Equal(t, ra.Status, rb.Status)
	assert.True(t, ra.ItemsSum.Equal(rb.ItemsSum))
}
