package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/extract"
	"github.com/rezonia/ledgercheck/internal/money"
)

func TestExtract_OneAmountPerLine(t *testing.T) {
	e := extract.NewExtractor(money.DefaultConfig())

	text := "Coffee 3.50\nBagel 2.25\nTotal 5.75"
	amounts := e.Extract(text)

	require.Len(t, amounts, 3)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("3.50")))
	assert.True(t, amounts[1].Value.Equal(money.MustFromString("2.25")))
	assert.True(t, amounts[2].Value.Equal(money.MustFromString("5.75")))
	assert.Equal(t, 0, amounts[0].SourceLine)
	assert.Equal(t, 2, amounts[2].SourceLine)
}

func TestExtract_RightmostToken(t *testing.T) {
	e := extract.NewExtractor(money.DefaultConfig())

	// Quantity-style prefixes lose to the right-aligned amount column.
	amounts := e.Extract("2.00 kg Apples 4.50")
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("4.50")))
}

func TestExtract_DropsLinesWithoutAmounts(t *testing.T) {
	e := extract.NewExtractor(money.DefaultConfig())

	text := "ACME STORE\n123 Main Street\nCoffee 3.50\nThank you!"
	amounts := e.Extract(text)

	require.Len(t, amounts, 1)
	assert.Equal(t, 2, amounts[0].SourceLine)
}

func TestExtract_IgnoresNonMonetaryNumbers(t *testing.T) {
	e := extract.NewExtractor(money.Config{FixConfusions: false})

	// Phone numbers, dates, and bare integers have no two-digit decimal
	// part and are not amounts.
	text := "Tel 555-0123\n2026-01-15\nOrder 42\nItem 9.99"
	amounts := e.Extract(text)

	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("9.99")))
}

func TestExtract_ThousandsGrouping(t *testing.T) {
	e := extract.NewExtractor(money.DefaultConfig())

	amounts := e.Extract("Invoice total 1,234.56")
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("1234.56")))
}

func TestExtract_FuzzyOnlyWhenStrictFails(t *testing.T) {
	fuzzy := extract.NewExtractor(money.Config{FixConfusions: true})
	strict := extract.NewExtractor(money.Config{FixConfusions: false})

	// "1O.50" only parses with the OCR repair scan.
	amounts := fuzzy.Extract("Widget 1O.50")
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("10.50")))

	assert.Empty(t, strict.Extract("Widget 1O.50"))

	// A clean token on the same line wins without repair kicking in.
	amounts = fuzzy.Extract("Widget 1O.50 12.00")
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Value.Equal(money.MustFromString("12.00")))
}

func TestExtract_Empty(t *testing.T) {
	e := extract.NewExtractor(money.DefaultConfig())
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("no numbers here\nat all"))
}
