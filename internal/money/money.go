package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to 2 decimal places, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum sums a slice of decimals. Decimal addition is exact, so the result is
// identical for any ordering of values.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// AbsDiff returns |a - b|
func AbsDiff(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b).Abs()
}
