// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(constants.PercentageMultiplier)
)

// RoundHalfUp rounds to the nearest integer, with halves going towards
// positive infinity (-0.5 becomes 0, 0.5 becomes 1).
func RoundHalfUp(val decimal.Decimal) decimal.Decimal {
	return val.Add(half).Floor()
}

// RoundPercent rounds a percentage to the displayed precision, halves away
// from zero.
func RoundPercent(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.PercentPrecision)
}

// Percentage calculates what percentage value is of total. The second return
// value is false when total is zero.
func Percentage(value, total decimal.Decimal) (decimal.Decimal, bool) {
	if total.IsZero() {
		return decimal.Zero, false
	}
	return value.Div(total).Mul(hundred), true
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).Div(hundred)
}

// Sum adds all values together.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// MinInt returns the minimum of the given values, or 0 when there are none.
func MinInt(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
