// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"math"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/shopspring/decimal"
)

// ToPolicy converts the configured policy into a calculator.Policy. Unset
// fields stay zero and take their defaults in calculator.New.
func (p PolicyConfig) ToPolicy() (calculator.Policy, error) {
	ratio, err := toDecimal("suggested increase ratio", p.SuggestedIncreaseRatio)
	if err != nil {
		return calculator.Policy{}, err
	}
	rate, err := toDecimal("tax rate", p.TaxRate)
	if err != nil {
		return calculator.Policy{}, err
	}

	policy := calculator.Policy{
		SuggestedIncreaseRatio: ratio,
		UrgencyThresholdDays:   p.UrgencyThresholdDays,
		TaxRate:                rate,
	}
	for i, b := range p.TaxBrackets {
		threshold, err := toDecimal(fmt.Sprintf("tax bracket %d threshold", i), b.Threshold)
		if err != nil {
			return calculator.Policy{}, err
		}
		bracketRate, err := toDecimal(fmt.Sprintf("tax bracket %d rate", i), b.Rate)
		if err != nil {
			return calculator.Policy{}, err
		}
		policy.TaxBrackets = append(policy.TaxBrackets, calculator.TaxBracket{Threshold: threshold, Rate: bracketRate})
	}
	return policy, nil
}

func toDecimal(name string, value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("%s %v: %w", name, value, calculator.ErrInvalidAmount)
	}
	if value < 0 {
		return decimal.Zero, fmt.Errorf("%s %v is negative: %w", name, value, calculator.ErrInvalidAmount)
	}
	return decimal.NewFromFloat(value), nil
}
