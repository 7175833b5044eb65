// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"
)

// BracketConfig is one progressive tax bracket as written in configuration.
type BracketConfig struct {
	Threshold float64
	Rate      float64
}

// PolicyValidator checks the business policy of a configuration. Zero values
// mean "use the default" and are not reported.
type PolicyValidator struct {
	SuggestedIncreaseRatio float64
	UrgencyThresholdDays   int
	TaxRate                float64
	TaxBrackets            []BracketConfig
}

// ValidateRatio warns when the suggested increase ratio is outside (0, 1].
func ValidateRatio(ratio float64) string {
	if ratio < 0 || ratio > 1 {
		return fmt.Sprintf("Suggested increase ratio %.2f is outside (0, 1] - suggestions will not land between current rent and market estimate", ratio)
	}
	return ""
}

// ValidateUrgencyThreshold warns about a negative or implausibly long urgency window.
func ValidateUrgencyThreshold(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Urgency threshold %d days is negative - the default will be used", days)
	case days > 90:
		return fmt.Sprintf("Urgency threshold %d days is longer than the statutory notice period", days)
	}
	return ""
}

// ValidateRate warns about a rate outside [0, 100] percent.
func ValidateRate(name string, rate float64) string {
	if rate < 0 || rate > 100 {
		return fmt.Sprintf("%s %.2f %% is outside 0-100 %%", name, rate)
	}
	return ""
}

// ValidateBrackets checks that brackets start at zero, have distinct
// thresholds and do not lower the rate as income grows.
func ValidateBrackets(brackets []BracketConfig) []string {
	if len(brackets) == 0 {
		return nil
	}

	var warnings []string
	sorted := append([]BracketConfig(nil), brackets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	if sorted[0].Threshold != 0 {
		warnings = append(warnings, fmt.Sprintf("Lowest tax bracket starts at %.0f - income below it is untaxed", sorted[0].Threshold))
	}
	for i, b := range sorted {
		if w := ValidateRate(fmt.Sprintf("Tax bracket from %.0f", b.Threshold), b.Rate); w != "" {
			warnings = append(warnings, w)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if b.Threshold == prev.Threshold {
			warnings = append(warnings, fmt.Sprintf("Tax brackets share the threshold %.0f", b.Threshold))
		}
		if b.Rate < prev.Rate {
			warnings = append(warnings, fmt.Sprintf("Tax bracket from %.0f lowers the rate (%.2f %% < %.2f %%)", b.Threshold, b.Rate, prev.Rate))
		}
	}
	return warnings
}

// ValidateAll validates the entire policy and returns warnings
func (pv *PolicyValidator) ValidateAll() []string {
	var warnings []string

	if w := ValidateRatio(pv.SuggestedIncreaseRatio); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateUrgencyThreshold(pv.UrgencyThresholdDays); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateRate("Tax rate", pv.TaxRate); w != "" {
		warnings = append(warnings, w)
	}
	warnings = append(warnings, ValidateBrackets(pv.TaxBrackets)...)

	return warnings
}
