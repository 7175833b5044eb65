package validation

import (
	"testing"
)

func TestValidateRatio(t *testing.T) {
	tests := []struct {
		name       string
		ratio      float64
		expectWarn bool
	}{
		{"Default ratio", 0.75, false},
		{"Full gap", 1, false},
		{"Unset", 0, false},
		{"Above one", 1.2, true},
		{"Negative", -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateRatio(tt.ratio)
			if tt.expectWarn && warning == "" {
				t.Errorf("ValidateRatio(%v) expected warning but got none", tt.ratio)
			}
			if !tt.expectWarn && warning != "" {
				t.Errorf("ValidateRatio(%v) unexpected warning: %s", tt.ratio, warning)
			}
		})
	}
}

func TestValidateUrgencyThreshold(t *testing.T) {
	if w := ValidateUrgencyThreshold(14); w != "" {
		t.Errorf("unexpected warning for 14 days: %s", w)
	}
	if w := ValidateUrgencyThreshold(-1); w == "" {
		t.Error("expected warning for a negative threshold")
	}
	if w := ValidateUrgencyThreshold(120); w == "" {
		t.Error("expected warning for a 120 day threshold")
	}
}

func TestValidateBrackets(t *testing.T) {
	tests := []struct {
		name      string
		brackets  []BracketConfig
		wantCount int
	}{
		{
			name:      "Capital income brackets",
			brackets:  []BracketConfig{{0, 30}, {30000, 34}},
			wantCount: 0,
		},
		{
			name:      "Unsorted but valid",
			brackets:  []BracketConfig{{30000, 34}, {0, 30}},
			wantCount: 0,
		},
		{
			name:      "Missing zero bracket",
			brackets:  []BracketConfig{{1000, 30}},
			wantCount: 1,
		},
		{
			name:      "Duplicate threshold",
			brackets:  []BracketConfig{{0, 30}, {0, 30}},
			wantCount: 1,
		},
		{
			name:      "Decreasing rate",
			brackets:  []BracketConfig{{0, 34}, {30000, 30}},
			wantCount: 1,
		},
		{
			name:      "Rate above 100",
			brackets:  []BracketConfig{{0, 130}},
			wantCount: 1,
		},
		{
			name:      "No brackets",
			brackets:  nil,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateBrackets(tt.brackets)
			if len(warnings) != tt.wantCount {
				t.Errorf("ValidateBrackets() returned %d warnings, expected %d: %v", len(warnings), tt.wantCount, warnings)
			}
		})
	}
}

func TestPolicyValidatorValidateAll(t *testing.T) {
	pv := &PolicyValidator{
		SuggestedIncreaseRatio: 1.5,
		UrgencyThresholdDays:   -3,
		TaxRate:                -30,
		TaxBrackets:            []BracketConfig{{0, 34}, {30000, 30}},
	}

	warnings := pv.ValidateAll()
	if len(warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}

	clean := &PolicyValidator{SuggestedIncreaseRatio: 0.75, UrgencyThresholdDays: 14, TaxRate: 30}
	if warnings := clean.ValidateAll(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
