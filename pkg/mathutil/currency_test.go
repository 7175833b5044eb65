package mathutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Round up at midpoint", "95.25", "95"},
		{"Exact midpoint", "0.5", "1"},
		{"Negative midpoint goes up", "-0.5", "0"},
		{"Negative below midpoint", "-1.6", "-2"},
		{"No rounding needed", "127", "127"},
		{"Large number", "12345.678", "12346"},
		{"Zero", "0", "0"},
		{"Just below midpoint", "2.49", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundHalfUp(d(tt.input))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("RoundHalfUp(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Kallio delta", "13.3684210526", "13.4"},
		{"Exact", "10", "10"},
		{"Half away from zero", "5.85", "5.9"},
		{"Negative", "-2.25", "-2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundPercent(d(tt.input))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("RoundPercent(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		total    string
		expected string
		ok       bool
	}{
		{"Quarter", "25", "100", "25", true},
		{"Zero total", "25", "0", "0", false},
		{"Zero value", "0", "950", "0", true},
		{"Increase share", "95", "950", "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Percentage(d(tt.value), d(tt.total))
			if ok != tt.ok {
				t.Errorf("Percentage(%s, %s) ok = %v, expected %v", tt.value, tt.total, ok, tt.ok)
			}
			if !result.Equal(d(tt.expected)) {
				t.Errorf("Percentage(%s, %s) = %s, expected %s", tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	result := ApplyPercentage(d("29680"), d("30"))
	if !result.Equal(d("8904")) {
		t.Errorf("ApplyPercentage(29680, 30) = %s, expected 8904", result)
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); !got.IsZero() {
		t.Errorf("Sum() = %s, expected 0", got)
	}
	if got := Sum(d("950"), d("1200"), d("680")); !got.Equal(d("2830")) {
		t.Errorf("Sum() = %s, expected 2830", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		a, b, tol string
		expected  bool
	}{
		{"Inside", "13.4", "13.368", "0.05", true},
		{"Edge", "1.00", "1.05", "0.05", true},
		{"Outside", "1.00", "1.06", "0.05", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(d(tt.a), d(tt.b), d(tt.tol)); got != tt.expected {
				t.Errorf("WithinTolerance(%s, %s, %s) = %v, expected %v", tt.a, tt.b, tt.tol, got, tt.expected)
			}
		})
	}
}

func TestMinInt(t *testing.T) {
	tests := []struct {
		name     string
		values   []int
		expected int
	}{
		{"Empty", nil, 0},
		{"Single", []int{127}, 127},
		{"Renewal days", []int{127, 34, 245}, 34},
		{"Negative", []int{3, -2, 0}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinInt(tt.values...); got != tt.expected {
				t.Errorf("MinInt(%v) = %d, expected %d", tt.values, got, tt.expected)
			}
		})
	}
}
