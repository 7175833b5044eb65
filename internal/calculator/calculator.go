// Package calculator derives the dashboard figures (market delta, portfolio
// summary, suggested rent, lease urgency and tax totals) from ledger records.
//
// Every function is pure. Anything that compares against a deadline takes the
// reference date as an argument and never reads the clock.
package calculator

import (
	"errors"
	"sort"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Re-exported ledger failures so callers can match on a single taxonomy.
var (
	ErrInvalidAmount            = ledger.ErrInvalidAmount
	ErrUnknownPropertyReference = ledger.ErrUnknownPropertyReference
	ErrDivisionByZero           = ledger.ErrDivisionByZero
	ErrNoTaxBrackets            = errors.New("no tax brackets configured")
)

// TaxBracket taxes the part of net income above Threshold at Rate percent,
// up to the next bracket's threshold.
type TaxBracket struct {
	Threshold decimal.Decimal `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"`
}

// Policy holds the business rules applied by the calculator.
type Policy struct {
	// SuggestedIncreaseRatio is the share of the market gap proposed as an increase.
	SuggestedIncreaseRatio decimal.Decimal `json:"suggestedIncreaseRatio"`
	// UrgencyThresholdDays is the largest notify-by distance still counted as urgent.
	UrgencyThresholdDays int `json:"urgencyThresholdDays"`
	// TaxRate is the flat capital income tax rate in percent.
	TaxRate decimal.Decimal `json:"taxRate"`
	// TaxBrackets is the progressive schedule, in any order.
	TaxBrackets []TaxBracket `json:"taxBrackets"`
}

// DefaultPolicy returns the policy used by the product: 75 % of the market
// gap, a 14 day urgency window and Finnish capital income tax (30 %, 34 %
// above 30 000 €).
func DefaultPolicy() Policy {
	rate := decimal.RequireFromString(constants.DefaultTaxRate)
	return Policy{
		SuggestedIncreaseRatio: decimal.RequireFromString(constants.DefaultSuggestedIncreaseRatio),
		UrgencyThresholdDays:   constants.DefaultUrgencyThresholdDays,
		TaxRate:                rate,
		TaxBrackets: []TaxBracket{
			{Threshold: decimal.Zero, Rate: rate},
			{
				Threshold: decimal.RequireFromString(constants.DefaultHigherBracketThreshold),
				Rate:      decimal.RequireFromString(constants.DefaultHigherBracketRate),
			},
		},
	}
}

// withDefaults fills unset policy fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.SuggestedIncreaseRatio.IsZero() {
		p.SuggestedIncreaseRatio = def.SuggestedIncreaseRatio
	}
	if p.UrgencyThresholdDays <= 0 {
		p.UrgencyThresholdDays = def.UrgencyThresholdDays
	}
	if p.TaxRate.IsZero() {
		p.TaxRate = def.TaxRate
	}
	if len(p.TaxBrackets) == 0 {
		p.TaxBrackets = def.TaxBrackets
	}
	brackets := append([]TaxBracket(nil), p.TaxBrackets...)
	sort.SliceStable(brackets, func(i, j int) bool {
		return brackets[i].Threshold.LessThan(brackets[j].Threshold)
	})
	p.TaxBrackets = brackets
	return p
}

// Calculator applies a Policy to ledger records.
type Calculator struct {
	policy Policy
	logger *zap.Logger
}

// New creates a calculator. Zero policy fields take their default value.
// If logger is nil, it will use a no-op logger.
func New(logger *zap.Logger, policy Policy) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{policy: policy.withDefaults(), logger: logger}
}

// Policy returns the effective policy.
func (c *Calculator) Policy() Policy {
	p := c.policy
	p.TaxBrackets = append([]TaxBracket(nil), c.policy.TaxBrackets...)
	return p
}
