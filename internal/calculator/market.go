package calculator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/iwvelando/rentcheck/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var monthsPerYear = decimal.NewFromInt(constants.MonthsPerYear)

// MarketDelta returns marketEstimate - currentRent. A positive delta means the
// tenant pays less than the market rate.
func MarketDelta(p ledger.Property) decimal.Decimal {
	return p.MarketEstimate.Sub(p.CurrentRent)
}

// MarketDeltaPercent returns the delta as a percentage of the current rent,
// rounded to one decimal.
func MarketDeltaPercent(p ledger.Property) (decimal.Decimal, error) {
	pct, ok := mathutil.Percentage(MarketDelta(p), p.CurrentRent)
	if !ok {
		return decimal.Zero, fmt.Errorf("property %s: current rent is zero: %w", p.ID, ErrDivisionByZero)
	}
	return mathutil.RoundPercent(pct), nil
}

// PortfolioSummary aggregates the headline dashboard figures.
type PortfolioSummary struct {
	TotalProperties  int             `json:"totalProperties"`
	TotalMonthlyRent decimal.Decimal `json:"totalMonthlyRent"`
	AnnualIncome     decimal.Decimal `json:"annualIncome"`
	AverageDelta     decimal.Decimal `json:"averageDelta"`
	NextRenewalDays  int             `json:"nextRenewalDays"`
	TotalMonthlyLoss decimal.Decimal `json:"totalMonthlyLoss"`
	AnnualLoss       decimal.Decimal `json:"annualLoss"`
}

// SummarizePortfolio computes the portfolio summary. An empty portfolio
// yields the zero summary.
func SummarizePortfolio(properties []ledger.Property) PortfolioSummary {
	summary := PortfolioSummary{
		TotalProperties:  len(properties),
		TotalMonthlyRent: decimal.Zero,
		AnnualIncome:     decimal.Zero,
		AverageDelta:     decimal.Zero,
		TotalMonthlyLoss: decimal.Zero,
		AnnualLoss:       decimal.Zero,
	}
	if len(properties) == 0 {
		return summary
	}

	renewals := make([]int, 0, len(properties))
	for _, p := range properties {
		summary.TotalMonthlyRent = summary.TotalMonthlyRent.Add(p.CurrentRent)
		summary.TotalMonthlyLoss = summary.TotalMonthlyLoss.Add(MarketDelta(p))
		renewals = append(renewals, p.LeaseRenewalDays)
	}

	summary.AnnualIncome = summary.TotalMonthlyRent.Mul(monthsPerYear)
	summary.AnnualLoss = summary.TotalMonthlyLoss.Mul(monthsPerYear)
	summary.AverageDelta = mathutil.RoundHalfUp(summary.TotalMonthlyLoss.Div(decimal.NewFromInt(int64(len(properties)))))
	summary.NextRenewalDays = mathutil.MinInt(renewals...)
	return summary
}

// SuggestedNewRent returns currentRent + round(delta × ratio).
func (c *Calculator) SuggestedNewRent(p ledger.Property) decimal.Decimal {
	increase := mathutil.RoundHalfUp(MarketDelta(p).Mul(c.policy.SuggestedIncreaseRatio))
	return p.CurrentRent.Add(increase)
}

// RentSuggestion is everything a rent-increase notice quotes.
type RentSuggestion struct {
	PropertyID        string          `json:"propertyId"`
	CurrentRent       decimal.Decimal `json:"currentRent"`
	MarketEstimate    decimal.Decimal `json:"marketEstimate"`
	Delta             decimal.Decimal `json:"delta"`
	DeltaPercent      decimal.Decimal `json:"deltaPercent"`
	SuggestedRent     decimal.Decimal `json:"suggestedRent"`
	IncreaseAmount    decimal.Decimal `json:"increaseAmount"`
	IncreasePercent   decimal.Decimal `json:"increasePercent"`
	AverageComparable decimal.Decimal `json:"averageComparable"`
	Comparables       int             `json:"comparables"`
}

// WithinLeaseCap reports whether the suggested increase respects the lease's
// maximum annual increase.
func (s RentSuggestion) WithinLeaseCap(lease ledger.Lease) bool {
	return s.IncreasePercent.LessThanOrEqual(lease.MaxAnnualIncrease)
}

// RentSuggestion computes the suggested rent for a property.
func (c *Calculator) RentSuggestion(p ledger.Property) (RentSuggestion, error) {
	deltaPct, err := MarketDeltaPercent(p)
	if err != nil {
		return RentSuggestion{}, err
	}

	newRent := c.SuggestedNewRent(p)
	increase := newRent.Sub(p.CurrentRent)
	increasePct, _ := mathutil.Percentage(increase, p.CurrentRent)

	avg, _ := AverageComparableRent(p)
	s := RentSuggestion{
		PropertyID:        p.ID,
		CurrentRent:       p.CurrentRent,
		MarketEstimate:    p.MarketEstimate,
		Delta:             MarketDelta(p),
		DeltaPercent:      deltaPct,
		SuggestedRent:     newRent,
		IncreaseAmount:    increase,
		IncreasePercent:   mathutil.RoundPercent(increasePct),
		AverageComparable: avg,
		Comparables:       len(p.Comparables),
	}

	c.logger.Debug("rent suggestion computed",
		zap.String("op", "calculator.RentSuggestion"),
		zap.String("property", p.ID),
		zap.String("suggested", s.SuggestedRent.String()),
		zap.String("increasePercent", s.IncreasePercent.String()),
	)
	return s, nil
}

// AverageComparableRent returns the mean comparable rent rounded to whole
// euros. The second value is false when the property has no comparables.
func AverageComparableRent(p ledger.Property) (decimal.Decimal, bool) {
	if len(p.Comparables) == 0 {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, c := range p.Comparables {
		total = total.Add(c.Rent)
	}
	return mathutil.RoundHalfUp(total.Div(decimal.NewFromInt(int64(len(p.Comparables))))), true
}

// ComparablesByDistance returns the comparables nearest first. Distances that
// cannot be read sort last, keeping their ledger order.
func ComparablesByDistance(p ledger.Property) []ledger.Comparable {
	out := append([]ledger.Comparable(nil), p.Comparables...)
	sort.SliceStable(out, func(i, j int) bool {
		di, okI := distanceMeters(out[i].Distance)
		dj, okJ := distanceMeters(out[j].Distance)
		if okI != okJ {
			return okI
		}
		return di < dj
	})
	return out
}

// distanceMeters reads "250m" or "1.2km".
func distanceMeters(distance string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(distance))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "km"):
		s, multiplier = strings.TrimSuffix(s, "km"), 1000
	case strings.HasSuffix(s, "m"):
		s = strings.TrimSuffix(s, "m")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
