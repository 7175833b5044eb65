package calculator

import (
	"fmt"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PropertyTax is one property row of the tax summary.
type PropertyTax struct {
	PropertyID   string          `json:"propertyId"`
	Address      string          `json:"address"`
	Neighborhood string          `json:"neighborhood"`
	RentalIncome decimal.Decimal `json:"rentalIncome"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetIncome    decimal.Decimal `json:"netIncome"`
}

// CategoryTotal is the amount spent in one expense category.
type CategoryTotal struct {
	Category     ledger.Category `json:"category"`
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	SharePercent decimal.Decimal `json:"sharePercent"`
}

// TaxSummary is the annual rental-income tax view.
type TaxSummary struct {
	Year               int             `json:"year"`
	Properties         []PropertyTax   `json:"properties"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	NetIncome          decimal.Decimal `json:"netIncome"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	EstimatedTax       decimal.Decimal `json:"estimatedTax"`
	ProgressiveTax     decimal.Decimal `json:"progressiveTax"`
}

// TaxSummary builds the tax view for the given calendar year. Rental income is
// currentRent × 12 per property; only expenses dated in year are deducted.
func (c *Calculator) TaxSummary(properties []ledger.Property, expenses []ledger.Expense, year int) (TaxSummary, error) {
	summary := TaxSummary{
		Year:          year,
		Properties:    make([]PropertyTax, 0, len(properties)),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetIncome:     decimal.Zero,
		TaxRate:       c.policy.TaxRate,
	}

	index := make(map[string]int, len(properties))
	for i, p := range properties {
		index[p.ID] = i
		income := p.CurrentRent.Mul(monthsPerYear)
		summary.Properties = append(summary.Properties, PropertyTax{
			PropertyID:   p.ID,
			Address:      p.Address,
			Neighborhood: p.Neighborhood,
			RentalIncome: income,
			Expenses:     decimal.Zero,
		})
		summary.TotalIncome = summary.TotalIncome.Add(income)
	}

	var yearly []ledger.Expense
	for _, e := range expenses {
		if e.Date.Year() != year {
			continue
		}
		if e.Amount.IsNegative() {
			return TaxSummary{}, fmt.Errorf("expense %s amount %s: %w", e.ID, e.Amount, ErrInvalidAmount)
		}
		i, ok := index[e.PropertyID]
		if !ok {
			return TaxSummary{}, fmt.Errorf("expense %s: property %q: %w", e.ID, e.PropertyID, ErrUnknownPropertyReference)
		}
		summary.Properties[i].Expenses = summary.Properties[i].Expenses.Add(e.Amount)
		summary.TotalExpenses = summary.TotalExpenses.Add(e.Amount)
		yearly = append(yearly, e)
	}

	for i := range summary.Properties {
		row := &summary.Properties[i]
		row.NetIncome = row.RentalIncome.Sub(row.Expenses)
	}
	summary.NetIncome = summary.TotalIncome.Sub(summary.TotalExpenses)
	summary.ExpensesByCategory = CategoryTotals(yearly)

	var err error
	if summary.EstimatedTax, err = EstimatedTax(summary.NetIncome, c.policy.TaxRate); err != nil {
		return TaxSummary{}, err
	}
	if summary.ProgressiveTax, err = ProgressiveTax(summary.NetIncome, c.policy.TaxBrackets); err != nil {
		return TaxSummary{}, err
	}

	c.logger.Debug("tax summary computed",
		zap.String("op", "calculator.TaxSummary"),
		zap.Int("year", year),
		zap.Int("expenses", len(yearly)),
		zap.String("netIncome", summary.NetIncome.String()),
		zap.String("estimatedTax", summary.EstimatedTax.String()),
	)
	return summary, nil
}

// CategoryTotals buckets expenses by category regardless of property. Empty
// categories are left out; shares are whole percents of the grand total.
func CategoryTotals(expenses []ledger.Expense) []CategoryTotal {
	sums := make(map[ledger.Category]decimal.Decimal)
	total := decimal.Zero
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, cat := range ledger.Categories() {
		amount, ok := sums[cat]
		if !ok || amount.IsZero() {
			continue
		}
		share := decimal.Zero
		if pct, ok := mathutil.Percentage(amount, total); ok {
			share = mathutil.RoundHalfUp(pct)
		}
		out = append(out, CategoryTotal{
			Category:     cat,
			Label:        cat.Label(),
			Amount:       amount,
			SharePercent: share,
		})
	}
	return out
}

// EstimatedTax returns round(netIncome × rate / 100). A net loss owes nothing.
func EstimatedTax(netIncome, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate %s: %w", rate, ErrInvalidAmount)
	}
	if !netIncome.IsPositive() {
		return decimal.Zero, nil
	}
	return mathutil.RoundHalfUp(mathutil.ApplyPercentage(netIncome, rate)), nil
}

// ProgressiveTax applies each bracket's rate to the slice of net income
// between its threshold and the next one. Brackets must be sorted by
// threshold; the result is rounded to whole euros.
func ProgressiveTax(netIncome decimal.Decimal, brackets []TaxBracket) (decimal.Decimal, error) {
	if len(brackets) == 0 {
		return decimal.Zero, ErrNoTaxBrackets
	}
	for _, b := range brackets {
		if b.Rate.IsNegative() || b.Threshold.IsNegative() {
			return decimal.Zero, fmt.Errorf("tax bracket %s @ %s: %w", b.Threshold, b.Rate, ErrInvalidAmount)
		}
	}
	if !netIncome.IsPositive() {
		return decimal.Zero, nil
	}

	tax := decimal.Zero
	for i, b := range brackets {
		if netIncome.LessThanOrEqual(b.Threshold) {
			break
		}
		upper := netIncome
		if i+1 < len(brackets) && brackets[i+1].Threshold.LessThan(netIncome) {
			upper = brackets[i+1].Threshold
		}
		tax = tax.Add(mathutil.ApplyPercentage(upper.Sub(b.Threshold), b.Rate))
	}
	return mathutil.RoundHalfUp(tax), nil
}
