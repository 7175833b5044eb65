package calculator

import (
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/shopspring/decimal"
)

// ExpenseFilter narrows an expense report. Empty fields match everything.
type ExpenseFilter struct {
	PropertyID string          `json:"propertyId,omitempty"`
	Category   ledger.Category `json:"category,omitempty"`
	Year       int             `json:"year,omitempty"`
}

// Matches reports whether e passes the filter.
func (f ExpenseFilter) Matches(e ledger.Expense) bool {
	if f.PropertyID != "" && e.PropertyID != f.PropertyID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Year != 0 && e.Date.Year() != f.Year {
		return false
	}
	return true
}

// PropertyExpenses is the expense total booked on one property.
type PropertyExpenses struct {
	PropertyID   string          `json:"propertyId"`
	Address      string          `json:"address"`
	Neighborhood string          `json:"neighborhood"`
	Count        int             `json:"count"`
	Total        decimal.Decimal `json:"total"`
}

// ExpenseReport is the filtered expense list with its totals.
type ExpenseReport struct {
	Filter     ExpenseFilter      `json:"filter"`
	Expenses   []ledger.Expense   `json:"expenses"`
	Total      decimal.Decimal    `json:"total"`
	ByProperty []PropertyExpenses `json:"byProperty"`
	ByCategory []CategoryTotal    `json:"byCategory"`
}

// BuildExpenseReport filters expenses in ledger order and totals them per
// property and per non-empty category. Every property gets a row, even when
// nothing matched.
func BuildExpenseReport(properties []ledger.Property, expenses []ledger.Expense, filter ExpenseFilter) ExpenseReport {
	report := ExpenseReport{
		Filter:     filter,
		Expenses:   []ledger.Expense{},
		Total:      decimal.Zero,
		ByProperty: make([]PropertyExpenses, 0, len(properties)),
	}

	index := make(map[string]int, len(properties))
	for i, p := range properties {
		index[p.ID] = i
		report.ByProperty = append(report.ByProperty, PropertyExpenses{
			PropertyID:   p.ID,
			Address:      p.Address,
			Neighborhood: p.Neighborhood,
			Total:        decimal.Zero,
		})
	}

	for _, e := range expenses {
		if !filter.Matches(e) {
			continue
		}
		report.Expenses = append(report.Expenses, e)
		report.Total = report.Total.Add(e.Amount)
		if i, ok := index[e.PropertyID]; ok {
			report.ByProperty[i].Count++
			report.ByProperty[i].Total = report.ByProperty[i].Total.Add(e.Amount)
		}
	}

	report.ByCategory = CategoryTotals(report.Expenses)
	return report
}
