// Package report assembles the screens of the dashboard (portfolio overview,
// property detail, leases, expenses, tax, alerts, listing and letters) from a
// ledger. The CLI and the HTTP API both render these views.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/rentcheck/internal/alerts"
	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/internal/letter"
	"github.com/iwvelando/rentcheck/internal/listing"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Builder derives report views with one calculator policy.
type Builder struct {
	calc     *calculator.Calculator
	renderer *letter.Renderer
	logger   *zap.Logger
}

// New creates a builder.
// If logger is nil, it will use a no-op logger.
func New(logger *zap.Logger, calc *calculator.Calculator) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{calc: calc, renderer: letter.NewRenderer(calc, logger), logger: logger}
}

// Calculator returns the calculator the views are computed with.
func (b *Builder) Calculator() *calculator.Calculator {
	return b.calc
}

// PropertyOverview is one property row of the dashboard.
type PropertyOverview struct {
	ID               string          `json:"id"`
	Address          string          `json:"address"`
	Neighborhood     string          `json:"neighborhood"`
	Type             string          `json:"type"`
	Size             int             `json:"size"`
	TenantName       string          `json:"tenantName"`
	CurrentRent      decimal.Decimal `json:"currentRent"`
	MarketEstimate   decimal.Decimal `json:"marketEstimate"`
	Delta            decimal.Decimal `json:"delta"`
	DeltaPercent     decimal.Decimal `json:"deltaPercent"`
	LeaseRenewalDays int             `json:"leaseRenewalDays"`
}

// Dashboard is the landing screen.
type Dashboard struct {
	Date       datetime.Date               `json:"date"`
	Summary    calculator.PortfolioSummary `json:"summary"`
	Properties []PropertyOverview          `json:"properties"`
	Renewals   []calculator.LeaseUrgency   `json:"renewals"`
	Alerts     alerts.Counts               `json:"alerts"`
}

// PropertyList is the properties screen.
type PropertyList struct {
	Properties []PropertyOverview `json:"properties"`
}

// LeaseView is a lease with its property and renewal status.
type LeaseView struct {
	ledger.Lease
	Address        string                  `json:"address"`
	Renewal        calculator.LeaseUrgency `json:"renewal"`
	WithinLeaseCap *bool                   `json:"withinLeaseCap,omitempty"`
}

// LeaseList is the leases screen.
type LeaseList struct {
	Date   datetime.Date `json:"date"`
	Leases []LeaseView   `json:"leases"`
}

// PropertyDetail is the property screen.
type PropertyDetail struct {
	Property    ledger.Property           `json:"property"`
	Suggestion  calculator.RentSuggestion `json:"suggestion"`
	Comparables []ledger.Comparable       `json:"comparables"`
	Lease       *LeaseView                `json:"lease,omitempty"`
	Expenses    calculator.ExpenseReport  `json:"expenses"`
	HasListing  bool                      `json:"hasListing"`
}

// Expenses is the expense screen.
type Expenses struct {
	calculator.ExpenseReport
}

// Tax is the tax screen.
type Tax struct {
	calculator.TaxSummary
}

// Alerts is the alert screen.
type Alerts struct {
	alerts.Feed
	Now time.Time `json:"now"`
}

// Listing is the listing screen of a property being re-let.
type Listing struct {
	listing.View
}

// Letter is a rendered rent-increase notice.
type Letter struct {
	letter.Notice
}

// LeaseDocument is a rendered rental agreement.
type LeaseDocument struct {
	letter.LeaseDocument
}

// Validation is the outcome of checking a ledger file.
type Validation struct {
	Valid    bool                        `json:"valid"`
	Problems []string                    `json:"problems,omitempty"`
	Warnings []string                    `json:"warnings,omitempty"`
	Summary  *calculator.PortfolioSummary `json:"summary,omitempty"`
}

func overview(p ledger.Property) (PropertyOverview, error) {
	pct, err := calculator.MarketDeltaPercent(p)
	if err != nil {
		return PropertyOverview{}, fmt.Errorf("property %s: %w", p.ID, err)
	}
	return PropertyOverview{
		ID:               p.ID,
		Address:          p.Address,
		Neighborhood:     p.Neighborhood,
		Type:             p.Type,
		Size:             p.Size,
		TenantName:       p.TenantName,
		CurrentRent:      p.CurrentRent,
		MarketEstimate:   p.MarketEstimate,
		Delta:            calculator.MarketDelta(p),
		DeltaPercent:     pct,
		LeaseRenewalDays: p.LeaseRenewalDays,
	}, nil
}

// Properties lists every property with its market gap.
func (b *Builder) Properties(l *ledger.Ledger) (PropertyList, error) {
	list := PropertyList{Properties: make([]PropertyOverview, 0, len(l.Properties))}
	for _, p := range l.Properties {
		o, err := overview(p)
		if err != nil {
			return PropertyList{}, err
		}
		list.Properties = append(list.Properties, o)
	}
	return list, nil
}

// Dashboard builds the landing screen for today.
func (b *Builder) Dashboard(l *ledger.Ledger, today datetime.Date) (Dashboard, error) {
	list, err := b.Properties(l)
	if err != nil {
		return Dashboard{}, err
	}

	feed := alerts.BuildFeed(b.calc, l, today.Time(), b.logger)
	d := Dashboard{
		Date:       today,
		Summary:    calculator.SummarizePortfolio(l.Properties),
		Properties: list.Properties,
		Renewals:   b.calc.LeaseRenewals(l.Leases, today),
		Alerts:     feed.Counts,
	}

	b.logger.Debug("dashboard built",
		zap.String("op", "report.Dashboard"),
		zap.String("date", today.String()),
		zap.Int("properties", d.Summary.TotalProperties),
		zap.String("annualLoss", d.Summary.AnnualLoss.String()),
	)
	return d, nil
}

func (b *Builder) leaseView(l *ledger.Ledger, lease ledger.Lease, today datetime.Date) LeaseView {
	v := LeaseView{Lease: lease, Address: lease.PropertyID, Renewal: b.calc.LeaseRenewalUrgency(lease, today)}
	if p, ok := l.Property(lease.PropertyID); ok {
		v.Address = p.Address
		if s, err := b.calc.RentSuggestion(p); err == nil {
			within := s.WithinLeaseCap(lease)
			v.WithinLeaseCap = &within
		}
	}
	return v
}

// Leases lists every lease with its renewal status on today.
func (b *Builder) Leases(l *ledger.Ledger, today datetime.Date) LeaseList {
	list := LeaseList{Date: today, Leases: make([]LeaseView, 0, len(l.Leases))}
	for _, lease := range l.Leases {
		list.Leases = append(list.Leases, b.leaseView(l, lease, today))
	}
	return list
}

// Property builds the detail screen of one property.
func (b *Builder) Property(l *ledger.Ledger, id string, today datetime.Date) (PropertyDetail, error) {
	p, ok := l.Property(id)
	if !ok {
		return PropertyDetail{}, fmt.Errorf("property %q: %w", id, ledger.ErrUnknownPropertyReference)
	}
	suggestion, err := b.calc.RentSuggestion(p)
	if err != nil {
		return PropertyDetail{}, err
	}

	d := PropertyDetail{
		Property:    p,
		Suggestion:  suggestion,
		Comparables: calculator.ComparablesByDistance(p),
		Expenses:    calculator.BuildExpenseReport(l.Properties, l.Expenses, calculator.ExpenseFilter{PropertyID: p.ID}),
	}
	if lease, ok := l.LeaseFor(p.ID); ok {
		v := b.leaseView(l, lease, today)
		d.Lease = &v
	}
	_, d.HasListing = l.ListingFor(p.ID)
	return d, nil
}

// Expenses builds the expense screen for a filter.
func (b *Builder) Expenses(l *ledger.Ledger, filter calculator.ExpenseFilter) (Expenses, error) {
	if filter.PropertyID != "" {
		if _, ok := l.Property(filter.PropertyID); !ok {
			return Expenses{}, fmt.Errorf("expense filter: property %q: %w", filter.PropertyID, ledger.ErrUnknownPropertyReference)
		}
	}
	return Expenses{calculator.BuildExpenseReport(l.Properties, l.Expenses, filter)}, nil
}

// Tax builds the tax screen for a calendar year.
func (b *Builder) Tax(l *ledger.Ledger, year int) (Tax, error) {
	summary, err := b.calc.TaxSummary(l.Properties, l.Expenses, year)
	if err != nil {
		return Tax{}, err
	}
	return Tax{summary}, nil
}

// Alerts builds the alert feed relative to now.
func (b *Builder) Alerts(l *ledger.Ledger, now time.Time) Alerts {
	return Alerts{Feed: alerts.BuildFeed(b.calc, l, now, b.logger), Now: now}
}

// Listing builds the listing screen; tab selects a pipeline step.
func (b *Builder) Listing(l *ledger.Ledger, propertyID, tab string) (Listing, error) {
	v, err := listing.Build(l, propertyID, tab)
	if err != nil {
		return Listing{}, err
	}
	return Listing{v}, nil
}

// Letter renders the rent-increase notice of a property dated today.
func (b *Builder) Letter(l *ledger.Ledger, propertyID string, today datetime.Date) (Letter, error) {
	n, err := b.renderer.RentIncrease(l, propertyID, today)
	if err != nil {
		return Letter{}, err
	}
	return Letter{n}, nil
}

// Lease renders the rental agreement of a lease.
func (b *Builder) Lease(l *ledger.Ledger, leaseID string) (LeaseDocument, error) {
	doc, err := b.renderer.Lease(l, leaseID)
	if err != nil {
		return LeaseDocument{}, err
	}
	return LeaseDocument{doc}, nil
}

// Check decodes and validates a ledger. A valid ledger also gets its
// portfolio summary. The decoded ledger is nil when validation failed.
func (b *Builder) Check(r io.Reader) (Validation, *ledger.Ledger) {
	l, err := ledger.Decode(r)
	if err != nil {
		b.logger.Debug("ledger rejected",
			zap.String("op", "report.Check"),
			zap.Int("problems", len(ledger.Problems(err))),
		)
		return Validation{Valid: false, Problems: ledger.Problems(err)}, nil
	}
	summary := calculator.SummarizePortfolio(l.Properties)
	return Validation{Valid: true, Summary: &summary}, l
}
