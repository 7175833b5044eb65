package report

import (
	"strconv"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/pkg/format"
	"github.com/iwvelando/rentcheck/pkg/output"
)

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func figure(name, value string) []string {
	return []string{name, value}
}

var figureColumns = []string{"Figure", "Value"}

func summaryTable(s calculator.PortfolioSummary) output.Table {
	return output.Table{
		Title:   "Portfolio",
		Columns: figureColumns,
		Rows: [][]string{
			figure("Properties", strconv.Itoa(s.TotalProperties)),
			figure("Monthly rent", format.MonthlyEuro(s.TotalMonthlyRent)),
			figure("Annual income", format.Euro(s.AnnualIncome)),
			figure("Average market gap", format.MonthlyEuro(s.AverageDelta)),
			figure("Next renewal", strconv.Itoa(s.NextRenewalDays)+" pv"),
			figure("Monthly loss", format.MonthlyEuro(s.TotalMonthlyLoss)),
			figure("Annual loss", format.Euro(s.AnnualLoss)),
		},
	}
}

func propertiesTable(props []PropertyOverview) output.Table {
	t := output.Table{
		Title:   "Properties",
		Columns: []string{"ID", "Address", "Neighborhood", "Type", "Size", "Rent", "Market", "Gap", "Gap %", "Renewal"},
	}
	for _, p := range props {
		t.Rows = append(t.Rows, []string{
			p.ID,
			p.Address,
			p.Neighborhood,
			p.Type,
			strconv.Itoa(p.Size) + " m²",
			format.Euro(p.CurrentRent),
			format.Euro(p.MarketEstimate),
			format.SignedEuro(p.Delta),
			format.Percent(p.DeltaPercent),
			strconv.Itoa(p.LeaseRenewalDays) + " pv",
		})
	}
	return t
}

func renewalsTable(renewals []calculator.LeaseUrgency) output.Table {
	t := output.Table{
		Title:   "Notify-by deadlines",
		Columns: []string{"Lease", "Property", "Tenant", "Notify by", "Days", "Urgency", "Signed"},
	}
	for _, u := range renewals {
		t.Rows = append(t.Rows, []string{
			u.LeaseID,
			u.PropertyID,
			u.TenantName,
			u.NotifyBy.Finnish(),
			strconv.Itoa(u.DaysLeft),
			u.Urgency.String(),
			yesNo(u.Signed),
		})
	}
	return t
}

// Tables implements output.Tabular.
func (d Dashboard) Tables() []output.Table {
	return []output.Table{
		summaryTable(d.Summary),
		propertiesTable(d.Properties),
		renewalsTable(d.Renewals),
		{
			Title:   "Alerts",
			Columns: []string{"Urgent", "Warning", "Info"},
			Rows:    [][]string{{strconv.Itoa(d.Alerts.Urgent), strconv.Itoa(d.Alerts.Warning), strconv.Itoa(d.Alerts.Info)}},
		},
	}
}

// Tables implements output.Tabular.
func (l PropertyList) Tables() []output.Table {
	return []output.Table{propertiesTable(l.Properties)}
}

func leasesTable(leases []LeaseView) output.Table {
	t := output.Table{
		Title:   "Leases",
		Columns: []string{"Lease", "Address", "Tenant", "Rent", "Max increase", "Last increase", "Eligible", "Notify by", "Days", "Urgency", "Status", "Within cap"},
	}
	for _, v := range leases {
		last := "-"
		if v.LastIncreaseDate != nil && v.LastIncreasePercent != nil {
			last = format.Percent(*v.LastIncreasePercent) + " " + v.LastIncreaseDate.Finnish()
		}
		within := "-"
		if v.WithinLeaseCap != nil {
			within = yesNo(*v.WithinLeaseCap)
		}
		t.Rows = append(t.Rows, []string{
			v.ID,
			v.Address,
			v.TenantName,
			format.MonthlyEuro(v.RentAmount),
			format.Percent(v.MaxAnnualIncrease),
			last,
			v.NextIncreaseEligible.Finnish(),
			v.NotifyByDate.Finnish(),
			strconv.Itoa(v.Renewal.DaysLeft),
			v.Renewal.Urgency.String(),
			string(v.Status),
			within,
		})
	}
	return t
}

// Tables implements output.Tabular.
func (l LeaseList) Tables() []output.Table {
	return []output.Table{leasesTable(l.Leases)}
}

// Tables implements output.Tabular.
func (d PropertyDetail) Tables() []output.Table {
	p := d.Property
	s := d.Suggestion
	info := output.Table{
		Title:   p.Address,
		Columns: figureColumns,
		Rows: [][]string{
			figure("Neighborhood", p.Neighborhood),
			figure("Apartment", p.Type+", "+strconv.Itoa(p.Size)+" m²"),
			figure("Tenant", p.TenantName),
			figure("Lease start", p.LeaseStart.Finnish()),
			figure("Current rent", format.MonthlyEuro(s.CurrentRent)),
			figure("Market estimate", format.MonthlyEuro(s.MarketEstimate)),
			figure("Market gap", format.SignedEuro(s.Delta)+" ("+format.Percent(s.DeltaPercent)+")"),
			figure("Suggested rent", format.MonthlyEuro(s.SuggestedRent)),
			figure("Increase", format.SignedEuro(s.IncreaseAmount)+" ("+format.Percent(s.IncreasePercent)+")"),
			figure("Comparable average", format.MonthlyEuro(s.AverageComparable)+" ("+strconv.Itoa(s.Comparables)+")"),
			figure("Listing", yesNo(d.HasListing)),
		},
	}
	if p.LeaseEnd != nil {
		info.Rows = append(info.Rows, figure("Lease end", p.LeaseEnd.Finnish()))
	}

	comparables := output.Table{
		Title:   "Comparables",
		Columns: []string{"Address", "Type", "Size", "Rent", "Source", "Listed", "Distance"},
	}
	for _, c := range d.Comparables {
		comparables.Rows = append(comparables.Rows, []string{
			c.Address,
			c.Type,
			strconv.Itoa(c.Size) + " m²",
			format.MonthlyEuro(c.Rent),
			c.Source,
			c.ListedDate.Finnish(),
			c.Distance,
		})
	}

	history := output.Table{
		Title:   "Rent history",
		Columns: []string{"Month", "Your rent", "Market average"},
	}
	for _, m := range p.MonthlyData {
		history.Rows = append(history.Rows, []string{m.Month, format.Euro(m.YourRent), format.Euro(m.MarketAvg)})
	}

	tables := []output.Table{info, comparables, history}
	if d.Lease != nil {
		tables = append(tables, leasesTable([]LeaseView{*d.Lease}))
	}
	return append(tables, expenseListTable(d.Expenses))
}

func expenseListTable(r calculator.ExpenseReport) output.Table {
	t := output.Table{
		Title:   "Expenses",
		Columns: []string{"Date", "Property", "Description", "Vendor", "Category", "Amount", "Recurring"},
	}
	for _, e := range r.Expenses {
		recurring := "-"
		if e.Recurring {
			recurring = "yes"
			if e.RecurringPeriod != nil {
				recurring = *e.RecurringPeriod
			}
		}
		t.Rows = append(t.Rows, []string{
			e.Date.Finnish(),
			e.PropertyID,
			e.Description,
			e.Vendor,
			e.Category.Label(),
			format.Euro(e.Amount),
			recurring,
		})
	}
	t.Rows = append(t.Rows, []string{"", "", "Total", "", "", format.Euro(r.Total), ""})
	return t
}

func categoryTable(totals []calculator.CategoryTotal) output.Table {
	t := output.Table{
		Title:   "By category",
		Columns: []string{"Category", "Amount", "Share"},
	}
	for _, c := range totals {
		t.Rows = append(t.Rows, []string{c.Label, format.Euro(c.Amount), c.SharePercent.String() + " %"})
	}
	return t
}

// Tables implements output.Tabular.
func (e Expenses) Tables() []output.Table {
	byProperty := output.Table{
		Title:   "By property",
		Columns: []string{"Property", "Address", "Count", "Total"},
	}
	for _, p := range e.ByProperty {
		byProperty.Rows = append(byProperty.Rows, []string{p.PropertyID, p.Address, strconv.Itoa(p.Count), format.Euro(p.Total)})
	}
	return []output.Table{expenseListTable(e.ExpenseReport), byProperty, categoryTable(e.ByCategory)}
}

// Tables implements output.Tabular.
func (t Tax) Tables() []output.Table {
	props := output.Table{
		Title:   "Rental income " + strconv.Itoa(t.Year),
		Columns: []string{"Property", "Address", "Income", "Expenses", "Net"},
	}
	for _, p := range t.Properties {
		props.Rows = append(props.Rows, []string{p.PropertyID, p.Address, format.Euro(p.RentalIncome), format.Euro(p.Expenses), format.Euro(p.NetIncome)})
	}
	props.Rows = append(props.Rows, []string{"", "Total", format.Euro(t.TotalIncome), format.Euro(t.TotalExpenses), format.Euro(t.NetIncome)})

	estimate := output.Table{
		Title:   "Tax estimate",
		Columns: figureColumns,
		Rows: [][]string{
			figure("Net income", format.Euro(t.NetIncome)),
			figure("Flat rate", t.TaxRate.String()+" %"),
			figure("Estimated tax", format.Euro(t.EstimatedTax)),
			figure("Progressive tax", format.Euro(t.ProgressiveTax)),
		},
	}
	return []output.Table{props, categoryTable(t.ExpensesByCategory), estimate}
}

// Tables implements output.Tabular.
func (a Alerts) Tables() []output.Table {
	t := output.Table{
		Title:   "Alerts",
		Columns: []string{"Age", "Type", "Severity", "Property", "Title", "Description"},
	}
	for _, item := range a.Items {
		property := ""
		if item.PropertyID != nil {
			property = *item.PropertyID
		}
		t.Rows = append(t.Rows, []string{item.Age, item.Label, string(item.Severity), property, item.Title, item.Description})
	}
	return []output.Table{
		{
			Title:   "Severity",
			Columns: []string{"Urgent", "Warning", "Info", "Total"},
			Rows:    [][]string{{strconv.Itoa(a.Counts.Urgent), strconv.Itoa(a.Counts.Warning), strconv.Itoa(a.Counts.Info), strconv.Itoa(a.Counts.Total())}},
		},
		t,
	}
}

// Tables implements output.Tabular.
func (l Listing) Tables() []output.Table {
	steps := output.Table{
		Title:   l.Address + " (" + strconv.Itoa(l.Progress) + " %)",
		Columns: []string{"Step", "Label", "State"},
	}
	for _, s := range l.Steps {
		steps.Rows = append(steps.Rows, []string{s.Key, s.Label, string(s.State)})
	}

	shortlist := output.Table{
		Title:   "Shortlist (" + strconv.Itoa(len(l.Shortlist)) + "/" + strconv.Itoa(l.Candidates) + ")",
		Columns: []string{"Candidate", "Name", "Profession", "Household", "Income", "Income/rent", "Score", "Band"},
	}
	for _, c := range l.Shortlist {
		ratio := c.IncomeRatio.String() + "x"
		if !c.MeetsIncomeRatio {
			ratio += " (!)"
		}
		shortlist.Rows = append(shortlist.Rows, []string{
			c.ID, c.Name, c.Profession, c.HouseholdSize, format.MonthlyEuro(c.Income), ratio, strconv.Itoa(c.Score), string(c.Band),
		})
	}

	showings := output.Table{
		Title:   "Showings",
		Columns: []string{"Status", "Date", "Time", "Candidate", "Notes"},
	}
	for _, g := range l.Showings {
		for _, s := range g.Showings {
			showings.Rows = append(showings.Rows, []string{g.Status, s.Date.Finnish(), s.Time, s.CandidateID, s.Notes})
		}
	}
	return []output.Table{steps, shortlist, showings}
}

// Tables implements output.Tabular.
func (l Letter) Tables() []output.Table {
	s := l.Suggestion
	return []output.Table{{
		Title:   l.FileName,
		Columns: figureColumns,
		Rows: [][]string{
			figure("Tenant", l.TenantName),
			figure("Date", l.Date.Finnish()),
			figure("Effective", l.EffectiveDate.Finnish()),
			figure("Current rent", format.LetterEuro(s.CurrentRent)),
			figure("New rent", format.LetterEuro(s.SuggestedRent)),
			figure("Increase", format.LetterEuro(s.IncreaseAmount)),
			figure("Increase %", format.Percent(s.IncreasePercent)),
		},
	}}
}

// Document implements output.Document.
func (l Letter) Document() string {
	return l.Text
}

// Tables implements output.Tabular.
func (d LeaseDocument) Tables() []output.Table {
	return []output.Table{{
		Title:   "Lease " + d.Lease.ID,
		Columns: figureColumns,
		Rows: [][]string{
			figure("Tenant", d.Lease.TenantName),
			figure("Address", d.Property.Address),
			figure("Start", d.Lease.LeaseStart.Finnish()),
			figure("Rent", format.LetterEuro(d.Lease.RentAmount)),
			figure("Deposit", format.LetterEuro(d.Deposit)),
		},
	}}
}

// Document implements output.Document.
func (d LeaseDocument) Document() string {
	return d.Text
}

// Tables implements output.Tabular.
func (v Validation) Tables() []output.Table {
	t := output.Table{
		Title:   "Ledger check",
		Columns: []string{"Kind", "Message"},
		Rows:    [][]string{{"valid", yesNo(v.Valid)}},
	}
	for _, p := range v.Problems {
		t.Rows = append(t.Rows, []string{"problem", p})
	}
	for _, w := range v.Warnings {
		t.Rows = append(t.Rows, []string{"warning", w})
	}
	tables := []output.Table{t}
	if v.Summary != nil {
		tables = append(tables, summaryTable(*v.Summary))
	}
	return tables
}
