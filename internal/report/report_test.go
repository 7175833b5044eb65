package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/internal/listing"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/iwvelando/rentcheck/pkg/output"
	"github.com/iwvelando/rentcheck/pkg/testutil"
)

var today = datetime.MustParseDate("2026-02-05")

func builder() *Builder {
	return New(nil, calculator.New(nil, calculator.DefaultPolicy()))
}

func TestDashboard(t *testing.T) {
	l := testutil.Fixture(t)

	d, err := builder().Dashboard(l, today)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if d.Summary.TotalProperties != 3 || d.Summary.AnnualIncome.IntPart() != 33960 || d.Summary.AnnualLoss.IntPart() != 3684 {
		t.Errorf("unexpected summary %+v", d.Summary)
	}
	if len(d.Renewals) != 3 || d.Renewals[0].Urgency != calculator.UrgencyUrgent || d.Renewals[0].DaysLeft != 10 {
		t.Errorf("unexpected renewals %+v", d.Renewals)
	}
	if d.Alerts.Urgent != 2 || d.Alerts.Warning != 3 || d.Alerts.Info != 4 {
		t.Errorf("unexpected alert counts %+v", d.Alerts)
	}

	tables := d.Tables()
	portfolio := testutil.FindTable(tables, "Portfolio")
	for key, want := range map[string]string{
		"Monthly rent":       "2 830 €/kk",
		"Annual income":      "33 960 €",
		"Average market gap": "102 €/kk",
		"Next renewal":       "34 pv",
		"Annual loss":        "3 684 €",
	} {
		if row := testutil.FindRow(portfolio, key); row == nil || row[1] != want {
			t.Errorf("portfolio %s = %v, expected %q", key, row, want)
		}
	}

	kallio := testutil.FindRow(testutil.FindTable(tables, "Properties"), "kallio-1")
	if kallio == nil || kallio[7] != "+127 €" || kallio[8] != "13,4 %" {
		t.Errorf("unexpected kallio row %v", kallio)
	}
	lease := testutil.FindRow(testutil.FindTable(tables, "Notify-by deadlines"), "lease-1")
	if lease == nil || lease[3] != "15.2.2026" || lease[5] != "urgent" {
		t.Errorf("unexpected lease row %v", lease)
	}
}

func TestPropertyDetail(t *testing.T) {
	l := testutil.Fixture(t)

	d, err := builder().Property(l, "kallio-1", today)
	if err != nil {
		t.Fatalf("Property() error = %v", err)
	}
	if d.Suggestion.SuggestedRent.IntPart() != 1045 {
		t.Errorf("SuggestedRent = %s, expected 1045", d.Suggestion.SuggestedRent)
	}
	if d.Comparables[0].ID != "c5" {
		t.Errorf("nearest comparable = %s, expected c5", d.Comparables[0].ID)
	}
	if d.Lease == nil || d.Lease.ID != "lease-1" {
		t.Fatalf("expected lease-1, got %+v", d.Lease)
	}
	if d.Lease.WithinLeaseCap == nil || *d.Lease.WithinLeaseCap {
		t.Errorf("a 10 %% increase should exceed the 5 %% cap")
	}
	if !d.HasListing {
		t.Errorf("kallio-1 is being re-let")
	}
	if len(d.Expenses.Expenses) != 6 || d.Expenses.Total.IntPart() != 1856 {
		t.Errorf("expected 6 expenses totalling 1856, got %d / %s", len(d.Expenses.Expenses), d.Expenses.Total)
	}

	info := testutil.FindTable(d.Tables(), "Fleminginkatu 15 B 23")
	if row := testutil.FindRow(info, "Increase"); row == nil || row[1] != "+95 € (10,0 %)" {
		t.Errorf("increase row = %v", row)
	}

	if _, err := builder().Property(l, "nope", today); !errors.Is(err, ledger.ErrUnknownPropertyReference) {
		t.Errorf("Property() error = %v, expected ErrUnknownPropertyReference", err)
	}
}

func TestLeases(t *testing.T) {
	l := testutil.Fixture(t)
	list := builder().Leases(l, today)

	if len(list.Leases) != 3 {
		t.Fatalf("expected 3 leases, got %d", len(list.Leases))
	}
	if list.Leases[2].WithinLeaseCap == nil || !*list.Leases[2].WithinLeaseCap {
		t.Errorf("vallila's 4,4 %% increase is within its 5 %% cap")
	}

	row := testutil.FindRow(testutil.FindTable(list.Tables(), "Leases"), "lease-2")
	if row == nil || row[5] != "3,8 % 1.6.2025" || row[9] != "normal" {
		t.Errorf("unexpected lease-2 row %v", row)
	}
}

func TestExpensesAndTax(t *testing.T) {
	l := testutil.Fixture(t)
	b := builder()

	e, err := b.Expenses(l, calculator.ExpenseFilter{Category: ledger.CategoryInsurance})
	if err != nil {
		t.Fatalf("Expenses() error = %v", err)
	}
	if len(e.Expenses) != 3 || e.Total.IntPart() != 1717 {
		t.Errorf("expected 3 insurance expenses totalling 1717, got %d / %s", len(e.Expenses), e.Total)
	}
	if _, err := b.Expenses(l, calculator.ExpenseFilter{PropertyID: "nope"}); !errors.Is(err, ledger.ErrUnknownPropertyReference) {
		t.Errorf("Expenses() error = %v, expected ErrUnknownPropertyReference", err)
	}

	tax, err := b.Tax(l, 2025)
	if err != nil {
		t.Fatalf("Tax() error = %v", err)
	}
	estimate := testutil.FindTable(tax.Tables(), "Tax estimate")
	if row := testutil.FindRow(estimate, "Estimated tax"); row == nil || row[1] != "8 904 €" {
		t.Errorf("estimated tax row = %v", row)
	}
	if row := testutil.FindRow(estimate, "Net income"); row == nil || row[1] != "29 680 €" {
		t.Errorf("net income row = %v", row)
	}
}

func TestAlertsAndListing(t *testing.T) {
	l := testutil.Fixture(t)
	b := builder()

	a := b.Alerts(l, time.Date(2026, time.February, 5, 17, 0, 0, 0, time.UTC))
	if a.Counts.Total() != 9 || a.Items[0].ID != "a0" {
		t.Errorf("unexpected feed: %d alerts, first %s", a.Counts.Total(), a.Items[0].ID)
	}

	v, err := b.Listing(l, "kallio-1", "")
	if err != nil {
		t.Fatalf("Listing() error = %v", err)
	}
	shortlist := testutil.FindTable(v.Tables(), "Shortlist (4/5)")
	if row := testutil.FindRow(shortlist, "h1"); row == nil || row[5] != "4.4x" {
		t.Errorf("h1 row = %v", row)
	}
	if _, err := b.Listing(l, "vallila-1", ""); !errors.Is(err, listing.ErrNoListing) {
		t.Errorf("Listing() error = %v, expected ErrNoListing", err)
	}
}

func TestLetterDocument(t *testing.T) {
	l := testutil.Fixture(t)

	letter, err := builder().Letter(l, "kallio-1", today)
	if err != nil {
		t.Fatalf("Letter() error = %v", err)
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, "pretty", letter); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "VUOKRANKOROTUSILMOITUS") {
		t.Errorf("pretty output should be the letter itself, got %q", buf.String())
	}

	buf.Reset()
	if err := output.Write(&buf, "json", letter); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["fileName"] != "vuokrankorotus_kallio_5-2-2026.txt" {
		t.Errorf("fileName = %v", decoded["fileName"])
	}

	doc, err := builder().Lease(l, "lease-1")
	if err != nil {
		t.Fatalf("Lease() error = %v", err)
	}
	if row := testutil.FindRow(&doc.Tables()[0], "Deposit"); row == nil || row[1] != "1900,00 €" {
		t.Errorf("deposit row = %v", row)
	}
}

func TestCheck(t *testing.T) {
	data, err := os.ReadFile("../ledger/fixtures/helsinki.yaml")
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	v, l := builder().Check(bytes.NewReader(data))
	if !v.Valid || l == nil || v.Summary == nil || v.Summary.TotalProperties != 3 {
		t.Errorf("fixture should validate, got %+v", v)
	}

	broken := `properties:
  - {id: p1, neighborhood: Kallio, address: A 1, type: 1h, size: 30, currentRent: 0, marketEstimate: 700, leaseRenewalDays: 10, leaseStart: 2024-01-01, tenantName: T}
leases:
  - {id: l1, propertyId: p2, tenantName: T, leaseStart: 2024-01-01, rentAmount: -5, maxAnnualIncrease: 5, nextIncreaseEligible: 2025-01-01, notifyByDate: 2024-11-01, status: active, landlordSigned: true, tenantSigned: true}
expenses: []
`
	v, l = builder().Check(strings.NewReader(broken))
	if v.Valid || l != nil {
		t.Fatalf("broken ledger should be rejected")
	}
	if len(v.Problems) != 3 {
		t.Errorf("expected 3 problems (zero rent, unknown property, negative rent), got %d: %v", len(v.Problems), v.Problems)
	}
	if testutil.FindRow(&v.Tables()[0], "problem") == nil {
		t.Errorf("problems should be listed in the table")
	}
}

func TestFixtureRendersInEveryFormat(t *testing.T) {
	l := testutil.Fixture(t)
	d, err := builder().Dashboard(l, today)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	for _, format := range []string{"pretty", "csv", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := output.Write(&buf, format, d); err != nil {
				t.Fatalf("Write(%s) error = %v", format, err)
			}
			if !strings.Contains(buf.String(), "kallio-1") {
				t.Errorf("%s output does not mention kallio-1", format)
			}
		})
	}
}
