package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const minimalLedger = `
properties:
  - id: p1
    neighborhood: Kallio
    address: Testikatu 1
    type: 1h+k
    size: 30
    currentRent: 700
    marketEstimate: 760
    leaseRenewalDays: 40
    leaseStart: 2024-01-01
    leaseEnd: ""
    tenantName: Testi Vuokralainen
leases:
  - id: l1
    propertyId: p1
    tenantName: Testi Vuokralainen
    leaseStart: 2024-01-01
    rentAmount: 700
    maxAnnualIncrease: 5
    lastIncreaseDate: null
    nextIncreaseEligible: 2025-01-01
    notifyByDate: 2024-11-01
    status: active
    landlordSigned: true
    tenantSigned: false
expenses:
  - id: e1
    date: 2024-03-01
    description: Hana
    vendor: Putkimies Oy
    amount: 120
    propertyId: p1
    category: korjaus
`

func TestFixture(t *testing.T) {
	l, err := Fixture()
	if err != nil {
		t.Fatalf("Fixture() error = %v", err)
	}

	if len(l.Properties) != 3 {
		t.Errorf("expected 3 properties, got %d", len(l.Properties))
	}
	if len(l.Leases) != 3 {
		t.Errorf("expected 3 leases, got %d", len(l.Leases))
	}
	if len(l.Alerts) != 9 {
		t.Errorf("expected 9 alerts, got %d", len(l.Alerts))
	}

	kallio, ok := l.Property("kallio-1")
	if !ok {
		t.Fatal("expected kallio-1 in fixture")
	}
	if !kallio.CurrentRent.Equal(decimal.NewFromInt(950)) || !kallio.MarketEstimate.Equal(decimal.NewFromInt(1077)) {
		t.Errorf("unexpected Kallio rents: %s / %s", kallio.CurrentRent, kallio.MarketEstimate)
	}
	if kallio.LeaseEnd != nil {
		t.Errorf("expected open-ended Kallio lease, got %v", kallio.LeaseEnd)
	}
	if len(kallio.Comparables) != 5 || len(kallio.MonthlyData) != 12 {
		t.Errorf("unexpected Kallio market data: %d comparables, %d months", len(kallio.Comparables), len(kallio.MonthlyData))
	}

	lease, ok := l.LeaseFor("kallio-1")
	if !ok {
		t.Fatal("expected a lease for kallio-1")
	}
	if lease.LastIncreaseDate != nil || lease.LastIncreasePercent != nil {
		t.Errorf("expected no previous increase on lease-1")
	}
	if lease.NotifyByDate.String() != "2026-02-15" {
		t.Errorf("unexpected notify-by date %s", lease.NotifyByDate)
	}

	sornainen, _ := l.LeaseFor("sornainen-1")
	if sornainen.LastIncreasePercent == nil || !sornainen.LastIncreasePercent.Equal(decimal.RequireFromString("3.8")) {
		t.Errorf("expected 3.8 %% previous increase on lease-2")
	}

	again, err := Fixture()
	if err != nil || again != l {
		t.Errorf("Fixture() should return the shared snapshot")
	}
}

func TestFixtureExpenses(t *testing.T) {
	l, err := Fixture()
	if err != nil {
		t.Fatalf("Fixture() error = %v", err)
	}

	totals := map[string]int64{}
	for _, e := range l.Expenses {
		if e.Date.Year() == 2025 {
			totals[e.PropertyID] += e.Amount.IntPart()
		}
	}
	expected := map[string]int64{"kallio-1": 1522, "sornainen-1": 2230, "vallila-1": 528}
	for id, want := range expected {
		if totals[id] != want {
			t.Errorf("2025 expenses for %s = %d, expected %d", id, totals[id], want)
		}
	}

	byID := map[string]Expense{}
	for _, e := range l.Expenses {
		byID[e.ID] = e
	}
	if e := byID["exp-7"]; e.Amount.IntPart() != 340 {
		t.Errorf("exp-7 amount = %s, expected 340", e.Amount)
	}
	if e := byID["exp-5"]; e.Amount.IntPart() != 150 || e.Date.String() != "2025-11-01" || !e.Recurring {
		t.Errorf("exp-5 = %s on %s, expected a recurring 150 on 2025-11-01", e.Amount, e.Date)
	}
	adjustments := 0
	for id, e := range byID {
		if strings.HasPrefix(id, "adj-") {
			adjustments++
			if e.Date.Year() != 2025 {
				t.Errorf("%s dated %s, expected 2025", id, e.Date)
			}
		}
	}
	if len(l.Expenses) != 16 || adjustments != 7 {
		t.Errorf("expected 9 expenses plus 7 adjustments, got %d records with %d adjustments", len(l.Expenses), adjustments)
	}

	if got := len(l.ExpensesFor("vallila-1")); got != 4 {
		t.Errorf("ExpensesFor(vallila-1) = %d records, expected 4", got)
	}
	if got := l.ExpensesFor("missing"); got != nil {
		t.Errorf("ExpensesFor(missing) = %v, expected nil", got)
	}
}

func TestDecodeMinimal(t *testing.T) {
	l, err := Decode(strings.NewReader(minimalLedger))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	p, ok := l.Property("p1")
	if !ok {
		t.Fatal("expected property p1")
	}
	if p.LeaseEnd != nil {
		t.Errorf("empty leaseEnd should decode as absent")
	}
	if l.Expenses[0].Category != CategoryRepair {
		t.Errorf("Finnish category alias should decode to %q, got %q", CategoryRepair, l.Expenses[0].Category)
	}
	if l.Leases[0].FullySigned() {
		t.Errorf("lease without tenant signature should not be fully signed")
	}
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr error
	}{
		{
			name:    "Negative expense amount",
			mutate:  func(s string) string { return strings.Replace(s, "amount: 120", "amount: -120", 1) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "Lease pointing to unknown property",
			mutate:  func(s string) string { return strings.Replace(s, "propertyId: p1\n    tenantName", "propertyId: p9\n    tenantName", 1) },
			wantErr: ErrUnknownPropertyReference,
		},
		{
			name:    "Expense pointing to unknown property",
			mutate:  func(s string) string { return strings.Replace(s, "propertyId: p1\n    category", "propertyId: p9\n    category", 1) },
			wantErr: ErrUnknownPropertyReference,
		},
		{
			name:    "Zero current rent",
			mutate:  func(s string) string { return strings.Replace(s, "currentRent: 700", "currentRent: 0", 1) },
			wantErr: ErrDivisionByZero,
		},
		{
			name:    "Negative market estimate",
			mutate:  func(s string) string { return strings.Replace(s, "marketEstimate: 760", "marketEstimate: -1", 1) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "Unknown lease status",
			mutate:  func(s string) string { return strings.Replace(s, "status: active", "status: expired", 1) },
			wantErr: ErrInvalidField,
		},
		{
			name:    "Unknown category",
			mutate:  func(s string) string { return strings.Replace(s, "category: korjaus", "category: lottery", 1) },
			wantErr: ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.mutate(minimalLedger)))
			if err == nil {
				t.Fatalf("Decode() expected error but got none")
			}
			if tt.wantErr == ErrUnknownCategory {
				if !strings.Contains(err.Error(), ErrUnknownCategory.Error()) {
					t.Errorf("Decode() error = %v, expected it to mention %v", err, tt.wantErr)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	l := &Ledger{
		Properties: []Property{
			{ID: "p1", CurrentRent: decimal.Zero, MarketEstimate: decimal.NewFromInt(500)},
			{ID: "p1", CurrentRent: decimal.NewFromInt(500), MarketEstimate: decimal.NewFromInt(-5)},
		},
		Expenses: []Expense{
			{ID: "e1", PropertyID: "nope", Amount: decimal.NewFromInt(-1), Category: CategoryOther},
		},
	}

	err := l.Validate()
	if err == nil {
		t.Fatal("Validate() expected error but got none")
	}
	for _, want := range []error{ErrDivisionByZero, ErrDuplicateID, ErrInvalidAmount, ErrUnknownPropertyReference, ErrInvalidField} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error should include %v, got %v", want, err)
		}
	}
	if got := len(Problems(err)); got < 5 {
		t.Errorf("Problems() returned %d entries, expected at least 5", got)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader(minimalLedger + "\nowner: someone\n"))
	if err == nil {
		t.Fatal("Decode() expected error for unknown top-level field")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Fatal("Decode() expected error for empty input")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	if err := os.WriteFile(path, []byte(minimalLedger), 0600); err != nil {
		t.Fatalf("failed to write temp ledger: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(l.Properties) != 1 {
		t.Errorf("expected 1 property, got %d", len(l.Properties))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"repair", CategoryRepair, false},
		{"Vastike", CategoryCondoFee, false},
		{" tarvikkeet ", CategorySupplies, false},
		{"condo-fee", CategoryCondoFee, false},
		{"muu", CategoryOther, false},
		{"gambling", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCategory) {
					t.Errorf("ParseCategory(%q) error = %v, expected ErrUnknownCategory", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, %v; expected %q", tt.input, got, err, tt.want)
			}
		})
	}

	if CategoryInsurance.Label() != "Vakuutukset" {
		t.Errorf("unexpected insurance label %q", CategoryInsurance.Label())
	}
	if len(Categories()) != 6 {
		t.Errorf("expected six categories")
	}
}
