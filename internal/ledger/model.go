// Package ledger defines the rental portfolio records (properties, leases,
// expenses, alerts and listings) and loads them from YAML.
package ledger

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Property is a rented apartment together with its market evidence.
type Property struct {
	ID               string          `yaml:"id" json:"id"`
	Neighborhood     string          `yaml:"neighborhood" json:"neighborhood"`
	Address          string          `yaml:"address" json:"address"`
	Type             string          `yaml:"type" json:"type"`
	Size             int             `yaml:"size" json:"size"` // m²
	CurrentRent      decimal.Decimal `yaml:"currentRent" json:"currentRent"`
	MarketEstimate   decimal.Decimal `yaml:"marketEstimate" json:"marketEstimate"`
	LeaseRenewalDays int             `yaml:"leaseRenewalDays" json:"leaseRenewalDays"`
	LeaseStart       datetime.Date   `yaml:"leaseStart" json:"leaseStart"`
	LeaseEnd         *datetime.Date  `yaml:"leaseEnd,omitempty" json:"leaseEnd,omitempty"`
	TenantName       string          `yaml:"tenantName" json:"tenantName"`
	MonthlyData      []MonthlyData   `yaml:"monthlyData,omitempty" json:"monthlyData,omitempty"`
	Comparables      []Comparable    `yaml:"comparables,omitempty" json:"comparables,omitempty"`
}

// MonthlyData is one point of the rent versus market-average series.
type MonthlyData struct {
	Month     string          `yaml:"month" json:"month"`
	YourRent  decimal.Decimal `yaml:"yourRent" json:"yourRent"`
	MarketAvg decimal.Decimal `yaml:"marketAvg" json:"marketAvg"`
}

// Comparable is a competing listing used as market-rate evidence.
type Comparable struct {
	ID         string          `yaml:"id" json:"id"`
	Address    string          `yaml:"address" json:"address"`
	Type       string          `yaml:"type" json:"type"`
	Size       int             `yaml:"size" json:"size"`
	Rent       decimal.Decimal `yaml:"rent" json:"rent"`
	Source     string          `yaml:"source" json:"source"`
	ListedDate datetime.Date   `yaml:"listedDate" json:"listedDate"`
	Distance   string          `yaml:"distance" json:"distance"`
}

// LeaseStatus is the signature state of a lease.
type LeaseStatus string

const (
	LeaseActive           LeaseStatus = "active"
	LeasePendingSignature LeaseStatus = "pending-signature"
)

// Lease is a rental contract bound to exactly one property.
type Lease struct {
	ID                   string           `yaml:"id" json:"id"`
	PropertyID           string           `yaml:"propertyId" json:"propertyId"`
	TenantName           string           `yaml:"tenantName" json:"tenantName"`
	LeaseStart           datetime.Date    `yaml:"leaseStart" json:"leaseStart"`
	RentAmount           decimal.Decimal  `yaml:"rentAmount" json:"rentAmount"`
	MaxAnnualIncrease    decimal.Decimal  `yaml:"maxAnnualIncrease" json:"maxAnnualIncrease"` // percent
	LastIncreaseDate     *datetime.Date   `yaml:"lastIncreaseDate,omitempty" json:"lastIncreaseDate,omitempty"`
	LastIncreasePercent  *decimal.Decimal `yaml:"lastIncreasePercent,omitempty" json:"lastIncreasePercent,omitempty"`
	NextIncreaseEligible datetime.Date    `yaml:"nextIncreaseEligible" json:"nextIncreaseEligible"`
	NotifyByDate         datetime.Date    `yaml:"notifyByDate" json:"notifyByDate"`
	Status               LeaseStatus      `yaml:"status" json:"status"`
	LandlordSigned       bool             `yaml:"landlordSigned" json:"landlordSigned"`
	TenantSigned         bool             `yaml:"tenantSigned" json:"tenantSigned"`
}

// FullySigned reports whether both parties have signed.
func (l Lease) FullySigned() bool {
	return l.LandlordSigned && l.TenantSigned
}

// Category is the closed set of deductible expense kinds.
type Category string

const (
	CategoryRepair      Category = "repair"
	CategoryMaintenance Category = "maintenance"
	CategoryInsurance   Category = "insurance"
	CategoryCondoFee    Category = "condo-fee"
	CategorySupplies    Category = "supplies"
	CategoryOther       Category = "other"
)

// Categories lists every expense category in display order.
func Categories() []Category {
	return []Category{CategoryRepair, CategoryMaintenance, CategoryInsurance, CategoryCondoFee, CategorySupplies, CategoryOther}
}

var (
	categoryAliases = map[string]Category{
		"korjaus":    CategoryRepair,
		"huolto":     CategoryMaintenance,
		"vakuutus":   CategoryInsurance,
		"vastike":    CategoryCondoFee,
		"tarvikkeet": CategorySupplies,
		"muu":        CategoryOther,
	}

	categoryLabels = map[Category]string{
		CategoryRepair:      "Korjaukset",
		CategoryMaintenance: "Huolto",
		CategoryInsurance:   "Vakuutukset",
		CategoryCondoFee:    "Vastikkeet",
		CategorySupplies:    "Tarvikkeet",
		CategoryOther:       "Muut",
	}
)

// ParseCategory accepts a category key or its Finnish alias.
func ParseCategory(value string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := categoryAliases[key]; ok {
		return alias, nil
	}
	c := Category(key)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	return c, nil
}

// Label returns the Finnish display label, e.g. "Korjaukset".
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Expense is a cost record bound to a property.
type Expense struct {
	ID              string          `yaml:"id" json:"id"`
	Date            datetime.Date   `yaml:"date" json:"date"`
	Description     string          `yaml:"description" json:"description"`
	Vendor          string          `yaml:"vendor" json:"vendor"`
	Amount          decimal.Decimal `yaml:"amount" json:"amount"`
	Recurring       bool            `yaml:"recurring,omitempty" json:"recurring"`
	RecurringPeriod *string         `yaml:"recurringPeriod,omitempty" json:"recurringPeriod,omitempty"`
	PropertyID      string          `yaml:"propertyId" json:"propertyId"`
	Category        Category        `yaml:"category" json:"category"`
}

// Severity ranks an alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityUrgent:
		return true
	}
	return false
}

// AlertType tags what an alert is about.
type AlertType string

const (
	AlertListing        AlertType = "listing"
	AlertRenewal        AlertType = "renewal"
	AlertMarket         AlertType = "market"
	AlertRecommendation AlertType = "recommendation"
	AlertLease          AlertType = "lease"
	AlertRentIncrease   AlertType = "rent-increase"
)

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertListing, AlertRenewal, AlertMarket, AlertRecommendation, AlertLease, AlertRentIncrease:
		return true
	}
	return false
}

// Alert is a notification, optionally about one property.
type Alert struct {
	ID          string             `yaml:"id" json:"id"`
	Type        AlertType          `yaml:"type" json:"type"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description" json:"description"`
	Timestamp   datetime.Timestamp `yaml:"timestamp" json:"timestamp"`
	PropertyID  *string            `yaml:"propertyId,omitempty" json:"propertyId,omitempty"`
	Severity    Severity           `yaml:"severity" json:"severity"`
}

// Listing is the letting pipeline of a property that is being re-let.
type Listing struct {
	PropertyID string      `yaml:"propertyId" json:"propertyId"`
	Stage      string      `yaml:"stage" json:"stage"`
	Candidates []Candidate `yaml:"candidates,omitempty" json:"candidates,omitempty"`
	Showings   []Showing   `yaml:"showings,omitempty" json:"showings,omitempty"`
}

// Candidate is a prospective tenant. Score is assigned upstream, 0-100.
type Candidate struct {
	ID            string          `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name"`
	Age           int             `yaml:"age" json:"age"`
	Profession    string          `yaml:"profession" json:"profession"`
	HouseholdSize string          `yaml:"householdSize" json:"householdSize"`
	Income        decimal.Decimal `yaml:"income" json:"income"`
	Message       string          `yaml:"message" json:"message"`
	Status        string          `yaml:"status" json:"status"`
	Score         int             `yaml:"score" json:"score"`
	Recommended   bool            `yaml:"recommended,omitempty" json:"recommended"`
}

// Showing is a scheduled apartment viewing.
type Showing struct {
	ID          string        `yaml:"id" json:"id"`
	Date        datetime.Date `yaml:"date" json:"date"`
	Time        string        `yaml:"time" json:"time"`
	CandidateID string        `yaml:"candidateId" json:"candidateId"`
	Extra       string        `yaml:"extra,omitempty" json:"extra,omitempty"`
	Status      string        `yaml:"status" json:"status"`
	Notes       string        `yaml:"notes,omitempty" json:"notes,omitempty"`
	Reminders   []string      `yaml:"reminders,omitempty" json:"reminders,omitempty"`
}
