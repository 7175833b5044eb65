package ledger

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Validation failures. A failure means the ledger file is wrong; there is
// nothing to retry.
var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrUnknownPropertyReference = errors.New("unknown property reference")
	ErrDivisionByZero           = errors.New("division by zero")
	ErrDuplicateID              = errors.New("duplicate id")
	ErrUnknownCategory          = errors.New("unknown expense category")
	ErrInvalidField             = errors.New("invalid field")
	ErrUnknownLease             = errors.New("unknown lease")
)

//go:embed fixtures/helsinki.yaml
var fixtures embed.FS

// Ledger is an immutable snapshot of a rental portfolio.
type Ledger struct {
	Properties []Property `yaml:"properties" json:"properties"`
	Leases     []Lease    `yaml:"leases" json:"leases"`
	Expenses   []Expense  `yaml:"expenses" json:"expenses"`
	Alerts     []Alert    `yaml:"alerts,omitempty" json:"alerts,omitempty"`
	Listings   []Listing  `yaml:"listings,omitempty" json:"listings,omitempty"`
}

// Decode reads a YAML ledger, rejecting unknown fields, and validates it.
func Decode(r io.Reader) (*Ledger, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var l Ledger
	if err := decoder.Decode(&l); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ledger is empty")
		}
		return nil, fmt.Errorf("unable to decode ledger: %w", err)
	}
	l.normalize()

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Load reads and validates the ledger file at path.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger file, %w", err)
	}
	return Decode(bytes.NewReader(data))
}

var fixture = sync.OnceValues(func() (*Ledger, error) {
	data, err := fixtures.ReadFile("fixtures/helsinki.yaml")
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
})

// Fixture returns the embedded demo portfolio. The value is shared and must
// not be modified.
func Fixture() (*Ledger, error) {
	return fixture()
}

// normalize folds explicit empty optional values into absent ones.
func (l *Ledger) normalize() {
	for i := range l.Properties {
		if end := l.Properties[i].LeaseEnd; end != nil && end.IsZero() {
			l.Properties[i].LeaseEnd = nil
		}
	}
	for i := range l.Leases {
		if last := l.Leases[i].LastIncreaseDate; last != nil && last.IsZero() {
			l.Leases[i].LastIncreaseDate = nil
		}
	}
	for i := range l.Alerts {
		if id := l.Alerts[i].PropertyID; id != nil && *id == "" {
			l.Alerts[i].PropertyID = nil
		}
	}
}

// Validate checks amounts and references across the whole ledger and returns
// every problem found.
func (l *Ledger) Validate() error {
	var err error

	known := make(map[string]struct{}, len(l.Properties))
	for _, p := range l.Properties {
		if p.ID == "" {
			err = multierr.Append(err, fmt.Errorf("property %q: missing id: %w", p.Address, ErrInvalidField))
			continue
		}
		if _, dup := known[p.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("property %s: %w", p.ID, ErrDuplicateID))
		}
		known[p.ID] = struct{}{}

		if p.CurrentRent.IsZero() {
			err = multierr.Append(err, fmt.Errorf("property %s: current rent is zero: %w", p.ID, ErrDivisionByZero))
		}
		err = multierr.Append(err, nonNegative("property "+p.ID+": current rent", p.CurrentRent))
		err = multierr.Append(err, nonNegative("property "+p.ID+": market estimate", p.MarketEstimate))
		if p.Size < 0 {
			err = multierr.Append(err, fmt.Errorf("property %s: size %d: %w", p.ID, p.Size, ErrInvalidAmount))
		}
		for _, c := range p.Comparables {
			err = multierr.Append(err, nonNegative("property "+p.ID+": comparable "+c.ID+": rent", c.Rent))
		}
	}

	requireProperty := func(owner, id string) error {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%s: property %q: %w", owner, id, ErrUnknownPropertyReference)
		}
		return nil
	}

	leaseIDs := make(map[string]struct{}, len(l.Leases))
	for _, lease := range l.Leases {
		owner := "lease " + lease.ID
		if _, dup := leaseIDs[lease.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: %w", owner, ErrDuplicateID))
		}
		leaseIDs[lease.ID] = struct{}{}

		err = multierr.Append(err, requireProperty(owner, lease.PropertyID))
		err = multierr.Append(err, nonNegative(owner+": rent amount", lease.RentAmount))
		err = multierr.Append(err, nonNegative(owner+": max annual increase", lease.MaxAnnualIncrease))
		if lease.LastIncreasePercent != nil {
			err = multierr.Append(err, nonNegative(owner+": last increase percent", *lease.LastIncreasePercent))
		}
		if lease.NotifyByDate.IsZero() {
			err = multierr.Append(err, fmt.Errorf("%s: missing notify-by date: %w", owner, ErrInvalidField))
		}
		switch lease.Status {
		case LeaseActive, LeasePendingSignature:
		default:
			err = multierr.Append(err, fmt.Errorf("%s: status %q: %w", owner, lease.Status, ErrInvalidField))
		}
	}

	expenseIDs := make(map[string]struct{}, len(l.Expenses))
	for _, e := range l.Expenses {
		owner := "expense " + e.ID
		if _, dup := expenseIDs[e.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: %w", owner, ErrDuplicateID))
		}
		expenseIDs[e.ID] = struct{}{}

		err = multierr.Append(err, requireProperty(owner, e.PropertyID))
		err = multierr.Append(err, nonNegative(owner+": amount", e.Amount))
		if e.Date.IsZero() {
			err = multierr.Append(err, fmt.Errorf("%s: missing date: %w", owner, ErrInvalidField))
		}
		if e.Category == "" {
			err = multierr.Append(err, fmt.Errorf("%s: %w", owner, ErrUnknownCategory))
		}
	}

	for _, a := range l.Alerts {
		owner := "alert " + a.ID
		if a.PropertyID != nil {
			err = multierr.Append(err, requireProperty(owner, *a.PropertyID))
		}
		if !a.Severity.Valid() {
			err = multierr.Append(err, fmt.Errorf("%s: severity %q: %w", owner, a.Severity, ErrInvalidField))
		}
		if !a.Type.Valid() {
			err = multierr.Append(err, fmt.Errorf("%s: type %q: %w", owner, a.Type, ErrInvalidField))
		}
	}

	for _, listing := range l.Listings {
		owner := "listing " + listing.PropertyID
		err = multierr.Append(err, requireProperty(owner, listing.PropertyID))
		candidates := make(map[string]struct{}, len(listing.Candidates))
		for _, c := range listing.Candidates {
			candidates[c.ID] = struct{}{}
			err = multierr.Append(err, nonNegative(owner+": candidate "+c.ID+": income", c.Income))
		}
		for _, s := range listing.Showings {
			if _, ok := candidates[s.CandidateID]; !ok {
				err = multierr.Append(err, fmt.Errorf("%s: showing %s: candidate %q: %w", owner, s.ID, s.CandidateID, ErrInvalidField))
			}
		}
	}

	return err
}

// Problems splits a Validate or Decode error into its individual failures.
func Problems(err error) []string {
	var out []string
	for _, e := range multierr.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}

func nonNegative(what string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s %s: %w", what, amount, ErrInvalidAmount)
	}
	return nil
}

// Property returns the property with the given id.
func (l *Ledger) Property(id string) (Property, bool) {
	for _, p := range l.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// Lease returns the lease with the given id.
func (l *Ledger) Lease(id string) (Lease, bool) {
	for _, lease := range l.Leases {
		if lease.ID == id {
			return lease, true
		}
	}
	return Lease{}, false
}

// LeaseFor returns the lease of the given property.
func (l *Ledger) LeaseFor(propertyID string) (Lease, bool) {
	for _, lease := range l.Leases {
		if lease.PropertyID == propertyID {
			return lease, true
		}
	}
	return Lease{}, false
}

// ExpensesFor returns the expenses booked on the given property, in ledger order.
func (l *Ledger) ExpensesFor(propertyID string) []Expense {
	var out []Expense
	for _, e := range l.Expenses {
		if e.PropertyID == propertyID {
			out = append(out, e)
		}
	}
	return out
}

// ListingFor returns the letting pipeline of the given property.
func (l *Ledger) ListingFor(propertyID string) (Listing, bool) {
	for _, listing := range l.Listings {
		if listing.PropertyID == propertyID {
			return listing, true
		}
	}
	return Listing{}, false
}
