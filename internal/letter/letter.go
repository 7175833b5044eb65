// Package letter renders the tenant documents: the rent-increase notice and
// the rental agreement preview.
package letter

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/iwvelando/rentcheck/pkg/format"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.txt
var templates embed.FS

var funcs = template.FuncMap{
	"euro":       format.Euro,
	"letterEuro": format.LetterEuro,
	"percent":    format.Percent,
}

var parsed = template.Must(template.New("letter").Funcs(funcs).ParseFS(templates, "templates/*.txt"))

// Notice is a rendered rent-increase notice.
type Notice struct {
	Property             ledger.Property           `json:"-"`
	TenantName           string                    `json:"tenantName"`
	NeighborhoodGenitive string                    `json:"-"`
	Suggestion           calculator.RentSuggestion `json:"suggestion"`
	Comparables          []ledger.Comparable       `json:"comparables"`
	Date                 datetime.Date             `json:"date"`
	EffectiveDate        datetime.Date             `json:"effectiveDate"`
	FileName             string                    `json:"fileName"`
	Text                 string                    `json:"text"`
}

// LeaseDocument is a rendered rental agreement.
type LeaseDocument struct {
	Property ledger.Property `json:"-"`
	Lease    ledger.Lease    `json:"lease"`
	Deposit  decimal.Decimal `json:"deposit"`
	Text     string          `json:"text"`
}

// Renderer fills the document templates from ledger records.
type Renderer struct {
	calc   *calculator.Calculator
	logger *zap.Logger
}

// NewRenderer creates a renderer.
// If logger is nil, it will use a no-op logger.
func NewRenderer(calc *calculator.Calculator, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{calc: calc, logger: logger}
}

// EffectiveDate returns the first day of the month two months after today,
// the earliest date a notice sent today may raise the rent.
func EffectiveDate(today datetime.Date) datetime.Date {
	return today.FirstOfMonth().AddMonths(constants.LetterNoticeMonths)
}

// FileName returns the download name of a notice, e.g.
// vuokrankorotus_kallio_5-2-2026.txt.
func FileName(neighborhood string, today datetime.Date) string {
	return fmt.Sprintf("vuokrankorotus_%s_%s.txt",
		strings.ToLower(neighborhood),
		strings.ReplaceAll(today.Finnish(), ".", "-"))
}

// Genitive returns the Finnish genitive of a neighborhood name as used in the
// notice ("Kallion", "Vallilan", "Sörnäisten").
func Genitive(name string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	last, _ := utf8.DecodeLastRuneInString(lower)
	switch {
	case strings.HasSuffix(lower, "nen"):
		return name[:len(name)-len("nen")] + "sten"
	case strings.ContainsRune("aeiouyäö", last):
		return name + "n"
	default:
		return name + "in"
	}
}

// RentIncrease renders the rent-increase notice for a property dated today.
// The tenant comes from the lease when one exists.
func (r *Renderer) RentIncrease(l *ledger.Ledger, propertyID string, today datetime.Date) (Notice, error) {
	p, ok := l.Property(propertyID)
	if !ok {
		return Notice{}, fmt.Errorf("rent letter %q: %w", propertyID, ledger.ErrUnknownPropertyReference)
	}
	suggestion, err := r.calc.RentSuggestion(p)
	if err != nil {
		return Notice{}, err
	}

	tenant := p.TenantName
	if lease, ok := l.LeaseFor(p.ID); ok && lease.TenantName != "" {
		tenant = lease.TenantName
	}

	comparables := p.Comparables
	if len(comparables) > constants.LetterComparableLimit {
		comparables = comparables[:constants.LetterComparableLimit]
	}

	n := Notice{
		Property:             p,
		TenantName:           tenant,
		NeighborhoodGenitive: Genitive(p.Neighborhood),
		Suggestion:           suggestion,
		Comparables:          comparables,
		Date:                 today,
		EffectiveDate:        EffectiveDate(today),
		FileName:             FileName(p.Neighborhood, today),
	}

	var b strings.Builder
	if err := parsed.ExecuteTemplate(&b, "rent_increase.txt", n); err != nil {
		return Notice{}, fmt.Errorf("unable to render rent letter for %s: %w", p.ID, err)
	}
	n.Text = b.String()

	r.logger.Debug("rent letter rendered",
		zap.String("op", "letter.RentIncrease"),
		zap.String("property", p.ID),
		zap.String("effectiveDate", n.EffectiveDate.String()),
		zap.Int("comparables", len(comparables)),
	)
	return n, nil
}

// Lease renders the rental agreement of a lease. The deposit is two months of rent.
func (r *Renderer) Lease(l *ledger.Ledger, leaseID string) (LeaseDocument, error) {
	lease, ok := l.Lease(leaseID)
	if !ok {
		return LeaseDocument{}, fmt.Errorf("lease %q: %w", leaseID, ledger.ErrUnknownLease)
	}
	p, ok := l.Property(lease.PropertyID)
	if !ok {
		return LeaseDocument{}, fmt.Errorf("lease %s: property %q: %w", lease.ID, lease.PropertyID, ledger.ErrUnknownPropertyReference)
	}

	doc := LeaseDocument{
		Property: p,
		Lease:    lease,
		Deposit:  lease.RentAmount.Mul(decimal.NewFromInt(constants.DepositMonths)),
	}

	var b strings.Builder
	if err := parsed.ExecuteTemplate(&b, "lease.txt", doc); err != nil {
		return LeaseDocument{}, fmt.Errorf("unable to render lease %s: %w", lease.ID, err)
	}
	doc.Text = b.String()
	return doc, nil
}
