package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/internal/report"
	"go.uber.org/zap"
)

var commands = []struct {
	cmd   subcommands.Command
	group string
}{
	{&summaryCmd{}, "portfolio"},
	{&propertiesCmd{}, "portfolio"},
	{&propertyCmd{}, "portfolio"},
	{&leasesCmd{}, "portfolio"},
	{&leaseCmd{}, "portfolio"},
	{&expensesCmd{}, "finance"},
	{&taxCmd{}, "finance"},
	{&letterCmd{}, "tenants"},
	{&alertsCmd{}, "tenants"},
	{&listingCmd{}, "tenants"},
	{&validateCmd{}, "tools"},
	{&serveCmd{}, "tools"},
}

// argument returns the single positional argument or reports usage.
func argument(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one %s argument, got %d\n", what, f.NArg())
		return "", false
	}
	return f.Arg(0), true
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio dashboard" }
func (*summaryCmd) Usage() string {
	return `rentcheck summary

  Displays portfolio totals, the market gap of every property, notify-by
  deadlines and alert counts.
`
}
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	d, err := s.builder.Dashboard(s.ledger, s.today)
	return s.render(d, err, "main.summary")
}

type propertiesCmd struct{}

func (*propertiesCmd) Name() string     { return "properties" }
func (*propertiesCmd) Synopsis() string { return "list properties and their market gap" }
func (*propertiesCmd) Usage() string {
	return `rentcheck properties
`
}
func (*propertiesCmd) SetFlags(*flag.FlagSet) {}

func (*propertiesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	list, err := s.builder.Properties(s.ledger)
	return s.render(list, err, "main.properties")
}

type propertyCmd struct{}

func (*propertyCmd) Name() string     { return "property" }
func (*propertyCmd) Synopsis() string { return "display one property with its rent suggestion" }
func (*propertyCmd) Usage() string {
	return `rentcheck property <property-id>

  Displays the property, its suggested rent, comparables by distance, rent
  history, lease and expenses.
`
}
func (*propertyCmd) SetFlags(*flag.FlagSet) {}

func (*propertyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := argument(f, "property id")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	d, err := s.builder.Property(s.ledger, id, s.today)
	return s.render(d, err, "main.property")
}

type leasesCmd struct{}

func (*leasesCmd) Name() string     { return "leases" }
func (*leasesCmd) Synopsis() string { return "list leases with renewal urgency" }
func (*leasesCmd) Usage() string {
	return `rentcheck leases
`
}
func (*leasesCmd) SetFlags(*flag.FlagSet) {}

func (*leasesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	return s.render(s.builder.Leases(s.ledger, s.today), nil, "main.leases")
}

type leaseCmd struct{}

func (*leaseCmd) Name() string     { return "lease" }
func (*leaseCmd) Synopsis() string { return "render the rental agreement of a lease" }
func (*leaseCmd) Usage() string {
	return `rentcheck lease <lease-id>
`
}
func (*leaseCmd) SetFlags(*flag.FlagSet) {}

func (*leaseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := argument(f, "lease id")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	doc, err := s.builder.Lease(s.ledger, id)
	return s.render(doc, err, "main.lease")
}

type expensesCmd struct {
	property string
	category string
	year     int
}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list expenses with totals" }
func (*expensesCmd) Usage() string {
	return `rentcheck expenses [-property <id>] [-category <category>] [-year <yyyy>]

  Lists expenses newest first with totals by property and category.
  Categories accept the Finnish names (korjaus, huolto, vakuutus, vastike,
  tarvikkeet, muu).
`
}

func (c *expensesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "property", "", "only expenses of this property")
	f.StringVar(&c.category, "category", "", "only expenses of this category")
	f.IntVar(&c.year, "year", 0, "only expenses dated in this year")
}

func (c *expensesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := calculator.ExpenseFilter{PropertyID: c.property, Year: c.year}
	if c.category != "" {
		category, err := ledger.ParseCategory(c.category)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		filter.Category = category
	}

	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	r, err := s.builder.Expenses(s.ledger, filter)
	return s.render(r, err, "main.expenses")
}

type taxCmd struct {
	year int
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "estimate the rental income tax of a year" }
func (*taxCmd) Usage() string {
	return `rentcheck tax [-year <yyyy>]

  Estimates capital income tax on net rental income. Defaults to the last
  closed calendar year.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "tax year (default: the year before the reference date)")
}

func (c *taxCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	year := c.year
	if year == 0 {
		year = s.today.Year() - 1
	}
	t, err := s.builder.Tax(s.ledger, year)
	return s.render(t, err, "main.tax")
}

type letterCmd struct {
	dir string
}

func (*letterCmd) Name() string     { return "letter" }
func (*letterCmd) Synopsis() string { return "render the rent-increase notice of a property" }
func (*letterCmd) Usage() string {
	return `rentcheck letter [-out <dir>] <property-id>

  Renders the rent-increase notice dated on the reference date. With -out the
  notice is also saved under its download name.
`
}

func (c *letterCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "out", "", "directory to save the notice in")
}

func (c *letterCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := argument(f, "property id")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	letter, err := s.builder.Letter(s.ledger, id, s.today)
	if err == nil && c.dir != "" {
		target := filepath.Join(c.dir, letter.FileName)
		if err := os.WriteFile(target, []byte(letter.Text), 0644); err != nil {
			s.logger.Error("failed to save letter",
				zap.String("op", "main.letter"),
				zap.String("path", target),
				zap.Error(err),
			)
			return subcommands.ExitFailure
		}
		s.logger.Info("letter saved",
			zap.String("op", "main.letter"),
			zap.String("path", target),
		)
	}
	return s.render(letter, err, "main.letter")
}

type alertsCmd struct{}

func (*alertsCmd) Name() string     { return "alerts" }
func (*alertsCmd) Synopsis() string { return "list alerts newest first" }
func (*alertsCmd) Usage() string {
	return `rentcheck alerts
`
}
func (*alertsCmd) SetFlags(*flag.FlagSet) {}

func (*alertsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	return s.render(s.builder.Alerts(s.ledger, s.now), nil, "main.alerts")
}

type listingCmd struct {
	tab string
}

func (*listingCmd) Name() string     { return "listing" }
func (*listingCmd) Synopsis() string { return "display the re-letting pipeline of a property" }
func (*listingCmd) Usage() string {
	return `rentcheck listing [-tab <step>] <property-id>

  Steps: ilmoitus, hakijat, naytot, valinta, sopimus.
`
}

func (c *listingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tab, "tab", "", "pipeline step to open instead of the stored stage")
}

func (c *listingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, ok := argument(f, "property id")
	if !ok {
		return subcommands.ExitUsageError
	}
	s, status := openSession(nil)
	if s == nil {
		return status
	}
	defer s.close()

	v, err := s.builder.Listing(s.ledger, id, c.tab)
	return s.render(v, err, "main.listing")
}

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check a ledger file" }
func (*validateCmd) Usage() string {
	return `rentcheck validate [<ledger.yaml>]

  Checks the given ledger, or the configured one, and lists every problem.
  Exits non-zero when the ledger is invalid.
`
}
func (*validateCmd) SetFlags(*flag.FlagSet) {}

func (*validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "expected at most one ledger argument, got %d\n", f.NArg())
		return subcommands.ExitUsageError
	}

	conf, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return subcommands.ExitFailure
	}
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	path := conf.LedgerPath()
	if f.NArg() == 1 {
		path = f.Arg(0)
	}
	if path == "" {
		logger.Error("no ledger to validate: pass a file or set ledger.path",
			zap.String("op", "main.validate"),
		)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open ledger",
			zap.String("op", "main.validate"),
			zap.String("path", path),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	defer file.Close()

	policy, err := conf.Policy.ToPolicy()
	if err != nil {
		logger.Error("invalid policy configuration",
			zap.String("op", "main.validate"),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}

	v, _ := report.New(logger, calculator.New(logger, policy)).Check(file)
	v.Warnings = append(v.Warnings, conf.ValidateConfiguration()...)

	format := conf.Output.Format
	if *outputFormatFlag != "" {
		format = *outputFormatFlag
	}
	s := &session{logger: logger, format: format}
	if status := s.render(v, nil, "main.validate"); status != subcommands.ExitSuccess {
		return status
	}
	if !v.Valid {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
