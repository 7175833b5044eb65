package integration

import (
	"os"
	"testing"
	"time"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/config"
	"github.com/iwvelando/rentcheck/internal/report"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	l, err := conf.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	ledgerTime := time.Since(start)

	policy, err := conf.Policy.ToPolicy()
	if err != nil {
		t.Fatalf("ToPolicy failed: %v", err)
	}
	builder := report.New(logger, calculator.New(logger, policy))
	today, err := conf.ReferenceDate(time.Now())
	if err != nil {
		t.Fatalf("ReferenceDate failed: %v", err)
	}

	start = time.Now()
	for _, p := range l.Properties {
		if _, err := builder.Property(l, p.ID, today); err != nil {
			t.Fatalf("Property(%s) failed: %v", p.ID, err)
		}
	}
	if _, err := builder.Dashboard(l, today); err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	reportTime := time.Since(start)

	totalTime := loadTime + ledgerTime + reportTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Load ledger: %v", ledgerTime)
	t.Logf("  Build reports: %v", reportTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	var first string

	for run := 0; run < 3; run++ {
		_, l, builder, today := load(t)

		d, err := builder.Dashboard(l, today)
		if err != nil {
			t.Fatalf("Dashboard failed on run %d: %v", run, err)
		}
		got := d.Summary.AnnualLoss.String() + "/" + d.Summary.AverageDelta.String()

		if run == 0 {
			first = got
			continue
		}
		if got != first {
			t.Errorf("Run %d: summary %s differs from first run %s", run, got, first)
		}
	}
}
