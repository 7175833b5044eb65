package alerts

import (
	"testing"
	"time"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/datetime"
)

var now = time.Date(2026, time.February, 5, 17, 0, 0, 0, time.UTC)

func fixture(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Fixture()
	if err != nil {
		t.Fatalf("ledger.Fixture() error = %v", err)
	}
	return l
}

func TestCountBySeverity(t *testing.T) {
	c := CountBySeverity(fixture(t).Alerts)
	if c.Urgent != 2 || c.Warning != 3 || c.Info != 4 {
		t.Errorf("CountBySeverity() = %+v, expected 2 urgent, 3 warning, 4 info", c)
	}
	if c.Total() != 9 {
		t.Errorf("Total() = %d, expected 9", c.Total())
	}
}

func TestRelativeAge(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"2026-02-05T16:30:00", "Juuri nyt"},
		{"2026-02-05T18:00:00", "Juuri nyt"},
		{"2026-02-05T16:00:00", "1h sitten"},
		{"2026-02-05T09:00:00", "8h sitten"},
		{"2026-02-04T16:00:00", "Eilen"},
		{"2026-02-03T11:15:00", "2pv sitten"},
		{"2026-01-31T10:20:00", "5pv sitten"},
		{"2026-01-20T10:00:00", "1kk sitten"},
		{"2025-04-01T10:00:00", "10kk sitten"},
		{"2024-12-01T08:00:00", "1.12.2024"},
	}

	for _, tt := range tests {
		t.Run(tt.ts, func(t *testing.T) {
			if got := RelativeAge(datetime.MustParseTimestamp(tt.ts), now); got != tt.want {
				t.Errorf("RelativeAge(%s) = %q, expected %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestTypeLabel(t *testing.T) {
	if got := TypeLabel(ledger.AlertRentIncrease); got != "Kirje" {
		t.Errorf("TypeLabel(rent-increase) = %q, expected Kirje", got)
	}
	if got := TypeLabel("custom"); got != "custom" {
		t.Errorf("TypeLabel(custom) = %q, expected the raw type", got)
	}
}

func TestLeaseAlerts(t *testing.T) {
	l := fixture(t)
	calc := calculator.New(nil, calculator.DefaultPolicy())

	if got := LeaseAlerts(calc, l, datetime.MustParseDate("2026-02-05")); len(got) != 0 {
		t.Errorf("expected no derived alerts while the stored lease alert covers Kallio, got %d", len(got))
	}

	got := LeaseAlerts(calc, l, datetime.MustParseDate("2026-03-20"))
	if len(got) != 1 {
		t.Fatalf("expected 1 derived alert, got %d", len(got))
	}
	a := got[0]
	if a.ID != "notify-lease-2" || a.PropertyID == nil || *a.PropertyID != "sornainen-1" {
		t.Errorf("unexpected derived alert %+v", a)
	}
	if a.Severity != ledger.SeverityUrgent || a.Type != ledger.AlertLease {
		t.Errorf("derived alert should be an urgent lease alert, got %s/%s", a.Severity, a.Type)
	}

	late := LeaseAlerts(calc, l, datetime.MustParseDate("2026-04-05"))
	if len(late) != 1 || late[0].Description != "Ilmoituksen määräaika 1.4.2026 on umpeutunut." {
		t.Errorf("expected a past-due alert for lease-2, got %+v", late)
	}
}

func TestBuildFeed(t *testing.T) {
	l := fixture(t)
	calc := calculator.New(nil, calculator.DefaultPolicy())

	feed := BuildFeed(calc, l, now, nil)
	if len(feed.Items) != len(l.Alerts) {
		t.Fatalf("expected %d items, got %d", len(l.Alerts), len(feed.Items))
	}
	if feed.Items[0].ID != "a0" || feed.Items[len(feed.Items)-1].ID != "a0b" {
		t.Errorf("feed should be newest first, got %s ... %s", feed.Items[0].ID, feed.Items[len(feed.Items)-1].ID)
	}
	if feed.Items[0].Label != "Korotus" || feed.Items[0].Age != "1h sitten" {
		t.Errorf("unexpected first item %+v", feed.Items[0])
	}

	later := BuildFeed(calc, l, time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC), nil)
	if later.Counts.Urgent != 3 {
		t.Errorf("expected the derived alert to raise urgent count to 3, got %d", later.Counts.Urgent)
	}
	if later.Items[0].ID != "notify-lease-2" {
		t.Errorf("derived alert should lead the feed, got %s", later.Items[0].ID)
	}
}
