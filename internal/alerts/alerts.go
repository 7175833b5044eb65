// Package alerts builds the notification feed: stored ledger alerts plus
// alerts derived from lease deadlines, with severity counts and relative ages.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/rentcheck/internal/calculator"
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"go.uber.org/zap"
)

var typeLabels = map[ledger.AlertType]string{
	ledger.AlertListing:        "Listaus",
	ledger.AlertRenewal:        "Sopimus",
	ledger.AlertMarket:         "Markkina",
	ledger.AlertRecommendation: "Suositus",
	ledger.AlertLease:          "Korotus",
	ledger.AlertRentIncrease:   "Kirje",
}

// TypeLabel returns the short Finnish badge text for an alert type.
func TypeLabel(t ledger.AlertType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Counts is the number of alerts per severity.
type Counts struct {
	Urgent  int `json:"urgent"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// Total returns the number of alerts counted.
func (c Counts) Total() int {
	return c.Urgent + c.Warning + c.Info
}

// CountBySeverity counts alerts per severity.
func CountBySeverity(alerts []ledger.Alert) Counts {
	var c Counts
	for _, a := range alerts {
		switch a.Severity {
		case ledger.SeverityUrgent:
			c.Urgent++
		case ledger.SeverityWarning:
			c.Warning++
		case ledger.SeverityInfo:
			c.Info++
		}
	}
	return c
}

// RelativeAge describes how long before now ts happened: "Juuri nyt" under
// an hour, "5h sitten", "Eilen", "3pv sitten", "2kk sitten", and the Finnish
// date after a year. Timestamps in the future count as just now.
func RelativeAge(ts datetime.Timestamp, now time.Time) string {
	diff := now.Sub(ts.Time())
	hours := int(diff / time.Hour)
	days := datetime.FloorDays(diff)

	switch {
	case hours < 1:
		return "Juuri nyt"
	case hours < 24:
		return fmt.Sprintf("%dh sitten", hours)
	case days == 1:
		return "Eilen"
	case days < 7:
		return fmt.Sprintf("%dpv sitten", days)
	case days < 365:
		months := days / 30
		if months < 1 {
			months = 1
		}
		return fmt.Sprintf("%dkk sitten", months)
	default:
		return ts.Date().Finnish()
	}
}

// LeaseAlerts generates an urgent alert for each lease whose notify-by
// deadline is urgent or past due on today. Leases that already carry a stored
// lease alert for their property are skipped.
func LeaseAlerts(calc *calculator.Calculator, l *ledger.Ledger, today datetime.Date) []ledger.Alert {
	covered := make(map[string]struct{})
	for _, a := range l.Alerts {
		if a.Type == ledger.AlertLease && a.PropertyID != nil {
			covered[*a.PropertyID] = struct{}{}
		}
	}

	var out []ledger.Alert
	for _, u := range calc.LeaseRenewals(l.Leases, today) {
		if u.Urgency == calculator.UrgencyNormal {
			continue
		}
		if _, ok := covered[u.PropertyID]; ok {
			continue
		}

		address := u.PropertyID
		if p, ok := l.Property(u.PropertyID); ok {
			address = p.Address
		}
		description := fmt.Sprintf("Ilmoitus vuokralaiselle lähetettävä viimeistään %s (%d pv).", u.NotifyBy.Finnish(), u.DaysLeft)
		if u.Urgency == calculator.UrgencyPastDue {
			description = fmt.Sprintf("Ilmoituksen määräaika %s on umpeutunut.", u.NotifyBy.Finnish())
		}

		propertyID := u.PropertyID
		out = append(out, ledger.Alert{
			ID:          "notify-" + u.LeaseID,
			Type:        ledger.AlertLease,
			Title:       "Vuokrankorotus: " + address,
			Description: description,
			Timestamp:   datetime.NewTimestamp(today.Time()),
			PropertyID:  &propertyID,
			Severity:    ledger.SeverityUrgent,
		})
	}
	return out
}

// Item is one rendered feed entry.
type Item struct {
	ledger.Alert
	Label string `json:"label"`
	Age   string `json:"age"`
}

// Feed is the alert screen: entries newest first and their counts.
type Feed struct {
	Counts Counts `json:"counts"`
	Items  []Item `json:"items"`
}

// BuildFeed merges stored and derived alerts, newest first, and labels them
// relative to now. The reference date for lease deadlines is now's date.
func BuildFeed(calc *calculator.Calculator, l *ledger.Ledger, now time.Time, logger *zap.Logger) Feed {
	if logger == nil {
		logger = zap.NewNop()
	}

	derived := LeaseAlerts(calc, l, datetime.DateOf(now))
	all := make([]ledger.Alert, 0, len(l.Alerts)+len(derived))
	all = append(all, l.Alerts...)
	all = append(all, derived...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Time().After(all[j].Timestamp.Time())
	})

	feed := Feed{Counts: CountBySeverity(all), Items: make([]Item, 0, len(all))}
	for _, a := range all {
		feed.Items = append(feed.Items, Item{Alert: a, Label: TypeLabel(a.Type), Age: RelativeAge(a.Timestamp, now)})
	}

	logger.Debug("alert feed built",
		zap.String("op", "alerts.BuildFeed"),
		zap.Int("stored", len(l.Alerts)),
		zap.Int("derived", len(derived)),
		zap.Int("urgent", feed.Counts.Urgent),
	)
	return feed
}
