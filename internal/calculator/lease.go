package calculator

import (
	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/datetime"
)

// Urgency classifies how close a lease's notify-by date is.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyUrgent
	UrgencyPastDue
)

func (u Urgency) String() string {
	switch u {
	case UrgencyUrgent:
		return "urgent"
	case UrgencyPastDue:
		return "past-due"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// LeaseUrgency is the renewal status of one lease on a reference date.
type LeaseUrgency struct {
	LeaseID    string        `json:"leaseId"`
	PropertyID string        `json:"propertyId"`
	TenantName string        `json:"tenantName"`
	NotifyBy   datetime.Date `json:"notifyBy"`
	DaysLeft   int           `json:"daysLeft"`
	Urgency    Urgency       `json:"urgency"`
	Signed     bool          `json:"signed"`
}

// ClassifyDays maps a day count to an urgency: zero or less is past due, up
// to the policy threshold is urgent, anything else normal.
func (c *Calculator) ClassifyDays(days int) Urgency {
	switch {
	case days <= 0:
		return UrgencyPastDue
	case days <= c.policy.UrgencyThresholdDays:
		return UrgencyUrgent
	default:
		return UrgencyNormal
	}
}

// LeaseRenewalUrgency computes the days left until the notify-by date,
// rounding partial days up, and classifies them.
func (c *Calculator) LeaseRenewalUrgency(lease ledger.Lease, today datetime.Date) LeaseUrgency {
	days := datetime.DaysUntil(lease.NotifyByDate, today)
	return LeaseUrgency{
		LeaseID:    lease.ID,
		PropertyID: lease.PropertyID,
		TenantName: lease.TenantName,
		NotifyBy:   lease.NotifyByDate,
		DaysLeft:   days,
		Urgency:    c.ClassifyDays(days),
		Signed:     lease.FullySigned(),
	}
}

// LeaseRenewals classifies every lease, in ledger order.
func (c *Calculator) LeaseRenewals(leases []ledger.Lease, today datetime.Date) []LeaseUrgency {
	out := make([]LeaseUrgency, 0, len(leases))
	for _, lease := range leases {
		out = append(out, c.LeaseRenewalUrgency(lease, today))
	}
	return out
}
