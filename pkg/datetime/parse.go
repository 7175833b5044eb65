// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iwvelando/rentcheck/pkg/constants"
)

const (
	// DateLayout is the format expected in ledger files and is also the output
	// date format.
	DateLayout = constants.DateLayout

	// TimestampLayout is the format of alert timestamps.
	TimestampLayout = constants.TimestampLayout

	day = 24 * time.Hour
)

// Date is a calendar date at UTC midnight. The zero Date means "unset".
type Date struct {
	t time.Time
}

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a date in DateLayout.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return Date{t: t}, nil
}

// MustParseDate parses a date and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// Time returns the date as a time.Time at UTC midnight.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both dates are the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddMonths returns the date offset by the given number of months.
func (d Date) AddMonths(months int) Date { return Date{t: d.t.AddDate(0, months, 0)} }

// AddDays returns the date offset by the given number of days.
func (d Date) AddDays(days int) Date { return Date{t: d.t.AddDate(0, 0, days)} }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date { return NewDate(d.t.Year(), d.t.Month(), 1) }

// String formats the date in DateLayout, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Finnish formats the date the way Finnish documents write it, e.g. 15.2.2026.
func (d Date) Finnish() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", d.t.Day(), int(d.t.Month()), d.t.Year())
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value leaves the
// date unset.
func (d *Date) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns the signed number of days from today to target, rounded up.
func DaysUntil(target, today Date) int {
	return CeilDays(target.t.Sub(today.t))
}

// CeilDays converts a duration to a whole number of days, rounding up.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

// FloorDays converts a duration to a whole number of days, rounding down.
func FloorDays(d time.Duration) int {
	return int(math.Floor(float64(d) / float64(day)))
}

// Timestamp is a local wall-clock instant as written in ledger files.
type Timestamp struct {
	t time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{t: t} }

// ParseTimestamp parses a timestamp in TimestampLayout or RFC 3339.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{TimestampLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{t: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", value)
}

// MustParseTimestamp parses a timestamp and panics on error.
func MustParseTimestamp(value string) Timestamp {
	ts, err := ParseTimestamp(value)
	if err != nil {
		panic(err)
	}
	return ts
}

// Time returns the underlying instant.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// Date returns the calendar date of the timestamp.
func (ts Timestamp) Date() Date { return DateOf(ts.t) }

// String formats the timestamp in TimestampLayout.
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return ts.t.Format(TimestampLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *Timestamp) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(string(text))
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
