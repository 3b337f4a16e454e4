package models

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month identifies one calendar month as "YYYY-MM". The zero-padded form
// makes lexicographic order equal chronological order, which slot keys and
// queries rely on.
type Month string

// MonthOf returns the month containing the given instant.
func MonthOf(t time.Time) Month {
	return Month(t.UTC().Format(monthLayout))
}

// ParseMonth validates and normalises a "YYYY-MM" string.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(monthLayout, raw)
	if err != nil {
		return "", fmt.Errorf("parse month %q: %w", raw, err)
	}
	return MonthOf(t), nil
}

// Start returns the first day of the month at UTC midnight. A malformed
// month yields the zero time.
func (m Month) Start() time.Time {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// End returns the last day of the month at UTC midnight.
func (m Month) End() time.Time {
	start := m.Start()
	if start.IsZero() {
		return time.Time{}
	}
	return start.AddDate(0, 1, -1)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Before reports chronological order.
func (m Month) Before(other Month) bool {
	return string(m) < string(other)
}

// MonthsBetween returns every month from first to last inclusive. The range
// is bounded to guard against reversed or runaway input.
func MonthsBetween(first, last Month) []Month {
	const maxSpan = 24
	if first.Start().IsZero() || last.Start().IsZero() || last.Before(first) {
		return nil
	}
	months := make([]Month, 0, 4)
	for m := first; !last.Before(m); m = m.Next() {
		months = append(months, m)
		if len(months) >= maxSpan {
			break
		}
	}
	return months
}

// DateOnly truncates an instant to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
