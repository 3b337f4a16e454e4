package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayType groups the weekdays a recurring slot runs on. Every bookable
// pattern must reduce to exactly one of the three canonical groupings.
type DayType string

// Canonical day types.
const (
	DayTypeMWF     DayType = "MWF"
	DayTypeTTH     DayType = "TTH"
	DayTypeWeekend DayType = "WEEKEND"
)

// Valid reports whether the day type is one of the canonical groupings.
func (d DayType) Valid() bool {
	switch d {
	case DayTypeMWF, DayTypeTTH, DayTypeWeekend:
		return true
	}
	return false
}

var canonicalDaySets = map[DayType][]time.Weekday{
	DayTypeMWF:     {time.Monday, time.Wednesday, time.Friday},
	DayTypeTTH:     {time.Tuesday, time.Thursday},
	DayTypeWeekend: {time.Saturday, time.Sunday},
}

// PatternEntry is one weekly occurrence: a weekday plus a "HH:MM-HH:MM"
// time slot.
type PatternEntry struct {
	DayOfWeek time.Weekday `json:"day_of_week"`
	TimeSlot  string       `json:"time_slot"`
}

// WeeklyPattern is a student's fixed weekly schedule.
type WeeklyPattern []PatternEntry

// DayType classifies the pattern's distinct weekday set against the
// canonical groupings. ok is false for an empty set or any set that does
// not match a grouping exactly.
func (p WeeklyPattern) DayType() (DayType, bool) {
	days := make(map[time.Weekday]struct{}, len(p))
	for _, entry := range p {
		days[entry.DayOfWeek] = struct{}{}
	}
	if len(days) == 0 {
		return "", false
	}
	for dayType, set := range canonicalDaySets {
		if len(set) != len(days) {
			continue
		}
		match := true
		for _, day := range set {
			if _, ok := days[day]; !ok {
				match = false
				break
			}
		}
		if match {
			return dayType, true
		}
	}
	return "", false
}

// TimeSlots returns the distinct time slots in the pattern, sorted.
func (p WeeklyPattern) TimeSlots() []string {
	seen := make(map[string]struct{}, len(p))
	var slots []string
	for _, entry := range p {
		if _, ok := seen[entry.TimeSlot]; ok {
			continue
		}
		seen[entry.TimeSlot] = struct{}{}
		slots = append(slots, entry.TimeSlot)
	}
	sort.Strings(slots)
	return slots
}

// SlotsOn returns the time slots scheduled for the given weekday.
func (p WeeklyPattern) SlotsOn(day time.Weekday) []string {
	var slots []string
	for _, entry := range p {
		if entry.DayOfWeek == day {
			slots = append(slots, entry.TimeSlot)
		}
	}
	return slots
}

// Value stores the pattern as JSONB.
func (p WeeklyPattern) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan loads the pattern from its stored JSONB form.
func (p *WeeklyPattern) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan weekly pattern: unsupported type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// ParseTimeSlot splits a "HH:MM-HH:MM" time slot into start and end
// minutes-of-day.
func ParseTimeSlot(slot string) (int, int, error) {
	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse time slot %q: missing separator", slot)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse time slot %q: %w", slot, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse time slot %q: %w", slot, err)
	}
	return start, end, nil
}

// TimeSlotEnd anchors a slot's end time onto the given calendar day.
func TimeSlotEnd(day time.Time, slot string) (time.Time, error) {
	_, end, err := ParseTimeSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(day).Add(time.Duration(end) * time.Minute), nil
}

func parseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
