package service

import (
	"sort"
	"time"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

// ComputeOccupiedSeats returns the peak simultaneous occupancy of a
// slot-month. Windows are clipped to the slot's calendar month and the end
// date occupies through end of day, so a seat vacated on date D is free
// again on D+1. Enrollments of unknown students are dropped, since student
// deletes are not cascaded onto enrollment lists.
//
// The result does not depend on input order. knownStudents may be nil to
// skip the existence check.
func ComputeOccupiedSeats(slot models.SlotMonth, enrollments []models.SlotEnrollment, knownStudents map[string]bool) int {
	monthStart := slot.Month.Start()
	monthEnd := slot.Month.End()
	if monthStart.IsZero() {
		return 0
	}

	type event struct {
		at    time.Time
		delta int
	}
	events := make([]event, 0, len(enrollments)*2)
	for _, e := range enrollments {
		if knownStudents != nil && !knownStudents[e.StudentID] {
			continue
		}
		start := models.DateOnly(e.StartDate)
		end := models.DateOnly(e.EndDate)
		if end.Before(start) {
			end = start
		}
		if start.Before(monthStart) {
			start = monthStart
		}
		if end.After(monthEnd) {
			end = monthEnd
		}
		if end.Before(start) {
			continue
		}
		events = append(events, event{at: start, delta: 1}, event{at: end.AddDate(0, 0, 1), delta: -1})
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		// at equal instants seats are vacated before they are taken
		return events[i].delta < events[j].delta
	})

	peak, current := 0, 0
	for _, ev := range events {
		current += ev.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}

// countActiveOn is the booking gate's point-in-time occupancy: enrollments
// whose window has not ended before the reference date.
func countActiveOn(enrollments []models.SlotEnrollment, date time.Time) int {
	count := 0
	for _, e := range enrollments {
		if e.ActiveOn(date) {
			count++
		}
	}
	return count
}
