package models

import "time"

// SlotEnrollment binds a student to a slot-month for an inclusive date
// window. A re-enrollment after unenroll is a fresh record.
type SlotEnrollment struct {
	ID        string    `db:"id" json:"id"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ActiveOn reports whether the enrollment still occupies a seat at the
// reference date, i.e. its window has not ended before it.
func (e SlotEnrollment) ActiveOn(date time.Time) bool {
	return !e.EndDate.Before(DateOnly(date))
}

// OverlapsMonth reports whether the enrollment window intersects the
// given calendar month.
func (e SlotEnrollment) OverlapsMonth(m Month) bool {
	start, end := m.Start(), m.End()
	if start.IsZero() {
		return false
	}
	return !e.StartDate.After(end) && !e.EndDate.Before(start)
}

// AttendanceRecord tracks one class date for one enrollment. Marking is an
// idempotent upsert per (enrollment, date).
type AttendanceRecord struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Date         time.Time `db:"date" json:"date"`
	Attended     bool      `db:"attended" json:"attended"`
	MarkedAt     time.Time `db:"marked_at" json:"marked_at"`
}
