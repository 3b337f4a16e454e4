package models

import "time"

// Student carries the credit counter and the nominal activity window the
// booking engine reads. RemainingCredits is mutated only inside booking
// transactions.
type Student struct {
	ID               string        `db:"id" json:"id"`
	FullName         string        `db:"full_name" json:"full_name"`
	Phone            string        `db:"phone" json:"phone"`
	Active           bool          `db:"active" json:"active"`
	RemainingCredits int           `db:"remaining_credits" json:"remaining_credits"`
	PackageStartDate *time.Time    `db:"package_start_date" json:"package_start_date,omitempty"`
	PackageEndDate   *time.Time    `db:"package_end_date" json:"package_end_date,omitempty"`
	FixedSchedule    WeeklyPattern `db:"fixed_schedule" json:"fixed_schedule,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}
