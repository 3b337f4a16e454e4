package models

import (
	"fmt"
	"time"
)

// SlotMonth is the bookable unit: one recurring weekly pattern in one
// calendar month. Keyed deterministically so season regeneration is
// idempotent.
type SlotMonth struct {
	ID        string    `db:"id" json:"id"`
	SeasonID  string    `db:"season_id" json:"season_id"`
	Month     Month     `db:"month" json:"month"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	DayType   DayType   `db:"day_type" json:"day_type"`
	Category  string    `db:"category" json:"category"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SlotKey builds the deterministic slot-month identifier.
func SlotKey(month Month, timeSlot string, dayType DayType) string {
	return fmt.Sprintf("%s_%s_%s", month, timeSlot, dayType)
}

// SlotMonthSummary enriches a slot with display occupancy figures.
// EnrolledCount is the raw enrollment count; OccupiedSeats is the peak
// simultaneous occupancy within the month.
type SlotMonthSummary struct {
	SlotMonth
	EnrolledCount int `db:"enrolled_count" json:"enrolled_count"`
	OccupiedSeats int `json:"occupied_seats"`
}
