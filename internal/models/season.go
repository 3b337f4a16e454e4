package models

import "time"

// Season is the enclosing booking period, usually a school term or
// vacation course.
type Season struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StartMonth Month     `db:"start_month" json:"start_month"`
	EndMonth   Month     `db:"end_month" json:"end_month"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SlotTemplate is the per-season catalog record slot-months are generated
// from. Capacity is copied down on generation and again on explicit resync;
// templates are never referenced live.
type SlotTemplate struct {
	ID       string  `db:"id" json:"id"`
	SeasonID string  `db:"season_id" json:"season_id"`
	DayType  DayType `db:"day_type" json:"day_type"`
	TimeSlot string  `db:"time_slot" json:"time_slot"`
	Category string  `db:"category" json:"category"`
	Capacity int     `db:"capacity" json:"capacity"`
	IsBreak  bool    `db:"is_break" json:"is_break"`
}
