package models

import "time"

// CapacityInfo is the advisory capacity snapshot for one recurring pattern.
// It reflects the "relevant" slot-month (earliest at or after the current
// month) and is not re-validated at booking time.
type CapacityInfo struct {
	SlotID                string     `json:"slot_id"`
	Month                 Month      `json:"month"`
	TotalCapacity         int        `json:"total_capacity"`
	CurrentEnrollment     int        `json:"current_enrollment"`
	Available             int        `json:"available"`
	IsFull                bool       `json:"is_full"`
	EarliestAvailableDate *time.Time `json:"earliest_available_date,omitempty"`
}

// CapacityExceededDetail is the machine-usable payload attached to capacity
// failures for UI pre-fill.
type CapacityExceededDetail struct {
	Date           *time.Time `json:"date,omitempty"`
	BlockingMonths []Month    `json:"blocking_months,omitempty"`
	SuggestedDate  *time.Time `json:"suggested_date,omitempty"`
}

// CapacityExceededError is returned when a booking would overfill a slot.
type CapacityExceededError struct {
	Message string                 `json:"message"`
	Detail  CapacityExceededDetail `json:"detail"`
}

// Error implements the error interface.
func (e *CapacityExceededError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
