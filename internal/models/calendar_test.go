package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthParsing(t *testing.T) {
	m, err := ParseMonth("2024-06")
	require.NoError(t, err)
	assert.Equal(t, Month("2024-06"), m)

	_, err = ParseMonth("June 2024")
	require.Error(t, err)
	_, err = ParseMonth("2024-13")
	require.Error(t, err)
}

func TestMonthBounds(t *testing.T) {
	m := Month("2024-02")
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), m.Start())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), m.End())
	assert.True(t, Month("bogus").Start().IsZero())
}

func TestMonthOrdering(t *testing.T) {
	assert.True(t, Month("2024-09").Before("2024-10"))
	assert.True(t, Month("2024-12").Before("2025-01"))
	assert.Equal(t, Month("2025-01"), Month("2024-12").Next())
}

func TestMonthsBetween(t *testing.T) {
	months := MonthsBetween("2024-06", "2024-08")
	assert.Equal(t, []Month{"2024-06", "2024-07", "2024-08"}, months)

	assert.Equal(t, []Month{"2024-06"}, MonthsBetween("2024-06", "2024-06"))
	assert.Nil(t, MonthsBetween("2024-08", "2024-06"))
	// runaway ranges are capped
	assert.Len(t, MonthsBetween("2020-01", "2030-01"), 24)
}

func TestDateOnly(t *testing.T) {
	d := DateOnly(time.Date(2024, 6, 5, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), d)
}

func TestSlotEnrollmentActiveOn(t *testing.T) {
	e := SlotEnrollment{StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)}
	assert.True(t, e.ActiveOn(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, e.ActiveOn(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
}
