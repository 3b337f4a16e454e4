package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

func mwfStudent(credits int, start time.Time) *models.Student {
	return &models.Student{
		ID:               "s1",
		RemainingCredits: credits,
		PackageStartDate: &start,
		FixedSchedule: models.WeeklyPattern{
			{DayOfWeek: time.Monday, TimeSlot: "16:00-17:30"},
			{DayOfWeek: time.Wednesday, TimeSlot: "16:00-17:30"},
			{DayOfWeek: time.Friday, TimeSlot: "16:00-17:30"},
		},
	}
}

func TestCalculateRealRemainingCountsElapsedSessions(t *testing.T) {
	// package starts Monday June 3rd; by Thursday of week two the student
	// has had Mon/Wed/Fri of week one plus Mon/Wed of week two
	start := day(2024, 6, 3)
	student := mwfStudent(12, start)

	now := time.Date(2024, 6, 13, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, CalculateRealRemaining(student, now))
}

func TestCalculateRealRemainingTodayCountsFinishedSlotsOnly(t *testing.T) {
	start := day(2024, 6, 3)
	student := mwfStudent(12, start)

	// Wednesday June 5th before the 16:00 class: only Monday elapsed
	before := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 11, CalculateRealRemaining(student, before))

	// same day after the class ended
	after := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, CalculateRealRemaining(student, after))
}

func TestCalculateRealRemainingWithoutPackage(t *testing.T) {
	student := &models.Student{ID: "s1", RemainingCredits: 5}
	assert.Equal(t, 5, CalculateRealRemaining(student, time.Now()))

	student.RemainingCredits = -2
	assert.Equal(t, 0, CalculateRealRemaining(student, time.Now()))
}

func TestCalculateRealRemainingBeforeStart(t *testing.T) {
	start := day(2024, 6, 3)
	student := mwfStudent(12, start)
	assert.Equal(t, 12, CalculateRealRemaining(student, day(2024, 5, 1)))
}

func TestCalculateRealRemainingNeverNegative(t *testing.T) {
	start := day(2024, 1, 1)
	student := mwfStudent(3, start)
	assert.Equal(t, 0, CalculateRealRemaining(student, day(2024, 6, 1)))
}

func TestCalculateRealRemainingNonIncreasing(t *testing.T) {
	start := day(2024, 6, 3)
	student := mwfStudent(12, start)
	prev := CalculateRealRemaining(student, start)
	for d := 1; d <= 30; d++ {
		now := start.AddDate(0, 0, d).Add(23 * time.Hour)
		cur := CalculateRealRemaining(student, now)
		assert.LessOrEqual(t, cur, prev, "day %d", d)
		prev = cur
	}
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func TestCreditServiceRealRemaining(t *testing.T) {
	start := day(2024, 6, 3)
	students := &mockStudentReader{students: map[string]*models.Student{"s1": mwfStudent(12, start)}}
	svc := NewCreditService(students, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 13, 12, 0, 0, 0, time.UTC) }

	remaining, err := svc.RealRemaining(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)

	_, err = svc.RealRemaining(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
