package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type mockSeasonReader struct {
	seasons   map[string]*models.Season
	templates map[string][]models.SlotTemplate
}

func (m *mockSeasonReader) FindByID(ctx context.Context, id string) (*models.Season, error) {
	if s, ok := m.seasons[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSeasonReader) ListTemplates(ctx context.Context, seasonID string) ([]models.SlotTemplate, error) {
	return m.templates[seasonID], nil
}

type mockSlotReader struct {
	slots       []models.SlotMonth
	enrollments map[string][]models.SlotEnrollment
}

func (m *mockSlotReader) ListByPattern(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string) ([]models.SlotMonth, error) {
	var out []models.SlotMonth
	for _, slot := range m.slots {
		if slot.SeasonID == seasonID && slot.DayType == dayType && slot.TimeSlot == timeSlot {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (m *mockSlotReader) ListEnrollmentsForSlots(ctx context.Context, slotIDs []string) (map[string][]models.SlotEnrollment, error) {
	out := make(map[string][]models.SlotEnrollment)
	for _, id := range slotIDs {
		if list, ok := m.enrollments[id]; ok {
			out[id] = list
		}
	}
	return out, nil
}

type mockSyncStudents struct {
	students map[string]*models.Student
	saved    bool
}

func (m *mockSyncStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSyncStudents) SavePackage(ctx context.Context, studentID string, pattern models.WeeklyPattern, start, end *time.Time) error {
	m.saved = true
	return nil
}

type mockEnroller struct {
	enrolled []string
	fail     map[string]error
}

func (m *mockEnroller) Enroll(ctx context.Context, slotID, studentID string) (*models.SlotEnrollment, error) {
	if err, ok := m.fail[slotID]; ok {
		return nil, err
	}
	m.enrolled = append(m.enrolled, slotID)
	return &models.SlotEnrollment{ID: "e-" + slotID, SlotID: slotID, StudentID: studentID}, nil
}

func mwfPattern() models.WeeklyPattern {
	return models.WeeklyPattern{
		{DayOfWeek: time.Monday, TimeSlot: "16:00-17:30"},
		{DayOfWeek: time.Wednesday, TimeSlot: "16:00-17:30"},
		{DayOfWeek: time.Friday, TimeSlot: "16:00-17:30"},
	}
}

func summerFixture() (*mockSeasonReader, *mockSlotReader, *mockSyncStudents, *mockEnroller) {
	seasons := &mockSeasonReader{seasons: map[string]*models.Season{
		"summer": {ID: "summer", Name: "Summer 2024", StartMonth: "2024-06", EndMonth: "2024-08"},
	}}
	slots := &mockSlotReader{
		slots: []models.SlotMonth{
			{ID: "2024-06_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-06", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 1},
			{ID: "2024-07_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-07", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 1},
			{ID: "2024-08_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-08", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 1},
		},
		enrollments: make(map[string][]models.SlotEnrollment),
	}
	students := &mockSyncStudents{students: map[string]*models.Student{"s1": {ID: "s1", RemainingCredits: 12}}}
	return seasons, slots, students, &mockEnroller{}
}

func newSyncService(seasons *mockSeasonReader, slots *mockSlotReader, students *mockSyncStudents, enroller *mockEnroller) *ScheduleSyncService {
	return NewScheduleSyncService(seasons, slots, students, enroller, validator.New(), zap.NewNop())
}

func TestScheduleSyncEnrollsEveryMonth(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	svc := newSyncService(seasons, slots, students, enroller)

	result, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2024, 6, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DayTypeMWF, result.DayType)
	assert.Len(t, result.EnrolledSlots, 3)
	assert.True(t, students.saved)
}

func TestScheduleSyncRespectsPackageEnd(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	svc := newSyncService(seasons, slots, students, enroller)
	end := day(2024, 7, 15)

	result, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2024, 6, 1),
		PackageEnd:   &end,
	})
	require.NoError(t, err)
	assert.Len(t, result.EnrolledSlots, 2)
	assert.NotContains(t, result.EnrolledSlots, "2024-08_16:00-17:30_MWF")
}

func TestScheduleSyncCapacityPreCheckAborts(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	// June and July are taken by a package running through July 31st,
	// August is open
	window := models.SlotEnrollment{StudentID: "other", StartDate: day(2024, 6, 1), EndDate: day(2024, 7, 31)}
	slots.enrollments["2024-06_16:00-17:30_MWF"] = []models.SlotEnrollment{window}
	slots.enrollments["2024-07_16:00-17:30_MWF"] = []models.SlotEnrollment{window}
	svc := newSyncService(seasons, slots, students, enroller)

	_, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2024, 6, 1),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)

	detail, ok := appErr.Details.(models.CapacityExceededDetail)
	require.True(t, ok)
	assert.Equal(t, []models.Month{"2024-06", "2024-07"}, detail.BlockingMonths)
	require.NotNil(t, detail.SuggestedDate)
	assert.Equal(t, day(2024, 8, 1), *detail.SuggestedDate)

	// nothing was written before the rejection
	assert.False(t, students.saved)
	assert.Empty(t, enroller.enrolled)
}

func TestScheduleSyncSkipsAlreadyEnrolled(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	enroller.fail = map[string]error{
		"2024-06_16:00-17:30_MWF": appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in slot"),
	}
	svc := newSyncService(seasons, slots, students, enroller)

	result, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2024, 6, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06_16:00-17:30_MWF"}, result.SkippedSlots)
	assert.Len(t, result.EnrolledSlots, 2)
}

func TestScheduleSyncAllMonthsFailed(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	enroller.fail = map[string]error{
		"2024-06_16:00-17:30_MWF": appErrors.Clone(appErrors.ErrInsufficientCredits, "student has no remaining credits"),
		"2024-07_16:00-17:30_MWF": appErrors.Clone(appErrors.ErrInsufficientCredits, "student has no remaining credits"),
		"2024-08_16:00-17:30_MWF": appErrors.Clone(appErrors.ErrInsufficientCredits, "student has no remaining credits"),
	}
	svc := newSyncService(seasons, slots, students, enroller)

	_, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2024, 6, 1),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	failed, ok := appErr.Details.(map[models.Month]string)
	require.True(t, ok)
	assert.Len(t, failed, 3)
}

func TestScheduleSyncRejectsNonCanonicalPattern(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	svc := newSyncService(seasons, slots, students, enroller)

	_, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID: "summer",
		Pattern: models.WeeklyPattern{
			{DayOfWeek: time.Monday, TimeSlot: "16:00-17:30"},
			{DayOfWeek: time.Tuesday, TimeSlot: "16:00-17:30"},
		},
		PackageStart: day(2024, 6, 1),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidOperation.Code, appErrors.FromError(err).Code)
}

func TestScheduleSyncRejectsWindowOutsideSeason(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	svc := newSyncService(seasons, slots, students, enroller)

	_, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID:     "summer",
		Pattern:      mwfPattern(),
		PackageStart: day(2025, 1, 1),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStartDate.Code, appErrors.FromError(err).Code)
}

func TestScheduleSyncRejectsMalformedTimeSlot(t *testing.T) {
	seasons, slots, students, enroller := summerFixture()
	svc := newSyncService(seasons, slots, students, enroller)

	_, err := svc.SyncWeeklyPattern(context.Background(), "s1", SyncScheduleRequest{
		SeasonID: "summer",
		Pattern: models.WeeklyPattern{
			{DayOfWeek: time.Monday, TimeSlot: "afternoon"},
		},
		PackageStart: day(2024, 6, 1),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
