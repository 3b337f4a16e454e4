package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type syncStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SavePackage(ctx context.Context, studentID string, pattern models.WeeklyPattern, start, end *time.Time) error
}

type slotEnroller interface {
	Enroll(ctx context.Context, slotID, studentID string) (*models.SlotEnrollment, error)
}

// SyncScheduleRequest describes a weekly-pattern sync payload.
type SyncScheduleRequest struct {
	SeasonID     string               `json:"season_id" validate:"required"`
	Pattern      models.WeeklyPattern `json:"pattern" validate:"required,min=1"`
	PackageStart time.Time            `json:"package_start" validate:"required"`
	PackageEnd   *time.Time           `json:"package_end"`
}

// SyncScheduleResult summarises a sync run.
type SyncScheduleResult struct {
	DayType       models.DayType          `json:"day_type"`
	EnrolledSlots []string                `json:"enrolled_slots"`
	SkippedSlots  []string                `json:"skipped_slots,omitempty"`
	FailedMonths  map[models.Month]string `json:"failed_months,omitempty"`
}

// ScheduleSyncService projects a student's weekly pattern onto every
// matching slot-month of a season and books them through the enrollment
// coordinator. Capacity is pre-checked across all months before the first
// write; the per-month enrollments themselves are independent transactions,
// so a race lost after the pre-check can still surface per-month failures.
type ScheduleSyncService struct {
	seasons   seasonReader
	slots     capacitySlotReader
	students  syncStudentRepository
	bookings  slotEnroller
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleSyncService constructs ScheduleSyncService.
func NewScheduleSyncService(seasons seasonReader, slots capacitySlotReader, students syncStudentRepository, bookings slotEnroller, validate *validator.Validate, logger *zap.Logger) *ScheduleSyncService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSyncService{seasons: seasons, slots: slots, students: students, bookings: bookings, validator: validate, logger: logger}
}

// SyncWeeklyPattern books the student into every slot-month matching the
// pattern within [packageStart, packageEnd or season end].
func (s *ScheduleSyncService) SyncWeeklyPattern(ctx context.Context, studentID string, req SyncScheduleRequest) (*SyncScheduleResult, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule sync payload")
	}
	for _, entry := range req.Pattern {
		if _, _, err := models.ParseTimeSlot(entry.TimeSlot); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot in pattern")
		}
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	dayType, ok := req.Pattern.DayType()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidOperation, "weekly pattern must cover exactly Mon/Wed/Fri, Tue/Thu or Sat/Sun")
	}

	season, err := s.seasons.FindByID(ctx, req.SeasonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "season not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load season")
	}

	matching, err := s.resolveSlots(ctx, season, dayType, req)
	if err != nil {
		return nil, err
	}
	if len(matching) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidStartDate, "no slot months match the requested window")
	}

	slotIDs := make([]string, len(matching))
	for i, slot := range matching {
		slotIDs[i] = slot.ID
	}
	enrollMap, err := s.slots.ListEnrollmentsForSlots(ctx, slotIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	if err := s.preCheckCapacity(matching, enrollMap, req.PackageStart); err != nil {
		return nil, err
	}

	packageStart := models.DateOnly(req.PackageStart)
	var packageEnd *time.Time
	if req.PackageEnd != nil {
		d := models.DateOnly(*req.PackageEnd)
		packageEnd = &d
	}
	if err := s.students.SavePackage(ctx, studentID, req.Pattern, &packageStart, packageEnd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student package")
	}

	result := &SyncScheduleResult{DayType: dayType}
	for _, slot := range matching {
		if _, err := s.bookings.Enroll(ctx, slot.ID, studentID); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrAlreadyEnrolled.Code {
				result.SkippedSlots = append(result.SkippedSlots, slot.ID)
				continue
			}
			if result.FailedMonths == nil {
				result.FailedMonths = make(map[models.Month]string)
			}
			result.FailedMonths[slot.Month] = appErrors.FromError(err).Message
			s.logger.Sugar().Warnw("schedule sync slot failed", "slot", slot.ID, "student", studentID, "error", err)
			continue
		}
		result.EnrolledSlots = append(result.EnrolledSlots, slot.ID)
	}

	if len(result.EnrolledSlots) == 0 && len(result.FailedMonths) > 0 {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrConflict, "schedule sync failed for every month"),
			result.FailedMonths,
		)
	}
	return result, nil
}

func (s *ScheduleSyncService) resolveSlots(ctx context.Context, season *models.Season, dayType models.DayType, req SyncScheduleRequest) ([]models.SlotMonth, error) {
	startMonth := models.MonthOf(req.PackageStart)
	endMonth := season.EndMonth
	if req.PackageEnd != nil {
		if m := models.MonthOf(*req.PackageEnd); m.Before(endMonth) {
			endMonth = m
		}
	}

	var matching []models.SlotMonth
	for _, timeSlot := range req.Pattern.TimeSlots() {
		slots, err := s.slots.ListByPattern(ctx, season.ID, dayType, timeSlot)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
		}
		for _, slot := range slots {
			if slot.IsBreak {
				continue
			}
			if slot.Month.Before(startMonth) || endMonth.Before(slot.Month) {
				continue
			}
			matching = append(matching, slot)
		}
	}
	return matching, nil
}

// preCheckCapacity verifies every matching slot has a free seat on the
// package start date before anything is written. On failure it reports all
// blocking months plus the earliest date a seat frees up across them.
func (s *ScheduleSyncService) preCheckCapacity(matching []models.SlotMonth, enrollMap map[string][]models.SlotEnrollment, packageStart time.Time) error {
	refDate := models.DateOnly(packageStart)
	var blockingMonths []models.Month
	var suggested *time.Time

	for _, slot := range matching {
		enrollments := enrollMap[slot.ID]
		if countActiveOn(enrollments, refDate) < slot.Capacity {
			continue
		}
		blockingMonths = append(blockingMonths, slot.Month)
		for _, e := range enrollments {
			if !e.ActiveOn(refDate) {
				continue
			}
			dropOff := models.DateOnly(e.EndDate).AddDate(0, 0, 1)
			if suggested == nil || dropOff.Before(*suggested) {
				d := dropOff
				suggested = &d
			}
		}
	}

	if len(blockingMonths) == 0 {
		return nil
	}
	return capacityExceededError(
		fmt.Sprintf("capacity exceeded in %d month(s)", len(blockingMonths)),
		models.CapacityExceededDetail{BlockingMonths: blockingMonths, SuggestedDate: suggested},
	)
}
