package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	"github.com/noah-isme/academy-booking-api/internal/repository"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type bookingStore interface {
	RunInTx(ctx context.Context, fn func(tx repository.BookingTx) error) error
}

type auditor interface {
	Record(action, slotID, studentID, detail string)
}

type capacityInvalidator interface {
	Invalidate(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string)
}

// BookingService is the enroll / unenroll / attendance coordinator for one
// (slot, student) pair. Every operation runs its precondition checks and
// writes inside a single transaction; audit entries and capacity cache
// invalidation happen outside it, best-effort.
type BookingService struct {
	store    bookingStore
	audit    auditor
	capacity capacityInvalidator
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService constructs BookingService. capacity may be nil.
func NewBookingService(store bookingStore, audit auditor, capacity capacityInvalidator, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{store: store, audit: audit, capacity: capacity, logger: logger, now: time.Now}
}

// Enroll books a seat for the student in the slot. The seat gate counts
// enrollments still active on the student's package start date (or today).
func (s *BookingService) Enroll(ctx context.Context, slotID, studentID string) (*models.SlotEnrollment, error) {
	if slotID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot id and student id are required")
	}

	var enrollment *models.SlotEnrollment
	var bookedSlot *models.SlotMonth
	err := s.store.RunInTx(ctx, func(tx repository.BookingTx) error {
		slot, err := tx.GetSlotForUpdate(ctx, slotID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
		}
		bookedSlot = slot
		if slot.IsBreak {
			return appErrors.Clone(appErrors.ErrInvalidOperation, "break slots cannot be booked")
		}

		student, err := tx.GetStudentForUpdate(ctx, studentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if student.RemainingCredits <= 0 {
			return appErrors.Clone(appErrors.ErrInsufficientCredits, "student has no remaining credits")
		}

		if _, err := tx.FindEnrollment(ctx, slotID, studentID); err == nil {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in slot")
		} else if err != sql.ErrNoRows {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
		}

		today := models.DateOnly(s.now())
		targetDate := today
		if student.PackageStartDate != nil {
			targetDate = models.DateOnly(*student.PackageStartDate)
		}

		enrollments, err := tx.ListEnrollments(ctx, slotID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot enrollments")
		}
		if countActiveOn(enrollments, targetDate) >= slot.Capacity {
			date := targetDate
			return capacityExceededError(
				fmt.Sprintf("slot %s is full on %s", slot.ID, date.Format("2006-01-02")),
				models.CapacityExceededDetail{Date: &date},
			)
		}

		endDate := today
		if student.PackageEndDate != nil {
			endDate = models.DateOnly(*student.PackageEndDate)
		}
		if endDate.Before(targetDate) {
			endDate = targetDate
		}

		enrollment = &models.SlotEnrollment{
			SlotID:    slotID,
			StudentID: studentID,
			StartDate: targetDate,
			EndDate:   endDate,
		}
		return tx.InsertEnrollment(ctx, enrollment)
	})
	if err != nil {
		return nil, s.mapTxError(err)
	}

	s.invalidateCapacity(ctx, bookedSlot)
	s.audit.Record("enroll", slotID, studentID,
		fmt.Sprintf("start=%s end=%s", enrollment.StartDate.Format("2006-01-02"), enrollment.EndDate.Format("2006-01-02")))
	return enrollment, nil
}

// Unenroll removes the student's enrollment from the slot. Attendance rows
// cascade with the enrollment; a later re-enroll starts fresh.
func (s *BookingService) Unenroll(ctx context.Context, slotID, studentID string) error {
	if slotID == "" || studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "slot id and student id are required")
	}

	var bookedSlot *models.SlotMonth
	err := s.store.RunInTx(ctx, func(tx repository.BookingTx) error {
		slot, err := tx.GetSlotForUpdate(ctx, slotID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
		}
		bookedSlot = slot
		enrollment, err := tx.FindEnrollment(ctx, slotID, studentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotEnrolled, "student not enrolled in slot")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		return tx.DeleteEnrollment(ctx, enrollment.ID)
	})
	if err != nil {
		return s.mapTxError(err)
	}

	s.invalidateCapacity(ctx, bookedSlot)
	s.audit.Record("unenroll", slotID, studentID, "")
	return nil
}

func (s *BookingService) invalidateCapacity(ctx context.Context, slot *models.SlotMonth) {
	if s.capacity == nil || slot == nil {
		return
	}
	s.capacity.Invalidate(ctx, slot.SeasonID, slot.DayType, slot.TimeSlot)
}

// MarkAttendance upserts one attendance record per (student, date). The
// credit counter moves with the attended flag inside the same transaction:
// marking attended costs one credit, un-marking restores it, repeating the
// same state is a no-op on credits.
func (s *BookingService) MarkAttendance(ctx context.Context, slotID, studentID string, date time.Time, attended bool) (*models.AttendanceRecord, error) {
	if slotID == "" || studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot id and student id are required")
	}
	if date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance date is required")
	}

	var record *models.AttendanceRecord
	err := s.store.RunInTx(ctx, func(tx repository.BookingTx) error {
		if _, err := tx.GetSlotForUpdate(ctx, slotID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
		}
		enrollment, err := tx.FindEnrollment(ctx, slotID, studentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotEnrolled, "student not enrolled in slot")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}

		prevAttended := false
		existing, err := tx.GetAttendance(ctx, enrollment.ID, date)
		if err == nil {
			prevAttended = existing.Attended
		} else if err != sql.ErrNoRows {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}

		record = &models.AttendanceRecord{
			EnrollmentID: enrollment.ID,
			Date:         models.DateOnly(date),
			Attended:     attended,
			MarkedAt:     s.now().UTC(),
		}
		if existing != nil {
			record.ID = existing.ID
		}
		if err := tx.UpsertAttendance(ctx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
		}

		var delta int
		switch {
		case attended && !prevAttended:
			delta = -1
		case !attended && prevAttended:
			delta = 1
		default:
			return nil
		}
		if err := tx.AdjustCredits(ctx, studentID, delta); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust credits")
		}
		return nil
	})
	if err != nil {
		return nil, s.mapTxError(err)
	}

	s.audit.Record("mark_attendance", slotID, studentID,
		fmt.Sprintf("date=%s attended=%t", record.Date.Format("2006-01-02"), record.Attended))
	return record, nil
}

func (s *BookingService) mapTxError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrTxConflict) {
		return appErrors.Clone(appErrors.ErrConflict, "booking conflicted with concurrent requests, please retry")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "booking operation failed")
}

// capacityExceededError builds the CAPACITY_EXCEEDED error with its
// machine-usable payload attached.
func capacityExceededError(message string, detail models.CapacityExceededDetail) error {
	domainErr := &models.CapacityExceededError{Message: message, Detail: detail}
	appErr := appErrors.Wrap(domainErr, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status, message)
	appErr.Details = detail
	return appErr
}
