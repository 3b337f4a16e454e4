package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreditService derives the self-healing "real remaining" credit figure.
// It is a read-time view only: the raw counter stays the booking gate and
// is never mutated here.
type CreditService struct {
	students studentReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewCreditService constructs CreditService.
func NewCreditService(students studentReader, logger *zap.Logger) *CreditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditService{students: students, logger: logger, now: time.Now}
}

// RealRemaining loads the student and reconciles their credit counter
// against sessions that should already have happened.
func (s *CreditService) RealRemaining(ctx context.Context, studentID string) (int, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return CalculateRealRemaining(student, s.now()), nil
}

// maxWalkDays bounds the elapsed-session walk for stale packages.
const maxWalkDays = 365

// CalculateRealRemaining simulates the sessions elapsed since the package
// started and subtracts them from the raw counter. Past pattern days count
// every matching time slot; today counts only slots whose end time has
// passed. The result is never negative and never mutates the counter.
func CalculateRealRemaining(student *models.Student, now time.Time) int {
	if student.PackageStartDate == nil || len(student.FixedSchedule) == 0 {
		return clampNonNegative(student.RemainingCredits)
	}
	start := models.DateOnly(*student.PackageStartDate)
	if now.UTC().Before(start) {
		return clampNonNegative(student.RemainingCredits)
	}

	today := models.DateOnly(now)
	elapsed := 0
	day := start
	for steps := 0; !day.After(today) && steps < maxWalkDays; steps++ {
		slots := student.FixedSchedule.SlotsOn(day.Weekday())
		if day.Before(today) {
			elapsed += len(slots)
		} else {
			for _, slot := range slots {
				end, err := models.TimeSlotEnd(day, slot)
				if err != nil {
					continue
				}
				if now.UTC().After(end) {
					elapsed++
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return clampNonNegative(student.RemainingCredits - elapsed)
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
