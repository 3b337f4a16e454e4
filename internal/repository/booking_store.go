package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

// txRetryRecorder counts retried booking transactions.
type txRetryRecorder interface {
	RecordTxRetry()
}

// BookingStore runs booking state transitions inside single transactions.
// Conflicting transactions are serialized by the database; serialization
// aborts are retried here a bounded number of times so callers see either
// a committed result or a definitive error.
type BookingStore struct {
	db         *sqlx.DB
	maxRetries int
	metrics    txRetryRecorder
	logger     *zap.Logger
}

// NewBookingStore constructs the store. metrics may be nil.
func NewBookingStore(db *sqlx.DB, maxRetries int, metrics txRetryRecorder, logger *zap.Logger) *BookingStore {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingStore{db: db, maxRetries: maxRetries, metrics: metrics, logger: logger}
}

// ErrTxConflict wraps a serialization abort that survived every retry.
// Callers should treat it as retryable.
var ErrTxConflict = errors.New("booking transaction conflict")

// RunInTx executes fn within one transaction, retrying on serialization or
// deadlock aborts. fn must be safe to re-run from scratch.
func (s *BookingStore) RunInTx(ctx context.Context, fn func(tx BookingTx) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.runOnce(ctx, fn)
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		if s.metrics != nil {
			s.metrics.RecordTxRetry()
		}
		s.logger.Sugar().Warnw("booking transaction aborted, retrying", "attempt", attempt, "error", err)
	}
	return fmt.Errorf("%w: %v", ErrTxConflict, err)
}

func (s *BookingStore) runOnce(ctx context.Context, fn func(tx BookingTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	commit = true
	return nil
}

func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// BookingTx exposes the read/write primitives available inside one booking
// transaction. Reads see the transaction's own writes.
type BookingTx interface {
	GetSlotForUpdate(ctx context.Context, slotID string) (*models.SlotMonth, error)
	GetStudentForUpdate(ctx context.Context, studentID string) (*models.Student, error)
	ListEnrollments(ctx context.Context, slotID string) ([]models.SlotEnrollment, error)
	FindEnrollment(ctx context.Context, slotID, studentID string) (*models.SlotEnrollment, error)
	InsertEnrollment(ctx context.Context, enrollment *models.SlotEnrollment) error
	DeleteEnrollment(ctx context.Context, id string) error
	GetAttendance(ctx context.Context, enrollmentID string, date time.Time) (*models.AttendanceRecord, error)
	UpsertAttendance(ctx context.Context, record *models.AttendanceRecord) error
	AdjustCredits(ctx context.Context, studentID string, delta int) error
}

type bookingTx struct {
	tx *sqlx.Tx
}

// GetSlotForUpdate loads and row-locks a slot-month.
func (t *bookingTx) GetSlotForUpdate(ctx context.Context, slotID string) (*models.SlotMonth, error) {
	const query = `SELECT id, season_id, month, time_slot, day_type, category, capacity, is_break, created_at, updated_at
        FROM slot_months WHERE id = $1 FOR UPDATE`
	var slot models.SlotMonth
	if err := t.tx.GetContext(ctx, &slot, query, slotID); err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetStudentForUpdate loads and row-locks a student.
func (t *bookingTx) GetStudentForUpdate(ctx context.Context, studentID string) (*models.Student, error) {
	const query = `SELECT id, full_name, phone, active, remaining_credits, package_start_date, package_end_date, fixed_schedule, created_at, updated_at
        FROM students WHERE id = $1 FOR UPDATE`
	var student models.Student
	if err := t.tx.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListEnrollments returns the slot's enrollments within the transaction.
func (t *bookingTx) ListEnrollments(ctx context.Context, slotID string) ([]models.SlotEnrollment, error) {
	const query = `SELECT id, slot_id, student_id, start_date, end_date, created_at
        FROM slot_enrollments WHERE slot_id = $1 ORDER BY start_date`
	var enrollments []models.SlotEnrollment
	if err := t.tx.SelectContext(ctx, &enrollments, query, slotID); err != nil {
		return nil, fmt.Errorf("tx list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindEnrollment returns the enrollment for one (slot, student) pair, or
// sql.ErrNoRows.
func (t *bookingTx) FindEnrollment(ctx context.Context, slotID, studentID string) (*models.SlotEnrollment, error) {
	const query = `SELECT id, slot_id, student_id, start_date, end_date, created_at
        FROM slot_enrollments WHERE slot_id = $1 AND student_id = $2`
	var enrollment models.SlotEnrollment
	if err := t.tx.GetContext(ctx, &enrollment, query, slotID, studentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// InsertEnrollment appends a new enrollment to the slot.
func (t *bookingTx) InsertEnrollment(ctx context.Context, enrollment *models.SlotEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO slot_enrollments (id, slot_id, student_id, start_date, end_date, created_at)
        VALUES (:id, :slot_id, :student_id, :start_date, :end_date, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// DeleteEnrollment removes an enrollment; attendance rows cascade.
func (t *bookingTx) DeleteEnrollment(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM slot_enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// GetAttendance loads and locks one attendance record, or sql.ErrNoRows.
func (t *bookingTx) GetAttendance(ctx context.Context, enrollmentID string, date time.Time) (*models.AttendanceRecord, error) {
	const query = `SELECT id, enrollment_id, date, attended, marked_at
        FROM attendance_records WHERE enrollment_id = $1 AND date = $2 FOR UPDATE`
	var record models.AttendanceRecord
	if err := t.tx.GetContext(ctx, &record, query, enrollmentID, models.DateOnly(date)); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpsertAttendance writes one attendance record per (enrollment, date).
func (t *bookingTx) UpsertAttendance(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.MarkedAt.IsZero() {
		record.MarkedAt = time.Now().UTC()
	}
	record.Date = models.DateOnly(record.Date)
	const query = `INSERT INTO attendance_records (id, enrollment_id, date, attended, marked_at)
        VALUES (:id, :enrollment_id, :date, :attended, :marked_at)
        ON CONFLICT (enrollment_id, date) DO UPDATE SET attended = EXCLUDED.attended, marked_at = EXCLUDED.marked_at`
	if _, err := t.tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// AdjustCredits shifts the student's credit counter by delta.
func (t *bookingTx) AdjustCredits(ctx context.Context, studentID string, delta int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE students SET remaining_credits = remaining_credits + $2, updated_at = $3 WHERE id = $1`, studentID, delta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adjust credits: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
