package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

// SlotRepository handles persistence of slot-months and their enrollment
// lists outside of booking transactions.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// FindByID returns a slot-month by its deterministic key.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.SlotMonth, error) {
	const query = `SELECT id, season_id, month, time_slot, day_type, category, capacity, is_break, created_at, updated_at
        FROM slot_months WHERE id = $1`
	var slot models.SlotMonth
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListBySeasonMonth returns all slots of a season's month with raw
// enrollment counts.
func (r *SlotRepository) ListBySeasonMonth(ctx context.Context, seasonID string, month models.Month) ([]models.SlotMonthSummary, error) {
	const query = `SELECT s.id, s.season_id, s.month, s.time_slot, s.day_type, s.category, s.capacity, s.is_break,
        s.created_at, s.updated_at, COUNT(e.id) AS enrolled_count
        FROM slot_months s
        LEFT JOIN slot_enrollments e ON e.slot_id = s.id
        WHERE s.season_id = $1 AND s.month = $2
        GROUP BY s.id
        ORDER BY s.day_type, s.time_slot`
	var slots []models.SlotMonthSummary
	if err := r.db.SelectContext(ctx, &slots, query, seasonID, string(month)); err != nil {
		return nil, fmt.Errorf("list slots by month: %w", err)
	}
	return slots, nil
}

// ListByPattern returns every slot-month of a season matching the recurring
// (dayType, timeSlot) pattern, ordered by month.
func (r *SlotRepository) ListByPattern(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string) ([]models.SlotMonth, error) {
	const query = `SELECT id, season_id, month, time_slot, day_type, category, capacity, is_break, created_at, updated_at
        FROM slot_months
        WHERE season_id = $1 AND day_type = $2 AND time_slot = $3
        ORDER BY month`
	var slots []models.SlotMonth
	if err := r.db.SelectContext(ctx, &slots, query, seasonID, dayType, timeSlot); err != nil {
		return nil, fmt.Errorf("list slots by pattern: %w", err)
	}
	return slots, nil
}

// ListEnrollments returns the enrollments attached to one slot.
func (r *SlotRepository) ListEnrollments(ctx context.Context, slotID string) ([]models.SlotEnrollment, error) {
	const query = `SELECT id, slot_id, student_id, start_date, end_date, created_at
        FROM slot_enrollments WHERE slot_id = $1 ORDER BY start_date`
	var enrollments []models.SlotEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, slotID); err != nil {
		return nil, fmt.Errorf("list slot enrollments: %w", err)
	}
	return enrollments, nil
}

// ListEnrollmentsForSlots returns enrollments grouped by slot for a set of
// slots in one round trip.
func (r *SlotRepository) ListEnrollmentsForSlots(ctx context.Context, slotIDs []string) (map[string][]models.SlotEnrollment, error) {
	grouped := make(map[string][]models.SlotEnrollment, len(slotIDs))
	if len(slotIDs) == 0 {
		return grouped, nil
	}
	placeholders := make([]string, len(slotIDs))
	args := make([]interface{}, len(slotIDs))
	for i, id := range slotIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, slot_id, student_id, start_date, end_date, created_at
        FROM slot_enrollments WHERE slot_id IN (%s) ORDER BY slot_id, start_date`, strings.Join(placeholders, ","))
	var enrollments []models.SlotEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments for slots: %w", err)
	}
	for _, e := range enrollments {
		grouped[e.SlotID] = append(grouped[e.SlotID], e)
	}
	return grouped, nil
}

// BulkCreate inserts slot-months, skipping keys that already exist so
// season regeneration stays idempotent. Returns the number created.
func (r *SlotRepository) BulkCreate(ctx context.Context, slots []models.SlotMonth) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk slot create: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const query = `INSERT INTO slot_months (id, season_id, month, time_slot, day_type, category, capacity, is_break, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        ON CONFLICT (id) DO NOTHING`
	now := time.Now().UTC()
	created := 0
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = models.SlotKey(slot.Month, slot.TimeSlot, slot.DayType)
		}
		res, err := tx.ExecContext(ctx, query, slot.ID, slot.SeasonID, string(slot.Month), slot.TimeSlot, slot.DayType, slot.Category, slot.Capacity, slot.IsBreak, now)
		if err != nil {
			return 0, fmt.Errorf("insert slot %s: %w", slot.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			created += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk slot create: %w", err)
	}
	commit = true
	return created, nil
}

// ResyncCapacity copies template capacity down onto the season's existing
// slot-months. Returns the number of slots updated.
func (r *SlotRepository) ResyncCapacity(ctx context.Context, seasonID string) (int, error) {
	const query = `UPDATE slot_months s
        SET capacity = t.capacity, updated_at = $2
        FROM slot_templates t
        WHERE t.season_id = s.season_id AND t.day_type = s.day_type AND t.time_slot = s.time_slot
          AND s.season_id = $1 AND s.capacity <> t.capacity`
	res, err := r.db.ExecContext(ctx, query, seasonID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("resync slot capacity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("resync slot capacity result: %w", err)
	}
	return int(n), nil
}

// DeleteBySeason removes a season's slot-months on teardown.
func (r *SlotRepository) DeleteBySeason(ctx context.Context, seasonID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM slot_months WHERE season_id = $1`, seasonID); err != nil {
		return fmt.Errorf("delete season slots: %w", err)
	}
	return nil
}
