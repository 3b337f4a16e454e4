package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

// StudentRepository reads students and persists their booked package.
// Credit mutations happen only inside booking transactions.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, full_name, phone, active, remaining_credits, package_start_date, package_end_date, fixed_schedule, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistingIDs reports which of the given student IDs still exist. Used to
// drop stale enrollments defensively, since student deletes do not cascade.
func (r *StudentRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	const chunkSize = 100
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = id
		}
		query := fmt.Sprintf("SELECT id FROM students WHERE id IN (%s)", strings.Join(placeholders, ","))
		rows, err := r.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("check students: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan student id: %w", err)
			}
			existing[id] = true
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate student ids: %w", err)
		}
	}
	return existing, nil
}

// SavePackage stores the student's fixed weekly pattern and activity window
// after a successful schedule sync.
func (r *StudentRepository) SavePackage(ctx context.Context, studentID string, pattern models.WeeklyPattern, start, end *time.Time) error {
	const query = `UPDATE students SET fixed_schedule = $2, package_start_date = $3, package_end_date = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, pattern, start, end, time.Now().UTC()); err != nil {
		return fmt.Errorf("save student package: %w", err)
	}
	return nil
}
