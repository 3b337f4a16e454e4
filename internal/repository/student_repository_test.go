package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	schedule := []byte(`[{"day_of_week":1,"time_slot":"16:00-17:30"}]`)
	rows := sqlmock.NewRows([]string{"id", "full_name", "phone", "active", "remaining_credits", "package_start_date", "package_end_date", "fixed_schedule", "created_at", "updated_at"}).
		AddRow("s1", "Ana", "", true, 12, start, nil, schedule, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 12, student.RemainingCredits)
	require.Len(t, student.FixedSchedule, 1)
	assert.Equal(t, time.Monday, student.FixedSchedule[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistingIDs(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("s1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id IN ($1,$2)")).
		WithArgs("s1", "ghost").
		WillReturnRows(rows)

	existing, err := repo.ExistingIDs(context.Background(), []string{"s1", "ghost"})
	require.NoError(t, err)
	assert.True(t, existing["s1"])
	assert.False(t, existing["ghost"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistingIDsRowError(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("s1").AddRow("s2").
		RowError(1, errors.New("connection reset"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE id IN ($1,$2)")).
		WithArgs("s1", "s2").
		WillReturnRows(rows)

	_, err := repo.ExistingIDs(context.Background(), []string{"s1", "s2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate student ids")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistingIDsEmpty(t *testing.T) {
	db, _, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	existing, err := repo.ExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestStudentRepositorySavePackage(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pattern := models.WeeklyPattern{{DayOfWeek: time.Monday, TimeSlot: "16:00-17:30"}}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET fixed_schedule = $2")).
		WithArgs("s1", pattern, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SavePackage(context.Background(), "s1", pattern, &start, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
