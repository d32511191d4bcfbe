package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestAttendanceUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	created := date.Add(-24 * time.Hour)
	mock.ExpectQuery("(?s)INSERT INTO attendance .* ON CONFLICT \\(student_id, date\\) DO UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "class_id", "date", "status", "notes", "recorded_by", "created_at", "updated_at"}).
			AddRow("existing", "s1", nil, date, "late", nil, "t1", created, date))

	record := &models.Attendance{StudentID: "s1", Date: date, Status: models.AttendanceLate, RecordedBy: "t1"}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.Equal(t, "existing", record.ID)
	assert.Equal(t, created, record.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE 1=1 AND class_id = $1 AND date = $2 ORDER BY date DESC")).
		WithArgs("c1", "2024-09-02").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance")).
		WithArgs("c1", "2024-09-02").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{ClassID: "c1", Date: &date})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
