package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const attendanceColumns = `id, student_id, class_id, date, status, notes, recorded_by, created_at, updated_at`

// AttendanceRepository stores daily attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes the record for (student_id, date), replacing status and notes if one exists.
// The stored row, including its original id, is scanned back into record.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, notes, recorded_by, created_at, updated_at)
        VALUES (:id, :student_id, :class_id, :date, :status, :notes, :recorded_by, :created_at, :updated_at)
        ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes,
            class_id = EXCLUDED.class_id, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at
        RETURNING ` + attendanceColumns
	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.StructScan(record); err != nil {
			return fmt.Errorf("scan attendance: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("upsert attendance rows: %w", err)
	}
	return nil
}

// List returns attendance ordered by date descending.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date.Format("2006-01-02"))
	}
	base := "FROM attendance WHERE " + strings.Join(conditions, " AND ")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, student_id LIMIT %d OFFSET %d", attendanceColumns, base, limit, offset)

	records := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}
