package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const teacherDetailSelect = `SELECT t.user_id, t.subject, t.phone, t.created_at, t.updated_at, u.username, u.email, u.first_name, u.last_name
        FROM teachers t JOIN users u ON u.id = t.user_id`

// TeacherRepository handles persistence for teacher detail rows.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository instantiates a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// CreateWithTx inserts the teacher row for a freshly created user.
func (r *TeacherRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, teacher *models.Teacher) error {
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (user_id, subject, phone, created_at, updated_at) VALUES (:user_id, :subject, :phone, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// FindByUserID returns a teacher with account details.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, teacherDetailSelect+` WHERE t.user_id = $1`, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &teacher, nil
}

// List returns teachers ordered by name with total count.
func (r *TeacherRepository) List(ctx context.Context, page, size int) ([]models.TeacherDetail, int, error) {
	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf("%s ORDER BY u.last_name, u.first_name LIMIT %d OFFSET %d", teacherDetailSelect, limit, offset)

	teachers := make([]models.TeacherDetail, 0)
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM teachers`); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// Update changes the mutable teacher fields. It returns sql.ErrNoRows for an unknown id.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET subject = :subject, phone = :phone, updated_at = :updated_at WHERE user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
