package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// SchoolUpdateRepository stores public announcements.
type SchoolUpdateRepository struct {
	db *sqlx.DB
}

// NewSchoolUpdateRepository constructs a SchoolUpdateRepository.
func NewSchoolUpdateRepository(db *sqlx.DB) *SchoolUpdateRepository {
	return &SchoolUpdateRepository{db: db}
}

// Create inserts an update.
func (r *SchoolUpdateRepository) Create(ctx context.Context, update *models.SchoolUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO school_updates (id, title, content, author_id, created_at) VALUES (:id, :title, :content, :author_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, update); err != nil {
		return fmt.Errorf("create school update: %w", err)
	}
	return nil
}

// List returns updates newest first.
func (r *SchoolUpdateRepository) List(ctx context.Context, page, size int) ([]models.SchoolUpdate, error) {
	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf("SELECT id, title, content, author_id, created_at FROM school_updates ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)
	updates := make([]models.SchoolUpdate, 0)
	if err := r.db.SelectContext(ctx, &updates, query); err != nil {
		return nil, fmt.Errorf("list school updates: %w", err)
	}
	return updates, nil
}

// Delete removes an update. It returns sql.ErrNoRows for an unknown id.
func (r *SchoolUpdateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM school_updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete school update: %w", err)
	}
	return requireAffected(res)
}
