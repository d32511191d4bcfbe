package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const parentDetailSelect = `SELECT p.user_id, p.phone, p.address, p.created_at, u.username, u.email, u.first_name, u.last_name
        FROM parents p JOIN users u ON u.id = p.user_id`

// ParentRepository manages parent detail rows.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs a ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// CreateWithTx inserts the parent row for a freshly created user.
func (r *ParentRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, parent *models.Parent) error {
	if parent.CreatedAt.IsZero() {
		parent.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO parents (user_id, phone, address, created_at) VALUES (:user_id, :phone, :address, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, parent); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	return nil
}

// FindByUserID returns the parent with account details.
func (r *ParentRepository) FindByUserID(ctx context.Context, userID string) (*models.ParentDetail, error) {
	var parent models.ParentDetail
	if err := r.db.GetContext(ctx, &parent, parentDetailSelect+` WHERE p.user_id = $1`, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}
	return &parent, nil
}

// List returns parents ordered by name with total count.
func (r *ParentRepository) List(ctx context.Context, page, size int) ([]models.ParentDetail, int, error) {
	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf("%s ORDER BY u.last_name, u.first_name LIMIT %d OFFSET %d", parentDetailSelect, limit, offset)

	parents := make([]models.ParentDetail, 0)
	if err := r.db.SelectContext(ctx, &parents, query); err != nil {
		return nil, 0, fmt.Errorf("list parents: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM parents`); err != nil {
		return nil, 0, fmt.Errorf("count parents: %w", err)
	}
	return parents, total, nil
}
