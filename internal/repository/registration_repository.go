package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const registrationColumns = `id, student_name, student_dob, grade_level, parent_name, parent_email, class_id, status, submitted_at, processed_at`

// RegistrationRepository persists registration requests.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a pending request, assigning its id and submission time.
func (r *RegistrationRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}
	req.Status = models.RegistrationPending
	req.ProcessedAt = nil

	const query = `INSERT INTO registration_requests (id, student_name, student_dob, grade_level, parent_name, parent_email, class_id, status, submitted_at)
        VALUES (:id, :student_name, :student_dob, :grade_level, :parent_name, :parent_email, :class_id, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create registration request: %w", err)
	}
	return nil
}

// List returns requests newest first. Equal submission times fall back to id order.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error) {
	query := `SELECT ` + registrationColumns + ` FROM registration_requests`
	var args []interface{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY submitted_at DESC, id ASC`

	requests := make([]models.RegistrationRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list registration requests: %w", err)
	}
	return requests, nil
}

// FindByID returns a single request.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	return r.findByID(ctx, r.db, id)
}

// FindByIDWithTx reads a request inside tx, seeing the transaction's own writes.
func (r *RegistrationRepository) FindByIDWithTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.RegistrationRequest, error) {
	return r.findByID(ctx, tx, id)
}

func (r *RegistrationRepository) findByID(ctx context.Context, q sqlx.QueryerContext, id string) (*models.RegistrationRequest, error) {
	query := `SELECT ` + registrationColumns + ` FROM registration_requests WHERE id = $1`
	var req models.RegistrationRequest
	if err := sqlx.GetContext(ctx, q, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration request: %w", err)
	}
	return &req, nil
}

// MarkProcessedWithTx moves a pending request to status. It returns sql.ErrNoRows when
// no pending row with that id exists, which covers both an unknown id and a request
// another caller already processed. Under concurrent callers the row lock taken by the
// UPDATE lets exactly one of them see a row affected.
func (r *RegistrationRepository) MarkProcessedWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.RegistrationStatus, processedAt time.Time) error {
	const query = `UPDATE registration_requests SET status = $2, processed_at = $3 WHERE id = $1 AND status = 'pending'`
	res, err := tx.ExecContext(ctx, query, id, status, processedAt)
	if err != nil {
		return fmt.Errorf("mark registration request %s: %w", status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark registration request rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
