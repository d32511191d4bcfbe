package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestTeacherFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "subject", "phone", "created_at", "updated_at", "username", "email", "first_name", "last_name"}).
		AddRow("t1", "Math", nil, now, now, "tmath", "t@example.com", "Tom", "Reed")
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers t JOIN users u ON u.id = t.user_id WHERE t.user_id = $1")).
		WithArgs("t1").
		WillReturnRows(rows)

	teacher, err := repo.FindByUserID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Math", *teacher.Subject)
	assert.Equal(t, "Tom", teacher.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherUpdateUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("UPDATE teachers SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Teacher{UserID: "missing", Subject: strPtr("Art")})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentCreateWithTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parents").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	parent := &models.Parent{UserID: "p1", Phone: strPtr("555-0100")}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, parent))
	require.NoError(t, tx.Commit())
	assert.False(t, parent.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
