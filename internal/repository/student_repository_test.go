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

var studentRowColumns = []string{"id", "user_id", "first_name", "last_name", "date_of_birth", "grade_level", "class_id", "parent_id", "parent_name", "parent_email", "registration_request_id", "created_at", "updated_at"}

func TestStudentListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s1", nil, "Ana", "Lopez", nil, "5", "c1", "p1", "Maria Lopez", "maria@example.com", "r1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND class_id = $1 AND parent_id = $2 ORDER BY last_name, first_name, id LIMIT 10 OFFSET 10")).
		WithArgs("c1", "p1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND class_id = $1 AND parent_id = $2")).
		WithArgs("c1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{ClassID: "c1", ParentID: "p1", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 11, total)
	assert.Equal(t, "p1", *students[0].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateWithTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	student := &models.Student{FirstName: "Ana", LastName: "Lopez", RegistrationRequestID: strPtr("r1")}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, student))
	require.NoError(t, tx.Commit())
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentDeleteUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
