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

func TestClassExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassListSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE 1=1 AND LOWER(name) LIKE $1 ORDER BY grade_level, name LIMIT 20 OFFSET 0")).
		WithArgs("%5a%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "grade_level", "teacher_id", "room", "created_at", "updated_at"}).
			AddRow("c1", "5A", "5", nil, "B12", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1 AND LOWER(name) LIKE $1")).
		WithArgs("%5a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Search: "5A"})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "B12", *classes[0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}
