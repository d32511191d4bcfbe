package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type mockParentRepo struct{ parents map[string]models.ParentDetail }

func (m mockParentRepo) FindByUserID(ctx context.Context, userID string) (*models.ParentDetail, error) {
	if p, ok := m.parents[userID]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m mockParentRepo) List(ctx context.Context, page, size int) ([]models.ParentDetail, int, error) {
	out := make([]models.ParentDetail, 0, len(m.parents))
	for _, p := range m.parents {
		out = append(out, p)
	}
	return out, len(out), nil
}

type mockTeacherRepo struct {
	teachers map[string]models.TeacherDetail
}

func (m *mockTeacherRepo) FindByUserID(ctx context.Context, userID string) (*models.TeacherDetail, error) {
	if t, ok := m.teachers[userID]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) List(ctx context.Context, page, size int) ([]models.TeacherDetail, int, error) {
	return nil, 0, nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	current, ok := m.teachers[teacher.UserID]
	if !ok {
		return sql.ErrNoRows
	}
	current.Subject = teacher.Subject
	current.Phone = teacher.Phone
	m.teachers[teacher.UserID] = current
	return nil
}

func TestParentServiceChildrenFiltersByParent(t *testing.T) {
	students := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1"}}}
	svc := NewParentService(mockParentRepo{}, students, nil)

	children, err := svc.Children(context.Background(), parentA)
	require.NoError(t, err)
	assert.Len(t, children, 1)
	assert.Equal(t, parentA, students.lastFilter.ParentID)
}

func TestParentServiceGet(t *testing.T) {
	svc := NewParentService(mockParentRepo{parents: map[string]models.ParentDetail{parentA: {Email: "maria@example.com"}}}, &mockStudentRepo{}, nil)

	parent, err := svc.Get(context.Background(), parentA)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", parent.Email)

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestTeacherServiceUpdate(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.TeacherDetail{teacherA: {Teacher: models.Teacher{UserID: teacherA}}}}
	svc := NewTeacherService(repo, nil, nil)
	subject := "Mathematics"

	teacher, err := svc.Update(context.Background(), teacherA, dto.UpdateTeacherRequest{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", *teacher.Subject)

	_, err = svc.Update(context.Background(), "missing", dto.UpdateTeacherRequest{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

type stubDirectory struct {
	users      []models.User
	lastFilter models.UserFilter
}

func (s *stubDirectory) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.lastFilter = filter
	return s.users, len(s.users), nil
}

func (s *stubDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestUserServiceListHidesHashes(t *testing.T) {
	repo := &stubDirectory{users: []models.User{{ID: parentA, Email: "maria@example.com", PasswordHash: "secret", Role: models.RoleParent}}}
	svc := NewUserService(repo)
	role := models.RoleParent

	users, pagination, err := svc.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "maria@example.com", users[0].Email)
	assert.Equal(t, 1, pagination.TotalCount)

	bad := models.UserRole("janitor")
	_, _, err = svc.List(context.Background(), models.UserFilter{Role: &bad})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}
