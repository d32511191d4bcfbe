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

type mockStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	listTotal  int
	err        error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = map[string]models.Student{}
	}
	student.ID = "generated"
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	return nil
}

type stubClasses map[string]bool

func (s stubClasses) Exists(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

type stubUsers map[string]models.User

func (s stubUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

const (
	classA   = "0b1f3c9e-1111-4c33-9d55-000000000001"
	parentA  = "0b1f3c9e-2222-4c33-9d55-000000000002"
	teacherA = "0b1f3c9e-3333-4c33-9d55-000000000003"
)

func newTestStudentService(repo *mockStudentRepo) *StudentService {
	users := stubUsers{
		parentA:  {ID: parentA, Role: models.RoleParent},
		teacherA: {ID: teacherA, Role: models.RoleTeacher},
	}
	return NewStudentService(repo, stubClasses{classA: true}, users, nil, nil)
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newTestStudentService(repo)
	class, parent := classA, parentA

	student, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		FirstName:   " Ana ",
		LastName:    "Lopez",
		DateOfBirth: "2015-03-14",
		ClassID:     &class,
		ParentID:    &parent,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated", student.ID)
	assert.Equal(t, "Ana", student.FirstName)
	require.NotNil(t, student.DateOfBirth)
	assert.Equal(t, "2015-03-14", student.DateOfBirth.Format("2006-01-02"))
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{})
	missingClass := "0b1f3c9e-9999-4c33-9d55-000000000009"
	teacher := teacherA

	cases := map[string]dto.CreateStudentRequest{
		"no first name":     {LastName: "Lopez"},
		"unknown class":     {FirstName: "Ana", ClassID: &missingClass},
		"non parent parent": {FirstName: "Ana", ParentID: &teacher},
		"bad date":          {FirstName: "Ana", DateOfBirth: "14-03-2015"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
		})
	}
}

func TestStudentServiceListPagination(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1"}}, listTotal: 1}
	svc := newTestStudentService(repo)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{ClassID: classA, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, classA, repo.lastFilter.ClassID)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 100, pagination.PageSize)
}

func TestStudentServiceUpdateAndDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1", FirstName: "Ana"}}}
	svc := newTestStudentService(repo)

	updated, err := svc.Update(context.Background(), "s1", dto.UpdateStudentRequest{FirstName: "Anna", LastName: "Lopez"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)

	_, err = svc.Update(context.Background(), "missing", dto.UpdateStudentRequest{FirstName: "X"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	err = svc.Delete(context.Background(), "s1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}
