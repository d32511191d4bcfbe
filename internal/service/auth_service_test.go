package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type mockAuthRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
	lastLogin map[string]time.Time
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, lastLogin: map[string]time.Time{}}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthRepo) CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.NewString()
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}

type mockProfileRepo struct {
	parents  []models.Parent
	teachers []models.Teacher
	err      error
}

type mockParentProfiles struct{ *mockProfileRepo }

func (m mockParentProfiles) CreateWithTx(ctx context.Context, tx *sqlx.Tx, parent *models.Parent) error {
	if m.err != nil {
		return m.err
	}
	m.parents = append(m.parents, *parent)
	return nil
}

type mockTeacherProfiles struct{ *mockProfileRepo }

func (m mockTeacherProfiles) CreateWithTx(ctx context.Context, tx *sqlx.Tx, teacher *models.Teacher) error {
	if m.err != nil {
		return m.err
	}
	m.teachers = append(m.teachers, *teacher)
	return nil
}

// passTx runs fn directly; rollback is not modelled here.
type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func newTestAuthService(repo *mockAuthRepo, profiles *mockProfileRepo) *AuthService {
	return NewAuthService(repo, mockParentProfiles{profiles}, mockTeacherProfiles{profiles}, passTx{}, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiry:     time.Hour,
		Issuer:     "school-portal-api",
		BcryptCost: bcrypt.MinCost,
	})
}

func parentRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Username:  "mlopez",
		Email:     "maria@example.com",
		Password:  "correct-horse",
		Role:      models.RoleParent,
		FirstName: "Maria",
		LastName:  "Lopez",
		Phone:     "555-0100",
	}
}

func TestAuthRegisterParentCreatesProfile(t *testing.T) {
	repo := newMockAuthRepo()
	profiles := &mockProfileRepo{}
	svc := newTestAuthService(repo, profiles)

	info, err := svc.Register(context.Background(), parentRegistration())
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, info.Role)
	require.Len(t, profiles.parents, 1)
	assert.Equal(t, info.ID, profiles.parents[0].UserID)
	assert.Equal(t, "555-0100", *profiles.parents[0].Phone)

	stored := repo.users[info.ID]
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
}

func TestAuthRegisterRejectsAdminAndDuplicates(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, &mockProfileRepo{})

	admin := parentRegistration()
	admin.Role = models.RoleAdmin
	_, err := svc.Register(context.Background(), admin)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Register(context.Background(), parentRegistration())
	require.NoError(t, err)

	dup := parentRegistration()
	dup.Username = "other"
	_, err = svc.Register(context.Background(), dup)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestAuthRegisterMapsUniqueViolation(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = &pq.Error{Code: "23505"}
	svc := newTestAuthService(repo, &mockProfileRepo{})

	_, err := svc.Register(context.Background(), parentRegistration())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestAuthLoginAndValidate(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, &mockProfileRepo{})
	info, err := svc.Register(context.Background(), parentRegistration())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "MARIA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Contains(t, repo.lastLogin, info.ID)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, models.RoleParent, claims.Role)

	user, err := svc.ResolveUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "mlopez", user.Username)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo, &mockProfileRepo{})
	_, err := svc.Register(context.Background(), parentRegistration())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "maria@example.com", Password: "wrong"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))
}

func TestAuthValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo(), &mockProfileRepo{})

	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "school-portal-api", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "school-portal-api", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}

func TestAuthResolveDeletedUser(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepo(), &mockProfileRepo{})
	_, err := svc.ResolveUser(context.Background(), &models.JWTClaims{UserID: "gone"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}
