package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeAuthenticator struct {
	tokens map[string]*models.JWTClaims
	users  map[string]*models.User
}

func (f fakeAuthenticator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func (f fakeAuthenticator) ResolveUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	if u, ok := f.users[claims.UserID]; ok {
		return u, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
}

const guardUserID = "6a7c1f00-0000-4000-8000-000000000001"

func newGuardRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuthenticator{
		tokens: map[string]*models.JWTClaims{
			// token carries a stale admin role; the stored account is a parent.
			"parent-token": {UserID: guardUserID, Role: models.RoleAdmin},
			"admin-token":  {UserID: "admin", Role: models.RoleAdmin},
			"ghost-token":  {UserID: "deleted", Role: models.RoleAdmin},
		},
		users: map[string]*models.User{
			guardUserID: {ID: guardUserID, Role: models.RoleParent},
			"admin":     {ID: "admin", Role: models.RoleAdmin},
		},
	}

	r := gin.New()
	protected := r.Group("/", JWT(auth))
	protected.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	protected.GET("/parents/:id", UUIDParam("id"), RBAC(string(models.RoleAdmin), Self), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestGuardStatusCodes(t *testing.T) {
	r := newGuardRouter()
	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/admin", "", http.StatusUnauthorized},
		{"wrong scheme", "/admin", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/admin", "Bearer nope", http.StatusUnauthorized},
		{"deleted account", "/admin", "Bearer ghost-token", http.StatusUnauthorized},
		{"role from account not token", "/admin", "Bearer parent-token", http.StatusForbidden},
		{"admin", "/admin", "Bearer admin-token", http.StatusOK},
		{"self", "/parents/" + guardUserID, "Bearer parent-token", http.StatusOK},
		{"other parent", "/parents/6a7c1f00-0000-4000-8000-000000000002", "Bearer parent-token", http.StatusForbidden},
		{"malformed id", "/parents/abc", "Bearer admin-token", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

type recordingObserver struct{ paths []string }

func (o *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.paths = append(o.paths, path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/students/1", "/students/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, []string{"/students/:id", "/students/:id", "unmatched"}, obs.paths)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}
