package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/service/session"
)

type noopAuthAPI struct{}

func (noopAuthAPI) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	return "", nil, nil
}

func (noopAuthAPI) Profile(ctx context.Context, token string) (*model.User, error) {
	return nil, nil
}

func (noopAuthAPI) UpdateProfile(ctx context.Context, token string, user *model.User) (*model.User, error) {
	return user, nil
}

func authTestRouter(t *testing.T, role model.Role, required ...model.Role) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore(time.Hour)
	sess := &model.Session{
		ID:        "sess-1",
		Token:     "upstream-token",
		User:      model.User{ID: "u1", Role: role},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Put(context.Background(), sess))

	svc := session.NewService(store, noopAuthAPI{}, "secret", time.Hour, nil)
	auth := NewAuthMiddleware(svc)

	r := gin.New()
	group := r.Group("/")
	group.Use(auth.Authenticate())
	if len(required) > 0 {
		group.Use(auth.RequireRole(required...))
	}
	group.GET("/probe", func(c *gin.Context) {
		got := SessionFrom(c)
		require.NotNil(t, got)
		c.JSON(http.StatusOK, gin.H{"user": got.User.ID})
	})
	return r, sess.ID
}

func probe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateHydratesSession(t *testing.T) {
	r, sessionID := authTestRouter(t, model.RoleCustomer)
	w := probe(r, sessionID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	r, _ := authTestRouter(t, model.RoleCustomer)
	w := probe(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsUnknownSession(t *testing.T) {
	r, _ := authTestRouter(t, model.RoleCustomer)
	w := probe(r, "not-a-session")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	r, sessionID := authTestRouter(t, model.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token "+sessionID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	r, sessionID := authTestRouter(t, model.RoleSuperadmin, model.RoleHCSAdmin, model.RoleSuperadmin)
	w := probe(r, sessionID)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	r, sessionID := authTestRouter(t, model.RoleCustomer, model.RoleSuperadmin)
	w := probe(r, sessionID)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
