package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosika-app/sosika-backend/config"
	"github.com/sosika-app/sosika-backend/middlewares"
	"github.com/sosika-app/sosika-backend/models"
	"github.com/sosika-app/sosika-backend/utils"
)

func authedRequest(t *testing.T, userID uuid.UUID, roles []string) *http.Request {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, roles)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddlewarePassesClaimsThrough(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	userID := uuid.New()

	var got *middlewares.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := middlewares.GetAuthenticatedUser(r)
		require.NoError(t, err)
		got = claims
	})

	rec := httptest.NewRecorder()
	middlewares.AuthMiddleware(next).ServeHTTP(rec, authedRequest(t, userID, []string{"user"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, []string{"user"}, got.Roles)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	config.SecretKey = []byte("test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	})

	rec := httptest.NewRecorder()
	middlewares.AuthMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsTamperedToken(t *testing.T) {
	config.SecretKey = []byte("test-secret")

	req := authedRequest(t, uuid.New(), []string{"user"})
	config.SecretKey = []byte("rotated-secret")

	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	})
	middlewares.AuthMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleBasedMiddleware(t *testing.T) {
	config.SecretKey = []byte("test-secret")

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	protected := middlewares.AuthMiddleware(
		middlewares.RoleBasedMiddleware(models.RoleAdmin)(next))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, authedRequest(t, uuid.New(), []string{"user"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, authedRequest(t, uuid.New(), []string{"admin"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
