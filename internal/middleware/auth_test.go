package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/shared/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenExpiration: time.Hour,
		},
	}
}

func tokenFor(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(1, "kratos", "Kratos", role)
	require.NoError(t, err)
	return token
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	setTestConfig(t)

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/verificar", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
}

func TestJWTMiddlewareRejectsInvalidToken(t *testing.T) {
	setTestConfig(t)

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verificar", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewarePassesClaimsThroughContext(t *testing.T) {
	setTestConfig(t)

	var seen *auth.Claims
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verificar", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleCoLeader))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "kratos", seen.Username)
	assert.Equal(t, auth.RoleCoLeader, seen.Role)
}

func TestJWTMiddlewareFallsBackToCookie(t *testing.T) {
	setTestConfig(t)

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verificar", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenFor(t, auth.RoleMember)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireDeniesInsufficientRole(t *testing.T) {
	setTestConfig(t)

	handler := Require(auth.OpViewHistory, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("co-leaders must not reach the history handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/historial", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleCoLeader))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient permissions")
}

func TestRequireAllowsSufficientRole(t *testing.T) {
	setTestConfig(t)

	called := false
	handler := Require(auth.OpEditStatistics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/statistics/1", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleCoLeader))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRejectsAnonymous(t *testing.T) {
	setTestConfig(t)

	handler := Require(auth.OpEditStatistics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("anonymous requests must not reach the handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/statistics/1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
