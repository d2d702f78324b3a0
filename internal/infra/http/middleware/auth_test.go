package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func protected(t *testing.T, auth *AdminAuth) http.Handler {
	t.Helper()
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAdminAuth_ValidCredentials(t *testing.T) {
	auth := NewAdminAuth("admin", "s3cret", nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec := httptest.NewRecorder()
	protected(t, auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminAuth_RejectsBadCredentials(t *testing.T) {
	auth := NewAdminAuth("admin", "s3cret", nil, zap.NewNop())
	handler := protected(t, auth)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "s3cret"},
		{"", ""},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req.SetBasicAuth(tc.user, tc.pass)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
	}
}

func TestAdminAuth_EmptyConfiguredPasswordDisablesAdmin(t *testing.T) {
	auth := NewAdminAuth("admin", "", nil, zap.NewNop())
	handler := protected(t, auth)

	// Basic "admin:" must not open the admin surface when no password is set.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAuth_EmptySuppliedPasswordRejected(t *testing.T) {
	auth := NewAdminAuth("admin", "s3cret", nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "")
	rec := httptest.NewRecorder()
	protected(t, auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	auth := NewAdminAuth("admin", "s3cret", nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	protected(t, auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth_IPAllowlist(t *testing.T) {
	auth := NewAdminAuth("admin", "s3cret", []string{"10.0.0.1", "10.0.0.2"}, zap.NewNop())
	handler := protected(t, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "s3cret")
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 172.16.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.SetBasicAuth("admin", "s3cret")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
