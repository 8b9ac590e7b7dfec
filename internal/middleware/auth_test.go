package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const authTestSecret = "auth-test-secret"

func signedToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "support-operator",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authProtected(t *testing.T) http.Handler {
	t.Helper()
	auth := NewAuthenticator(authTestSecret, zap.NewNop())
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticatorAcceptsValidToken(t *testing.T) {
	handler := authProtected(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refunds", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, authTestSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticatorRejections(t *testing.T) {
	handler := authProtected(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic dXNlcjpwYXNz"},
		{name: "wrong secret", header: "Bearer " + signedToken(t, "other-secret", time.Now().Add(time.Hour))},
		{name: "expired", header: "Bearer " + signedToken(t, authTestSecret, time.Now().Add(-time.Hour))},
		{name: "garbage", header: "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/refunds", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
