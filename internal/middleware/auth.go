package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Authenticator validates bearer tokens on administrative endpoints such as
// refunds. Tokens are HS256-signed JWTs issued by the storefront.
type Authenticator struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthenticator creates a new bearer token authenticator
func NewAuthenticator(secret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		logger: logger,
	}
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "authorization header must be a bearer token", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			a.logger.Warn("Rejected bearer token", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
