package middleware

import (
	"log/slog"
	"net/http"
)

const (
	// TokenParam is the query parameter carrying the API token.
	TokenParam = "API_TOKEN"

	// DebugToken is always accepted.
	DebugToken = "DEBUG"
)

// TokenAuth checks the API_TOKEN query parameter against the issued token.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a new TokenAuth accepting token and DebugToken.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{
		token: token,
	}
}

// Authenticate rejects requests without a valid token with 403.
func (m *TokenAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get(TokenParam)
		if token == "" {
			http.Error(w, "missing "+TokenParam+" query parameter", http.StatusForbidden)
			return
		}

		if token != m.token && token != DebugToken {
			slog.Warn("rejected request with unknown token", "path", r.URL.Path)
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
