package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"personal-chat/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator rejects requests lacking a valid bearer token and
// stashes the verified claims in the request context.
func Authenticator(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom retrieves the verified claims stored by Authenticator.
func ClaimsFrom(ctx context.Context) (*auth.CustomClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.CustomClaims)
	return claims, ok
}

// RequestLogger logs one line per request with duration, in the same
// structured form the rest of the process logs in.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
