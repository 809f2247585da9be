package transport

import (
	"context"
	"net/http"
	"strings"
)

type callerKey struct{}

// Caller describes the authenticated gateway caller.
type Caller struct {
	Admin bool
}

// CallerFromContext returns the caller from context, if present.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

// AuthMiddleware enforces bearer token authentication. The admin token grants
// access to moderation endpoints. With both tokens empty, auth is disabled
// and every caller is treated as admin (local development).
func AuthMiddleware(apiToken, adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiToken == "" && adminToken == "" {
				ctx := context.WithValue(r.Context(), callerKey{}, Caller{Admin: true})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			var caller Caller
			switch {
			case adminToken != "" && token == adminToken:
				caller = Caller{Admin: true}
			case apiToken != "" && token == apiToken:
				caller = Caller{}
			default:
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards moderation endpoints.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok || !caller.Admin {
			http.Error(w, "admin token required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
