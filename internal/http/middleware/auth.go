// Package middleware provides the HTTP middleware that authenticates
// requests and exposes the owner identity to handlers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/auth"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// OwnerID extracts the authenticated owner from the request context.
// Returns uuid.Nil when the request was not authenticated.
func OwnerID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ownerIDKey).(uuid.UUID)
	return id
}

// RequireAuth validates the Bearer token on every request and stores the
// owner id in the context. Requests without a valid token get 401.
func RequireAuth(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, claims.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithOwnerID returns a context carrying the given owner id. Exported for
// handler tests that bypass token validation.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}
