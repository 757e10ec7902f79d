package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paycheck-sim/paycheck-be/internal/auth"
	"github.com/paycheck-sim/paycheck-be/internal/http/respond"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// callerIDKey is the context key for the authenticated user's external ID.
const callerIDKey contextKey = "caller_id"

// CallerID extracts the authenticated user's external ID from the
// context. Returns empty string if the request was not authenticated.
func CallerID(ctx context.Context) string {
	callerID, _ := ctx.Value(callerIDKey).(string)
	return callerID
}

// RequireAuth validates the bearer token and stores the resolved
// identity in the request context. Requests with a missing, malformed,
// expired, or tampered token are rejected with 401.
func RequireAuth(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		claims, err := tokens.Resolve(parts[1])
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), callerIDKey, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}
