package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Homme-Noir/Taskflow/pkg/respond"
)

type ctxKey int

const userIDKey ctxKey = 0

// TokenVerifier validates an access token and returns the user id it
// belongs to. Implemented by service.AuthService.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Auth rejects requests that do not carry a valid Bearer token. It runs in
// front of every owner-scoped route so unauthenticated requests never reach
// the task store.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			userID, err := verifier.VerifyAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// UserID returns the authenticated user id stored by Auth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
