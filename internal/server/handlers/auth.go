// internal/server/handlers/auth.go

package handlers

import (
	"context"
	"net/http"
	"strings"

	"zonechat/internal/domain/identity"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves bearer tokens through the external identity service
// and attaches the resulting user to the request context
func Authenticator(identities identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
				return
			}

			user, err := identities.Verify(r.Context(), token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "invalid_token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects requests whose authenticated user is not staff
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())
		if user == nil || !user.IsStaff {
			respondWithError(w, http.StatusForbidden, "staff_only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func userFrom(ctx context.Context) *identity.UserInfo {
	user, _ := ctx.Value(userContextKey).(*identity.UserInfo)
	return user
}
