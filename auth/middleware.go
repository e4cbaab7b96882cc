package auth

import (
	"net/http"
	"strings"

	"github.com/user/civicfix-go/apperror"
)

// Middleware returns the bearer-token gate for protected routes.
//
// A missing Authorization header fails with 401: no identity was presented.
// A present but invalid, malformed or expired credential fails with 403.
// On success the caller's user id is bound into the request context and the
// request proceeds; the middleware has no other side effects.
func Middleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authentication required", nil))
				return
			}

			var tokenString string
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenString = parts[1]
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := WithCallerID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
