package middleware

import (
	"net/http"
	"strings"

	"poznote/internal/auth"
	"poznote/internal/httputil"
)

// Auth validates the Bearer token on every request and stores the
// authenticated user in the request context. Public share resolution
// lives under /public and bypasses this middleware entirely.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, userID, claims.Username))
		})
	}
}
