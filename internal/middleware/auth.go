package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agora/internal/auth"
	"agora/internal/httputil"
)

// Authenticate resolves an optional bearer token into a Principal.
// Requests without a token pass through anonymously; a token that fails
// verification is rejected so clients notice expired sessions.
func Authenticate(verifier auth.JWTVerifier, adminRole string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, auth.PrincipalFrom(claims, adminRole)))
		})
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetUserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin rejects requests from non-admin principals
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !httputil.GetPrincipal(r).IsAdmin {
			httputil.RespondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}
