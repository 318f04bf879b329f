package httputil

import (
	"context"
	"net/http"

	"agora/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// WithPrincipal adds the authenticated principal to the request context
func WithPrincipal(r *http.Request, p models.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the principal from context.
// Anonymous requests get the zero Principal.
func GetPrincipal(r *http.Request) models.Principal {
	p, _ := r.Context().Value(principalKey).(models.Principal)
	return p
}

// GetUserID retrieves the user ID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	return GetPrincipal(r).UserID
}
