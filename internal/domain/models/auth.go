package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// HasAdminRole reports whether app_metadata grants the given role.
// Only app_metadata is consulted; user_metadata is writable by the user.
func (c *SupabaseClaims) HasAdminRole(adminRole string) bool {
	if c.AppMetadata == nil {
		return false
	}
	if flag, ok := c.AppMetadata["is_admin"].(bool); ok && flag {
		return true
	}
	if role, ok := c.AppMetadata["role"].(string); ok && adminRole != "" && role == adminRole {
		return true
	}
	if roles, ok := c.AppMetadata["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s == adminRole {
				return true
			}
		}
	}
	return false
}

// Principal is the authenticated identity the wiki core sees.
// UserID is opaque; IsAdmin is the single permission flag.
type Principal struct {
	UserID  string
	IsAdmin bool
}
