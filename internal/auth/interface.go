package auth

import "agora/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only depends on this, so JWKS and shared-secret
// verification are interchangeable.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}

// PrincipalFrom maps verified claims to the identity the wiki services consume.
func PrincipalFrom(claims *models.SupabaseClaims, adminRole string) models.Principal {
	if claims == nil {
		return models.Principal{}
	}
	return models.Principal{
		UserID:  claims.GetUserID(),
		IsAdmin: claims.HasAdminRole(adminRole),
	}
}
