package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/domain"
	"agora/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signHS256(t *testing.T, claims models.SupabaseClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() models.SupabaseClaims {
	return models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:        "authenticated",
		AppMetadata: map[string]interface{}{"is_admin": true},
	}
}

func TestHMACVerifier(t *testing.T) {
	verifier, err := NewHMACVerifier(testSecret, discardLogger())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	anon := validClaims()
	anon.Role = "anon"

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", signHS256(t, validClaims(), testSecret), false},
		{"wrong secret", signHS256(t, validClaims(), "another-secret-another-secret-another"), true},
		{"expired", signHS256(t, expired, testSecret), true},
		{"anonymous role", signHS256(t, anon, testSecret), true},
		{"missing subject", signHS256(t, noSubject, testSecret), true},
		{"garbage", "not.a.token", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.GetUserID() != "user-1" {
				t.Errorf("user id = %q", claims.GetUserID())
			}
		})
	}
}

func TestHMACVerifierRejectsNoneAlgorithm(t *testing.T) {
	verifier, _ := NewHMACVerifier(testSecret, discardLogger())

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := verifier.VerifyToken(signed); err == nil {
		t.Error("expected none-signed token to be rejected")
	}
}

func TestNewVerifiersRequireConfig(t *testing.T) {
	if _, err := NewHMACVerifier("", discardLogger()); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewJWTVerifier("", discardLogger()); err == nil {
		t.Error("expected error for empty JWKS URL")
	}
}

func TestPrincipalFrom(t *testing.T) {
	tests := []struct {
		name      string
		metadata  map[string]interface{}
		wantAdmin bool
	}{
		{"is_admin flag", map[string]interface{}{"is_admin": true}, true},
		{"role match", map[string]interface{}{"role": "admin"}, true},
		{"roles list", map[string]interface{}{"roles": []interface{}{"editor", "admin"}}, true},
		{"other role", map[string]interface{}{"role": "editor"}, false},
		{"no metadata", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			claims.AppMetadata = tt.metadata

			p := PrincipalFrom(&claims, "admin")
			if p.UserID != "user-1" {
				t.Errorf("user id = %q", p.UserID)
			}
			if p.IsAdmin != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", p.IsAdmin, tt.wantAdmin)
			}
		})
	}

	if p := PrincipalFrom(nil, "admin"); p.UserID != "" || p.IsAdmin {
		t.Errorf("nil claims should give empty principal, got %+v", p)
	}
}

func TestAdminClientSetAdmin(t *testing.T) {
	var gotAuth string
	var gotBody updateUserRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
			_ = json.NewEncoder(w).Encode(listUsersResponse{Users: []AdminUser{
				{ID: "u-1", Email: "reviewer@example.com"},
			}})
		case r.Method == http.MethodPut && r.URL.Path == "/auth/v1/admin/users/u-1":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(AdminUser{ID: "u-1", Email: "reviewer@example.com", AppMetadata: gotBody.AppMetadata})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewAdminClient(srv.URL, "service-key")
	ctx := context.Background()

	user, err := client.FindUserByEmail(ctx, "reviewer@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, err := client.FindUserByEmail(ctx, "missing@example.com"); err == nil {
		t.Error("expected error for unknown email")
	}

	updated, err := client.SetAdmin(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("set admin: %v", err)
	}
	if gotAuth != "Bearer service-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotBody.AppMetadata["is_admin"] != true {
		t.Errorf("request body app_metadata = %v", gotBody.AppMetadata)
	}
	if updated.AppMetadata["is_admin"] != true {
		t.Errorf("response app_metadata = %v", updated.AppMetadata)
	}
}
