package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	// Storage
	DatabaseURL string // empty = in-memory store (dev/test only)
	DBSchema    string
	AutoMigrate bool
	// Auth
	SupabaseURL       string
	SupabaseJWKSURL   string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseJWTSecret string // HS256 alternative to JWKS
	SupabaseKey       string // service role key, used by wikictl to grant reviewer rights
	AdminRole         string
	CORSOrigins       string
	// Approval lock
	RedisURL        string // empty = in-process lock
	ApprovalLockTTL time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	// Construct JWKS URL from Supabase URL
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBSchema:          getDBSchema(env),
		AutoMigrate:       getEnv("AUTO_MIGRATE", getDefaultAutoMigrate(env)) == "true",
		SupabaseURL:       supabaseURL,
		SupabaseJWKSURL:   jwksURL,
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		AdminRole:         getEnv("ADMIN_ROLE", "admin"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RedisURL:          getEnv("REDIS_URL", ""),
		ApprovalLockTTL:   getDuration("APPROVAL_LOCK_TTL", 30*time.Second),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getInt("LOG_MAX_FILES", 10),
	}
}

// Validate rejects combinations that are only acceptable outside production
func (c *Config) Validate() error {
	if c.Environment == "prod" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in prod")
		}
		if c.SupabaseJWKSURL == "" && c.SupabaseJWTSecret == "" {
			return fmt.Errorf("SUPABASE_URL or SUPABASE_JWT_SECRET is required in prod")
		}
	}
	if c.DBSchema != "" && !isIdentifier(c.DBSchema) {
		return fmt.Errorf("DB_SCHEMA %q is not a valid identifier", c.DBSchema)
	}
	return nil
}

// UsesMemoryStore reports whether no database is configured
func (c *Config) UsesMemoryStore() bool {
	return c.DatabaseURL == ""
}

// getDefaultAutoMigrate returns the default migration setting based on environment
func getDefaultAutoMigrate(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getDBSchema returns the schema based on environment
func getDBSchema(env string) string {
	// Allow manual override via DB_SCHEMA env var
	if schema := os.Getenv("DB_SCHEMA"); schema != "" {
		return schema
	}

	switch env {
	case "prod":
		return "public"
	case "test":
		return "test_wiki"
	default:
		return "dev_wiki"
	}
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
