package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agora/internal/auth"
	"agora/internal/config"
	"agora/internal/handler"
	"agora/internal/middleware"
	"agora/internal/repository"
	serviceWiki "agora/internal/service/wiki"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging, optionally teeing into a rotated log file
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, logOut)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"schema", cfg.DBSchema,
	)

	jwtVerifier, err := newVerifier(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stores.Close()

	locker, closeLocker, err := repository.OpenLocker(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create approval lock: %v", err)
	}
	defer closeLocker()

	services := serviceWiki.SetupServices(
		stores.Sections,
		stores.Versions,
		stores.EditRequests,
		stores.TxManager,
		locker,
		logger,
	)

	wikiHandler := handler.NewWikiHandler(services.Reader, logger)
	editHandler := handler.NewEditRequestHandler(services.EditRequests, logger)
	adminHandler := handler.NewAdminHandler(services.EditRequests, services.Approvals, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", wikiHandler.HealthCheck)

	// Public reads
	mux.HandleFunc("GET /api/wiki/tree", wikiHandler.GetTree)
	mux.HandleFunc("GET /api/wiki/outline", wikiHandler.GetOutline)
	mux.HandleFunc("GET /api/wiki/document", wikiHandler.GetDocument)
	mux.HandleFunc("GET /api/wiki/sections/{slug}", wikiHandler.GetSection)
	mux.HandleFunc("GET /api/wiki/sections/{id}/history", wikiHandler.GetHistory)
	mux.HandleFunc("GET /api/wiki/sections/{id}/forbidden-parents", wikiHandler.GetForbiddenParents)

	// Editor routes
	mux.HandleFunc("POST /api/wiki/requests", middleware.RequireAuth(editHandler.Submit))
	mux.HandleFunc("GET /api/wiki/requests/{id}", middleware.RequireAuth(editHandler.GetRequest))
	mux.HandleFunc("POST /api/wiki/requests/{id}/withdraw", middleware.RequireAuth(editHandler.Withdraw))

	// Review queue
	mux.HandleFunc("GET /api/admin/wiki/requests", middleware.RequireAdmin(adminHandler.ListPending))
	mux.HandleFunc("GET /api/admin/wiki/requests/{id}", middleware.RequireAdmin(adminHandler.Review))
	mux.HandleFunc("POST /api/admin/wiki/requests/{id}/approve", middleware.RequireAdmin(adminHandler.Approve))
	mux.HandleFunc("POST /api/admin/wiki/requests/{id}/reject", middleware.RequireAdmin(adminHandler.Reject))

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	handler = middleware.Authenticate(jwtVerifier, cfg.AdminRole, logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// newVerifier prefers JWKS (asymmetric keys) and falls back to the HS256 secret
func newVerifier(cfg *config.Config, logger *slog.Logger) (auth.JWTVerifier, error) {
	if cfg.SupabaseJWKSURL != "" {
		return auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	}
	if cfg.SupabaseJWTSecret != "" {
		return auth.NewHMACVerifier(cfg.SupabaseJWTSecret, logger)
	}
	return nil, errors.New("set SUPABASE_URL or SUPABASE_JWT_SECRET")
}
