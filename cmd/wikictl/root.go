package main

import (
	"context"
	"log/slog"
	"os"

	"agora/internal/config"
	"agora/internal/repository"
	serviceWiki "agora/internal/service/wiki"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "wikictl",
	Short:         "wikictl - operator tool for the wiki",
	Long:          "wikictl runs schema migrations, seeds content and inspects the edit request queue.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newOutlineCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newAdminCmd())
}

// loadConfig reads .env and the environment the same way the server does.
// Logs go to stderr so command output stays pipeable.
func loadConfig() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg.Environment, os.Stderr), nil
}

// runtime bundles what the content commands need
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	stores   *repository.Stores
	services *serviceWiki.Services
	close    func()
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	locker, closeLocker, err := repository.OpenLocker(cfg, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}

	services := serviceWiki.SetupServices(
		stores.Sections,
		stores.Versions,
		stores.EditRequests,
		stores.TxManager,
		locker,
		logger,
	)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		stores:   stores,
		services: services,
		close: func() {
			_ = closeLocker()
			stores.Close()
		},
	}, nil
}
