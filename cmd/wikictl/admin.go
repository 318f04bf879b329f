package main

import (
	"errors"
	"fmt"

	"agora/internal/auth"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant or revoke wiki reviewer rights in Supabase",
	}
	cmd.AddCommand(newAdminSetCmd("grant", true))
	cmd.AddCommand(newAdminSetCmd("revoke", false))
	return cmd
}

func newAdminSetCmd(use string, isAdmin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: fmt.Sprintf("Set app_metadata.is_admin=%t for a user", isAdmin),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
				return errors.New("SUPABASE_URL and SUPABASE_KEY are required")
			}

			ctx := cmd.Context()
			client := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

			user, err := client.FindUserByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := client.SetAdmin(ctx, user.ID, isAdmin); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is_admin=%t\n", user.Email, user.ID, isAdmin)
			return nil
		},
	}
}
