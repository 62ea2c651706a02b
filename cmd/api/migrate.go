package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	httpadapter "userapp/internal/adapter/http"
	"userapp/pkg/tracing"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		return tracing.CommandSpanWrapper(cmd.Context(), "migrate", func(ctx context.Context) error {
			// Opening a store applies its pending migrations.
			_, closeRepo, err := httpadapter.OpenUserRepository(ctx, a.cfg, a.probe)
			if err != nil {
				return err
			}

			slog.InfoContext(ctx, "Migrations applied", "db_driver", a.cfg.DBDriver)

			return closeRepo()
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
