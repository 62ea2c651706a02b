package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "userapp/internal/adapter/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		a.metrics.StartSystemMetrics(ctx, 15*time.Second)

		return httpadapter.StartServerWithConfig(ctx, a.cfg, a.metrics, a.probe, a.log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
