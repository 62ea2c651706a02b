package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	telemetryadapter "userapp/internal/adapter/telemetry"
	"userapp/internal/core/port"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
	"userapp/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "userapp",
	Short:         "userapp serves the user management API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the command named on the command line; no command serves.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every command needs: configuration, logging and
// telemetry.
type app struct {
	cfg       *config.AppConfig
	log       *logger.Logger
	telemetry *telemetryadapter.Container
	probe     port.Telemetry
	metrics   *telemetry.AppMetrics
}

func newApp() (*app, error) {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		ServiceName: cfg.ServiceName,
		Level:       cfg.LogLevel,
		OutputPath:  cfg.LogPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	slog.SetDefault(logger.NewSlog(cfg.LogLevel))

	container, err := telemetryadapter.NewContainer(telemetryadapter.ConfigFrom(cfg), slog.Default())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		telemetry: container,
		probe:     container.NewTelemetryProbe(slog.Default()),
		metrics:   container.AppMetrics,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		slog.Warn("Telemetry shutdown failed", "error", err)
	}

	_ = a.log.Close()
}
