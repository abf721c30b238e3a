package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Veraticus/spice-categorizer/internal/certs"
	"github.com/Veraticus/spice-categorizer/internal/session"
	"github.com/Veraticus/spice-categorizer/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the categorizer over HTTP",
		Long: `Start an HTTP server that accepts expense file uploads at
POST /api/categorize and serves the latest run and its CSV export.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orchestrator, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(orchestrator, session.NewStore(), slog.Default())

	if cfg.Server.TLS {
		configDir, err := spiceConfigDir()
		if err != nil {
			return err
		}
		cert, err := certs.NewStore(filepath.Join(configDir, "certs")).Certificate()
		if err != nil {
			return fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		srv.UseTLS(cert)
		slog.Warn("Serving a self-signed certificate; browsers will ask you to trust it")
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
