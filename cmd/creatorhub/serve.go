package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"creatorhub/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only HTTP API",
	Long: `Starts the HTTP API that serves fresh contract reads, a health check
and Prometheus metrics. Every response is fetched from the contract on
demand; nothing is cached locally.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	queryAccount, err := a.queryAccount()
	if err != nil {
		return err
	}

	server := api.NewServer(a.cfg.APIPort, a.tokens, a.market, a.rpc, queryAccount)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	slog.Info("CreatorHub API running", "port", a.cfg.APIPort)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("API server shutdown error", "error", err)
		return err
	}

	slog.Info("Shutdown complete")
	return nil
}
