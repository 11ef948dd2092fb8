package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/rreport/internal/config"
	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/session"
)

// Run serves the console until ctx is cancelled. Shutdown waits for
// running analyses, bounded by the configured shutdown timeout.
func Run(ctx context.Context, cfg *config.Config) error {
	service := core.NewService(core.OptionsFromConfig(cfg))
	store := session.NewStore(cfg.Session.IdleTTL)
	server := NewServer(service, store, cfg)

	// Background jobs stop with ctx.
	go store.StartSweeper(ctx, cfg.Session.SweepInterval)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		server.stopLimiters()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Wait for running analyses to complete (with timeout)
	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for analyses to complete", "active", status.Active)
		if err := service.WaitForAnalyses(shutdownCtx); err != nil {
			slog.Warn("analyses did not complete in time", "error", err)
		} else {
			slog.Info("all analyses completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
