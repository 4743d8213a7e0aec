package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/database"
	"github.com/JonMunkholm/CompanyPortal/internal/registry"
	"github.com/JonMunkholm/CompanyPortal/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP portal",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	service := newService(pool)
	if err := bootstrapAdmin(ctx, service); err != nil {
		return err
	}

	var source core.RegistrySource
	if cfg.Registry.DSN != "" {
		src, err := registry.Open(cfg.Registry.DSN, cfg.Registry.Table, cfg.Registry.Timeout)
		if err != nil {
			return err
		}
		defer src.Close()
		if err := src.Ping(ctx); err != nil {
			slog.Warn("main registry unreachable at startup", "error", err)
		}
		source = src
	} else {
		slog.Warn("REGISTRY_DSN not set, registry snapshots will be empty")
	}
	cache := core.NewSnapshotCache(source, cfg.Registry.SnapshotTTL)

	server := web.NewServer(service, cache, cfg)

	slog.Info("server starting",
		"addr", cfg.Server.Addr(),
		"bulk_max_concurrent", cfg.Upload.MaxConcurrent,
		"reject_duplicates", cfg.Staging.RejectDuplicates,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	limiter := service.Limiter()
	if st := limiter.Status(); st.Active > 0 {
		slog.Info("waiting for bulk confirms to complete", "active", st.Active)
		if err := limiter.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("bulk confirms did not complete in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// bootstrapAdmin creates the configured admin account on first start.
func bootstrapAdmin(ctx context.Context, service *core.Service) error {
	if cfg.Security.BootstrapAdmin == "" {
		return nil
	}
	err := service.CreateUser(ctx, cfg.Security.BootstrapAdmin, cfg.Security.BootstrapPassword, core.RoleAdmin)
	switch {
	case errors.Is(err, core.ErrUserExists):
		slog.Debug("bootstrap admin already exists", "username", cfg.Security.BootstrapAdmin)
		return nil
	case err != nil:
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	slog.Info("bootstrap admin created", "username", cfg.Security.BootstrapAdmin)
	return nil
}
