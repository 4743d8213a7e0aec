package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/CompanyPortal/internal/config"
	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/logging"
	"github.com/JonMunkholm/CompanyPortal/internal/storage/postgres"
)

var (
	envFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Company staging portal",
	Long: `portal stages company submissions, flags duplicates against other
submitters and the main registry, and exports approved companies.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadEnv()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded", "config", cfg.String())
		return nil
	},
}

// Execute runs the command selected on the command line.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// loadEnv reads the dotenv file if present. Variables already set in the
// environment take precedence.
func loadEnv() {
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded", "path", envFile, "error", err)
		return
	}
	slog.Debug("loaded env file", "path", envFile)
}

// openPool connects to the staging database with the configured pool limits.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// newService wires the service to the PostgreSQL store.
func newService(pool *pgxpool.Pool) *core.Service {
	store := postgres.New(pool)
	return core.NewService(store, store, store, core.Options{
		RejectDuplicates:  cfg.Staging.RejectDuplicates,
		MaxConcurrentBulk: cfg.Upload.MaxConcurrent,
		BulkWait:          cfg.Upload.MaxWaitTime,
		BcryptCost:        cfg.Security.BcryptCost,
	})
}
