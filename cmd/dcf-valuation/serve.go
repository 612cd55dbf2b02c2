package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/internal/history"
	"github.com/iwvelando/dcf-valuation/internal/server"
	"github.com/iwvelando/dcf-valuation/internal/store"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configLocation, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the valuation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runServe(cmd.Context(), configLocation, address, logLevel)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// loadEnv reads .env when present.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// openStore connects to Postgres when a database URL is configured and
// otherwise opens the YAML file store. The returned func releases it.
func openStore(ctx context.Context, cfg *server.Config, logger *zap.Logger) (store.Store, func(), error) {
	if url := cfg.DatabaseURL(); url != "" {
		pg, err := store.NewPostgresStore(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		logger.Info("using postgres inputs store",
			zap.String("op", "main.openStore"),
		)
		return pg, pg.Close, nil
	}

	fileStore, err := store.OpenFileStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using file inputs store",
		zap.String("op", "main.openStore"),
		zap.String("path", cfg.Store.Path),
	)
	return fileStore, func() {}, nil
}

func newHistoryFetcher(cfg *server.Config, logger *zap.Logger) (history.Fetcher, error) {
	client := history.NewChartClient(cfg.History.BaseURL, &http.Client{Timeout: cfg.History.Timeout}, logger)
	client.LookbackMonths = cfg.History.LookbackMonths
	return history.NewCachedFetcher(client, cfg.History.CacheSize, cfg.History.CacheTTL)
}

func runServe(ctx context.Context, configLocation, address, logLevel string) error {
	if err := loadEnv(); err != nil {
		return err
	}

	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Address = address
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	fetcher, err := newHistoryFetcher(cfg, logger)
	if err != nil {
		return err
	}

	handler := server.NewHandler(logger, server.Dependencies{
		Store:          st,
		History:        fetcher,
		HistoryTimeout: cfg.History.Timeout,
	}, cfg.RequestSizeBytes(), version)

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.runServe"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		zap.String("op", "main.runServe"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
