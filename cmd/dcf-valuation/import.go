package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/internal/server"
	"github.com/iwvelando/dcf-valuation/internal/store"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

func newImportCmd() *cobra.Command {
	var configLocation string

	cmd := &cobra.Command{
		Use:   "import <records.yaml>",
		Short: "Upsert YAML input records into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runImport(cmd.Context(), configLocation, args[0], logLevel)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultServerConfigFile, "path to server configuration file")
	return cmd
}

func runImport(ctx context.Context, configLocation, recordsPath, logLevel string) error {
	if err := loadEnv(); err != nil {
		return err
	}

	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		return err
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	records, err := store.ReadRecords(recordsPath)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, record := range records {
		if err := st.Put(ctx, record); err != nil {
			return fmt.Errorf("failed to import %s: %w", record.Ticker, err)
		}
	}

	logger.Info("imported records",
		zap.String("op", "main.runImport"),
		zap.String("source", recordsPath),
		zap.Int("records", len(records)),
	)
	return nil
}
