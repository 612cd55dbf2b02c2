package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/internal/config"
	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/output"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
)

func newValueCmd() *cobra.Command {
	var configLocation, outputFormat string

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Value a company from a YAML input file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runValue(cmd.OutOrStdout(), configLocation, outputFormat, logLevel)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to valuation file")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	return cmd
}

func runValue(w io.Writer, configLocation, outputFormatFlag, logLevel string) error {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.runValue"),
		)
	}

	out, err := valuation.NewService(logger, nil, nil).Compute(conf.Inputs)
	if err != nil {
		return fmt.Errorf("failed to value %s: %w", conf.Label(), err)
	}

	switch outputFormat {
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, out)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, out)
	default:
		output.PrettyFormat(w, conf.Label(), out)
		return nil
	}
}
