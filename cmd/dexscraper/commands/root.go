package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dexscraper/internal/components/telemetry"

	"github.com/spf13/cobra"
)

// state is filled in by the root command before any subcommand runs.
var state struct {
	config    Config
	logger    *slog.Logger
	tel       telemetry.API
	exporters telemetry.Exporters
}

var rootCmd = &cobra.Command{
	Use:           "dexscraper",
	Short:         "dexscraper downloads the artwork of every entry of the national dex.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger := telemetry.NewLogger(os.Stderr, cfg.Debug.Verbose)
		slog.SetDefault(logger)

		exporters, err := telemetry.SetupFromEnv(cmd.Context(), "dexscraper")
		if err != nil {
			logger.Warn("failed to setup telemetry exporting", "err", err)
		}

		state.config = cfg
		state.logger = logger
		state.tel = telemetry.NewSlogAPI(logger)
		state.exporters = exporters
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if shutdownErr := state.exporters.Shutdown(shutdownCtx); shutdownErr != nil {
		fmt.Fprintln(os.Stderr, "failed to flush telemetry:", shutdownErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
