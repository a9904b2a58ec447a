package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mesa-vesting/internal/config"
)

var (
	cfg    config.Config
	logger *slog.Logger
	// logOutput is closed on exit when it is a rotated file.
	logOutput io.Writer
)

// rootCmd loads configuration and the logger for every subcommand.
var rootCmd = &cobra.Command{
	Use:   "mesa-vesting",
	Short: "Token distribution campaigns with vesting and claim settlement",
	Long: `mesa-vesting runs a single token distribution campaign: allocations are
registered before the start, then recipients claim lump-sum and linearly
vesting shares from the funded holder account.

Configuration is read from the environment (HTTP_, LOG_, PSQL_, ENGINE_,
ETH_ and OTEL_ prefixes).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logOutput = cfg.Log.Writer()
		logger = newLogger(cfg, logOutput)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// main is the entry point of the mesa-vesting service.
func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", slog.Any("error", err))
		}
		closeLog()
		os.Exit(1)
	}
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	switch cfg.Log.SlogFormat() {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("env", cfg.Env))
}

func closeLog() {
	if c, ok := logOutput.(io.Closer); ok && logOutput != io.Writer(os.Stdout) {
		_ = c.Close()
	}
	logOutput = nil
}
