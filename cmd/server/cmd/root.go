// Package cmd provides the CLI commands for the nomora backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nomora-backend/internal/config"
	"nomora-backend/internal/logging"
)

// Version information, set from main before Execute.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCmd builds the command tree. Each call returns fresh commands so
// tests can run them in isolation.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nomora",
		Short: "Nomora - restaurant analytics and waste chatbot",
		Long: `Nomora serves a restaurant analytics dashboard API and a keyword
chatbot over two CSV datasets: dish sales and ingredient waste.

Run without a subcommand to start the HTTP server (same as "nomora serve").`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	root.SetVersionTemplate("nomora {{.Version}}\n")

	root.PersistentFlags().StringP("config", "c", "", "Config file (default nomora.yaml when present)")
	root.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before the config")
	root.Flags().Int("port", 0, "Port to listen on (overrides server.port)")

	root.AddCommand(newServeCmd(), newAskCmd(), newExportCmd(), newInitConfigCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file and config, then installs the global
// logger described by the config.
func loadConfig(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Config{
		Level:      level,
		JSONFormat: cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
	})
	logging.SetGlobal(logger)
	return cfg, logger, nil
}
