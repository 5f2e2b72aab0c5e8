package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nomora-backend/internal/export"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the dashboard report as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	snap, err := a.state.Reload(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := export.WriteReport(f, snap, export.Options{Thresholds: a.thresholds, TopN: cfg.Analytics.TopN}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", args[0])
	return nil
}
