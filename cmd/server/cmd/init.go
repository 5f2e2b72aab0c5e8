package cmd

import (
	"github.com/spf13/cobra"

	"nomora-backend/internal/config"
)

func newInitConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file",
		Long: `Write a config file holding every default value.

Examples:
  nomora init-config                # writes nomora.yaml
  nomora init-config conf/dev.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInitConfig,
	}
	c.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	return c
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	cmd.Printf("Created %s\n", path)
	cmd.Println("Edit it to point at your datasets, or override keys with NOMORA_* environment variables.")
	return nil
}
