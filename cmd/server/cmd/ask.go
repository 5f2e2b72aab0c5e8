package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one chatbot question and exit",
		Long: `Answer one chatbot question against the configured datasets and exit.

Examples:
  nomora ask "which dishes should I remove?"
  nomora ask --mode keyword what is the profit of palak paneer`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
	c.Flags().String("mode", "", "Router mode: keyword, fuzzy or model (overrides chat.mode)")
	return c
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Chat.Mode = mode
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := a.state.Reload(cmd.Context()); err != nil {
		return err
	}

	resp, err := a.bot.Answer(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderResponse(resp))
	return nil
}
