package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"groundchat/internal/session"
)

var (
	askProfile     profileFlags
	showReferences bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Long: `Ask a single grounded question without starting the interactive screen.

Examples:
  groundchat ask --name Omar --education bachelor "How is anxiety treated?"
  groundchat ask --name Omar --education bachelor --references "What helps with insomnia?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askProfile.register(askCmd.Flags())
	askCmd.Flags().BoolVar(&showReferences, "references", false, "Print the references the answer was grounded on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	profile, err := askProfile.profile()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ans, err := a.service.Reply(ctx, session.New(profile), strings.Join(args, " "))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if showReferences {
		fmt.Fprintf(out, "References (%s):\n%s\n\n", ans.Retrieval.Strategy, ans.Retrieval.Text())
	}
	fmt.Fprintln(out, ans.Text)
	return nil
}
