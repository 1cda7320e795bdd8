package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"groundchat/internal/session"
	"groundchat/internal/tui"
)

var chatProfile profileFlags

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive counseling session",
	Long: `Start an interactive session in the terminal. Answers are grounded in the
documents of the knowledge folder. If a reply fails, press ctrl+r to resend
the last message.

Examples:
  groundchat chat --name Sara --age 34 --gender female --education master`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatProfile.register(chatCmd.Flags())
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	profile, err := chatProfile.profile()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a.serveMetrics(ctx, cfg.Metrics.Addr, logger)

	// Warm the knowledge base while the user types the first question.
	go a.indexer.Knowledge(ctx)

	sess := session.New(profile)
	logger.Info("session started", "session", sess.ID)
	if _, err := tea.NewProgram(tui.New(ctx, a.service, sess), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("chat screen: %w", err)
	}
	return nil
}
