package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"groundchat/internal/config"
	"groundchat/internal/logging"
)

var (
	// cfgPath overrides the config lookup
	cfgPath string
	// logLevel overrides logging.level from the config file
	logLevel string

	cfg     *config.AppConfig
	logger  *slog.Logger
	logSink io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "groundchat",
	Short: "Counseling assistant grounded in a folder of reference documents",
	Long: `groundchat answers questions using only the text of the reference documents
in its knowledge folder. Answers are generated by an OpenAI-compatible chat
completion service (Groq by default).

Examples:
  # Start an interactive session
  groundchat chat --name Sara --age 34 --education bachelor

  # Ask a single question
  groundchat ask "How is anxiety treated?"

  # Inspect the knowledge base
  groundchat index --summary 3`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./groundchat.yaml or ~/.config/groundchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	out, err := logOutput(cfg.Logging.File, cmd.Name() == chatCmd.Name())
	if err != nil {
		return err
	}
	logger = logging.New(out, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logSink != nil {
		return logSink.Close()
	}
	return nil
}

// logOutput keeps the terminal clean for the interactive screen: without a log
// file, chat logs are discarded.
func logOutput(path string, interactive bool) (io.Writer, error) {
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logSink = f
		return f, nil
	case interactive:
		return io.Discard, nil
	default:
		return os.Stderr, nil
	}
}
