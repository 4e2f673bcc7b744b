package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/LazyTarget/Considition-2020/config"
	"github.com/LazyTarget/Considition-2020/gamelayer"
)

// Execute reads the CONSIDITION_ environment, lets flags override it and
// runs the selected command.
func Execute(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return newRootCmd(&cfg, os.Stdout).ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "considition",
		Short: "Play Considition 2020 games with a configurable strategy chain",
		Long: `Plays games against the Considition 2020 game server. Each turn a chain of
strategies is asked, in order, to spend the turn; when none acts a random
affordable residence is built.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(out, cfg.LogLevel)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "game server API key")
	pf.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "game server API base URL")
	pf.StringVar(&cfg.DB, "db", cfg.DB, "game history database path (empty disables history)")
	pf.Float64Var(&cfg.Rate, "rate", cfg.Rate, "max API requests per second (0 for unlimited)")
	pf.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per API request")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		newPlayCmd(cfg),
		newResumeCmd(cfg),
		newEndCmd(cfg),
		newScoreCmd(cfg),
		newHistoryCmd(cfg),
	)
	return root
}

func setupLogging(out io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}

func newClient(cfg *config.Config) *gamelayer.Client {
	return gamelayer.NewClient(cfg.BaseURL, cfg.APIKey,
		gamelayer.WithTimeout(cfg.Timeout),
		gamelayer.WithRateLimit(cfg.Rate, max(int(cfg.Rate), 1)),
	)
}

// optionalArg returns the first argument, or "" when there is none.
func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
