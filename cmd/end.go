package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LazyTarget/Considition-2020/agent"
	"github.com/LazyTarget/Considition-2020/config"
	"github.com/LazyTarget/Considition-2020/gamelayer"
	"github.com/LazyTarget/Considition-2020/store"
)

func newEndCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "end [game-id]",
		Short: "End a running game before its last turn",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(false); err != nil {
				return err
			}
			ctx := cmd.Context()
			session := gamelayer.NewSession(newClient(cfg))
			if err := session.Resume(ctx, optionalArg(args)); err != nil {
				return err
			}

			var opts []agent.RunnerOption
			if cfg.DB != "" {
				st, err := store.Open(cfg.DB)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer st.Close()
				opts = append(opts, agent.WithRecorder(st, cfg.StrategyLabel(), cfg.Seed))
			}

			runner := agent.NewRunner(session, nil, nil, opts...)
			if runner.Phase() == agent.PhaseEnded {
				fmt.Fprintf(cmd.OutOrStdout(), "game %s has already ended\n", session.GameID())
				return nil
			}
			if err := runner.EndGame(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "game %s ended at turn %d\n", session.GameID(), session.State().Turn)
			return nil
		},
	}
}
