package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LazyTarget/Considition-2020/config"
	"github.com/LazyTarget/Considition-2020/gamelayer"
)

func newScoreCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "score [game-id]",
		Short: "Show the score of a game; without an id the most recent game is used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(false); err != nil {
				return err
			}
			ctx := cmd.Context()
			session := gamelayer.NewSession(newClient(cfg))
			gameID := optionalArg(args)
			if gameID == "" {
				if err := session.Resume(ctx, ""); err != nil {
					return err
				}
				gameID = session.GameID()
			}
			score, err := session.Score(ctx, gameID)
			if err != nil {
				return err
			}
			printScore(cmd.OutOrStdout(), score)
			return nil
		},
	}
}
