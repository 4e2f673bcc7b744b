package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/LazyTarget/Considition-2020/config"
	"github.com/LazyTarget/Considition-2020/store"
)

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [game-id]",
		Short: "List played games, or the turns of one game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DB == "" {
				return errors.New("history is disabled: no database configured")
			}
			st, err := store.Open(cfg.DB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			if gameID := optionalArg(args); gameID != "" {
				turns, err := st.Turns(ctx, gameID)
				if err != nil {
					return err
				}
				return writeTurns(cmd.OutOrStdout(), turns)
			}
			games, err := st.Games(ctx, limit)
			if err != nil {
				return err
			}
			return writeGames(cmd.OutOrStdout(), games)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of games to list, 0 for all")
	return cmd
}

func writeGames(out io.Writer, games []store.Game) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tMAP\tSTRATEGY\tSEED\tSTARTED\tTURNS\tSCORE\tSTATUS")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%.0f\t%s\n",
			g.GameID, g.MapName, g.Strategy, g.Seed, formatTime(g.StartedAt), g.Turns, g.Score.FinalScore, status(g))
	}
	return tw.Flush()
}

func writeTurns(out io.Writer, turns []store.Turn) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TURN\tSOURCE\tFUNDS\tPOP\tCAPACITY\tBUILDINGS\tERRORS")
	for _, t := range turns {
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%d\t%d\t%d\t%d\n",
			t.Turn, t.Source, t.Funds, t.Population, t.Capacity, t.Buildings, t.Errors)
	}
	return tw.Flush()
}

func status(g store.Game) string {
	switch {
	case g.EndedAt.IsZero():
		return "running"
	case g.Premature:
		return "ended early"
	default:
		return "finished"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
