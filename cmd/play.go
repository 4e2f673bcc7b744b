package cmd

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LazyTarget/Considition-2020/agent"
	"github.com/LazyTarget/Considition-2020/config"
	"github.com/LazyTarget/Considition-2020/gamelayer"
	"github.com/LazyTarget/Considition-2020/model"
	"github.com/LazyTarget/Considition-2020/rules"
	"github.com/LazyTarget/Considition-2020/store"
)

const banner = `
  ___             _    _ _ _   _            ___ __ ___ __
 / __|___ _ _  __(_)__| (_) |_(_)___ _ _   |_  )  \_  )  \
| (__/ _ \ ' \(_-< / _' | |  _| / _ \ ' \   / / () / / () |
 \___\___/_||_/__/_\__,_|_|\__|_\___/_||_| /___\__/___\__/
`

func newPlayCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Create a new game on a map and play it to the end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), banner)
			return playGame(cmd.Context(), cmd.OutOrStdout(), cfg, func(ctx context.Context, s *gamelayer.Session) error {
				return s.New(ctx, cfg.Map)
			})
		},
	}
	cmd.Flags().StringVar(&cfg.Map, "map", cfg.Map, "map to play")
	strategyFlags(cmd, cfg)
	return cmd
}

func newResumeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume [game-id]",
		Short: "Continue a game; without an id the most recent game is resumed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(false); err != nil {
				return err
			}
			gameID := optionalArg(args)
			return playGame(cmd.Context(), cmd.OutOrStdout(), cfg, func(ctx context.Context, s *gamelayer.Session) error {
				return s.Resume(ctx, gameID)
			})
		},
	}
	strategyFlags(cmd, cfg)
	return cmd
}

func strategyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	f.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "strategy preset: "+strings.Join(rules.PresetNames(), ", "))
	f.StringVar(&cfg.StrategyFile, "strategy-file", cfg.StrategyFile, "YAML strategy chain, overrides --strategy")
	f.StringVar(&cfg.Building, "building", cfg.Building,
		"residence the preset grows with, e.g. "+strings.Join(rules.ResidenceNames(), ", ")+" (empty picks at random)")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 for a fresh one")
}

// playGame enters a game with enter and plays it to the end.
func playGame(ctx context.Context, out io.Writer, cfg *config.Config, enter func(context.Context, *gamelayer.Session) error) error {
	chain, err := loadChain(cfg)
	if err != nil {
		return err
	}
	engine, err := rules.NewEngine(chain)
	if err != nil {
		return err
	}
	slog.Info("strategy", "name", cfg.StrategyLabel(), "steps", engine.Len(), "chain", chain.Names())

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = newSeed(); err != nil {
			return err
		}
	}
	slog.Info("random seed", "seed", seed)
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	session := gamelayer.NewSession(newClient(cfg))
	if err := enter(ctx, session); err != nil {
		return err
	}

	opts := []agent.RunnerOption{}
	if cfg.DB != "" {
		st, err := store.Open(cfg.DB)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer st.Close()
		opts = append(opts, agent.WithRecorder(st, cfg.StrategyLabel(), seed))
	}

	runner := agent.NewRunner(session, engine, rng, opts...)
	score, err := runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted, the game is left running", "game", session.GameID())
		return nil
	}
	if err != nil {
		return err
	}
	printScore(out, score)
	return nil
}

func loadChain(cfg *config.Config) (*rules.Chain, error) {
	if cfg.StrategyFile != "" {
		return rules.LoadChainFile(cfg.StrategyFile)
	}
	return rules.Preset(cfg.Strategy, cfg.Building)
}

func printScore(out io.Writer, score model.Score) {
	fmt.Fprintf(out, "game %s: score %.0f (co2 %.1f, population %d, happiness %.1f)\n",
		score.GameID, score.FinalScore, score.TotalCo2, score.FinalPopulation, score.TotalHappiness)
}

// newSeed draws a seed from crypto/rand so unseeded runs differ.
func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
