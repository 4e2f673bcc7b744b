package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LazyTarget/Considition-2020/model"
	"github.com/LazyTarget/Considition-2020/rules"
	"github.com/LazyTarget/Considition-2020/store"
)

var (
	// ErrNotRunning is returned by Run when there is no game in progress.
	ErrNotRunning = errors.New("game is not running")
	// ErrStalled is returned by Run when turns stop advancing.
	ErrStalled = errors.New("game is not advancing")
)

// GameLayer is the full game surface the runner drives.
type GameLayer interface {
	TurnLayer
	// Ended reports whether the server already closed the game, even with
	// turns left.
	Ended() bool
	EndGame(ctx context.Context, gameID string) error
	Score(ctx context.Context, gameID string) (model.Score, error)
}

// Recorder persists game history. Failures are logged and never stop a game.
type Recorder interface {
	BeginGame(ctx context.Context, g store.Game) error
	RecordTurn(ctx context.Context, t store.Turn) error
	FinishGame(ctx context.Context, g store.Game) error
}

// Phase is the lifecycle of one game as seen by the runner.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Runner plays a game turn by turn until it runs out of turns.
type Runner struct {
	layer      GameLayer
	randomizer *Randomizer
	recorder   Recorder
	label      string
	seed       int64
	maxStalls  int
	phase      Phase
}

type RunnerOption func(*Runner)

// WithRecorder stores the game and its turns. label names the strategy in
// history; seed is stored so the game can be replayed.
func WithRecorder(rec Recorder, label string, seed int64) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
		r.label = label
		r.seed = seed
	}
}

// WithMaxStalls sets how many consecutive turns may fail to advance the game
// before Run gives up.
func WithMaxStalls(n int) RunnerOption {
	return func(r *Runner) { r.maxStalls = max(n, 1) }
}

// NewRunner wraps a game layer that was already created or resumed. The phase
// follows the layer's state: no state is NotStarted, a game that used all its
// turns or was ended early is Ended.
func NewRunner(layer GameLayer, engine *rules.Engine, rng rules.Rand, opts ...RunnerOption) *Runner {
	r := &Runner{
		layer:      layer,
		randomizer: NewRandomizer(layer, engine, rng),
		maxStalls:  5,
	}
	for _, opt := range opts {
		opt(r)
	}
	if gs := layer.State(); gs != nil {
		r.phase = PhaseRunning
		if gs.Turn >= gs.MaxTurns || layer.Ended() {
			r.phase = PhaseEnded
		}
	}
	return r
}

func (r *Runner) Phase() Phase { return r.phase }

// Run plays every remaining turn and returns the final score. Cancelling ctx
// stops the game between turns; the game itself is left running.
func (r *Runner) Run(ctx context.Context) (model.Score, error) {
	gs := r.layer.State()
	if gs == nil || r.phase == PhaseNotStarted {
		return model.Score{}, ErrNotRunning
	}
	gameID := gs.GameID
	if r.phase == PhaseEnded {
		slog.Info("game has already ended", "game", gameID, "turn", gs.Turn, "maxTurns", gs.MaxTurns)
		return r.layer.Score(ctx, gameID)
	}
	r.record(ctx, "begin game", func() error {
		return r.recorder.BeginGame(ctx, store.Game{
			GameID:    gameID,
			MapName:   gs.MapName,
			Strategy:  r.label,
			Seed:      r.seed,
			StartedAt: time.Now(),
		})
	})

	stalls := 0
	for gs.Turn < gs.MaxTurns {
		if err := ctx.Err(); err != nil {
			return model.Score{}, err
		}
		logTurn(gs)
		prev := takeSnapshot(gs)

		source, err := r.randomizer.HandleTurn(ctx)
		if err != nil {
			slog.Error("turn failed", "turn", gs.Turn, "source", source, "error", err)
		}

		next := r.layer.State()
		report(next, &prev)
		r.recordTurn(ctx, next, source)

		if next.Turn <= gs.Turn {
			stalls++
			if stalls >= r.maxStalls {
				return model.Score{}, fmt.Errorf("game %s after %d attempts at turn %d: %w", gameID, stalls, next.Turn, ErrStalled)
			}
		} else {
			stalls = 0
		}
		gs = next
	}
	r.phase = PhaseEnded

	completed := gs.CompletedBuildings()
	upgrades := 0
	for _, b := range completed {
		upgrades += len(b.Effects)
	}
	slog.Info("done with game",
		"game", gameID,
		"funds", gs.Funds,
		"buildings", len(completed),
		"upgrades", upgrades,
	)

	score, err := r.layer.Score(ctx, gameID)
	if err != nil {
		return model.Score{}, err
	}
	slog.Info("final score",
		"game", gameID,
		"score", score.FinalScore,
		"co2", score.TotalCo2,
		"pop", score.FinalPopulation,
		"happiness", score.TotalHappiness,
	)
	r.finish(ctx, gs, score, false)
	return score, nil
}

// EndGame ends the game early. A game that already used all its turns ended
// on its own and nothing is sent.
func (r *Runner) EndGame(ctx context.Context) error {
	gs := r.layer.State()
	if gs == nil {
		return nil
	}
	if r.phase == PhaseEnded || gs.Turn >= gs.MaxTurns {
		r.phase = PhaseEnded
		return nil
	}
	if err := r.layer.EndGame(ctx, gs.GameID); err != nil {
		return fmt.Errorf("end game %s: %w", gs.GameID, err)
	}
	r.phase = PhaseEnded
	slog.Info("game ended prematurely", "game", gs.GameID, "turn", gs.Turn, "maxTurns", gs.MaxTurns)
	r.finish(ctx, gs, model.Score{GameID: gs.GameID}, true)
	return nil
}

func (r *Runner) finish(ctx context.Context, gs *model.GameState, score model.Score, premature bool) {
	r.record(ctx, "finish game", func() error {
		return r.recorder.FinishGame(ctx, store.Game{
			GameID:    gs.GameID,
			MapName:   gs.MapName,
			Strategy:  r.label,
			Seed:      r.seed,
			EndedAt:   time.Now(),
			Turns:     gs.Turn,
			Premature: premature,
			Score:     score,
		})
	})
}

func (r *Runner) recordTurn(ctx context.Context, gs *model.GameState, source TurnSource) {
	r.record(ctx, "record turn", func() error {
		return r.recorder.RecordTurn(ctx, store.Turn{
			GameID:     gs.GameID,
			Turn:       gs.Turn,
			Source:     string(source),
			Funds:      gs.Funds,
			Population: gs.CurrentPop(),
			Capacity:   gs.PopCapacity(),
			Buildings:  len(gs.ResidenceBuildings) + len(gs.UtilityBuildings),
			Errors:     len(gs.Errors),
		})
	})
}

func (r *Runner) record(ctx context.Context, what string, fn func() error) {
	if r.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		slog.Warn("history "+what+" failed", "error", err)
	}
}

func logTurn(gs *model.GameState) {
	slog.Info("begin new turn",
		"turn", gs.Turn,
		"funds", gs.Funds,
		"temp", gs.CurrentTemp,
		"pop", fmt.Sprintf("%d/%d (%.2f%%)", gs.CurrentPop(), gs.PopCapacity(), 100*rules.PopulationOccupancy(gs)),
	)
}

// report logs what the server said about the last action and what changed.
func report(gs *model.GameState, prev *stateSnapshot) {
	for _, msg := range gs.Messages {
		slog.Info("game message", "turn", gs.Turn, "message", msg)
	}
	for _, e := range gs.Errors {
		slog.Warn("game error", "turn", gs.Turn, "error", e)
	}
	for _, ev := range detectEvents(gs, prev) {
		slog.Info("turn event", "turn", ev.Turn, "kind", ev.Kind, "detail", ev.Detail)
	}
}
