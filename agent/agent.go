package agent

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/LazyTarget/Considition-2020/model"
	"github.com/LazyTarget/Considition-2020/rules"
)

// ErrNoState is returned when the game layer has no state to act on yet.
var ErrNoState = errors.New("game layer has no state")

// TurnLayer is what one turn needs: the current state and a way to act on it.
type TurnLayer interface {
	rules.GameLayer
	State() *model.GameState
}

// TurnSource records which part of the Randomizer spent the turn.
type TurnSource string

const (
	SourceChain  TurnSource = "chain"
	SourceRandom TurnSource = "random"
	SourceWait   TurnSource = "wait"
)

// Randomizer owns the decision-making for one game: it runs the strategy
// chain each turn and, when no step acts, builds something at random.
// All randomness comes from rng, so a seeded source replays a game exactly.
type Randomizer struct {
	layer  TurnLayer
	engine *rules.Engine
	rng    rules.Rand
}

// NewRandomizer returns a Randomizer. engine may be nil for a random-only player.
func NewRandomizer(layer TurnLayer, engine *rules.Engine, rng rules.Rand) *Randomizer {
	return &Randomizer{layer: layer, engine: engine, rng: rng}
}

// HandleTurn spends the current turn on exactly one action.
func (r *Randomizer) HandleTurn(ctx context.Context) (TurnSource, error) {
	gs := r.layer.State()
	if gs == nil {
		return "", ErrNoState
	}

	if r.engine.TryExecuteTurn(ctx, r.rng, r.layer, gs) {
		return SourceChain, nil
	}
	return r.fallback(ctx, gs)
}

// fallback builds a random affordable residence on a random buildable cell,
// or waits when either set is empty. The two draws are independent.
func (r *Randomizer) fallback(ctx context.Context, gs *model.GameState) (TurnSource, error) {
	positions := slices.Collect(rules.BuildablePositions(gs))
	if len(positions) == 0 {
		slog.Debug("no buildable positions, waiting", "turn", gs.Turn)
		return SourceWait, r.layer.Wait(ctx)
	}

	affordable := rules.AffordableResidenceBlueprints(gs)
	if len(affordable) == 0 {
		slog.Debug("no affordable residences, waiting", "turn", gs.Turn, "funds", gs.Funds)
		return SourceWait, r.layer.Wait(ctx)
	}

	pos := positions[r.rng.IntN(len(positions))]
	bp := affordable[r.rng.IntN(len(affordable))]
	slog.Debug("random build", "turn", gs.Turn, "building", bp.BuildingName, "position", pos)
	return SourceRandom, r.layer.StartBuild(ctx, pos, bp.BuildingName)
}
