package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LazyTarget/Considition-2020/model"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// GameLayer submits actions to the game. Each call spends the current turn.
// Rejected actions are reported in the next state's Errors, not as an error
// here; an error means the submission did not reach the game.
type GameLayer interface {
	StartBuild(ctx context.Context, pos model.Position, buildingName string) error
	Build(ctx context.Context, pos model.Position) error
	Maintenance(ctx context.Context, pos model.Position) error
	BuyUpgrade(ctx context.Context, pos model.Position, upgradeName string) error
	AdjustEnergy(ctx context.Context, pos model.Position, value float64) error
	Wait(ctx context.Context) error
}

// Rand is the only source of randomness in the engine. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Engine evaluates a compiled chain once per turn. It holds no per-turn state
// and is not modified after NewEngine returns.
type Engine struct {
	steps []Step
}

// NewEngine compiles every step condition into expr bytecode and normalizes
// step configuration. A nil chain yields an engine that never acts.
func NewEngine(chain *Chain) (*Engine, error) {
	steps, err := compileSteps(chain.Steps())
	if err != nil {
		return nil, err
	}
	return &Engine{steps: steps}, nil
}

// Len returns the number of compiled steps.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.steps)
}

// TryExecuteTurn runs the steps in order and stops at the first one that
// submits an action. It reports whether any step did.
func (e *Engine) TryExecuteTurn(ctx context.Context, rng Rand, layer GameLayer, gs *model.GameState) bool {
	if e == nil {
		return false
	}
	env := RuleEnv{State: gs}
	for _, st := range e.steps {
		if st.program != nil {
			result, err := vm.Run(st.program, env)
			if err != nil {
				slog.Warn("rule condition error", "rule", st.Name, "error", err)
				continue
			}
			if match, ok := result.(bool); !ok || !match {
				continue
			}
		}

		handled, err := execute(ctx, st.Strategy, env, rng, layer)
		if err != nil {
			slog.Error("rule action error", "rule", st.Name, "error", err)
		}
		if handled {
			slog.Debug("rule fired", "rule", st.Name, "turn", gs.Turn)
			return true
		}
	}
	return false
}

func execute(ctx context.Context, s Strategy, env RuleEnv, rng Rand, layer GameLayer) (bool, error) {
	switch s := s.(type) {
	case BuildWhenCloseToPopMax:
		return actionBuildWhenCloseToPopMax(ctx, s, env, rng, layer)
	case BuyUpgrade:
		return actionBuyUpgrade(ctx, s, env, layer)
	case MaintenanceWhenBuildingIsGettingDamaged:
		return actionMaintenance(ctx, s, env, layer)
	case BuildWhenHasBuildingsUnderConstruction:
		return actionContinueConstruction(ctx, env, layer)
	case AdjustBuildingTemperatures:
		return actionAdjustTemperatures(ctx, s, env, layer)
	case BuildBuildingOnTurnZero:
		return actionBuildOnTurnZero(ctx, s, env, layer)
	default:
		return false, fmt.Errorf("unknown strategy %T", s)
	}
}

func compileSteps(steps []Step) ([]Step, error) {
	out := make([]Step, 0, len(steps))
	for _, st := range steps {
		if st.Strategy == nil {
			return nil, fmt.Errorf("step %q has no strategy", st.Name)
		}
		st.Strategy = normalize(st.Strategy)
		if st.ConditionSrc != "" {
			prog, err := expr.Compile(st.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("compile rule %q: %w", st.Name, err)
			}
			st.program = prog
		}
		out = append(out, st)
	}
	return out, nil
}
