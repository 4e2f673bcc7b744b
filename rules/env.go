package rules

import (
	"iter"

	"github.com/LazyTarget/Considition-2020/model"
)

// RuleEnv wraps one turn's game state and exposes the queries that strategies
// and expr conditions are written against. It never modifies the state.
type RuleEnv struct {
	State *model.GameState
}

// BuildablePositions yields every empty map cell that no built building
// occupies, in row-major order. The sequence can be ranged over repeatedly.
func BuildablePositions(gs *model.GameState) iter.Seq[model.Position] {
	return func(yield func(model.Position) bool) {
		occupied := make(map[model.Position]struct{}, len(gs.ResidenceBuildings)+len(gs.UtilityBuildings))
		for _, r := range gs.ResidenceBuildings {
			occupied[r.Position] = struct{}{}
		}
		for _, u := range gs.UtilityBuildings {
			occupied[u.Position] = struct{}{}
		}
		grid := gs.Grid()
		for x := range grid.Rows() {
			for y := range grid.RowLen(x) {
				p := model.Position{X: x, Y: y}
				if grid.At(p) != model.CellEmpty {
					continue
				}
				if _, ok := occupied[p]; ok {
					continue
				}
				if !yield(p) {
					return
				}
			}
		}
	}
}

// AffordableResidenceBlueprints returns residences costing at most the current
// funds, in catalog order.
func AffordableResidenceBlueprints(gs *model.GameState) []model.BlueprintResidenceBuilding {
	var out []model.BlueprintResidenceBuilding
	for _, bp := range gs.AvailableResidenceBuildings {
		if bp.Cost <= gs.Funds {
			out = append(out, bp)
		}
	}
	return out
}

// PopulationOccupancy is current population over capacity, or 0 when there is
// no capacity yet.
func PopulationOccupancy(gs *model.GameState) float64 {
	capacity := gs.PopCapacity()
	if capacity <= 0 {
		return 0
	}
	return float64(gs.CurrentPop()) / float64(capacity)
}

// FirstBuildablePosition returns the first buildable position in scan order.
func FirstBuildablePosition(gs *model.GameState) (model.Position, bool) {
	for p := range BuildablePositions(gs) {
		return p, true
	}
	return model.Position{}, false
}

func (e RuleEnv) BuildablePositions() iter.Seq[model.Position] {
	return BuildablePositions(e.State)
}

func (e RuleEnv) BuildableCount() int {
	n := 0
	for range BuildablePositions(e.State) {
		n++
	}
	return n
}

// EmptyCells counts map cells that accept buildings, built on or not.
func (e RuleEnv) EmptyCells() int {
	return e.State.Grid().CountEmpty()
}

func (e RuleEnv) AffordableResidenceBlueprints() []model.BlueprintResidenceBuilding {
	return AffordableResidenceBlueprints(e.State)
}

func (e RuleEnv) PopulationOccupancy() float64 {
	return PopulationOccupancy(e.State)
}

func (e RuleEnv) Funds() float64       { return e.State.Funds }
func (e RuleEnv) Turn() int            { return e.State.Turn }
func (e RuleEnv) OutdoorTemp() float64 { return e.State.CurrentTemp }
func (e RuleEnv) CurrentPop() int      { return e.State.CurrentPop() }
func (e RuleEnv) PopCapacity() int     { return e.State.PopCapacity() }
func (e RuleEnv) PendingCapacity() int { return e.State.PendingPopCapacity() }

// TurnsLeft returns how many turns remain before the game ends automatically.
func (e RuleEnv) TurnsLeft() int {
	if left := e.State.MaxTurns - e.State.Turn; left > 0 {
		return left
	}
	return 0
}

// ResidenceCount counts built residences, finished or not.
func (e RuleEnv) ResidenceCount() int {
	return len(e.State.ResidenceBuildings)
}

func (e RuleEnv) CompletedResidenceCount() int {
	return len(e.State.CompletedResidences())
}

func (e RuleEnv) UnderConstructionCount() int {
	return len(e.State.BuildingsUnderConstruction())
}

// HasBuilding reports whether any built building, finished or not, has the
// given name. Names match case-insensitively.
func (e RuleEnv) HasBuilding(name string) bool {
	return hasNamed(e.State.BuiltBuildings(), name)
}

// HasAnyBuilding reports whether any of the named buildings has been built.
func (e RuleEnv) HasAnyBuilding(names ...string) bool {
	return hasAnyNamed(e.State.BuiltBuildings(), names)
}

// BuildingCount counts built buildings, finished or not, with the given name.
func (e RuleEnv) BuildingCount(name string) int {
	return countNamed(e.State.BuiltBuildings(), name)
}

// Offers reports whether the map offers a residence or utility with the given name.
func (e RuleEnv) Offers(name string) bool {
	return hasNamed(e.State.AvailableResidenceBuildings, name) ||
		hasNamed(e.State.AvailableUtilityBuildings, name)
}

// CanAfford reports whether the named residence or utility costs at most the current funds.
func (e RuleEnv) CanAfford(name string) bool {
	if bp, ok := e.State.ResidenceBlueprint(name); ok {
		return bp.Cost <= e.State.Funds
	}
	if bp, ok := e.State.UtilityBlueprint(name); ok {
		return bp.Cost <= e.State.Funds
	}
	return false
}
