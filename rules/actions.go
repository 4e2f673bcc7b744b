package rules

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/LazyTarget/Considition-2020/model"
)

// Heat model constants used by the game server.
const (
	DegreesPerPop       = 0.04
	DegreesPerExcessMwh = 0.75

	energyEpsilon = 0.01
)

// Each action returns handled=true once it has submitted exactly one action.
// A non-nil error alongside handled=true means the submission itself failed;
// the turn is still spent.

func actionBuildWhenCloseToPopMax(ctx context.Context, s BuildWhenCloseToPopMax, env RuleEnv, rng Rand, layer GameLayer) (bool, error) {
	gs := env.State
	residences := len(gs.ResidenceBuildings)
	if residences >= s.MaxResidences {
		return false, nil
	}

	occupancy := env.PopulationOccupancy()
	slog.Debug("population",
		"pop", gs.CurrentPop(),
		"capacity", gs.PopCapacity(),
		"occupancy", occupancy,
		"pending", gs.PendingPopCapacity(),
	)
	if occupancy <= s.PopulationThreshold && residences > 0 {
		return false, nil
	}

	bp, ok := pickResidence(s.BuildingName, env, rng)
	if !ok {
		return false, nil
	}

	pos, ok := FirstBuildablePosition(gs)
	if !ok {
		slog.Warn("no valid positions to build building", "building", bp.BuildingName)
		return false, nil
	}

	// Funds may have moved since the affordability filter ran.
	if bp.Cost > gs.Funds {
		slog.Warn("wanted to build building, but cannot afford it",
			"building", bp.BuildingName, "cost", bp.Cost, "funds", gs.Funds)
		return false, nil
	}

	slog.Debug("starting residence", "building", bp.BuildingName, "position", pos, "occupancy", occupancy)
	return true, layer.StartBuild(ctx, pos, bp.BuildingName)
}

// pickResidence resolves a configured name exactly, or draws uniformly from
// the affordable residences when no name is set.
func pickResidence(name string, env RuleEnv, rng Rand) (model.BlueprintResidenceBuilding, bool) {
	if name != "" {
		bp, ok := env.State.ResidenceBlueprint(name)
		if !ok {
			slog.Warn("residence blueprint not found", "building", name)
		}
		return bp, ok
	}
	affordable := env.AffordableResidenceBlueprints()
	if len(affordable) == 0 {
		slog.Debug("no affordable residence", "funds", env.State.Funds)
		return model.BlueprintResidenceBuilding{}, false
	}
	return affordable[rng.IntN(len(affordable))], true
}

func actionBuyUpgrade(ctx context.Context, s BuyUpgrade, env RuleEnv, layer GameLayer) (bool, error) {
	gs := env.State
	var candidates []model.Upgrade
	for _, u := range gs.AvailableUpgrades {
		if s.UpgradeName != "" && u.Name != s.UpgradeName {
			continue
		}
		if u.Cost+s.FundsReserve > gs.Funds {
			continue
		}
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return false, nil
	}
	// Stable: equal costs keep catalog order.
	slices.SortStableFunc(candidates, func(a, b model.Upgrade) int {
		return cmp.Compare(a.Cost, b.Cost)
	})

	// Upgrades only fit residences.
	completed := gs.CompletedResidences()
	for _, u := range candidates {
		for _, b := range completed {
			if b.HasEffect(u.Name) || (u.Effect != "" && b.HasEffect(u.Effect)) {
				continue
			}
			slog.Debug("buying upgrade", "upgrade", u.Name, "cost", u.Cost, "building", b.BuildingName, "position", b.Position)
			return true, layer.BuyUpgrade(ctx, b.Position, u.Name)
		}
	}
	return false, nil
}

func actionMaintenance(ctx context.Context, s MaintenanceWhenBuildingIsGettingDamaged, env RuleEnv, layer GameLayer) (bool, error) {
	gs := env.State
	var target *model.BuiltResidenceBuilding
	completed := gs.CompletedResidences()
	for i := range completed {
		r := &completed[i]
		if r.Health >= s.HealthThreshold {
			continue
		}
		if target == nil || r.Health < target.Health {
			target = r
		}
	}
	if target == nil {
		return false, nil
	}

	var cost float64
	if bp, ok := gs.ResidenceBlueprint(target.BuildingName); ok {
		cost = bp.MaintenanceCost
	}
	if cost > gs.Funds {
		slog.Warn("building needs maintenance, but cannot afford it",
			"building", target.BuildingName, "health", target.Health, "cost", cost, "funds", gs.Funds)
		return false, nil
	}

	slog.Debug("maintaining building", "building", target.BuildingName, "position", target.Position, "health", target.Health)
	return true, layer.Maintenance(ctx, target.Position)
}

func actionContinueConstruction(ctx context.Context, env RuleEnv, layer GameLayer) (bool, error) {
	under := env.State.BuildingsUnderConstruction()
	if len(under) == 0 {
		return false, nil
	}
	b := under[0]
	slog.Debug("advancing construction", "building", b.BuildingName, "position", b.Position, "progress", b.BuildProgress)
	return true, layer.Build(ctx, b.Position)
}

func actionAdjustTemperatures(ctx context.Context, s AdjustBuildingTemperatures, env RuleEnv, layer GameLayer) (bool, error) {
	gs := env.State
	var (
		target    *model.BuiltResidenceBuilding
		energy    float64
		deviation float64
	)
	completed := gs.CompletedResidences()
	for i := range completed {
		r := &completed[i]
		dev := math.Abs(r.Temperature - s.TargetTemperature)
		if dev <= s.Tolerance || dev <= deviation {
			continue
		}
		bp, ok := gs.ResidenceBlueprint(r.BuildingName)
		if !ok {
			continue
		}
		want := RequiredEnergy(bp, *r, gs.CurrentTemp, s.TargetTemperature)
		if math.Abs(want-r.RequestedEnergyIn) < energyEpsilon {
			continue
		}
		target, energy, deviation = r, want, dev
	}
	if target == nil {
		return false, nil
	}

	slog.Debug("adjusting energy",
		"building", target.BuildingName,
		"position", target.Position,
		"temperature", target.Temperature,
		"from", target.RequestedEnergyIn,
		"to", energy,
	)
	return true, layer.AdjustEnergy(ctx, target.Position, energy)
}

// RequiredEnergy returns the energy level (MWh) that brings r to target on the
// next tick, given the outdoor temperature. Never negative, rounded to 0.01.
func RequiredEnergy(bp model.BlueprintResidenceBuilding, r model.BuiltResidenceBuilding, outdoor, target float64) float64 {
	indoor := r.Temperature
	excess := (target - indoor - DegreesPerPop*float64(r.CurrentPop) + (indoor-outdoor)*bp.Emissivity) / DegreesPerExcessMwh
	energy := bp.BaseEnergyNeed + excess
	if energy < 0 {
		energy = 0
	}
	return math.Round(energy*100) / 100
}

func actionBuildOnTurnZero(ctx context.Context, s BuildBuildingOnTurnZero, env RuleEnv, layer GameLayer) (bool, error) {
	gs := env.State
	if gs.Turn != 0 {
		return false, nil
	}

	name, cost, ok := starterBlueprint(s.BuildingName, gs)
	if !ok {
		slog.Warn("starter blueprint not found", "building", s.BuildingName)
		return false, nil
	}

	pos, ok := FirstBuildablePosition(gs)
	if !ok {
		slog.Warn("no valid positions to build building", "building", name)
		return false, nil
	}
	if cost > gs.Funds {
		slog.Warn("wanted to build starter building, but cannot afford it", "building", name, "cost", cost, "funds", gs.Funds)
		return false, nil
	}

	slog.Debug("starting turn zero building", "building", name, "position", pos)
	return true, layer.StartBuild(ctx, pos, name)
}

// starterBlueprint finds a residence or utility by name, or the cheapest
// affordable residence when name is empty.
func starterBlueprint(name string, gs *model.GameState) (string, float64, bool) {
	if name == "" {
		affordable := AffordableResidenceBlueprints(gs)
		if len(affordable) == 0 {
			return "", 0, false
		}
		cheapest := slices.MinFunc(affordable, func(a, b model.BlueprintResidenceBuilding) int {
			return cmp.Compare(a.Cost, b.Cost)
		})
		return cheapest.BuildingName, cheapest.Cost, true
	}
	if bp, ok := gs.ResidenceBlueprint(name); ok {
		return bp.BuildingName, bp.Cost, true
	}
	if bp, ok := gs.UtilityBlueprint(name); ok {
		return bp.BuildingName, bp.Cost, true
	}
	return "", 0, false
}
