package rules

import (
	"fmt"
	"sort"
)

// Preset names accepted by Preset.
const (
	PresetRandom   = "random"
	PresetPopMax   = "popmax"
	PresetStandard = "standard"
	PresetClassic  = "classic"
)

// StarterBuilding is the cheap residence placed on turn zero by the standard preset.
const StarterBuilding = Cabin

// Preset returns a named chain. buildingName is the residence the chain grows
// with; empty lets the chain pick affordable residences at random.
// PresetRandom returns a nil chain: every turn falls back to random actions.
//
// Maintenance comes first and the under-construction step runs before any new
// residence is considered, so at most one building is in progress at a time.
func Preset(name, buildingName string) (*Chain, error) {
	residence := func(s *BuildWhenCloseToPopMax) { s.BuildingName = buildingName }
	switch name {
	case PresetRandom, "":
		return nil, nil
	case PresetPopMax:
		c := Create[MaintenanceWhenBuildingIsGettingDamaged]()
		c = Append[BuildWhenHasBuildingsUnderConstruction](c)
		c = Append(c, residence)
		c = Append[BuyUpgrade](c)
		return Append[AdjustBuildingTemperatures](c), nil
	case PresetStandard:
		c, _ := Preset(PresetPopMax, buildingName)
		return Append(c, func(s *BuildBuildingOnTurnZero) { s.BuildingName = StarterBuilding }), nil
	case PresetClassic:
		c := Create[MaintenanceWhenBuildingIsGettingDamaged]()
		c = Append[BuildWhenHasBuildingsUnderConstruction](c)
		c = Append(c, residence)
		c = Append[AdjustBuildingTemperatures](c)
		return Append(c, func(s *BuildBuildingOnTurnZero) { s.BuildingName = StarterBuilding }), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (known: %v)", name, PresetNames())
	}
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := []string{PresetRandom, PresetPopMax, PresetStandard, PresetClassic}
	sort.Strings(names)
	return names
}

// normalize clamps step configuration to its valid ranges.
func normalize(s Strategy) Strategy {
	switch v := s.(type) {
	case BuildWhenCloseToPopMax:
		v.PopulationThreshold = clamp(v.PopulationThreshold, 0, 1)
		v.MaxResidences = clampInt(v.MaxResidences, 0, 1<<16)
		return v
	case BuyUpgrade:
		v.FundsReserve = clamp(v.FundsReserve, 0, 1e12)
		return v
	case MaintenanceWhenBuildingIsGettingDamaged:
		v.HealthThreshold = clamp(v.HealthThreshold, 0, 100)
		return v
	case AdjustBuildingTemperatures:
		v.Tolerance = clamp(v.Tolerance, 0, 100)
		return v
	}
	return s
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
