package rules

import (
	"github.com/expr-lang/expr/vm"
)

// Kind names a strategy variant. Chain files use the same names.
type Kind string

const (
	KindBuildWhenCloseToPopMax              Kind = "build_when_close_to_pop_max"
	KindBuyUpgrade                          Kind = "buy_upgrade"
	KindMaintenanceWhenDamaged              Kind = "maintenance_when_building_is_getting_damaged"
	KindBuildWhenHasBuildingsUnderConstruct Kind = "build_when_has_buildings_under_construction"
	KindAdjustBuildingTemperatures          Kind = "adjust_building_temperatures"
	KindBuildBuildingOnTurnZero             Kind = "build_building_on_turn_zero"
)

// Strategy is a single decision rule. The set of variants is closed: the
// engine interprets each one and refuses anything else.
type Strategy interface {
	Kind() Kind
	strategy()
}

// defaulter is implemented by variants whose zero value is not a usable configuration.
type defaulter interface {
	setDefaults()
}

// BuildWhenCloseToPopMax starts a new residence once the existing ones are
// nearly full, or immediately when there are none.
type BuildWhenCloseToPopMax struct {
	BuildingName        string  `yaml:"buildingName"` // empty picks a random affordable residence
	PopulationThreshold float64 `yaml:"populationThreshold"`
	MaxResidences       int     `yaml:"maxResidences"`
}

func (BuildWhenCloseToPopMax) Kind() Kind { return KindBuildWhenCloseToPopMax }
func (BuildWhenCloseToPopMax) strategy()  {}

func (s *BuildWhenCloseToPopMax) setDefaults() {
	s.PopulationThreshold = 0.805
	s.MaxResidences = 10
}

// BuyUpgrade buys the cheapest affordable upgrade for the first completed
// building that does not have it yet.
type BuyUpgrade struct {
	UpgradeName  string  `yaml:"upgradeName"` // empty considers every upgrade
	FundsReserve float64 `yaml:"fundsReserve"`
}

func (BuyUpgrade) Kind() Kind { return KindBuyUpgrade }
func (BuyUpgrade) strategy()  {}

// MaintenanceWhenBuildingIsGettingDamaged repairs the most damaged completed
// residence once its health drops below HealthThreshold.
type MaintenanceWhenBuildingIsGettingDamaged struct {
	HealthThreshold float64 `yaml:"healthThreshold"`
}

func (MaintenanceWhenBuildingIsGettingDamaged) Kind() Kind { return KindMaintenanceWhenDamaged }
func (MaintenanceWhenBuildingIsGettingDamaged) strategy()  {}

func (s *MaintenanceWhenBuildingIsGettingDamaged) setDefaults() {
	s.HealthThreshold = 50
}

// BuildWhenHasBuildingsUnderConstruction keeps new construction from competing
// with a build in progress: while anything is under construction it spends
// the turn advancing that building instead.
type BuildWhenHasBuildingsUnderConstruction struct{}

func (BuildWhenHasBuildingsUnderConstruction) Kind() Kind {
	return KindBuildWhenHasBuildingsUnderConstruct
}
func (BuildWhenHasBuildingsUnderConstruction) strategy() {}

// AdjustBuildingTemperatures re-targets the energy of the residence whose
// indoor temperature drifted furthest outside TargetTemperature ± Tolerance.
type AdjustBuildingTemperatures struct {
	TargetTemperature float64 `yaml:"targetTemperature"`
	Tolerance         float64 `yaml:"tolerance"`
}

func (AdjustBuildingTemperatures) Kind() Kind { return KindAdjustBuildingTemperatures }
func (AdjustBuildingTemperatures) strategy()  {}

func (s *AdjustBuildingTemperatures) setDefaults() {
	s.TargetTemperature = 21
	s.Tolerance = 1
}

// BuildBuildingOnTurnZero places a starter building on the very first turn.
type BuildBuildingOnTurnZero struct {
	BuildingName string `yaml:"buildingName"` // empty picks the cheapest affordable residence
}

func (BuildBuildingOnTurnZero) Kind() Kind { return KindBuildBuildingOnTurnZero }
func (BuildBuildingOnTurnZero) strategy()  {}

// Step is a strategy placed in a chain, optionally guarded by an expr condition.
type Step struct {
	Name         string
	Strategy     Strategy
	ConditionSrc string      // expr source, empty means always
	program      *vm.Program // compiled by NewEngine
}

// defaulted returns T with its variant defaults applied.
func defaulted[T Strategy]() T {
	var s T
	if d, ok := any(&s).(defaulter); ok {
		d.setDefaults()
	}
	return s
}
