package model

// GameState is one turn's view of the game as returned by the game server.
// A fresh value is decoded after every action; the engine only reads it.
type GameState struct {
	GameID       string  `json:"gameId"`
	MapName      string  `json:"mapName"`
	Turn         int     `json:"turn"`
	MaxTurns     int     `json:"maxTurns"`
	Funds        float64 `json:"funds"`
	CurrentTemp  float64 `json:"currentTemp"`
	HousingQueue int     `json:"housingQueue"`
	Map          [][]int `json:"map"`

	ResidenceBuildings []BuiltResidenceBuilding `json:"residenceBuildings"`
	UtilityBuildings   []BuiltUtilityBuilding   `json:"utilityBuildings"`

	AvailableResidenceBuildings []BlueprintResidenceBuilding `json:"availableResidenceBuildings"`
	AvailableUtilityBuildings   []BlueprintUtilityBuilding   `json:"availableUtilityBuildings"`
	AvailableUpgrades           []Upgrade                    `json:"availableUpgrades"`

	Messages []string `json:"messages"`
	Errors   []string `json:"errors"`
}

// Position is a map coordinate: X is the row, Y the column.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Blueprint holds the fields shared by every buildable template.
type Blueprint struct {
	BuildingName   string  `json:"buildingName"`
	Cost           float64 `json:"cost"`
	Co2Cost        float64 `json:"co2Cost"`
	BaseEnergyNeed float64 `json:"baseEnergyNeed"`
	BuildSpeed     int     `json:"buildSpeed"`
	Type           string  `json:"type"`
	ReleaseTick    int     `json:"releaseTick"`
}

// TypeName returns the building name the blueprint builds.
func (b Blueprint) TypeName() string { return b.BuildingName }

type BlueprintResidenceBuilding struct {
	Blueprint
	MaxPop          int     `json:"maxPop"`
	IncomePerPop    float64 `json:"incomePerPop"`
	EmissionsPerPop float64 `json:"emissionsPerPop"`
	MaintenanceCost float64 `json:"maintenanceCost"`
	DecayRate       float64 `json:"decayRate"`
	MaxHappiness    float64 `json:"maxHappiness"`
	Emissivity      float64 `json:"emissivity"`
}

type BlueprintUtilityBuilding struct {
	Blueprint
	Effects       []string `json:"effects"`
	QueueIncrease int      `json:"queueIncrease"`
}

// Upgrade is an effect that can be bought for a completed building.
type Upgrade struct {
	Name   string  `json:"name"`
	Effect string  `json:"effect"`
	Cost   float64 `json:"cost"`
}

// BuiltBuilding holds the fields shared by every placed building.
type BuiltBuilding struct {
	Position      Position `json:"position"`
	BuildingName  string   `json:"buildingName"`
	BuildProgress int      `json:"buildProgress"`
	Effects       []string `json:"effects"`
}

func (b BuiltBuilding) TypeName() string { return b.BuildingName }

// Completed reports whether construction has finished.
func (b BuiltBuilding) Completed() bool { return b.BuildProgress >= 100 }

// HasEffect reports whether the named upgrade effect is already applied.
func (b BuiltBuilding) HasEffect(name string) bool {
	for _, e := range b.Effects {
		if e == name {
			return true
		}
	}
	return false
}

type BuiltResidenceBuilding struct {
	BuiltBuilding
	CurrentPop             int     `json:"currentPop"`
	Temperature            float64 `json:"temperature"`
	Health                 float64 `json:"health"`
	RequestedEnergyIn      float64 `json:"requestedEnergyIn"`
	EffectiveEnergyIn      float64 `json:"effectiveEnergyIn"`
	HappinessPerTickPerPop float64 `json:"happinessPerTickPerPop"`
	CanBeDemolished        bool    `json:"canBeDemolished"`
}

type BuiltUtilityBuilding struct {
	BuiltBuilding
}

// Score is the final result of a game.
type Score struct {
	GameID          string  `json:"gameId"`
	FinalScore      float64 `json:"finalScore"`
	TotalCo2        float64 `json:"co2"`
	FinalPopulation int     `json:"finalPopulation"`
	TotalHappiness  float64 `json:"totalHappiness"`
}

// BuiltBuildings lists residences followed by utilities, each in state order.
func (gs *GameState) BuiltBuildings() []BuiltBuilding {
	out := make([]BuiltBuilding, 0, len(gs.ResidenceBuildings)+len(gs.UtilityBuildings))
	for _, r := range gs.ResidenceBuildings {
		out = append(out, r.BuiltBuilding)
	}
	for _, u := range gs.UtilityBuildings {
		out = append(out, u.BuiltBuilding)
	}
	return out
}

func (gs *GameState) CompletedBuildings() []BuiltBuilding {
	var out []BuiltBuilding
	for _, b := range gs.BuiltBuildings() {
		if b.Completed() {
			out = append(out, b)
		}
	}
	return out
}

func (gs *GameState) BuildingsUnderConstruction() []BuiltBuilding {
	var out []BuiltBuilding
	for _, b := range gs.BuiltBuildings() {
		if !b.Completed() {
			out = append(out, b)
		}
	}
	return out
}

func (gs *GameState) CompletedResidences() []BuiltResidenceBuilding {
	var out []BuiltResidenceBuilding
	for _, r := range gs.ResidenceBuildings {
		if r.Completed() {
			out = append(out, r)
		}
	}
	return out
}

func (gs *GameState) ResidencesUnderConstruction() []BuiltResidenceBuilding {
	var out []BuiltResidenceBuilding
	for _, r := range gs.ResidenceBuildings {
		if !r.Completed() {
			out = append(out, r)
		}
	}
	return out
}

// ResidenceBlueprint looks up a residence blueprint by exact name.
func (gs *GameState) ResidenceBlueprint(name string) (BlueprintResidenceBuilding, bool) {
	for _, bp := range gs.AvailableResidenceBuildings {
		if bp.BuildingName == name {
			return bp, true
		}
	}
	return BlueprintResidenceBuilding{}, false
}

// UtilityBlueprint looks up a utility blueprint by exact name.
func (gs *GameState) UtilityBlueprint(name string) (BlueprintUtilityBuilding, bool) {
	for _, bp := range gs.AvailableUtilityBuildings {
		if bp.BuildingName == name {
			return bp, true
		}
	}
	return BlueprintUtilityBuilding{}, false
}

// CurrentPop sums the population of completed residences.
func (gs *GameState) CurrentPop() int {
	n := 0
	for _, r := range gs.CompletedResidences() {
		n += r.CurrentPop
	}
	return n
}

// PopCapacity sums blueprint MaxPop over completed residences. Residences
// whose blueprint is no longer in the catalog contribute nothing.
func (gs *GameState) PopCapacity() int {
	return gs.capacityOf(gs.CompletedResidences())
}

// PendingPopCapacity is the capacity that residences under construction will add.
func (gs *GameState) PendingPopCapacity() int {
	return gs.capacityOf(gs.ResidencesUnderConstruction())
}

func (gs *GameState) capacityOf(residences []BuiltResidenceBuilding) int {
	n := 0
	for _, r := range residences {
		if bp, ok := gs.ResidenceBlueprint(r.BuildingName); ok {
			n += bp.MaxPop
		}
	}
	return n
}

// Grid returns the map as a Grid.
func (gs *GameState) Grid() Grid { return Grid{Cells: gs.Map} }
