package rules

import (
	"slices"
	"testing"

	"github.com/LazyTarget/Considition-2020/model"
)

func cabin() model.BlueprintResidenceBuilding {
	return model.BlueprintResidenceBuilding{
		Blueprint:       model.Blueprint{BuildingName: Cabin, Cost: 500, BaseEnergyNeed: 1.8},
		MaxPop:          4,
		MaintenanceCost: 30,
		Emissivity:      0.5,
	}
}

func apartments() model.BlueprintResidenceBuilding {
	return model.BlueprintResidenceBuilding{
		Blueprint:       model.Blueprint{BuildingName: Apartments, Cost: 2000, BaseEnergyNeed: 4},
		MaxPop:          20,
		MaintenanceCost: 100,
		Emissivity:      0.3,
	}
}

func built(name string, x, y, progress, pop int) model.BuiltResidenceBuilding {
	return model.BuiltResidenceBuilding{
		BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: x, Y: y}, BuildingName: name, BuildProgress: progress},
		CurrentPop:    pop,
		Health:        100,
		Temperature:   21,
	}
}

// emptyMap returns a rows x cols map with every cell buildable.
func emptyMap(rows, cols int) [][]int {
	m := make([][]int, rows)
	for i := range m {
		m[i] = make([]int, cols)
	}
	return m
}

func TestBuildablePositions(t *testing.T) {
	gs := &model.GameState{
		Map: [][]int{
			{0, 0, model.CellRoad},
			{0, model.CellWater, 0},
			{0, 0, 0},
		},
		ResidenceBuildings: []model.BuiltResidenceBuilding{built(Cabin, 0, 1, 100, 0)},
		UtilityBuildings: []model.BuiltUtilityBuilding{
			{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 2, Y: 2}, BuildingName: "Park"}},
		},
	}

	got := slices.Collect(BuildablePositions(gs))
	want := []model.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 0}, {X: 2, Y: 1}}
	if !slices.Equal(got, want) {
		t.Fatalf("BuildablePositions = %v, want %v", got, want)
	}

	seen := make(map[model.Position]bool)
	for _, p := range got {
		if seen[p] {
			t.Errorf("duplicate position %v", p)
		}
		seen[p] = true
		for _, b := range gs.BuiltBuildings() {
			if b.Position == p {
				t.Errorf("position %v is occupied by %s", p, b.BuildingName)
			}
		}
	}
}

func TestBuildablePositions_Restartable(t *testing.T) {
	gs := &model.GameState{Map: emptyMap(2, 2)}
	seq := BuildablePositions(gs)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) || len(first) != 4 {
		t.Fatalf("sequence not restartable: %v then %v", first, second)
	}

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("early break yielded %d positions", n)
	}
}

func TestBuildablePositions_LargeCoordinates(t *testing.T) {
	// (1,11) and (11,1) must stay distinct.
	gs := &model.GameState{
		Map:                emptyMap(12, 12),
		ResidenceBuildings: []model.BuiltResidenceBuilding{built(Cabin, 1, 11, 100, 0)},
	}
	found := false
	for p := range BuildablePositions(gs) {
		if p == (model.Position{X: 1, Y: 11}) {
			t.Fatal("occupied (1,11) reported as buildable")
		}
		if p == (model.Position{X: 11, Y: 1}) {
			found = true
		}
	}
	if !found {
		t.Error("(11,1) missing from buildable positions")
	}
}

func TestFirstBuildablePosition(t *testing.T) {
	gs := &model.GameState{Map: [][]int{{model.CellBlocked, 0}}}
	p, ok := FirstBuildablePosition(gs)
	if !ok || p != (model.Position{X: 0, Y: 1}) {
		t.Errorf("FirstBuildablePosition = %v, %v", p, ok)
	}

	if _, ok := FirstBuildablePosition(&model.GameState{}); ok {
		t.Error("expected no position on an empty map")
	}
}

func TestBuildablePositions_RaggedRows(t *testing.T) {
	gs := &model.GameState{Map: [][]int{{0}, {model.CellPark, 0, 0}, {}}}
	got := slices.Collect(BuildablePositions(gs))
	want := []model.Position{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}}
	if !slices.Equal(got, want) {
		t.Errorf("BuildablePositions = %v, want %v", got, want)
	}
}

func TestAffordableResidenceBlueprints(t *testing.T) {
	cheap := cabin()
	mid := apartments()
	exact := model.BlueprintResidenceBuilding{Blueprint: model.Blueprint{BuildingName: HighRise, Cost: 1000}}
	gs := &model.GameState{
		Funds:                       1000,
		AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{mid, exact, cheap},
	}

	got := AffordableResidenceBlueprints(gs)
	if len(got) != 2 || got[0].BuildingName != HighRise || got[1].BuildingName != Cabin {
		t.Errorf("AffordableResidenceBlueprints = %v, want [HighRise Cabin]", got)
	}
}

func TestPopulationOccupancy(t *testing.T) {
	tests := []struct {
		name string
		gs   *model.GameState
		want float64
	}{
		{
			name: "no residences",
			gs:   &model.GameState{AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{cabin()}},
			want: 0,
		},
		{
			name: "only under construction",
			gs: &model.GameState{
				AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{cabin()},
				ResidenceBuildings:          []model.BuiltResidenceBuilding{built(Cabin, 0, 0, 50, 0)},
			},
			want: 0,
		},
		{
			name: "three of four",
			gs: &model.GameState{
				AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{cabin()},
				ResidenceBuildings:          []model.BuiltResidenceBuilding{built(Cabin, 0, 0, 100, 3)},
			},
			want: 0.75,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PopulationOccupancy(tt.gs); got != tt.want {
				t.Errorf("PopulationOccupancy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleEnvHelpers(t *testing.T) {
	gs := &model.GameState{
		Turn:                        10,
		MaxTurns:                    700,
		Funds:                       800,
		Map:                         [][]int{{0, model.CellRoad}, {0}},
		AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{cabin(), apartments()},
		AvailableUtilityBuildings: []model.BlueprintUtilityBuilding{
			{Blueprint: model.Blueprint{BuildingName: "Park", Cost: 900}},
		},
		ResidenceBuildings: []model.BuiltResidenceBuilding{
			built(Cabin, 0, 0, 100, 2),
			built(Cabin, 0, 1, 30, 0),
		},
	}
	env := RuleEnv{State: gs}

	if got := env.TurnsLeft(); got != 690 {
		t.Errorf("TurnsLeft = %d, want 690", got)
	}
	if got := env.ResidenceCount(); got != 2 {
		t.Errorf("ResidenceCount = %d, want 2", got)
	}
	if got := env.CompletedResidenceCount(); got != 1 {
		t.Errorf("CompletedResidenceCount = %d, want 1", got)
	}
	if got := env.UnderConstructionCount(); got != 1 {
		t.Errorf("UnderConstructionCount = %d, want 1", got)
	}
	if !env.HasBuilding("cabin") || env.HasBuilding(Apartments) {
		t.Error("HasBuilding mismatch")
	}
	if !env.HasAnyBuilding(Apartments, Cabin) || env.HasAnyBuilding(HighRise) {
		t.Error("HasAnyBuilding mismatch")
	}
	if got := env.BuildingCount(Cabin); got != 2 {
		t.Errorf("BuildingCount = %d, want 2", got)
	}
	if !env.Offers("Park") || env.Offers("Mall") {
		t.Error("Offers mismatch")
	}
	if !env.CanAfford(Cabin) || env.CanAfford(Apartments) || env.CanAfford("Park") || env.CanAfford("Mall") {
		t.Error("CanAfford mismatch")
	}

	if got := env.EmptyCells(); got != 2 {
		t.Errorf("EmptyCells = %d, want 2", got)
	}
	if got := env.BuildableCount(); got != 1 {
		t.Errorf("BuildableCount = %d, want 1", got)
	}

	gs.Turn = 800
	if got := env.TurnsLeft(); got != 0 {
		t.Errorf("TurnsLeft past the end = %d, want 0", got)
	}
}
