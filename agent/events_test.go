package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LazyTarget/Considition-2020/model"
)

// baseGameState returns a small game with one finished and one unfinished residence.
func baseGameState(turn int) *model.GameState {
	return &model.GameState{
		GameID:   "g1",
		Turn:     turn,
		MaxTurns: 10,
		Funds:    3000,
		Map:      [][]int{{0, 0, 0}, {0, 0, 0}},
		AvailableResidenceBuildings: []model.BlueprintResidenceBuilding{
			{Blueprint: model.Blueprint{BuildingName: "Cabin", Cost: 500}, MaxPop: 4},
			{Blueprint: model.Blueprint{BuildingName: "Apartments", Cost: 2000}, MaxPop: 20},
		},
		ResidenceBuildings: []model.BuiltResidenceBuilding{
			{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 0, Y: 0}, BuildingName: "Cabin", BuildProgress: 100}, CurrentPop: 3},
			{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 0, Y: 1}, BuildingName: "Apartments", BuildProgress: 60}},
		},
	}
}

func kinds(events []Event) map[EventKind]int {
	m := make(map[EventKind]int)
	for _, e := range events {
		m[e.Kind]++
	}
	return m
}

func details(events []Event) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.String())
	}
	return out
}

func TestDetectEvents_NoEvents(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Turn = 4
	assert.Empty(t, detectEvents(gs, &prev))
}

func TestDetectEvents_NilPrev(t *testing.T) {
	assert.Nil(t, detectEvents(baseGameState(0), nil))
}

func TestDetectEvents_BuildingStartedAndCompleted(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Turn = 4
	gs.ResidenceBuildings[1].BuildProgress = 100
	gs.ResidenceBuildings = append(gs.ResidenceBuildings, model.BuiltResidenceBuilding{
		BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 1, Y: 0}, BuildingName: "Cabin"},
	})

	assert.Equal(t, map[EventKind]int{EventBuildingStarted: 1, EventBuildingCompleted: 1}, kinds(detectEvents(gs, &prev)))
}

func TestDetectEvents_FollowStateOrder(t *testing.T) {
	gs := baseGameState(3)
	gs.UtilityBuildings = []model.BuiltUtilityBuilding{
		{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 1, Y: 2}, BuildingName: "Park", BuildProgress: 100}},
	}
	prev := takeSnapshot(gs)

	gs.Turn = 4
	gs.ResidenceBuildings[1].BuildProgress = 100
	gs.ResidenceBuildings = append(gs.ResidenceBuildings,
		model.BuiltResidenceBuilding{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 1, Y: 1}, BuildingName: "Cabin"}},
		model.BuiltResidenceBuilding{BuiltBuilding: model.BuiltBuilding{Position: model.Position{X: 1, Y: 0}, BuildingName: "HighRise"}},
	)
	gs.UtilityBuildings = nil

	want := []string{
		"turn 4 building_completed: Apartments at (0,1)",
		"turn 4 building_started: Cabin at (1,1)",
		"turn 4 building_started: HighRise at (1,0)",
		"turn 4 building_lost: Park at (1,2)",
	}
	for range 20 {
		require.Equal(t, want, details(detectEvents(gs, &prev)))
	}
}

func TestDetectEvents_BuildingLost(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Turn = 4
	gs.ResidenceBuildings = gs.ResidenceBuildings[:1]

	events := detectEvents(gs, &prev)
	require.Len(t, events, 1)
	assert.Equal(t, EventBuildingLost, events[0].Kind)
	assert.Equal(t, "Apartments at (0,1)", events[0].Detail)
}

func TestDetectEvents_UpgradeApplied(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Turn = 4
	gs.ResidenceBuildings[0].Effects = []string{"SolarPanel"}

	assert.Equal(t, map[EventKind]int{EventUpgradeApplied: 1}, kinds(detectEvents(gs, &prev)))
}

func TestDetectEvents_ActionRejected(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Errors = []string{"Not enough funds", "Invalid position"}
	events := detectEvents(gs, &prev)
	require.Len(t, events, 1)
	assert.Equal(t, EventActionRejected, events[0].Kind)
	assert.Equal(t, "Not enough funds; Invalid position", events[0].Detail)
}

func TestDetectEvents_FundsExhausted(t *testing.T) {
	gs := baseGameState(3)
	prev := takeSnapshot(gs)

	gs.Turn = 4
	gs.Funds = 100
	assert.Equal(t, 1, kinds(detectEvents(gs, &prev))[EventFundsExhausted])

	// Still broke next turn: not reported again.
	prev = takeSnapshot(gs)
	gs.Turn = 5
	assert.Empty(t, detectEvents(gs, &prev))
}

func TestEventString(t *testing.T) {
	e := Event{Kind: EventBuildingStarted, Turn: 7, Detail: "Cabin at (1,2)"}
	assert.Equal(t, "turn 7 building_started: Cabin at (1,2)", e.String())
}
