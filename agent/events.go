package agent

import (
	"fmt"
	"strings"

	"github.com/LazyTarget/Considition-2020/model"
)

// EventKind identifies a notable change between two consecutive turns.
type EventKind string

const (
	EventBuildingStarted   EventKind = "building_started"
	EventBuildingCompleted EventKind = "building_completed"
	EventBuildingLost      EventKind = "building_lost"
	EventUpgradeApplied    EventKind = "upgrade_applied"
	EventActionRejected    EventKind = "action_rejected"
	EventFundsExhausted    EventKind = "funds_exhausted"
)

// Event is a change detected by diffing consecutive turns. Events are only
// logged; strategies never see them.
type Event struct {
	Kind   EventKind
	Turn   int
	Detail string
}

func (e Event) String() string {
	return fmt.Sprintf("turn %d %s: %s", e.Turn, e.Kind, e.Detail)
}

// stateSnapshot captures the diffable fields of one turn. It copies what it
// needs so no game state outlives its turn.
type stateSnapshot struct {
	turn      int
	order     []model.Position // state order, for stable event order
	buildings map[model.Position]builtSummary
	canBuild  bool // at least one residence was affordable
}

type builtSummary struct {
	name      string
	completed bool
	effects   int
}

func takeSnapshot(gs *model.GameState) stateSnapshot {
	snap := stateSnapshot{
		turn:      gs.Turn,
		buildings: make(map[model.Position]builtSummary),
	}
	for _, b := range gs.BuiltBuildings() {
		if _, dup := snap.buildings[b.Position]; !dup {
			snap.order = append(snap.order, b.Position)
		}
		snap.buildings[b.Position] = builtSummary{
			name:      b.BuildingName,
			completed: b.Completed(),
			effects:   len(b.Effects),
		}
	}
	for _, bp := range gs.AvailableResidenceBuildings {
		if bp.Cost <= gs.Funds {
			snap.canBuild = true
			break
		}
	}
	return snap
}

// detectEvents compares gs against the previous turn's snapshot. Returns nil
// if prev is nil (first turn). Events follow the order buildings appear in
// the state, so a replayed game logs them identically.
func detectEvents(gs *model.GameState, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeSnapshot(gs)
	add := func(kind EventKind, format string, args ...any) {
		events = append(events, Event{Kind: kind, Turn: gs.Turn, Detail: fmt.Sprintf(format, args...)})
	}

	for _, pos := range cur.order {
		b := cur.buildings[pos]
		old, existed := prev.buildings[pos]
		switch {
		case !existed:
			add(EventBuildingStarted, "%s at (%d,%d)", b.name, pos.X, pos.Y)
		case !old.completed && b.completed:
			add(EventBuildingCompleted, "%s at (%d,%d)", b.name, pos.X, pos.Y)
		}
		if existed && b.effects > old.effects {
			add(EventUpgradeApplied, "%s at (%d,%d) has %d upgrades", b.name, pos.X, pos.Y, b.effects)
		}
	}
	for _, pos := range prev.order {
		b := prev.buildings[pos]
		if _, ok := cur.buildings[pos]; !ok {
			add(EventBuildingLost, "%s at (%d,%d)", b.name, pos.X, pos.Y)
		}
	}

	if len(gs.Errors) > 0 {
		add(EventActionRejected, "%s", strings.Join(gs.Errors, "; "))
	}
	if prev.canBuild && !cur.canBuild {
		add(EventFundsExhausted, "funds %.0f below every residence cost", gs.Funds)
	}

	return events
}
