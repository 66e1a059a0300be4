package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nstehr/vimy/tactics-core/model"
)

// EventKind identifies a change between two consecutive world snapshots.
type EventKind string

const (
	EventRoundStarted     EventKind = "round_started"
	EventUnitLost         EventKind = "unit_lost"
	EventHostileDestroyed EventKind = "hostile_destroyed"
	EventHostileDetected  EventKind = "hostile_detected"
)

// Event is a significant change detected by diffing snapshots. Destruction
// events are fed to the controller in case the engine's own notification
// was lost.
type Event struct {
	Kind   EventKind
	Round  int
	UnitID int
	Detail string
}

// stateSnapshot captures the diffable fields of one world snapshot.
type stateSnapshot struct {
	round    int
	alive    map[int]bool // unit id → living
	detected map[int]bool // hostile id → detected
	names    map[int]string
}

func takeSnapshot(w *model.World, side string) stateSnapshot {
	snap := stateSnapshot{
		round:    w.Round,
		alive:    make(map[int]bool, len(w.Units)),
		detected: make(map[int]bool),
		names:    make(map[int]string, len(w.Units)),
	}
	for _, u := range w.Units {
		snap.alive[u.ID] = !u.Dead
		snap.names[u.ID] = u.Name
		if u.Side != side {
			snap.detected[u.ID] = u.Detected && !u.Dead
		}
	}
	return snap
}

// detectEvents compares the current world against the previous snapshot and
// returns any triggered events in unit id order. Returns nil if prev is nil
// (first snapshot of the session).
func detectEvents(w *model.World, side string, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	cur := takeSnapshot(w, side)

	var events []Event
	if cur.round != prev.round {
		events = append(events, Event{
			Kind:   EventRoundStarted,
			Round:  cur.round,
			Detail: fmt.Sprintf("round %d → %d", prev.round, cur.round),
		})
	}

	ids := make([]int, 0, len(cur.alive))
	for id := range cur.alive {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		u := w.Unit(id)
		if prev.alive[id] && !cur.alive[id] {
			kind := EventHostileDestroyed
			if u.Side == side {
				kind = EventUnitLost
			}
			events = append(events, Event{Kind: kind, Round: cur.round, UnitID: id, Detail: describe(id, cur.names[id])})
		}
		if u.Side != side && cur.detected[id] && !prev.detected[id] {
			events = append(events, Event{Kind: EventHostileDetected, Round: cur.round, UnitID: id, Detail: describe(id, cur.names[id])})
		}
	}
	return events
}

func describe(id int, name string) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s (#%d)", name, id)
}

// formatEvents renders events as a single log-friendly line.
func formatEvents(events []Event) string {
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = fmt.Sprintf("%s %s", e.Kind, e.Detail)
	}
	return strings.Join(parts, "; ")
}
