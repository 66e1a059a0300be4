package model

import "math"

// InvalidPhase sits below every legal phase. A reserve decision that does not
// defer records this as its target.
const InvalidPhase = -1

// World is the simulation snapshot the engine sends every tick. The core only
// borrows it for one call; cross references are ids, never pointers.
type World struct {
	Round      int     `json:"round"`
	Phase      int     `json:"phase"`
	FirstPhase int     `json:"firstPhase"`
	LastPhase  int     `json:"lastPhase"`
	Time       float64 `json:"time"`      // simulated seconds
	DeltaTime  float64 `json:"deltaTime"` // simulated seconds since the previous tick

	// Interleaved is true when both sides may act within the same phase.
	Interleaved bool `json:"interleaved"`

	// HostileDeferred reports that the opposing side deferred during the
	// current activation; HostileActed that any hostile has acted this round.
	HostileDeferred bool `json:"hostileDeferred"`
	HostileActed    bool `json:"hostileActed"`

	Units      []Unit      `json:"units"`
	Formations []Formation `json:"formations"`

	index map[int]int
}

// Unit returns the unit with the given id, or nil.
func (w *World) Unit(id int) *Unit {
	if w.index == nil || len(w.index) != len(w.Units) {
		w.index = make(map[int]int, len(w.Units))
		for i := range w.Units {
			w.index[w.Units[i].ID] = i
		}
	}
	i, ok := w.index[id]
	if !ok || i >= len(w.Units) || w.Units[i].ID != id {
		return nil
	}
	return &w.Units[i]
}

// Friendly returns every unit that belongs to side, dead or alive.
func (w *World) Friendly(side string) []*Unit {
	var out []*Unit
	for i := range w.Units {
		if w.Units[i].Side == side {
			out = append(out, &w.Units[i])
		}
	}
	return out
}

// Hostile returns every unit not on side, dead or alive.
func (w *World) Hostile(side string) []*Unit {
	var out []*Unit
	for i := range w.Units {
		if w.Units[i].Side != side {
			out = append(out, &w.Units[i])
		}
	}
	return out
}

// FormationsOf returns the formations owned by side in world order.
func (w *World) FormationsOf(side string) []Formation {
	var out []Formation
	for _, f := range w.Formations {
		if f.Side == side {
			out = append(out, f)
		}
	}
	return out
}

// ClampPhase bounds p to the legal phases of the round.
func (w *World) ClampPhase(p int) int {
	if p > w.LastPhase {
		return w.LastPhase
	}
	if p < w.FirstPhase {
		return w.FirstPhase
	}
	return p
}

// Living filters out dead units.
func Living(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		if !u.Dead {
			out = append(out, u)
		}
	}
	return out
}

// Unactivated filters living units that have not activated this round.
func Unactivated(units []*Unit) []*Unit {
	var out []*Unit
	for _, u := range units {
		if !u.Dead && !u.HasActivated {
			out = append(out, u)
		}
	}
	return out
}

// NearestDistance returns the distance from pos to the closest unit, or +Inf
// when units is empty.
func NearestDistance(pos Vec3, units []*Unit) float64 {
	best := math.Inf(1)
	for _, u := range units {
		if d := pos.Dist(u.Pos); d < best {
			best = d
		}
	}
	return best
}

// Formation groups units of one side for focus fire.
type Formation struct {
	ID      int    `json:"id"`
	Side    string `json:"side"`
	Name    string `json:"name"`
	UnitIDs []int  `json:"unitIds"`
}
