// Package targeting picks one focus-fire target per formation at the start
// of each round.
package targeting

import (
	"log/slog"
	"math"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
)

// Selector computes designated targets from an anchor member's viewpoint.
type Selector struct {
	combat    combat.Service
	vars      *behavior.Store
	reference model.WeaponProfile
	log       *slog.Logger
}

// New builds a Selector that scores hostiles with the reference weapon profile.
func New(svc combat.Service, vars *behavior.Store, reference model.WeaponProfile, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{combat: svc, vars: vars, reference: reference, log: log}
}

// Choose returns formation id → designated hostile id for every formation of
// side. Formations without an anchor or without a visible hostile are absent.
func (s *Selector) Choose(w *model.World, side string) map[int]int {
	hostiles := model.Living(w.Hostile(side))
	takeaway := s.vars != nil && s.vars.Bool(behavior.Global, behavior.TargetFirepowerTakeaway)

	out := make(map[int]int)
	for _, f := range w.FormationsOf(side) {
		anchor := Anchor(w, f, hostiles)
		if anchor == nil {
			s.log.Debug("no anchor for formation", "formation", f.ID)
			continue
		}
		target := s.best(anchor, hostiles, takeaway)
		if target == nil {
			continue
		}
		out[f.ID] = target.ID
		s.log.Debug("designated target chosen", "formation", f.ID, "anchor", anchor.ID, "target", target.ID)
	}
	return out
}

// Anchor is the living member with the least summed distance to all living
// hostiles. Nil when the formation has no living members or there are no
// hostiles.
func Anchor(w *model.World, f model.Formation, hostiles []*model.Unit) *model.Unit {
	if len(hostiles) == 0 {
		return nil
	}
	var anchor *model.Unit
	best := math.Inf(1)
	for _, id := range f.UnitIDs {
		u := w.Unit(id)
		if u == nil || u.Dead {
			continue
		}
		sum := 0.0
		for _, h := range hostiles {
			sum += u.Pos.Dist(h.Pos)
		}
		if sum < best {
			anchor, best = u, sum
		}
	}
	return anchor
}

type score struct {
	takeaway float64
	damage   float64
}

func (a score) beats(b score, byTakeaway bool) bool {
	if byTakeaway && a.takeaway != b.takeaway {
		return a.takeaway > b.takeaway
	}
	return a.damage > b.damage
}

// best scans hostiles in order; only a strictly better score replaces the
// current pick so ties stay with the first hostile seen.
func (s *Selector) best(anchor *model.Unit, hostiles []*model.Unit, byTakeaway bool) *model.Unit {
	var pick *model.Unit
	var top score
	for _, h := range hostiles {
		if !s.combat.LineOfFire(anchor.Pos, h) {
			continue
		}
		sc := score{damage: s.combat.ExpectedDamage(s.reference, anchor.Pos, h)}
		if byTakeaway {
			sc.takeaway = s.combat.FirepowerTakeaway(s.reference, anchor.Pos, h)
		}
		if pick == nil || sc.beats(top, byTakeaway) {
			pick, top = h, sc
		}
	}
	return pick
}
