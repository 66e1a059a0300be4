// Package selection chooses which eligible unit acts next in the current
// phase.
package selection

import (
	"log/slog"
	"math"

	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/rules"
)

// Selector runs the tier cascade, one ordering from the ordering table and
// the concealment override.
type Selector struct {
	tiers  *rules.Engine
	combat combat.Service
	log    *slog.Logger
}

func New(tiers *rules.Engine, svc combat.Service, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{tiers: tiers, combat: svc, log: log}
}

// Eligible returns the side's units that may still act in the current phase.
func Eligible(w *model.World, side string) []*model.Unit {
	var out []*model.Unit
	for _, u := range w.Friendly(side) {
		if available(w, u) {
			out = append(out, u)
		}
	}
	return out
}

func available(w *model.World, u *model.Unit) bool {
	return !u.Dead && !u.HasActivated && u.Phase == w.Phase
}

// SelectNext picks the next unit to act, or nil when nobody can.
func (s *Selector) SelectNext(w *model.World, side *model.Side, eligible []*model.Unit) *model.Unit {
	var candidates []*model.Unit
	for _, u := range eligible {
		if available(w, u) {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	tier, pool := s.tiers.Partition(candidates, func(u *model.Unit) rules.UnitEnv {
		return rules.NewUnitEnv(w, side, u)
	})
	if len(pool) == 0 {
		return nil
	}

	applied := orderPool(w, side.ID, s.combat, pool)

	if u := concealmentPick(w, side.ID, pool); u != nil {
		s.log.Debug("unit selected", "unit", u.ID, "tier", tier, "ordering", applied, "reason", "counter probe")
		return u
	}
	s.log.Debug("unit selected", "unit", pool[0].ID, "tier", tier, "ordering", applied, "pool", len(pool))
	return pool[0]
}

// concealmentPick applies only when every living friendly is concealed. It
// returns the candidate that needs the least extra movement, within its
// allowance, to bring a detected probe-carrying hostile into weapon range.
func concealmentPick(w *model.World, side string, pool []*model.Unit) *model.Unit {
	friends := model.Living(w.Friendly(side))
	if len(friends) == 0 {
		return nil
	}
	for _, f := range friends {
		if !f.Concealed {
			return nil
		}
	}

	var emitters []*model.Unit
	for _, h := range model.Living(w.Hostile(side)) {
		if h.CarriesProbe && h.Detected {
			emitters = append(emitters, h)
		}
	}
	if len(emitters) == 0 {
		return nil
	}

	var pick *model.Unit
	least := math.Inf(1)
	for _, u := range pool {
		for _, e := range emitters {
			need := math.Max(0, u.Pos.Dist(e.Pos)-u.Weapon.Range)
			if need <= u.MaxMove && need < least {
				pick, least = u, need
			}
		}
	}
	return pick
}
