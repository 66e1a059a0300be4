package reserve

import (
	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
)

// situation is everything the gates read, gathered once per decision.
type situation struct {
	w        *model.World
	cand     *model.Unit
	vars     *behavior.Store
	combat   combat.Service
	friends  []*model.Unit // living
	pending  []*model.Unit // living, not activated
	eligible []*model.Unit // pending and in the current phase
	hostiles []*model.Unit // living
}

func newSituation(w *model.World, side string, cand *model.Unit, vars *behavior.Store, svc combat.Service) *situation {
	s := &situation{
		w:        w,
		cand:     cand,
		vars:     vars,
		combat:   svc,
		friends:  model.Living(w.Friendly(side)),
		hostiles: model.Living(w.Hostile(side)),
	}
	s.pending = model.Unactivated(s.friends)
	for _, u := range s.pending {
		if u.Phase == w.Phase {
			s.eligible = append(s.eligible, u)
		}
	}
	return s
}

// gate must pass for the side to consider reserving. Gates run in order and
// the first failure ends the decision.
type gate struct {
	name string
	pass func(s *situation) bool
}

var gates = []gate{
	{"reserve disabled", func(s *situation) bool {
		return s.vars.Bool(s.cand.ID, behavior.EnableReserve)
	}},
	{"unit cannot defer", func(s *situation) bool {
		for _, u := range s.eligible {
			if !u.CanDefer {
				return false
			}
		}
		return true
	}},
	{"too few units left", func(s *situation) bool {
		return len(s.pending) >= 2 && len(s.hostiles) >= 1
	}},
	{"called shot exposure", func(s *situation) bool {
		for _, u := range s.friends {
			if u.VulnerableToCalledShot {
				return false
			}
		}
		for _, u := range s.hostiles {
			if u.VulnerableToCalledShot {
				return false
			}
		}
		return true
	}},
	{"sensor locked", func(s *situation) bool {
		for _, u := range s.pending {
			if u.SensorLocked {
				return false
			}
		}
		return true
	}},
	{"not a primary unit", func(s *situation) bool {
		return s.cand.HeavyCombat || s.vars.Bool(s.cand.ID, behavior.AllowNonPrimaryReserve)
	}},
	{"flank threat", func(s *situation) bool {
		for _, h := range s.hostiles {
			for _, f := range s.pending {
				if s.combat.Outflanks(h, f) {
					return false
				}
			}
		}
		return true
	}},
	// Only hostiles that can still act this phase count toward the incoming
	// damage.
	{"lethal exposure", func(s *situation) bool {
		factor := s.vars.Float(s.cand.ID, behavior.OverkillFactor)
		for _, f := range s.friends {
			incoming := 0.0
			for _, h := range s.hostiles {
				if h.Detected && !h.HasActivated && h.Phase <= s.w.Phase {
					incoming += s.combat.ExpectedDamage(h.Weapon, h.Pos, f)
				}
			}
			if incoming > f.HP*factor {
				return false
			}
		}
		return true
	}},
}

// failedGate returns the name of the first gate that does not pass, or "".
func failedGate(s *situation) string {
	for _, g := range gates {
		if !g.pass(s) {
			return g.name
		}
	}
	return ""
}
