// Package reserve decides whether the side defers its activation to a later
// phase of the round.
package reserve

import (
	"log/slog"
	"math"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
)

// Decision is the outcome for one (round, phase).
type Decision struct {
	Defer       bool
	TargetPhase int // model.InvalidPhase when not deferring
	Reason      string
}

// Memoised is the Reason of a decision served from the phase memo.
const Memoised = "memoised"

func hold(reason string) Decision {
	return Decision{TargetPhase: model.InvalidPhase, Reason: reason}
}

type Engine struct {
	vars   *behavior.Store
	combat combat.Service
	roll   Roller
	log    *slog.Logger
}

func New(vars *behavior.Store, svc combat.Service, roll Roller, log *slog.Logger) *Engine {
	if vars == nil {
		vars = behavior.NewStore()
	}
	if roll == nil {
		roll = NewRoller(1)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{vars: vars, combat: svc, roll: roll, log: log}
}

// ShouldReserve returns the side's reserve decision for the current phase.
// The result is memoised on side and recomputed within the phase only when
// the hostile-deferred flag changes.
func (e *Engine) ShouldReserve(w *model.World, side *model.Side, cand *model.Unit) Decision {
	if side.Reserve.Matches(w.Round, w.Phase, w.HostileDeferred) {
		e.remember(w, cand.ID, side.Reserve.TargetPhase)
		return Decision{
			Defer:       side.Reserve.TargetPhase > w.Phase,
			TargetPhase: side.Reserve.TargetPhase,
			Reason:      Memoised,
		}
	}

	d := e.decide(w, side.ID, cand)

	side.Reserve = model.ReserveMemo{
		Valid:           true,
		Round:           w.Round,
		Phase:           w.Phase,
		TargetPhase:     d.TargetPhase,
		HostileDeferred: w.HostileDeferred,
	}
	side.ReserveActive = d.Defer
	e.remember(w, cand.ID, d.TargetPhase)

	e.log.Info("reserve decision",
		"unit", cand.ID,
		"round", w.Round,
		"phase", w.Phase,
		"defer", d.Defer,
		"target_phase", d.TargetPhase,
		"reason", d.Reason,
	)
	return d
}

func (e *Engine) decide(w *model.World, side string, cand *model.Unit) Decision {
	if w.Phase >= w.LastPhase {
		return hold("last phase")
	}
	s := newSituation(w, side, cand, e.vars, e.combat)
	if failed := failedGate(s); failed != "" {
		return hold(failed)
	}

	if target, ok := e.ghostTarget(s); ok {
		return Decision{Defer: true, TargetPhase: clampTarget(w, target), Reason: "hostiles ghosted"}
	}

	chance := e.chance(s)
	draw := e.roll.Roll()
	if draw <= chance || w.HostileDeferred {
		return Decision{Defer: true, TargetPhase: clampTarget(w, w.Phase+1), Reason: "roll"}
	}
	e.log.Debug("reserve roll failed", "unit", cand.ID, "draw", draw, "chance", chance)
	return hold("roll")
}

// ghostTarget reports a counter-deferral when no hostile can be seen clearly
// and the side has no way to lock on this phase.
func (e *Engine) ghostTarget(s *situation) (int, bool) {
	for _, h := range s.hostiles {
		if !h.Hidden() {
			return 0, false
		}
	}
	for _, f := range s.pending {
		if f.CanSensorLock {
			return 0, false
		}
	}
	if !s.w.HostileDeferred && s.w.HostileActed {
		return 0, false
	}

	sum, n := 0.0, 0
	for _, h := range model.Unactivated(s.hostiles) {
		if h.HeavyCombat {
			sum += float64(h.Phase)
			n++
		}
	}
	target := s.w.Phase + 1
	if n > 0 {
		target = int(math.Round(sum / float64(n)))
	}
	return target + s.vars.Int(s.cand.ID, behavior.ReserveGhostPhaseOffset), true
}

// chance is the reserve percentage: a base plus the share of hostiles still
// to act, scaled by y/x.
func (e *Engine) chance(s *situation) float64 {
	base := e.vars.Float(s.cand.ID, behavior.ReserveBasePercentage)
	x := e.vars.Float(s.cand.ID, behavior.ReserveScaleX)
	if x == 0 || len(s.hostiles) == 0 {
		return base
	}
	y := e.vars.Float(s.cand.ID, behavior.ReserveScaleY)
	remaining := float64(len(model.Unactivated(s.hostiles))) / float64(len(s.hostiles)) * 100
	return base + remaining*y/x
}

// remember writes the phase's decision into the unit's scope for IsReserving.
func (e *Engine) remember(w *model.World, unitID, target int) {
	e.vars.Set(unitID, behavior.ReserveRound, w.Round)
	e.vars.Set(unitID, behavior.ReservePhase, target)
}

func clampTarget(w *model.World, p int) int {
	return w.ClampPhase(max(p, w.Phase+1))
}

// IsReserving reports whether the unit's memoised decision for the current
// round targets a later phase.
func IsReserving(vars *behavior.Store, w *model.World, unitID int) bool {
	if _, ok := vars.Lookup(unitID, behavior.ReserveRound); !ok {
		return false
	}
	return vars.Int(unitID, behavior.ReserveRound) == w.Round &&
		vars.Int(unitID, behavior.ReservePhase) > w.Phase
}
