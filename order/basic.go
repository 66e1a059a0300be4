package order

import (
	"context"
	"fmt"
	"math"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
)

// Basic is a small built-in back-end used when the simulation does not
// provide its own decision trees. It stands up, starts up, closes on the
// formation's designated target, fires when it can and otherwise braces.
type Basic struct {
	Combat combat.Service
}

func NewBasic(svc combat.Service) *Basic {
	return &Basic{Combat: svc}
}

func (b *Basic) Reset(int) {}

func (b *Basic) Evaluate(_ context.Context, c Context) (Result, error) {
	if c.World == nil || c.Unit == nil {
		return Result{State: Failure}, fmt.Errorf("basic evaluator: missing world or unit")
	}
	u := c.Unit

	switch {
	case u.Shutdown:
		return done(&Order{Kind: StartUp}, "start up"), nil
	case u.Prone && !u.HasMoved:
		return done(&Order{Kind: Stand}, "stand"), nil
	}

	target := b.pickTarget(c)
	if target == nil {
		return done(&Order{Kind: Brace}, "no target"), nil
	}

	if !u.HasFired && b.Combat.ExpectedDamage(u.Weapon, u.Pos, target) > 0 {
		if !u.HasMoved && u.Pos.Dist(target.Pos) > u.Weapon.Range/2 && u.Weapon.Range > 0 {
			// Close to optimal range before shooting.
			return done(b.approach(c, target), "close in"), nil
		}
		return done(&Order{Kind: Attack, TargetIDs: []int{target.ID}}, "fire"), nil
	}

	if !u.HasMoved {
		return done(b.approach(c, target), "approach"), nil
	}
	return done(&Order{Kind: Brace}, "nothing to do"), nil
}

func done(o *Order, debug string) Result {
	return Result{State: Success, Order: o, Debug: debug}
}

// pickTarget prefers the formation's designated target, then the nearest
// living detected hostile.
func (b *Basic) pickTarget(c Context) *model.Unit {
	if c.Side != nil {
		if id, ok := c.Side.DesignatedTarget(c.Unit.FormationID); ok {
			if t := c.World.Unit(id); t != nil && !t.Dead {
				return t
			}
		}
	}
	var best *model.Unit
	bestDist := math.Inf(1)
	for _, h := range model.Living(c.World.Hostile(c.Unit.Side)) {
		if !h.Detected {
			continue
		}
		if d := c.Unit.Pos.Dist(h.Pos); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// approach moves toward target. A cautious unit (caution counter at or over
// the threshold) only walks half its allowance and never sprints.
func (b *Basic) approach(c Context, target *model.Unit) *Order {
	u := c.Unit
	kind := Move
	budget := u.MaxMove
	cautious := false
	if c.Vars != nil {
		cautious = c.Vars.Int(u.ID, behavior.CautionHysteresis) >= c.Vars.Int(u.ID, behavior.CautionThreshold)
	}
	if cautious {
		budget /= 2
	} else if u.CanSprint && u.MaxSprint > u.MaxMove && u.Pos.Dist(target.Pos) > u.MaxMove+u.Weapon.Range {
		kind = SprintMove
		budget = u.MaxSprint
	}

	// Stop at half weapon range rather than on top of the target.
	gap := u.Pos.Dist(target.Pos) - u.Weapon.Range/2
	step := math.Max(0, math.Min(budget, gap))
	dir := target.Pos.Sub(u.Pos).Norm()
	return &Order{Kind: kind, Dest: u.Pos.Add(dir.Scale(step))}
}
