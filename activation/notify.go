package activation

import "github.com/nstehr/vimy/tactics-core/ipc"

// OnReadyToMove clears the movement wait once the committed unit has
// finished moving.
func (c *Controller) OnReadyToMove(actorID int) {
	if !c.committed || actorID != c.current || !c.waiting {
		return
	}
	c.log.Debug("movement complete", "unit", actorID, "waited", c.waited)
	c.waiting, c.waited = false, 0
}

// OnActorDestroyed forgets ECM cover and behaviour overrides for a
// destroyed unit and stops waiting on it if it was committed.
func (c *Controller) OnActorDestroyed(actorID int) {
	delete(c.side.ECMProtected, actorID)
	c.deps.Planner.Forget(actorID)
	if c.committed && actorID == c.current {
		c.waiting, c.waited = false, 0
	}
}

// OnActorAttacked records hostile attackers firing from ECM cover.
func (c *Controller) OnActorAttacked(ev ipc.ActorAttackedMessage) {
	if !ev.ECMProtected {
		return
	}
	if c.world != nil {
		if a := c.world.Unit(ev.AttackerID); a != nil && a.Side == c.side.ID {
			return
		}
	}
	if !c.side.EnemyMayHaveECM {
		c.log.Info("enemy may have ECM", "attacker", ev.AttackerID)
	}
	c.side.EnemyMayHaveECM = true
	c.side.ECMProtected[ev.AttackerID] = true
}
