package translate

import (
	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/order"
)

var moveCommands = map[order.Kind]string{
	order.Move:       ipc.CmdMove,
	order.SprintMove: ipc.CmdSprintMove,
	order.JumpMove:   ipc.CmdJumpMove,
}

var attackCommands = map[order.Kind]string{
	order.Attack:            ipc.CmdAttack,
	order.MultiTargetAttack: ipc.CmdMultiAttack,
	order.CalledShotAttack:  ipc.CmdCalledShotAttack,
}

var directCommands = map[order.Kind]string{
	order.Stand:            ipc.CmdStand,
	order.StartUp:          ipc.CmdStartUp,
	order.ActiveAbility:    ipc.CmdActiveAbility,
	order.ActiveProbe:      ipc.CmdActiveProbe,
	order.ClaimInspiration: ipc.CmdClaimInspiration,
}

// Translate validates o against the unit's state and maps it to exactly one
// command. Violations and unknown kinds become reserve_done.
func (t *Translator) Translate(side *model.Side, u *model.Unit, o order.Order) ipc.ActionCommand {
	switch {
	case o.Kind.IsMove():
		if u.HasMoved {
			t.log.Error("move order for unit that already moved", "unit", u.ID, "order", o.Kind.String())
			return ipc.Done(u.ID, "already moved")
		}
		dest := o.Dest
		return ipc.ActionCommand{Type: moveCommands[o.Kind], ActorID: u.ID, Dest: &dest}

	case o.Kind.IsAttack():
		return t.attack(u, o)
	}

	switch o.Kind {
	case order.Brace:
		if !u.HasMoved {
			t.vars.Set(u.ID, behavior.CautionHysteresis, t.vars.Int(u.ID, behavior.CautionHysteresis)+1)
		}
		return ipc.Done(u.ID, "brace")
	case order.VentCoolant:
		// No engine command exists for venting yet; the unit passes.
		return ipc.Done(u.ID, "vent coolant")
	}

	typ, ok := directCommands[o.Kind]
	if !ok {
		t.log.Error("unknown order type", "unit", u.ID, "order", o.Kind.String())
		return ipc.Done(u.ID, "unknown order type")
	}
	if o.Kind == order.ClaimInspiration && side != nil {
		side.InspirationUsed = true
	}
	return ipc.ActionCommand{
		Type:      typ,
		ActorID:   u.ID,
		AbilityID: o.AbilityID,
		TargetIDs: o.TargetIDs,
	}
}

func (t *Translator) attack(u *model.Unit, o order.Order) ipc.ActionCommand {
	var problem string
	switch {
	case u.HasFired:
		problem = "already fired"
	case !u.Operational():
		problem = "not operational"
	case o.Style == order.Ranged && u.Prone:
		// Melee and death-from-above include their own movement.
		problem = "prone"
	case len(o.TargetIDs) == 0:
		problem = "no target"
	}
	if problem != "" {
		t.log.Error("attack order rejected", "unit", u.ID, "order", o.Kind.String(), "reason", problem)
		return ipc.Done(u.ID, problem)
	}

	typ := attackCommands[o.Kind]
	switch o.Style {
	case order.Melee:
		typ = ipc.CmdMeleeAttack
	case order.DeathFromAbove:
		typ = ipc.CmdDFAAttack
	}
	cmd := ipc.ActionCommand{
		Type:      typ,
		ActorID:   u.ID,
		TargetIDs: o.TargetIDs,
		Weapons:   o.Weapons,
		Location:  o.Location,
	}
	if o.Style != order.Ranged {
		dest := o.Dest
		cmd.Dest = &dest
	}
	return cmd
}
