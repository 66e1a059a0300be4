package ipc

import "github.com/nstehr/vimy/tactics-core/model"

// Command types understood by the engine's command executor.
const (
	CmdMove             = "move"
	CmdSprintMove       = "sprint_move"
	CmdJumpMove         = "jump_move"
	CmdAttack           = "attack"
	CmdMultiAttack      = "multi_attack"
	CmdCalledShotAttack = "called_shot_attack"
	CmdMeleeAttack      = "melee_attack"
	CmdDFAAttack        = "dfa_attack"
	CmdActiveAbility    = "active_ability"
	CmdActiveProbe      = "active_probe"
	CmdClaimInspiration = "claim_inspiration"
	CmdStand            = "stand"
	CmdStartUp          = "start_up"
	CmdReserveDone      = "reserve_done"
	CmdReserveDefer     = "reserve_defer"
)

// ActionCommand is a validated, simulation-ready instruction for one unit,
// or for the whole side in the case of reserve_defer.
type ActionCommand struct {
	Type      string      `json:"type"`
	ActorID   int         `json:"actor_id"`
	Dest      *model.Vec3 `json:"dest,omitempty"`
	TargetIDs []int       `json:"target_ids,omitempty"`
	Weapons   []string    `json:"weapons,omitempty"`
	Location  string      `json:"location,omitempty"`
	AbilityID string      `json:"ability_id,omitempty"`
	Phase     int         `json:"phase,omitempty"`    // reserve_defer target phase
	UnitIDs   []int       `json:"unit_ids,omitempty"` // reserve_defer members
	Reason    string      `json:"reason,omitempty"`
}

// Done ends the unit's activation without acting.
func Done(actorID int, reason string) ActionCommand {
	return ActionCommand{Type: CmdReserveDone, ActorID: actorID, Reason: reason}
}

// Defer moves every listed unit to a later phase.
func Defer(actorID, phase int, unitIDs []int, reason string) ActionCommand {
	return ActionCommand{Type: CmdReserveDefer, ActorID: actorID, Phase: phase, UnitIDs: unitIDs, Reason: reason}
}

func (c ActionCommand) IsMove() bool {
	switch c.Type {
	case CmdMove, CmdSprintMove, CmdJumpMove:
		return true
	}
	return false
}

func (c ActionCommand) IsAttack() bool {
	switch c.Type {
	case CmdAttack, CmdMultiAttack, CmdCalledShotAttack, CmdMeleeAttack, CmdDFAAttack:
		return true
	}
	return false
}

// Terminal reports whether publishing c ends the activation.
func (c ActionCommand) Terminal() bool {
	return c.Type == CmdReserveDone || c.Type == CmdReserveDefer || c.IsAttack()
}
