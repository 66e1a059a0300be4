// Package order defines the abstract orders a decision back-end produces and
// the capability interface the core drives back-ends through.
package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/model"
)

// Kind tags an Order.
type Kind int

const (
	Move Kind = iota
	SprintMove
	JumpMove
	Attack
	MultiTargetAttack
	CalledShotAttack
	Brace
	VentCoolant
	Stand
	StartUp
	ActiveAbility
	ActiveProbe
	ClaimInspiration
)

var kindNames = [...]string{
	Move:              "move",
	SprintMove:        "sprint_move",
	JumpMove:          "jump_move",
	Attack:            "attack",
	MultiTargetAttack: "multi_target_attack",
	CalledShotAttack:  "called_shot_attack",
	Brace:             "brace",
	VentCoolant:       "vent_coolant",
	Stand:             "stand",
	StartUp:           "start_up",
	ActiveAbility:     "active_ability",
	ActiveProbe:       "active_probe",
	ClaimInspiration:  "claim_inspiration",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsMove reports the three movement kinds.
func (k Kind) IsMove() bool { return k == Move || k == SprintMove || k == JumpMove }

// IsAttack reports the three attack kinds.
func (k Kind) IsAttack() bool {
	return k == Attack || k == MultiTargetAttack || k == CalledShotAttack
}

// AttackStyle distinguishes attacks resolved as movement+attack composites.
type AttackStyle int

const (
	Ranged AttackStyle = iota
	Melee
	DeathFromAbove
)

// Order is an abstract instruction for one unit. Only the fields relevant to
// Kind are set.
type Order struct {
	Kind      Kind
	Dest      model.Vec3
	TargetIDs []int
	Weapons   []string
	Location  string // called-shot location
	Style     AttackStyle
	AbilityID string
}

// State is the back-end's evaluation status.
type State int

const (
	Success State = iota
	Running
	Failure
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case Running:
		return "running"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is what a back-end returns for one evaluation.
type Result struct {
	State State
	Order *Order
	Debug string
}

// Context carries everything a back-end may read for one unit. It replaces
// ambient globals: the logger and behaviour scope are passed explicitly.
type Context struct {
	World *model.World
	Side  *model.Side
	Unit  *model.Unit
	Vars  *behavior.Store
	Log   *slog.Logger
}

// Evaluator is a decision back-end.
type Evaluator interface {
	Evaluate(ctx context.Context, c Context) (Result, error)
	// Reset drops any per-unit traversal state.
	Reset(unitID int)
}
