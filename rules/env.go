package rules

import "github.com/nstehr/vimy/tactics-core/model"

// UnitEnv is the expr environment for one candidate. Fields and methods are
// callable from rule conditions.
type UnitEnv struct {
	Unit            model.Unit
	Round           int
	Phase           int
	Interleaved     bool
	EnemyMayHaveECM bool
}

// NewUnitEnv builds the environment for u in w.
func NewUnitEnv(w *model.World, side *model.Side, u *model.Unit) UnitEnv {
	env := UnitEnv{
		Unit:        *u,
		Round:       w.Round,
		Phase:       w.Phase,
		Interleaved: w.Interleaved,
	}
	if side != nil {
		env.EnemyMayHaveECM = side.EnemyMayHaveECM
	}
	return env
}

func (e UnitEnv) KnockedDown() bool { return e.Unit.KnockedDown() }

// Damaged reports hit points at or below hp.
func (e UnitEnv) Damaged(hp float64) bool { return e.Unit.HP <= hp }

func (e UnitEnv) Patrolling() bool { return e.Unit.Patrol != nil && len(e.Unit.Patrol.Waypoints) > 0 }
