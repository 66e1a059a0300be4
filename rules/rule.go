package rules

import "github.com/expr-lang/expr/vm"

// Rule is one selection tier: a named predicate over a candidate unit.
// The engine tries tiers by priority; the first tier that matches at least
// one candidate becomes the whole pool.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source (preserved for logging)
	program      *vm.Program // compiled bytecode
}
