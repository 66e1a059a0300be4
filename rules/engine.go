// Package rules compiles selection tiers written as expr conditions and
// evaluates them against candidate units.
package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/vimy/tactics-core/model"
)

// Engine holds compiled tiers sorted by descending priority.
type Engine struct {
	rules []*Rule
	log   *slog.Logger
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, log: log}, nil
}

// Rules returns the compiled tiers in evaluation order.
func (e *Engine) Rules() []*Rule {
	return e.rules
}

// Partition returns the first tier, by priority, that matches at least one
// candidate, together with the matching candidates in their original order.
// A condition that fails to run counts as no match.
func (e *Engine) Partition(candidates []*model.Unit, env func(*model.Unit) UnitEnv) (string, []*model.Unit) {
	for _, r := range e.rules {
		var pool []*model.Unit
		for _, u := range candidates {
			result, err := vm.Run(r.program, env(u))
			if err != nil {
				e.log.Warn("tier condition error", "tier", r.Name, "unit", u.ID, "error", err)
				continue
			}
			if match, ok := result.(bool); ok && match {
				pool = append(pool, u)
			}
		}
		if len(pool) > 0 {
			return r.Name, pool
		}
	}
	return "", nil
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(UnitEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile tier %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
