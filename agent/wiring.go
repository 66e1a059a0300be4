package agent

import (
	"log/slog"
	"time"

	"github.com/nstehr/vimy/tactics-core/activation"
	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/diag"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/order"
	"github.com/nstehr/vimy/tactics-core/reserve"
	"github.com/nstehr/vimy/tactics-core/rules"
	"github.com/nstehr/vimy/tactics-core/selection"
	"github.com/nstehr/vimy/tactics-core/targeting"
	"github.com/nstehr/vimy/tactics-core/translate"
)

// Wiring holds what every session's controller is built from.
type Wiring struct {
	// Vars returns the behaviour store for a new session. Nil means defaults.
	Vars func() (*behavior.Store, error)
	// Evaluator picks the decision back-end. Nil means order.Basic.
	Evaluator func(svc combat.Service) order.Evaluator

	Reference     model.WeaponProfile
	Inspiration   activation.Inspiration
	Doctrine      rules.Doctrine
	NotifyTimeout float64
	ThinkBudget   time.Duration
	Seed          uint64
	Trace         diag.Sink
	Log           *slog.Logger
}

// Build satisfies Builder.
func (wr Wiring) Build(side *model.Side, terrain *model.TerrainGrid, bus activation.Bus, opts ...activation.Option) (*activation.Controller, error) {
	log := wr.Log
	if log == nil {
		log = slog.Default()
	}
	vars := behavior.NewStore()
	if wr.Vars != nil {
		var err error
		if vars, err = wr.Vars(); err != nil {
			return nil, err
		}
	}
	trace := wr.Trace
	if trace == nil {
		trace = diag.Nop{}
	}

	svc := combat.NewGrid(terrain)
	var eval order.Evaluator = order.NewBasic(svc)
	if wr.Evaluator != nil {
		eval = wr.Evaluator(svc)
	}

	tiers, err := rules.NewEngine(rules.CompileDoctrine(wr.Doctrine), log)
	if err != nil {
		return nil, err
	}

	deps := activation.Deps{
		Targets:  targeting.New(svc, vars, wr.Reference, log),
		Selector: selection.New(tiers, svc, log),
		Reserve:  reserve.New(vars, svc, reserve.NewRoller(wr.Seed), log),
		Planner: translate.New(eval, vars,
			translate.WithLogger(log),
			translate.WithTrace(trace),
			translate.WithThinkBudget(wr.ThinkBudget),
		),
		Bus: bus,
	}
	base := []activation.Option{
		activation.WithLogger(log),
		activation.WithInspiration(wr.Inspiration),
	}
	if wr.NotifyTimeout > 0 {
		base = append(base, activation.WithNotifyTimeout(wr.NotifyTimeout))
	}
	return activation.New(side, deps, append(base, opts...)...)
}
