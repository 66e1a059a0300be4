// Package translate turns a back-end's abstract order into a validated action
// command. Every path ends in a command: failures become reserve_done.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/diag"
	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/order"
	"github.com/nstehr/vimy/tactics-core/reserve"
)

// Input is one planning request for the committed unit.
type Input struct {
	World    *model.World
	Side     *model.Side
	Unit     *model.Unit
	Eligible []*model.Unit
	Acted    bool      // the unit already has a command out this activation
	Started  time.Time // when planning for this unit began
}

type Translator struct {
	eval   order.Evaluator
	vars   *behavior.Store
	trace  diag.Sink
	log    *slog.Logger
	budget time.Duration
	now    func() time.Time
}

type Option func(*Translator)

func WithLogger(log *slog.Logger) Option {
	return func(t *Translator) { t.log = log }
}

// WithTrace records a diagnostic trace for every fallback.
func WithTrace(s diag.Sink) Option {
	return func(t *Translator) { t.trace = s }
}

// WithThinkBudget bounds planning time per unit. Zero disables the check.
func WithThinkBudget(d time.Duration) Option {
	return func(t *Translator) { t.budget = d }
}

func WithClock(now func() time.Time) Option {
	return func(t *Translator) { t.now = now }
}

func New(eval order.Evaluator, vars *behavior.Store, opts ...Option) *Translator {
	t := &Translator{
		eval:  eval,
		vars:  vars,
		trace: diag.Nop{},
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.vars == nil {
		t.vars = behavior.NewStore()
	}
	return t
}

// Reset drops the back-end's state for a unit.
func (t *Translator) Reset(unitID int) {
	t.eval.Reset(unitID)
}

// Forget drops everything held for a destroyed unit.
func (t *Translator) Forget(unitID int) {
	t.eval.Reset(unitID)
	t.vars.ClearUnit(unitID)
}

// Plan produces the next command for in.Unit. ready is false only while the
// back-end reports Running; the caller retries on the next tick.
func (t *Translator) Plan(ctx context.Context, in Input) (cmd ipc.ActionCommand, ready bool) {
	defer func() {
		if r := recover(); r != nil {
			cmd, ready = t.fallback(in, "evaluator panic", order.Result{}, fmt.Errorf("panic: %v", r)), true
		}
	}()

	if in.World == nil || in.Unit == nil {
		t.log.Error("plan without world or unit")
		return ipc.Done(0, "no unit"), true
	}
	u := in.Unit
	if t.overBudget(in.Started) {
		t.log.Warn("think budget exceeded", "unit", u.ID, "budget", t.budget)
		return ipc.Done(u.ID, "think budget exceeded"), true
	}
	if target, ok := t.sideDeferring(in); ok {
		t.log.Info("side deferring", "unit", u.ID, "target_phase", target, "units", len(in.Eligible))
		return ipc.Defer(u.ID, target, unitIDs(in.Eligible), "side reserve"), true
	}

	if t.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.budget)
		defer cancel()
	}
	res, err := t.eval.Evaluate(ctx, order.Context{
		World: in.World,
		Side:  in.Side,
		Unit:  u,
		Vars:  t.vars,
		Log:   t.log.With("unit", u.ID),
	})
	if t.overBudget(in.Started) {
		t.log.Warn("think budget exceeded", "unit", u.ID, "budget", t.budget)
		return ipc.Done(u.ID, "think budget exceeded"), true
	}
	if err != nil {
		return t.fallback(in, "evaluator error", res, err), true
	}

	switch res.State {
	case order.Running:
		return ipc.ActionCommand{}, false
	case order.Failure:
		return t.fallback(in, "evaluator failed", res, nil), true
	}
	if res.Order == nil {
		return t.fallback(in, "empty order", res, nil), true
	}
	return t.Translate(in.Side, u, *res.Order), true
}

func (t *Translator) overBudget(started time.Time) bool {
	return t.budget > 0 && !started.IsZero() && t.now().Sub(started) > t.budget
}

// sideDeferring reports whether this phase's reserve decision moves the
// whole side, which requires every eligible unit to be able to defer. A unit
// that has already acted is never deferred.
func (t *Translator) sideDeferring(in Input) (int, bool) {
	s, w := in.Side, in.World
	if in.Acted || s == nil || !s.ReserveActive || len(in.Eligible) == 0 {
		return 0, false
	}
	if !reserve.IsReserving(t.vars, w, in.Unit.ID) {
		return 0, false
	}
	if s.Reserve.Round != w.Round || s.Reserve.Phase != w.Phase || s.Reserve.TargetPhase <= w.Phase {
		return 0, false
	}
	for _, u := range in.Eligible {
		if !u.CanDefer {
			return 0, false
		}
	}
	return s.Reserve.TargetPhase, true
}

func unitIDs(units []*model.Unit) []int {
	ids := make([]int, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func (t *Translator) fallback(in Input, reason string, res order.Result, err error) ipc.ActionCommand {
	u := in.Unit
	var kind string
	if res.Order != nil {
		kind = res.Order.Kind.String()
	}
	t.log.Error("order fallback",
		"unit", u.ID,
		"name", u.Name,
		"callsign", u.Callsign,
		"tree", u.Tree,
		"round", in.World.Round,
		"phase", in.World.Phase,
		"reason", reason,
		"state", res.State.String(),
		"order", kind,
		"debug", res.Debug,
		"error", err,
	)
	trace := diag.Trace{
		UnitID:   u.ID,
		Name:     u.Name,
		Callsign: u.Callsign,
		Round:    in.World.Round,
		Phase:    in.World.Phase,
		Reason:   reason,
		Order:    kind,
		Debug:    res.Debug,
		Err:      err,
	}
	if terr := t.trace.Record(trace); terr != nil {
		t.log.Warn("trace not written", "unit", u.ID, "error", terr)
	}
	return ipc.Done(u.ID, reason)
}
