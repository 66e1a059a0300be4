// Package activation sequences one side's activations: it picks the unit,
// consults the reserve engine, plans and publishes commands, and waits across
// ticks for movement to finish.
package activation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/reserve"
	"github.com/nstehr/vimy/tactics-core/selection"
	"github.com/nstehr/vimy/tactics-core/targeting"
	"github.com/nstehr/vimy/tactics-core/translate"
)

// DefaultNotifyTimeout is how long, in simulated seconds, the controller
// waits for a movement completion before giving up on it.
const DefaultNotifyTimeout = 5.0

// Bus receives published commands.
type Bus interface {
	Publish(cmd ipc.ActionCommand) error
}

// Inspiration tunes the per-round inspiration window. Windows are
// percentages.
type Inspiration struct {
	BaseWindow       float64
	WidenStep        float64
	MaxWindow        float64
	BaseTargetDamage float64
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Targets  *targeting.Selector
	Selector *selection.Selector
	Reserve  *reserve.Engine
	Planner  *translate.Translator
	Bus      Bus
}

type Controller struct {
	side *model.Side
	deps Deps
	log  *slog.Logger
	m    *metrics

	notifyTimeout float64
	inspiration   Inspiration
	now           func() time.Time
	onComplete    func(*model.Side)

	state        State
	interrupt    bool
	interruptIDs []int
	committed    bool
	current      int
	moved        bool // current unit has been sent a move this activation
	acted        bool // current unit has had a command published
	waiting      bool
	waited       float64
	lastTime     float64 // World.Time of the previous step, -1 before the first
	planStart    time.Time
	pending      queue[ipc.ActionCommand]
	world        *model.World // last snapshot seen
}

type Option func(*Controller)

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithNotifyTimeout sets the movement wait in simulated seconds.
func WithNotifyTimeout(seconds float64) Option {
	return func(c *Controller) { c.notifyTimeout = seconds }
}

func WithInspiration(in Inspiration) Option {
	return func(c *Controller) { c.inspiration = in }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithOnComplete runs fn after every completed activation.
func WithOnComplete(fn func(*model.Side)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

func New(side *model.Side, deps Deps, opts ...Option) (*Controller, error) {
	if side == nil {
		return nil, fmt.Errorf("controller needs a side")
	}
	if deps.Targets == nil || deps.Selector == nil || deps.Reserve == nil || deps.Planner == nil || deps.Bus == nil {
		return nil, fmt.Errorf("controller for %s: missing dependency", side.ID)
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	c := &Controller{
		side:          side,
		deps:          deps,
		log:           slog.Default(),
		m:             m,
		notifyTimeout: DefaultNotifyTimeout,
		now:           time.Now,
		lastTime:      -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("side", side.ID)
	return c, nil
}

func (c *Controller) Side() *model.Side { return c.side }

func (c *Controller) State() State { return c.state }

// Current returns the committed unit, if any.
func (c *Controller) Current() (int, bool) { return c.current, c.committed }

// Waiting reports an outstanding movement notification.
func (c *Controller) Waiting() bool { return c.waiting }

// Activate starts the side's activation slot and runs its first step.
func (c *Controller) Activate(ctx context.Context, w *model.World) bool {
	c.enter(w, false, nil)
	return c.Step(ctx, w)
}

// ActivateInterrupt starts an out-of-turn activation restricted to unitIDs.
// The first living, unactivated unit in the list acts and never reserves.
func (c *Controller) ActivateInterrupt(ctx context.Context, w *model.World, unitIDs []int) bool {
	c.enter(w, true, unitIDs)
	return c.Step(ctx, w)
}

func (c *Controller) enter(w *model.World, interrupt bool, unitIDs []int) {
	c.reset()
	c.side.IsComplete = false
	c.interrupt = interrupt
	c.interruptIDs = unitIDs
	c.state = SelectingUnit
	if w.Round != c.side.LastActivatedRound {
		c.newRound(w)
	}
	c.log.Debug("activation started", "round", w.Round, "phase", w.Phase, "interrupt", interrupt)
}

func (c *Controller) newRound(w *model.World) {
	first := c.side.LastActivatedRound < 0
	c.side.LastActivatedRound = w.Round
	c.side.DesignatedTargets = c.deps.Targets.Choose(w, c.side.ID)
	c.refreshInspiration(first)
	c.log.Info("new round",
		"round", w.Round,
		"designated_targets", c.side.DesignatedTargets,
		"inspiration_window", c.side.InspirationWindow,
		"inspiration_target_damage", c.side.InspirationTargetDamage,
	)
}

// refreshInspiration widens the window for every round the side went without
// inspiration and resets it after one was claimed.
func (c *Controller) refreshInspiration(first bool) {
	s, in := c.side, c.inspiration
	switch {
	case first && s.InspirationWindow == 0, s.InspirationUsed:
		s.InspirationWindow = in.BaseWindow
	default:
		s.InspirationWindow = math.Min(s.InspirationWindow+in.WidenStep, in.MaxWindow)
	}
	s.InspirationUsed = false
	s.InspirationTargetDamage = in.BaseTargetDamage * (1 - s.InspirationWindow/100)
}

// Step advances the activation by one tick and reports whether it is
// complete.
func (c *Controller) Step(ctx context.Context, w *model.World) bool {
	if c.side.IsComplete {
		return true
	}
	c.world = w

	dt := c.elapsed(w)
	if c.waiting {
		c.waited += dt
		if c.waited > c.notifyTimeout {
			c.log.Warn("movement notification timed out", "unit", c.current, "waited", c.waited)
			c.m.timeout()
			c.waiting, c.waited = false, 0
		}
	}

	if c.committed {
		u := w.Unit(c.current)
		if u == nil || u.Dead || u.HasActivated {
			c.log.Info("committed unit finished", "unit", c.current)
			return c.complete()
		}
		if c.moved {
			u.HasMoved = true
		}
	}

	if c.pending.Len() > 0 {
		if c.waiting {
			return false
		}
		terminal := false
		for _, cmd := range c.pending.Drain() {
			c.publish(w, cmd)
			terminal = terminal || cmd.Terminal()
		}
		if terminal {
			return c.complete()
		}
		return false
	}

	return c.request(ctx, w)
}

// fallbackTick is charged against the movement wait when a snapshot carries
// neither a tick delta nor an advancing clock.
const fallbackTick = 0.1

// elapsed returns the simulated seconds since the previous step: the tick
// delta if the engine sends one, else the advance of World.Time, else
// fallbackTick so a wait always runs out.
func (c *Controller) elapsed(w *model.World) float64 {
	prev := c.lastTime
	c.lastTime = w.Time
	switch {
	case w.DeltaTime > 0:
		return w.DeltaTime
	case prev >= 0 && w.Time > prev:
		return w.Time - prev
	default:
		return fallbackTick
	}
}

func (c *Controller) request(ctx context.Context, w *model.World) bool {
	if !c.committed {
		u := c.pick(w)
		if u == nil {
			c.log.Info("no unit to activate", "round", w.Round, "phase", w.Phase)
			return c.complete()
		}
		c.commit(u)
	}
	u := w.Unit(c.current)

	// Once the unit has acted the activation is committed; a late change in
	// the hostile-deferred flag must not defer it.
	var eligible []*model.Unit
	if !c.interrupt && !c.acted {
		eligible = selection.Eligible(w, c.side.ID)
		if w.Interleaved {
			d := c.deps.Reserve.ShouldReserve(w, c.side, u)
			if d.Reason != reserve.Memoised {
				c.m.reserve(d.Defer, d.Reason)
			}
		}
	}

	if c.planStart.IsZero() {
		c.planStart = c.now()
	}
	cmd, ready := c.deps.Planner.Plan(ctx, translate.Input{
		World:    w,
		Side:     c.side,
		Unit:     u,
		Eligible: eligible,
		Acted:    c.acted,
		Started:  c.planStart,
	})
	if !ready {
		return false
	}
	c.planStart = time.Time{}

	if c.waiting {
		c.log.Debug("command queued", "unit", cmd.ActorID, "type", cmd.Type)
		c.pending.Push(cmd)
		return false
	}
	c.publish(w, cmd)
	if cmd.Terminal() {
		return c.complete()
	}
	return false
}

func (c *Controller) pick(w *model.World) *model.Unit {
	if c.interrupt {
		for _, id := range c.interruptIDs {
			if u := w.Unit(id); u != nil && !u.Dead && !u.HasActivated {
				return u
			}
		}
		return nil
	}
	return c.deps.Selector.SelectNext(w, c.side, selection.Eligible(w, c.side.ID))
}

func (c *Controller) commit(u *model.Unit) {
	c.committed = true
	c.current = u.ID
	c.moved = false
	c.acted = false
	c.state = PlanningUnit
	c.deps.Planner.Reset(u.ID)
	c.log.Info("unit committed", "unit", u.ID, "name", u.Name, "interrupt", c.interrupt)
}

func (c *Controller) publish(w *model.World, cmd ipc.ActionCommand) {
	if err := c.deps.Bus.Publish(cmd); err != nil {
		c.log.Error("publish command", "unit", cmd.ActorID, "type", cmd.Type, "error", err)
	}
	c.m.command(cmd.Type, cmd.Reason)
	c.log.Info("command published", "unit", cmd.ActorID, "type", cmd.Type, "reason", cmd.Reason)
	c.state = ExecutingUnit
	c.acted = true

	if cmd.IsMove() {
		c.waiting, c.waited = true, 0
		c.moved = true
		if u := w.Unit(cmd.ActorID); u != nil {
			u.HasMoved = true
		}
	}
}

func (c *Controller) complete() bool {
	c.m.completed(c.interrupt)
	c.reset()
	c.side.IsComplete = true
	if c.onComplete != nil {
		c.onComplete(c.side)
	}
	return true
}

// Clear abandons the activation without publishing anything, e.g. when the
// engine resets an interrupt phase.
func (c *Controller) Clear() {
	if c.committed {
		c.log.Info("activation cleared", "unit", c.current, "pending", c.pending.Len())
	}
	c.reset()
	c.side.IsComplete = true
}

func (c *Controller) reset() {
	c.state = WaitingForTurn
	c.committed = false
	c.current = 0
	c.moved = false
	c.acted = false
	c.waiting, c.waited = false, 0
	c.planStart = time.Time{}
	c.pending.Clear()
}
