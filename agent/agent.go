package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/tactics-core/activation"
	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/model"
)

// Builder assembles the controller for a side once the session knows which
// side it plays and what the terrain looks like.
type Builder func(side *model.Side, terrain *model.TerrainGrid, bus activation.Bus, opts ...activation.Option) (*activation.Controller, error)

// SideStore persists the side fields that survive a reload.
type SideStore interface {
	Save(side *model.Side) error
	Load(side *model.Side) (bool, error)
}

// Agent owns the decision-making for a single side session.
type Agent struct {
	Conn     *ipc.Connection
	Side     string
	Callsign string

	ctx   context.Context
	build Builder
	store SideStore
	log   *slog.Logger
	ctrl  *activation.Controller
	prev  *stateSnapshot
}

// New creates an agent. store may be nil to disable persistence.
func New(ctx context.Context, conn *ipc.Connection, build Builder, store SideStore, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}
	return &Agent{Conn: conn, ctx: ctx, build: build, store: store, log: log}
}

// Register installs the agent's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeWorld, a.HandleWorld)
	a.Conn.RegisterHandler(ipc.TypeActivate, a.HandleActivate)
	a.Conn.RegisterHandler(ipc.TypeInterrupt, a.HandleActivate)
	a.Conn.RegisterHandler(ipc.TypeTick, a.HandleTick)
	a.Conn.RegisterHandler(ipc.TypeInterruptReset, a.HandleInterruptReset)
	a.Conn.RegisterHandler(ipc.TypeReadyToMove, a.HandleReadyToMove)
	a.Conn.RegisterHandler(ipc.TypeActorDestroyed, a.HandleActorDestroyed)
	a.Conn.RegisterHandler(ipc.TypeActorAttacked, a.HandleActorAttacked)
}

// HandleHello completes the handshake: it builds the controller and restores
// any persisted side state.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.Side == "" {
		return nil, fmt.Errorf("hello without side")
	}

	a.Side = hello.Side
	a.Callsign = hello.Callsign
	a.Conn.Side = hello.Side
	a.log = a.log.With("side", a.Side)

	side := model.NewSide(a.Side)
	if a.store != nil {
		restored, err := a.store.Load(side)
		if err != nil {
			a.log.Error("restore side state", "error", err)
		} else if restored {
			a.log.Info("side state restored", "last_round", side.LastActivatedRound, "inspiration_window", side.InspirationWindow)
		}
	}

	ctrl, err := a.build(side, hello.Terrain.Model(), a.Conn, activation.WithOnComplete(a.persist))
	if err != nil {
		return nil, fmt.Errorf("build controller: %w", err)
	}
	a.ctrl = ctrl
	a.prev = nil
	a.log.Info("side identified", "callsign", a.Callsign, "terrain", hello.Terrain != nil)

	return ack()
}

// HandleWorld records a snapshot outside an activation.
func (a *Agent) HandleWorld(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var w model.World
	if err := env.Decode(&w); err != nil {
		return nil, err
	}
	a.observe(&w)
	return ack()
}

// HandleActivate serves both activate and interrupt messages.
func (a *Agent) HandleActivate(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var msg ipc.ActivateMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.observe(&msg.World)

	var complete bool
	if env.Type == ipc.TypeInterrupt {
		complete = a.ctrl.ActivateInterrupt(a.ctx, &msg.World, msg.UnitIDs)
	} else {
		complete = a.ctrl.Activate(a.ctx, &msg.World)
	}
	return a.status(complete)
}

func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var msg ipc.TickMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.observe(&msg.World)
	return a.status(a.ctrl.Step(a.ctx, &msg.World))
}

func (a *Agent) HandleInterruptReset(ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	a.ctrl.Clear()
	return a.status(true)
}

func (a *Agent) HandleReadyToMove(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var msg ipc.ReadyToMoveMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.ctrl.OnReadyToMove(msg.ActorID)
	return nil, nil
}

func (a *Agent) HandleActorDestroyed(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var msg ipc.ActorDestroyedMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.ctrl.OnActorDestroyed(msg.ActorID)
	return nil, nil
}

func (a *Agent) HandleActorAttacked(env ipc.Envelope) (*ipc.Envelope, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	var msg ipc.ActorAttackedMessage
	if err := env.Decode(&msg); err != nil {
		return nil, err
	}
	a.ctrl.OnActorAttacked(msg)
	return nil, nil
}

func (a *Agent) ready() error {
	if a.ctrl == nil {
		return fmt.Errorf("no hello received")
	}
	return nil
}

// observe diffs w against the previous snapshot, logs what changed and
// replays destructions the engine may not have announced.
func (a *Agent) observe(w *model.World) {
	events := detectEvents(w, a.Side, a.prev)
	snap := takeSnapshot(w, a.Side)
	a.prev = &snap
	if len(events) == 0 {
		return
	}
	a.log.Info("world changed", "round", w.Round, "phase", w.Phase, "events", formatEvents(events))
	for _, e := range events {
		if e.Kind == EventUnitLost || e.Kind == EventHostileDestroyed {
			a.ctrl.OnActorDestroyed(e.UnitID)
		}
	}
}

func (a *Agent) persist(side *model.Side) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(side); err != nil {
		a.log.Error("persist side state", "error", err)
	}
}

func (a *Agent) status(complete bool) (*ipc.Envelope, error) {
	st := ipc.ActivationStatus{Complete: complete, State: a.ctrl.State().String()}
	if id, ok := a.ctrl.Current(); ok {
		st.UnitID = id
	}
	env, err := ipc.NewEnvelope(ipc.TypeActivationStatus, st)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func ack() (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &env, nil
}
