package agent

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/tactics-core/activation"
	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/ipc"
	"github.com/nstehr/vimy/tactics-core/model"
	"github.com/nstehr/vimy/tactics-core/order"
)

type memStore struct {
	mu    sync.Mutex
	saved map[string]model.Side
}

func (m *memStore) Save(side *model.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[side.ID] = *side
	return nil
}

func (m *memStore) Load(side *model.Side) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.saved[side.ID]
	if !ok {
		return false, nil
	}
	side.IsComplete = s.IsComplete
	side.LastActivatedRound = s.LastActivatedRound
	side.InspirationWindow = s.InspirationWindow
	side.InspirationTargetDamage = s.InspirationTargetDamage
	return true, nil
}

func (m *memStore) get(id string) (model.Side, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.saved[id]
	return s, ok
}

// script hands out its orders in turn, then braces.
type script struct {
	orders []order.Order
	n      int
}

func (s *script) Evaluate(context.Context, order.Context) (order.Result, error) {
	o := order.Order{Kind: order.Brace}
	if s.n < len(s.orders) {
		o = s.orders[s.n]
	}
	s.n++
	return order.Result{State: order.Success, Order: &o}, nil
}

func (s *script) Reset(int) {}

type harness struct {
	agent  *Agent
	client net.Conn
	recv   chan ipc.Envelope
}

func newHarness(t *testing.T, store SideStore, orders ...order.Order) *harness {
	t.Helper()
	server, client := net.Pipe()
	conn := ipc.NewConnection(server, nil, nil)
	wiring := Wiring{
		Evaluator: func(combat.Service) order.Evaluator { return &script{orders: orders} },
		Reference: model.WeaponProfile{Damage: 10, Range: 100},
	}
	a := New(context.Background(), conn, wiring.Build, store, nil)
	a.Register()
	go conn.ReadLoop()

	h := &harness{agent: a, client: client, recv: make(chan ipc.Envelope, 16)}
	go func() {
		defer close(h.recv)
		for {
			env, err := ipc.ReadEnvelope(client)
			if err != nil {
				return
			}
			h.recv <- env
		}
	}()
	t.Cleanup(func() { client.Close() })
	return h
}

func (h *harness) send(t *testing.T, typ string, data any) {
	t.Helper()
	env, err := ipc.NewEnvelope(typ, data)
	require.NoError(t, err)
	require.NoError(t, ipc.WriteEnvelope(h.client, env))
}

func (h *harness) expect(t *testing.T, typ string) ipc.Envelope {
	t.Helper()
	select {
	case env, ok := <-h.recv:
		require.True(t, ok, "connection closed")
		require.Equal(t, typ, env.Type)
		return env
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", typ)
	}
	return ipc.Envelope{}
}

func (h *harness) expectStatus(t *testing.T) ipc.ActivationStatus {
	t.Helper()
	var st ipc.ActivationStatus
	require.NoError(t, h.expect(t, ipc.TypeActivationStatus).Decode(&st))
	return st
}

func (h *harness) expectCommand(t *testing.T) ipc.ActionCommand {
	t.Helper()
	var cmd ipc.ActionCommand
	require.NoError(t, h.expect(t, ipc.TypeCommand).Decode(&cmd))
	return cmd
}

func skirmish() model.World {
	return model.World{
		Round:     1,
		LastPhase: 3,
		DeltaTime: 1,
		Units: []model.Unit{
			{ID: 1, Side: "ai", HP: 50, MaxMove: 20, Weapon: model.WeaponProfile{Damage: 5, Range: 30}},
			{ID: 10, Side: "player", Pos: model.Vec3{X: 60}, HP: 50, Detected: true},
		},
	}
}

func TestSessionMoveThenAttack(t *testing.T) {
	store := &memStore{saved: map[string]model.Side{}}
	h := newHarness(t, store,
		order.Order{Kind: order.Move, Dest: model.Vec3{X: 20}},
		order.Order{Kind: order.Attack, TargetIDs: []int{10}},
	)

	h.send(t, ipc.TypeHello, ipc.HelloMessage{Side: "ai", Callsign: "Red"})
	h.expect(t, ipc.TypeAck)

	h.send(t, ipc.TypeActivate, ipc.ActivateMessage{World: skirmish()})
	cmd := h.expectCommand(t)
	assert.Equal(t, ipc.CmdMove, cmd.Type)
	require.NotNil(t, cmd.Dest)
	assert.Equal(t, 20.0, cmd.Dest.X)
	st := h.expectStatus(t)
	assert.False(t, st.Complete)
	assert.Equal(t, 1, st.UnitID)

	h.send(t, ipc.TypeTick, ipc.TickMessage{World: skirmish()})
	assert.False(t, h.expectStatus(t).Complete)

	h.send(t, ipc.TypeReadyToMove, ipc.ReadyToMoveMessage{ActorID: 1})
	h.send(t, ipc.TypeTick, ipc.TickMessage{World: skirmish()})
	cmd = h.expectCommand(t)
	assert.Equal(t, ipc.CmdAttack, cmd.Type)
	assert.Equal(t, []int{10}, cmd.TargetIDs)
	assert.True(t, h.expectStatus(t).Complete)

	saved, ok := store.get("ai")
	require.True(t, ok)
	assert.True(t, saved.IsComplete)
	assert.Equal(t, 1, saved.LastActivatedRound)
}

func TestSessionRequiresHello(t *testing.T) {
	h := newHarness(t, nil)

	// Rejected without a reply; the session carries on.
	h.send(t, ipc.TypeTick, ipc.TickMessage{World: skirmish()})
	h.send(t, ipc.TypeHello, ipc.HelloMessage{Side: "ai"})
	h.expect(t, ipc.TypeAck)
}

func TestSessionRestoresSide(t *testing.T) {
	store := &memStore{saved: map[string]model.Side{
		"ai": {ID: "ai", LastActivatedRound: 1, InspirationWindow: 17, InspirationTargetDamage: 83},
	}}
	h := newHarness(t, store)

	h.send(t, ipc.TypeHello, ipc.HelloMessage{Side: "ai"})
	h.expect(t, ipc.TypeAck)

	// Same round as the saved one: no refresh, the window survives.
	h.send(t, ipc.TypeActivate, ipc.ActivateMessage{World: skirmish()})
	assert.Equal(t, ipc.CmdReserveDone, h.expectCommand(t).Type)
	assert.True(t, h.expectStatus(t).Complete)

	saved, _ := store.get("ai")
	assert.Equal(t, 17.0, saved.InspirationWindow)
}

func TestSessionInterruptAndReset(t *testing.T) {
	h := newHarness(t, nil, order.Order{Kind: order.Move, Dest: model.Vec3{X: 5}})

	h.send(t, ipc.TypeHello, ipc.HelloMessage{Side: "ai"})
	h.expect(t, ipc.TypeAck)

	h.send(t, ipc.TypeInterrupt, ipc.ActivateMessage{World: skirmish(), UnitIDs: []int{1}})
	assert.Equal(t, 1, h.expectCommand(t).ActorID)
	assert.False(t, h.expectStatus(t).Complete)

	h.send(t, ipc.TypeInterruptReset, struct{}{})
	st := h.expectStatus(t)
	assert.True(t, st.Complete)
	assert.Zero(t, st.UnitID)
}

func TestSessionECMAndDestruction(t *testing.T) {
	h := newHarness(t, nil)
	h.send(t, ipc.TypeHello, ipc.HelloMessage{Side: "ai"})
	h.expect(t, ipc.TypeAck)

	h.send(t, ipc.TypeWorld, skirmish())
	h.expect(t, ipc.TypeAck)

	h.send(t, ipc.TypeActorAttacked, ipc.ActorAttackedMessage{AttackerID: 10, TargetID: 1, ECMProtected: true})
	h.send(t, ipc.TypeWorld, skirmish())
	h.expect(t, ipc.TypeAck)
	side := h.agent.ctrl.Side()
	assert.True(t, side.EnemyMayHaveECM)
	assert.True(t, side.ECMProtected[10])

	// The engine never announced the death; the snapshot diff does.
	w := skirmish()
	w.Units[1].Dead = true
	h.send(t, ipc.TypeWorld, w)
	h.expect(t, ipc.TypeAck)
	assert.False(t, side.ECMProtected[10])
}

func TestHelloTerrainBuildsController(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	var got *model.TerrainGrid
	build := func(side *model.Side, terrain *model.TerrainGrid, bus activation.Bus, opts ...activation.Option) (*activation.Controller, error) {
		got = terrain
		return Wiring{}.Build(side, terrain, bus, opts...)
	}
	a := New(context.Background(), ipc.NewConnection(server, nil, nil), build, nil, nil)

	env, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{
		Side:    "ai",
		Terrain: &ipc.TerrainData{Cols: 2, Rows: 1, CellW: 10, CellH: 10, Grid: []int{0, 3}},
	})
	require.NoError(t, err)
	resp, err := a.HandleHello(env)
	require.NoError(t, err)
	assert.Equal(t, ipc.TypeAck, resp.Type)

	require.NotNil(t, got)
	assert.Equal(t, model.Blocked, got.At(1, 0))
	assert.Equal(t, "ai", a.ctrl.Side().ID)
}
