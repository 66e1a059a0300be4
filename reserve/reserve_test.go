package reserve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/tactics-core/behavior"
	"github.com/nstehr/vimy/tactics-core/combat/combattest"
	"github.com/nstehr/vimy/tactics-core/model"
)

// reservingWorld passes every gate: two heavy friendlies that can defer and
// one detected hostile still to act in phase 3 of 5.
func reservingWorld() *model.World {
	return &model.World{
		Round:       1,
		Phase:       1,
		FirstPhase:  1,
		LastPhase:   5,
		Interleaved: true,
		Units: []model.Unit{
			{ID: 1, Side: "ai", Phase: 1, HP: 100, CanDefer: true, HeavyCombat: true},
			{ID: 2, Side: "ai", Phase: 1, HP: 100, CanDefer: true, HeavyCombat: true},
			{ID: 10, Side: "player", Phase: 3, HP: 100, Detected: true, HeavyCombat: true},
		},
	}
}

type counter struct {
	value float64
	n     int
}

func (c *counter) Roll() float64 {
	c.n++
	return c.value
}

func decide(w *model.World, vars *behavior.Store, svc *combattest.Fake, roll Roller) Decision {
	if vars == nil {
		vars = behavior.NewStore()
	}
	if svc == nil {
		svc = &combattest.Fake{}
	}
	e := New(vars, svc, roll, nil)
	return e.ShouldReserve(w, model.NewSide("ai"), w.Unit(1))
}

func TestBaselineReserves(t *testing.T) {
	d := decide(reservingWorld(), nil, nil, Fixed(0))
	assert.True(t, d.Defer)
	assert.Equal(t, 2, d.TargetPhase)
}

func TestEachGateBlocksReserve(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		setup  func(w *model.World, vars *behavior.Store, svc *combattest.Fake)
	}{
		{
			name:   "feature disabled for the unit",
			reason: "reserve disabled",
			setup: func(_ *model.World, vars *behavior.Store, _ *combattest.Fake) {
				vars.Set(1, behavior.EnableReserve, false)
			},
		},
		{
			name:   "an eligible unit cannot defer",
			reason: "unit cannot defer",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(2).CanDefer = false
			},
		},
		{
			name:   "last unit to activate",
			reason: "too few units left",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(2).HasActivated = true
			},
		},
		{
			name:   "no hostiles left",
			reason: "too few units left",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(10).Dead = true
			},
		},
		{
			name:   "friendly exposed to called shots",
			reason: "called shot exposure",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(2).VulnerableToCalledShot = true
			},
		},
		{
			name:   "hostile exposed to called shots",
			reason: "called shot exposure",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(10).VulnerableToCalledShot = true
			},
		},
		{
			name:   "sensor locked friendly",
			reason: "sensor locked",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(2).SensorLocked = true
			},
		},
		{
			name:   "candidate is not a primary unit",
			reason: "not a primary unit",
			setup: func(w *model.World, _ *behavior.Store, _ *combattest.Fake) {
				w.Unit(1).HeavyCombat = false
			},
		},
		{
			name:   "hostile can get behind a friendly",
			reason: "flank threat",
			setup: func(_ *model.World, _ *behavior.Store, svc *combattest.Fake) {
				svc.Flanks = map[[2]int]bool{{10, 2}: true}
			},
		},
		{
			name:   "friendly inside lethal range",
			reason: "lethal exposure",
			setup: func(w *model.World, _ *behavior.Store, svc *combattest.Fake) {
				w.Unit(10).Phase = 1
				svc.Damage = map[int]float64{2: 101}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := reservingWorld()
			vars := behavior.NewStore()
			svc := &combattest.Fake{}
			tt.setup(w, vars, svc)

			// Zero always wins the roll, and a hostile deferral would force it.
			w.HostileDeferred = true
			d := decide(w, vars, svc, Fixed(0))
			assert.False(t, d.Defer)
			assert.Equal(t, model.InvalidPhase, d.TargetPhase)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestNonPrimaryAllowedByPolicy(t *testing.T) {
	w := reservingWorld()
	w.Unit(1).HeavyCombat = false
	vars := behavior.NewStore()
	vars.SetGlobal(behavior.AllowNonPrimaryReserve, true)

	assert.True(t, decide(w, vars, nil, Fixed(0)).Defer)
}

func TestLethalExposureScalesWithOverkillFactor(t *testing.T) {
	svc := &combattest.Fake{Damage: map[int]float64{2: 150}}
	vars := behavior.NewStore()
	vars.SetGlobal(behavior.OverkillFactor, 2.0)
	w := reservingWorld()
	w.Unit(10).Phase = 1
	assert.True(t, decide(w, vars, svc, Fixed(0)).Defer)

	w = reservingWorld()
	w.Unit(10).Phase = 1
	assert.False(t, decide(w, nil, svc, Fixed(0)).Defer)

	// Hostiles that already acted do not count.
	w = reservingWorld()
	w.Unit(10).Phase = 1
	w.Unit(10).HasActivated = true
	assert.True(t, decide(w, nil, svc, Fixed(0)).Defer)
}

func TestLethalExposureIgnoresLaterPhases(t *testing.T) {
	svc := &combattest.Fake{Damage: map[int]float64{2: 150}}

	// Hostile 10 acts in phase 3 and cannot fire before the side's next turn.
	d := decide(reservingWorld(), nil, svc, Fixed(0))
	assert.True(t, d.Defer)

	w := reservingWorld()
	w.Phase, w.Unit(1).Phase, w.Unit(2).Phase = 3, 3, 3
	d = decide(w, nil, svc, Fixed(0))
	assert.False(t, d.Defer)
	assert.Equal(t, "lethal exposure", d.Reason)
}

func TestRollBoundary(t *testing.T) {
	// 10 base + 100% remaining * 30 / 100 = 40.
	tests := []struct {
		name     string
		draw     float64
		reserves bool
	}{
		{"below", 39, true},
		{"equal", 40, true},
		{"one above", 41, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(reservingWorld(), nil, nil, Fixed(tt.draw))
			assert.Equal(t, tt.reserves, d.Defer)
		})
	}
}

func TestRollChanceUsesRemainingHostiles(t *testing.T) {
	w := reservingWorld()
	w.Units = append(w.Units, model.Unit{ID: 11, Side: "player", Phase: 1, HasActivated: true, Detected: true})
	// 10 + 50 * 30 / 100 = 25.
	assert.True(t, decide(w, nil, nil, Fixed(25)).Defer)
	assert.False(t, decide(w, nil, nil, Fixed(26)).Defer)

	vars := behavior.NewStore()
	vars.SetGlobal(behavior.ReserveScaleX, 0.0)
	assert.True(t, decide(w, vars, nil, Fixed(10)).Defer, "x of zero leaves only the base")
	assert.False(t, decide(w, vars, nil, Fixed(11)).Defer)
}

func TestHostileDeferralForcesReserve(t *testing.T) {
	w := reservingWorld()
	w.HostileDeferred = true
	d := decide(w, nil, nil, Fixed(99.9))
	assert.True(t, d.Defer)
	assert.Equal(t, 2, d.TargetPhase)
}

func TestGhostedHostiles(t *testing.T) {
	ghosted := func() *model.World {
		w := reservingWorld()
		w.Unit(10).Detected = false
		w.Units = append(w.Units, model.Unit{ID: 11, Side: "player", Phase: 4, HeavyCombat: true, Detected: true, Ghosted: true})
		return w
	}

	// Average of phases 3 and 4 rounds to 4.
	d := decide(ghosted(), nil, nil, Fixed(99.9))
	assert.True(t, d.Defer)
	assert.Equal(t, 4, d.TargetPhase)
	assert.Equal(t, "hostiles ghosted", d.Reason)

	vars := behavior.NewStore()
	vars.SetGlobal(behavior.ReserveGhostPhaseOffset, 3)
	assert.Equal(t, 5, decide(ghosted(), vars, nil, Fixed(99.9)).TargetPhase, "clamped to the last phase")

	w := ghosted()
	w.Unit(2).CanSensorLock = true
	assert.False(t, decide(w, nil, nil, Fixed(99.9)).Defer, "sensor lock available, roll decides")

	w = ghosted()
	w.HostileActed = true
	assert.False(t, decide(w, nil, nil, Fixed(99.9)).Defer, "hostiles already acted, roll decides")
}

func TestNoDeferAtLastPhase(t *testing.T) {
	w := reservingWorld()
	w.Phase = 5
	for i := range w.Units {
		w.Units[i].Phase = 5
	}
	w.HostileDeferred = true
	d := decide(w, nil, nil, Fixed(0))
	assert.False(t, d.Defer)
	assert.Equal(t, model.InvalidPhase, d.TargetPhase)
}

func TestDecisionIsMemoisedPerPhase(t *testing.T) {
	w := reservingWorld()
	vars := behavior.NewStore()
	roll := &counter{value: 0}
	e := New(vars, &combattest.Fake{}, roll, nil)
	side := model.NewSide("ai")

	d := e.ShouldReserve(w, side, w.Unit(1))
	require.True(t, d.Defer)
	assert.True(t, side.ReserveActive)
	assert.Equal(t, 1, roll.n)

	roll.value = 99
	d = e.ShouldReserve(w, side, w.Unit(2))
	assert.True(t, d.Defer, "memo reused within the phase")
	assert.Equal(t, 2, d.TargetPhase)
	assert.Equal(t, 1, roll.n)

	w.HostileDeferred = true
	e.ShouldReserve(w, side, w.Unit(1))
	assert.Equal(t, 2, roll.n, "hostile deferral invalidates the memo")

	w.Phase = 2
	w.HostileDeferred = false
	d = e.ShouldReserve(w, side, w.Unit(1))
	assert.Equal(t, 3, roll.n)
	assert.False(t, d.Defer)
	assert.False(t, side.ReserveActive)
}

func TestIsReserving(t *testing.T) {
	w := reservingWorld()
	vars := behavior.NewStore()
	assert.False(t, IsReserving(vars, w, 1), "no memo yet")

	e := New(vars, &combattest.Fake{}, Fixed(0), nil)
	side := model.NewSide("ai")
	e.ShouldReserve(w, side, w.Unit(1))
	assert.True(t, IsReserving(vars, w, 1))
	assert.Equal(t, 1, vars.Int(1, behavior.ReserveRound))
	assert.Equal(t, 2, vars.Int(1, behavior.ReservePhase))

	// A memoised decision is recorded for whichever unit asks next.
	e.ShouldReserve(w, side, w.Unit(2))
	assert.True(t, IsReserving(vars, w, 2))

	w.Phase = 2
	assert.False(t, IsReserving(vars, w, 1), "target phase reached")

	w.Phase, w.Round = 1, 2
	assert.False(t, IsReserving(vars, w, 1), "stale round")
}

func TestSeededRoller(t *testing.T) {
	a, b := NewRoller(42), NewRoller(42)
	for i := 0; i < 100; i++ {
		x := a.Roll()
		require.Equal(t, x, b.Roll())
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 100.0)
	}
}
