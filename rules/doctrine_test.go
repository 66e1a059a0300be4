package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/tactics-core/model"
)

func TestLerpf(t *testing.T) {
	assert.Equal(t, 0.5, lerpf(0, 1, 0.5))
	assert.Equal(t, 30.0, lerpf(10, 50, 0.5))
	assert.Equal(t, 10.0, lerpf(40, 10, 1))
}

func TestValidateClamps(t *testing.T) {
	d := Doctrine{Caution: 1.7, Aggression: -0.2}
	d.Validate()
	assert.Equal(t, 1.0, d.Caution)
	assert.Equal(t, 0.0, d.Aggression)
}

func tierNames(rules []*Rule) []string {
	var names []string
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return names
}

func TestCompileDoctrine(t *testing.T) {
	tests := []struct {
		name string
		d    Doctrine
		want []string
	}{
		{"default", DefaultDoctrine(), []string{"fallen", "unstable", "all"}},
		{"cautious", Doctrine{Caution: 0.5}, []string{"fallen", "damaged", "unstable", "all"}},
		{"aggressive", Doctrine{Aggression: 1}, []string{"fallen", "unstable", "strikers", "all"}},
		{"both", Doctrine{Caution: 1, Aggression: 0.5}, []string{"fallen", "damaged", "unstable", "strikers", "all"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine, err := NewEngine(CompileDoctrine(tc.d), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, tierNames(engine.Rules()))
		})
	}
}

func TestCompiledThresholds(t *testing.T) {
	rules := CompileDoctrine(Doctrine{Caution: 0.5, Aggression: 0.5})
	var srcs []string
	for _, r := range rules {
		srcs = append(srcs, r.ConditionSrc)
	}
	assert.Contains(t, srcs, `Unit.HP > 0 && Damaged(30.0)`)
	assert.Contains(t, srcs, `Unit.Weapon.Damage >= 25.0 && !Unit.HasFired`)
}

func TestDoctrineTiersPartition(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(Doctrine{Caution: 0.5, Aggression: 1}), nil)
	require.NoError(t, err)

	hurt := &model.Unit{ID: 1, HP: 25}
	wobbly := &model.Unit{ID: 2, HP: 80, Unstable: true}
	striker := &model.Unit{ID: 3, HP: 80, Weapon: model.WeaponProfile{Damage: 12}}
	spent := &model.Unit{ID: 4, HP: 80, HasFired: true, Weapon: model.WeaponProfile{Damage: 12}}

	tier, pool := engine.Partition([]*model.Unit{spent, striker, wobbly, hurt}, envFor)
	assert.Equal(t, "damaged", tier)
	require.Len(t, pool, 1)
	assert.Equal(t, 1, pool[0].ID)

	tier, pool = engine.Partition([]*model.Unit{spent, striker, wobbly}, envFor)
	assert.Equal(t, "unstable", tier)
	require.Len(t, pool, 1)

	tier, pool = engine.Partition([]*model.Unit{spent, striker}, envFor)
	assert.Equal(t, "strikers", tier)
	require.Len(t, pool, 1)
	assert.Equal(t, 3, pool[0].ID)

	tier, _ = engine.Partition([]*model.Unit{spent}, envFor)
	assert.Equal(t, "all", tier)
}
