// Package combat is the boundary to the simulation's combat math. The core
// only asks questions through Service; Grid answers them from a coarse
// terrain grid when the engine does not provide richer data.
package combat

import (
	"math"

	"github.com/nstehr/vimy/tactics-core/model"
)

// Service answers line-of-fire and damage questions for the heuristics.
type Service interface {
	// LineOfFire reports whether a shooter standing at from can fire on target.
	LineOfFire(from model.Vec3, target *model.Unit) bool
	// ExpectedDamage is the mean damage p would deal to target from from.
	ExpectedDamage(p model.WeaponProfile, from model.Vec3, target *model.Unit) float64
	// FirepowerTakeaway is the expected share of target's firepower removed.
	FirepowerTakeaway(p model.WeaponProfile, from model.Vec3, target *model.Unit) float64
	// Outflanks reports whether hostile can get behind friendly this turn.
	Outflanks(hostile, friendly *model.Unit) bool
}

// Grid implements Service over a TerrainGrid.
type Grid struct {
	Terrain *model.TerrainGrid
}

func NewGrid(terrain *model.TerrainGrid) *Grid {
	return &Grid{Terrain: terrain}
}

func (g *Grid) LineOfFire(from model.Vec3, target *model.Unit) bool {
	return !g.Terrain.Obstructed(from, target.Pos)
}

// hitChance falls off linearly to half the base accuracy at max range and is
// clamped to [0.05, 0.95]. Prone targets are easier to hit; ghosted ones harder.
func hitChance(p model.WeaponProfile, dist float64, target *model.Unit) float64 {
	if p.Range <= 0 || dist > p.Range {
		return 0
	}
	c := p.Accuracy * (1 - 0.5*dist/p.Range)
	if target.Prone {
		c += 0.1
	}
	if target.Ghosted {
		c *= 0.5
	}
	return math.Min(math.Max(c, 0.05), 0.95)
}

func (g *Grid) ExpectedDamage(p model.WeaponProfile, from model.Vec3, target *model.Unit) float64 {
	if target.Dead || !g.LineOfFire(from, target) {
		return 0
	}
	return p.Damage * hitChance(p, from.Dist(target.Pos), target)
}

func (g *Grid) FirepowerTakeaway(p model.WeaponProfile, from model.Vec3, target *model.Unit) float64 {
	if target.HP <= 0 {
		return 0
	}
	dmg := g.ExpectedDamage(p, from, target)
	return target.Weapon.Damage * math.Min(1, dmg/target.HP)
}

// rearOffset is how far behind a unit a flanker has to stand.
const rearOffset = 2.0

func (g *Grid) Outflanks(hostile, friendly *model.Unit) bool {
	if hostile.Dead || friendly.Dead || friendly.Facing.IsZero() {
		return false
	}
	behind := friendly.Pos.Sub(friendly.Facing.Norm().Scale(rearOffset))
	if hostile.Pos.Dist(behind) > hostile.Reach() {
		return false
	}
	return !g.Terrain.Obstructed(behind, friendly.Pos)
}
