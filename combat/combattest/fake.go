// Package combattest provides a programmable combat.Service for tests.
package combattest

import "github.com/nstehr/vimy/tactics-core/model"

// Fake answers from lookup tables keyed by unit id. Zero values mean clear
// line of fire, no damage and no flanking.
type Fake struct {
	Damage   map[int]float64 // expected damage dealt to target id
	Takeaway map[int]float64 // firepower removed from target id
	NoLOF    map[int]bool    // target ids that cannot be fired on
	Flanks   map[[2]int]bool // {hostile id, friendly id}
}

func (f *Fake) LineOfFire(_ model.Vec3, target *model.Unit) bool {
	return !f.NoLOF[target.ID]
}

func (f *Fake) ExpectedDamage(_ model.WeaponProfile, from model.Vec3, target *model.Unit) float64 {
	if !f.LineOfFire(from, target) {
		return 0
	}
	return f.Damage[target.ID]
}

func (f *Fake) FirepowerTakeaway(_ model.WeaponProfile, _ model.Vec3, target *model.Unit) float64 {
	return f.Takeaway[target.ID]
}

func (f *Fake) Outflanks(hostile, friendly *model.Unit) bool {
	return f.Flanks[[2]int{hostile.ID, friendly.ID}]
}
