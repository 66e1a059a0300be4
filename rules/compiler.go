package rules

import "fmt"

// Tier priorities. Doctrine tiers slot between the fixed ones.
const (
	priorityFallen   = 300
	priorityDamaged  = 250
	priorityUnstable = 200
	priorityStrikers = 150
	priorityAll      = 100
)

// CompileDoctrine generates the selection cascade from a doctrine's weights.
// Conditions are built via fmt.Sprintf with interpolated numbers, so the
// compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()

	rules := []*Rule{{
		Name:         "fallen",
		Priority:     priorityFallen,
		ConditionSrc: `KnockedDown()`,
	}}

	if d.Caution > 0 {
		// 10 HP at the lightest touch, 50 HP when fully cautious.
		hp := round1(lerpf(10, 50, d.Caution))
		rules = append(rules, &Rule{
			Name:         "damaged",
			Priority:     priorityDamaged,
			ConditionSrc: fmt.Sprintf(`Unit.HP > 0 && Damaged(%.1f)`, hp),
		})
	}

	rules = append(rules, &Rule{
		Name:         "unstable",
		Priority:     priorityUnstable,
		ConditionSrc: `Unit.Unstable`,
	})

	if d.Aggression > 0 {
		// Higher aggression lowers the bar for what counts as a striker.
		dmg := round1(lerpf(40, 10, d.Aggression))
		rules = append(rules, &Rule{
			Name:         "strikers",
			Priority:     priorityStrikers,
			ConditionSrc: fmt.Sprintf(`Unit.Weapon.Damage >= %.1f && !Unit.HasFired`, dmg),
		})
	}

	rules = append(rules, &Rule{
		Name:         "all",
		Priority:     priorityAll,
		ConditionSrc: `true`,
	})
	return rules
}

// DefaultTiers is the stock cascade: units on the ground or exposed to
// called shots, then units about to fall, then everyone.
func DefaultTiers() []*Rule {
	return CompileDoctrine(DefaultDoctrine())
}
