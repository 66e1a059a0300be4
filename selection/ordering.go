package selection

import (
	"math"
	"sort"

	"github.com/nstehr/vimy/tactics-core/combat"
	"github.com/nstehr/vimy/tactics-core/model"
)

type orderCtx struct {
	w        *model.World
	svc      combat.Service
	hostiles []*model.Unit
}

// ordering is one row of the ordering table. Only the first row whose
// applies returns true reorders the pool.
type ordering struct {
	name       string
	applies    func(c *orderCtx, pool []*model.Unit) bool
	key        func(c *orderCtx, u *model.Unit) float64
	descending bool
}

var orderings = []ordering{
	{
		// Close on knocked-down hostiles while the window is open.
		name: "downed-hostile",
		applies: func(c *orderCtx, pool []*model.Unit) bool {
			for _, u := range pool {
				if !math.IsInf(c.nearestDowned(u), 1) {
					return true
				}
			}
			return false
		},
		key: func(c *orderCtx, u *model.Unit) float64 { return c.nearestDowned(u) },
	},
	{
		name: "patrol",
		applies: func(_ *orderCtx, pool []*model.Unit) bool {
			for _, u := range pool {
				if patrolling(u) {
					return true
				}
			}
			return false
		},
		key: func(_ *orderCtx, u *model.Unit) float64 {
			if !patrolling(u) {
				return math.Inf(-1)
			}
			return u.Patrol.Progress(u.Pos)
		},
		descending: true,
	},
	{
		// Without interleaving, the furthest units move first.
		name:       "cautious",
		applies:    func(c *orderCtx, _ []*model.Unit) bool { return !c.w.Interleaved },
		key:        func(c *orderCtx, u *model.Unit) float64 { return model.NearestDistance(u.Pos, c.hostiles) },
		descending: true,
	},
}

func patrolling(u *model.Unit) bool {
	return u.Patrol != nil && len(u.Patrol.Waypoints) > 0
}

// nearestDowned is the distance to the closest prone hostile u can see, or
// +Inf when there is none.
func (c *orderCtx) nearestDowned(u *model.Unit) float64 {
	best := math.Inf(1)
	for _, h := range c.hostiles {
		if !h.Prone || !h.Detected || !c.svc.LineOfFire(u.Pos, h) {
			continue
		}
		best = math.Min(best, u.Pos.Dist(h.Pos))
	}
	return best
}

// orderPool sorts pool in place with the first applicable ordering and
// returns its name, or "none".
func orderPool(w *model.World, side string, svc combat.Service, pool []*model.Unit) string {
	c := &orderCtx{w: w, svc: svc, hostiles: model.Living(w.Hostile(side))}
	for _, o := range orderings {
		if !o.applies(c, pool) {
			continue
		}
		keys := make(map[int]float64, len(pool))
		for _, u := range pool {
			keys[u.ID] = o.key(c, u)
		}
		sort.SliceStable(pool, func(i, j int) bool {
			a, b := keys[pool[i].ID], keys[pool[j].ID]
			if o.descending {
				return a > b
			}
			return a < b
		})
		return o.name
	}
	return "none"
}
