package model

// PatrolRoute is a waypoint path a unit follows while idle.
type PatrolRoute struct {
	Waypoints []Vec3 `json:"waypoints"`
	Looped    bool   `json:"looped"`
	Reversed  bool   `json:"reversed"` // traversing from the last waypoint back to the first
	NextIndex int    `json:"nextIndex"`
}

// Progress scores how far along the route a unit at pos is. Plain routes score
// by the next waypoint index. Looped and reversed routes count waypoints in
// traversal order and add the fraction covered between the previous and next
// waypoint.
func (r *PatrolRoute) Progress(pos Vec3) float64 {
	n := len(r.Waypoints)
	if n == 0 {
		return 0
	}
	next := min(max(r.NextIndex, 0), n-1)
	if !r.Looped && !r.Reversed {
		return float64(next)
	}

	prev := next - 1
	if r.Reversed {
		prev = next + 1
	}
	if prev < 0 || prev >= n {
		if !r.Looped {
			return 0
		}
		prev = (prev + n) % n
	}

	// Steps taken in traversal order to arrive at prev.
	steps := prev
	if r.Reversed {
		steps = n - 1 - prev
	}

	a, b := r.Waypoints[prev], r.Waypoints[next]
	leg := a.Dist(b)
	frac := 0.0
	if leg > 0 {
		frac = min(max(a.Dist(pos)/leg, 0), 1)
	}
	return float64(steps) + frac
}
