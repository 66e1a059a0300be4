package rules

import "math"

// Doctrine is the side's selection posture. Weights are 0.0–1.0; the
// compiler maps them to tier thresholds. A zero weight leaves its tier out.
type Doctrine struct {
	Name string `yaml:"name"`
	// Caution pulls badly damaged units forward so they act before they are
	// finished off.
	Caution float64 `yaml:"caution"`
	// Aggression pulls forward units whose weapon hits hard and is still loaded.
	Aggression float64 `yaml:"aggression"`
}

// DefaultDoctrine compiles to the stock fallen/unstable/all cascade.
func DefaultDoctrine() Doctrine {
	return Doctrine{Name: "Standard"}
}

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	d.Caution = clamp(d.Caution, 0, 1)
	d.Aggression = clamp(d.Aggression, 0, 1)
}

// lerpf linearly interpolates between min and max by t (0–1).
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

// round1 keeps generated conditions readable in logs.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
