package model

import "math"

// Vec3 is a map position in simulation units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vec3) Lerp(o Vec3, t float64) Vec3 { return v.Add(o.Sub(v).Scale(t)) }

// Norm returns the unit vector, or the zero vector for zero length.
func (v Vec3) Norm() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// WeaponProfile summarises a unit's (or the reference) weapon loadout.
type WeaponProfile struct {
	Damage   float64 `json:"damage"`
	Range    float64 `json:"range"`
	Accuracy float64 `json:"accuracy"` // base hit chance in [0,1]
}

// Unit is a combatant as reported by the simulation.
type Unit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Callsign    string `json:"callsign"`
	Side        string `json:"side"`
	FormationID int    `json:"formationId"`
	Tree        string `json:"tree"` // decision-tree binding, opaque to the core

	Pos    Vec3 `json:"pos"`
	Facing Vec3 `json:"facing"`

	Dead     bool `json:"dead"`
	Shutdown bool `json:"shutdown"`
	Prone    bool `json:"prone"`

	HasMoved     bool `json:"hasMoved"`
	HasFired     bool `json:"hasFired"`
	HasActivated bool `json:"hasActivated"`
	Phase        int  `json:"phase"` // activation-order value

	CanSprint              bool `json:"canSprint"`
	CanDefer               bool `json:"canDefer"`
	SensorLocked           bool `json:"sensorLocked"`
	CanSensorLock          bool `json:"canSensorLock"`
	VulnerableToCalledShot bool `json:"vulnerableToCalledShot"`
	Unstable               bool `json:"unstable"`
	HeavyCombat            bool `json:"heavyCombat"`
	Concealed              bool `json:"concealed"`
	CarriesProbe           bool `json:"carriesProbe"`

	// Detection state as seen by the controlled side.
	Detected bool `json:"detected"`
	Ghosted  bool `json:"ghosted"`

	HP        float64       `json:"hp"`
	MaxMove   float64       `json:"maxMove"`
	MaxSprint float64       `json:"maxSprint"`
	Weapon    WeaponProfile `json:"weapon"`
	Patrol    *PatrolRoute  `json:"patrol,omitempty"`
}

// Operational reports whether the unit can act at all.
func (u *Unit) Operational() bool { return !u.Dead && !u.Shutdown }

// KnockedDown reports the called-shot window: prone or otherwise exposed.
func (u *Unit) KnockedDown() bool { return u.Prone || u.VulnerableToCalledShot }

// Hidden reports that the controlled side cannot see this unit at full confidence.
func (u *Unit) Hidden() bool { return !u.Detected || u.Ghosted }

// Reach is the furthest the unit can travel this activation.
func (u *Unit) Reach() float64 {
	if u.CanSprint && u.MaxSprint > u.MaxMove {
		return u.MaxSprint
	}
	return u.MaxMove
}
