package model

// ReserveMemo caches the reserve decision for one (round, phase).
type ReserveMemo struct {
	Valid           bool
	Round           int
	Phase           int
	TargetPhase     int
	HostileDeferred bool
}

// Matches reports whether the memo was computed for the given round and phase
// with the same hostile-deferred input.
func (m ReserveMemo) Matches(round, phase int, hostileDeferred bool) bool {
	return m.Valid && m.Round == round && m.Phase == phase && m.HostileDeferred == hostileDeferred
}

// Side is the AI-controlled faction's persistent decision state. Unit data
// lives in World; Side holds only what the controller owns across ticks.
type Side struct {
	ID string `json:"id"`

	IsComplete         bool `json:"isComplete"`
	LastActivatedRound int  `json:"lastActivatedRound"`

	InspirationWindow       float64 `json:"inspirationWindow"`
	InspirationTargetDamage float64 `json:"inspirationTargetDamage"`
	InspirationUsed         bool    `json:"-"`

	DesignatedTargets map[int]int `json:"-"` // formation id → hostile unit id

	Reserve       ReserveMemo `json:"-"`
	ReserveActive bool        `json:"-"`

	EnemyMayHaveECM bool         `json:"-"`
	ECMProtected    map[int]bool `json:"-"` // hostile attackers seen firing from ECM cover
}

func NewSide(id string) *Side {
	return &Side{
		ID:                 id,
		IsComplete:         true,
		LastActivatedRound: -1,
		DesignatedTargets:  make(map[int]int),
		ECMProtected:       make(map[int]bool),
		Reserve:            ReserveMemo{TargetPhase: InvalidPhase},
	}
}

// DesignatedTarget returns the focus-fire target for a formation, if any.
func (s *Side) DesignatedTarget(formationID int) (int, bool) {
	id, ok := s.DesignatedTargets[formationID]
	return id, ok
}
