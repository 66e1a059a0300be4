package activation

// State is the controller's position in the activation cycle.
type State int

const (
	WaitingForTurn State = iota
	SelectingUnit
	PlanningUnit
	ExecutingUnit
)

var stateNames = [...]string{
	WaitingForTurn: "waiting_for_turn",
	SelectingUnit:  "selecting_unit",
	PlanningUnit:   "planning_unit",
	ExecutingUnit:  "executing_unit",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
