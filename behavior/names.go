package behavior

// Variable names. The prefix states the stored type.
const (
	EnableReserve           = "bool_enable_reserve"
	AllowNonPrimaryReserve  = "bool_allow_non_primary_reserve"
	ReserveBasePercentage   = "float_reserve_base_percentage"
	ReserveScaleX           = "float_reserve_scale_x"
	ReserveScaleY           = "float_reserve_scale_y"
	ReserveGhostPhaseOffset = "int_reserve_ghost_phase_offset"
	OverkillFactor          = "float_overkill_factor"
	TargetFirepowerTakeaway = "bool_target_firepower_takeaway"
	CautionHysteresis       = "int_caution_hysteresis"
	CautionThreshold        = "int_caution_threshold"
	ReserveRound            = "int_reserve_round"
	ReservePhase            = "int_reserve_phase"
)

// Defaults returns the global values every store starts from.
func Defaults() map[string]any {
	return map[string]any{
		EnableReserve:           true,
		AllowNonPrimaryReserve:  false,
		ReserveBasePercentage:   10.0,
		ReserveScaleX:           100.0,
		ReserveScaleY:           30.0,
		ReserveGhostPhaseOffset: 0,
		OverkillFactor:          1.0,
		TargetFirepowerTakeaway: false,
		CautionThreshold:        2,
	}
}
