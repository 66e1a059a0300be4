package ipc

import "github.com/nstehr/vimy/tactics-core/model"

// Message types. Inbound come from the engine, outbound from the sidecar.
const (
	TypeHello          = "hello"
	TypeWorld          = "world"
	TypeActivate       = "activate"
	TypeInterrupt      = "interrupt"
	TypeTick           = "tick"
	TypeInterruptReset = "interrupt_reset"
	TypeReadyToMove    = "ready_to_move"
	TypeActorDestroyed = "actor_destroyed"
	TypeActorAttacked  = "actor_attacked"

	TypeCommand          = "command"
	TypeActivationStatus = "activation_status"
	TypeAck              = "ack"
)

// HelloMessage identifies the side this session plays.
type HelloMessage struct {
	Side     string       `json:"side"`
	Callsign string       `json:"callsign"`
	Terrain  *TerrainData `json:"terrain,omitempty"`
}

// TerrainData carries the coarse terrain grid. Optional: without it every
// line of fire is clear.
type TerrainData struct {
	Cols  int     `json:"cols"`
	Rows  int     `json:"rows"`
	CellW float64 `json:"cellW"`
	CellH float64 `json:"cellH"`
	Grid  []int   `json:"grid"`
}

// Model converts the wire form into the model grid. Unknown zone codes are
// treated as open ground.
func (t *TerrainData) Model() *model.TerrainGrid {
	if t == nil {
		return nil
	}
	g := &model.TerrainGrid{
		Cols:  t.Cols,
		Rows:  t.Rows,
		CellW: t.CellW,
		CellH: t.CellH,
		Grid:  make([]model.TerrainType, len(t.Grid)),
	}
	for i, v := range t.Grid {
		if v >= int(model.Open) && v <= int(model.Blocked) {
			g.Grid[i] = model.TerrainType(v)
		}
	}
	return g
}

// ActivateMessage starts an activation (or an interrupt activation when
// UnitIDs is set) against the accompanying snapshot.
type ActivateMessage struct {
	World   model.World `json:"world"`
	UnitIDs []int       `json:"unitIds,omitempty"`
}

// TickMessage advances an outstanding activation.
type TickMessage struct {
	World model.World `json:"world"`
}

type ReadyToMoveMessage struct {
	ActorID int `json:"actorId"`
}

type ActorDestroyedMessage struct {
	ActorID int `json:"actorId"`
}

type ActorAttackedMessage struct {
	AttackerID   int  `json:"attackerId"`
	TargetID     int  `json:"targetId"`
	ECMProtected bool `json:"ecmProtected"`
}

// ActivationStatus is sent after every activate, interrupt and tick.
type ActivationStatus struct {
	Complete bool   `json:"complete"`
	State    string `json:"state"`
	UnitID   int    `json:"unitId,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}
