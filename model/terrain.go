package model

import "math"

// TerrainType classifies a coarse grid zone for line-of-fire purposes.
type TerrainType byte

const (
	Open    TerrainType = 0 // no obstruction
	Woods   TerrainType = 1 // slows movement, does not block fire
	Water   TerrainType = 2
	Blocked TerrainType = 3 // hills, buildings: blocks line of fire
)

// TerrainGrid is a coarse grid over the map. Each zone covers CellW x CellH
// map units and stores a single TerrainType.
type TerrainGrid struct {
	Cols  int           `json:"cols"`
	Rows  int           `json:"rows"`
	CellW float64       `json:"cellW"`
	CellH float64       `json:"cellH"`
	Grid  []TerrainType `json:"grid"` // row-major: Grid[row*Cols + col]
}

// At returns the terrain type at grid coordinates (col, row).
// Returns Open for out-of-bounds coordinates.
func (g *TerrainGrid) At(col, row int) TerrainType {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows || row*g.Cols+col >= len(g.Grid) {
		return Open
	}
	return g.Grid[row*g.Cols+col]
}

// AtMapPos converts map coordinates to grid coordinates and returns the
// terrain type. Returns Open for zero-sized cells.
func (g *TerrainGrid) AtMapPos(x, y float64) TerrainType {
	if g.CellW <= 0 || g.CellH <= 0 {
		return Open
	}
	return g.At(int(math.Floor(x/g.CellW)), int(math.Floor(y/g.CellH)))
}

// Obstructed walks the segment from a to b in half-cell steps and reports
// whether any interior sample lands in Blocked terrain. The endpoints are
// ignored so a unit standing on a hill can still shoot and be shot.
func (g *TerrainGrid) Obstructed(a, b Vec3) bool {
	if g == nil || g.CellW <= 0 || g.CellH <= 0 {
		return false
	}
	step := math.Min(g.CellW, g.CellH) / 2
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	n := int(math.Ceil(dist / step))
	for i := 1; i < n; i++ {
		p := a.Lerp(b, float64(i)/float64(n))
		if g.AtMapPos(p.X, p.Y) == Blocked {
			return true
		}
	}
	return false
}
