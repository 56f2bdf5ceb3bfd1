// Package grid turns a composited canvas into a tri-state occupancy grid and
// optionally denoises it.
package grid

import (
	"time"

	"go.viam.com/gridmap/spatialmath"
)

// Occupancy cell values.
const (
	CellUnknown  int8 = -1
	CellFree     int8 = 0
	CellOccupied int8 = 100
)

// DefaultOccupiedThreshold is the occupancy probability (percent) above which
// a cell counts as occupied.
const DefaultOccupiedThreshold = 50

// An OccupancyGrid is a world-frame raster where every cell is unknown, free,
// or occupied. Values are stored row-major with the bottom canvas row first,
// so the cell at Values[0] sits at the origin pose.
type OccupancyGrid struct {
	FrameID    string
	Stamp      time.Time
	Resolution float64
	Width      int
	Height     int
	Origin     spatialmath.Pose
	Values     []int8
}

// index returns the flat offset of (x, y) in Values.
func (g *OccupancyGrid) index(x, y int) int {
	return y*g.Width + x
}
