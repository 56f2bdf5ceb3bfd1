package grid

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"

	"go.viam.com/gridmap/spatialmath"
)

// A Canvas is a composited pixel source: packed pixels stored row-major with
// the top row first, plus the geometry they were rendered with.
type Canvas interface {
	Size() image.Point
	Origin() gg.Point
	Pixels() []uint32
}

// FromCanvas classifies every composited canvas pixel into an occupancy cell.
//
// Canvas rows are consumed in reverse order so the output grid runs bottom to
// top; within a row, columns run left to right. A pixel whose observed byte is
// zero is unknown regardless of its intensity byte. Otherwise the intensity
// byte maps to an occupancy probability which collapses to occupied or free at
// a fixed 50% threshold; a probability outside [0, 100] means upstream data
// broke an assumption and panics rather than producing a corrupt map.
func FromCanvas(c Canvas, frameID string, stamp time.Time, resolution float64) *OccupancyGrid {
	size := c.Size()
	origin := c.Origin()
	g := &OccupancyGrid{
		FrameID:    frameID,
		Stamp:      stamp,
		Resolution: resolution,
		Width:      size.X,
		Height:     size.Y,
		Origin: spatialmath.NewPoseFromPoint(r3.Vector{
			X: -origin.X * resolution,
			Y: (-float64(size.Y) + origin.Y) * resolution,
		}),
		Values: make([]int8, 0, size.X*size.Y),
	}

	pix := c.Pixels()
	for y := size.Y - 1; y >= 0; y-- {
		for x := 0; x < size.X; x++ {
			packed := pix[y*size.X+x]
			color := (packed >> 16) & 0xFF
			observed := (packed >> 8) & 0xFF
			if observed == 0 {
				g.Values = append(g.Values, CellUnknown)
				continue
			}
			probability := int(math.Round((1 - float64(color)/255) * 100))
			if probability < 0 || probability > 100 {
				panic(fmt.Sprintf("composited pixel at (%d, %d) classified to probability %d, outside [0, 100]", x, y, probability))
			}
			if probability > DefaultOccupiedThreshold {
				g.Values = append(g.Values, CellOccupied)
			} else {
				g.Values = append(g.Values, CellFree)
			}
		}
	}
	return g
}
