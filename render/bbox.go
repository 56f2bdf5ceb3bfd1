package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"go.viam.com/gridmap/submap"
)

// Padding is the number of device pixels added around the content on each
// side of the canvas.
const Padding = 5

type bounds struct {
	minX, minY float64
	maxX, maxY float64
	set        bool
}

func (b *bounds) extend(x, y float64) {
	if !b.set {
		b.minX, b.maxX = x, x
		b.minY, b.maxY = y, y
		b.set = true
		return
	}
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

func (b *bounds) extendCorners(m gg.Matrix, width, height int) {
	w, h := float64(width), float64(height)
	for _, corner := range [...][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		b.extend(m.TransformPoint(corner[0], corner[1]))
	}
}

// PlanCanvas is the dry pass: it maps the four raster corners of every submap
// with a raster into device space and accumulates one axis-aligned bounding
// box over them, without touching any pixels. It returns the canvas size and
// origin that enclose all content with Padding on each side. Submaps without a
// raster contribute nothing; ok is false when no submap is drawable.
func PlanCanvas(store *submap.Store, resolution float64) (size image.Point, origin gg.Point, ok bool) {
	var bb bounds
	for _, id := range store.SortedIDs() {
		state := store.Get(id)
		if !state.HasRaster() {
			continue
		}
		bb.extendCorners(submapToDevice(state, resolution), state.Width, state.Height)
	}
	if !bb.set {
		return image.Point{}, gg.Point{}, false
	}
	size = image.Point{
		X: int(math.Ceil(bb.maxX-bb.minX)) + 2*Padding,
		Y: int(math.Ceil(bb.maxY-bb.minY)) + 2*Padding,
	}
	// The origin translation guarantees all content lands at non-negative
	// canvas coordinates.
	origin = gg.Point{X: -bb.minX + Padding, Y: -bb.minY + Padding}
	return size, origin, true
}
