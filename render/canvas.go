package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"go.viam.com/gridmap/submap"
)

// backgroundPixel is the sentinel the canvas is cleared to: fully opaque with
// the intensity byte saturated and the observed byte zero, so untouched cells
// classify as unknown no matter what is blended over them later.
const backgroundPixel uint32 = 0xFFFF0000

// Canvas is the world-frame pixel buffer one update cycle composites into.
// Pixels use the same packed layout as submap rasters and are stored
// row-major, top row first.
type Canvas struct {
	size   image.Point
	origin gg.Point
	pix    []uint32
}

// NewCanvas allocates a canvas of the given size, cleared to the background
// sentinel, whose content is translated by origin.
func NewCanvas(size image.Point, origin gg.Point) *Canvas {
	pix := make([]uint32, size.X*size.Y)
	for i := range pix {
		pix[i] = backgroundPixel
	}
	return &Canvas{size: size, origin: origin, pix: pix}
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() image.Point {
	return c.size
}

// Origin returns the device-pixel translation applied to all content.
func (c *Canvas) Origin() gg.Point {
	return c.origin
}

// Pixels exposes the packed pixel buffer, row-major with the top row first.
func (c *Canvas) Pixels() []uint32 {
	return c.pix
}

// DrawSubmap paints the submap's raster at its local origin through the
// composed affine, sampling nearest-neighbor and blending source-over by the
// source's alpha. Callers draw submaps in ascending ID order; no intensity
// blending across submaps happens beyond that, later draws simply win.
func (c *Canvas) DrawSubmap(state *submap.State, resolution float64) {
	if !state.HasRaster() {
		return
	}
	m := submapToDevice(state, resolution)
	m = m.Multiply(gg.Translate(c.origin.X, c.origin.Y))
	inv, ok := invert(m)
	if !ok {
		return
	}

	var bb bounds
	bb.extendCorners(m, state.Width, state.Height)
	x0 := clampInt(int(math.Floor(bb.minX)), 0, c.size.X)
	x1 := clampInt(int(math.Ceil(bb.maxX)), 0, c.size.X)
	y0 := clampInt(int(math.Floor(bb.minY)), 0, c.size.Y)
	y1 := clampInt(int(math.Ceil(bb.maxY)), 0, c.size.Y)

	raster := state.Raster()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			u, v := inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)
			su, sv := int(math.Floor(u)), int(math.Floor(v))
			if su < 0 || sv < 0 || su >= state.Width || sv >= state.Height {
				continue
			}
			i := y*c.size.X + x
			c.pix[i] = blendOver(raster[sv*state.Width+su], c.pix[i])
		}
	}
}

// blendOver composites src onto dst, both packed premultiplied pixels, with
// the standard over operator.
func blendOver(src, dst uint32) uint32 {
	srcAlpha := src >> 24
	if srcAlpha == 0xFF {
		return src
	}
	remaining := 0xFF - srcAlpha
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		ch := (src>>shift)&0xFF + ((dst>>shift)&0xFF)*remaining/0xFF
		if ch > 0xFF {
			ch = 0xFF
		}
		out |= ch << shift
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
