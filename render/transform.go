// Package render composites submap rasters onto a single world-frame canvas.
//
// Rendering is a two pass affair: a dry pass maps every submap's corners
// through its composed affine to find the minimal enclosing canvas, then the
// real pass paints each raster onto that canvas in ascending submap ID order
// so that later submaps win overlapping regions.
package render

import (
	"github.com/fogleman/gg"

	"go.viam.com/gridmap/spatialmath"
	"go.viam.com/gridmap/submap"
)

// worldMatrix projects a rigid transform onto the 2D plane as an affine
// matrix over (x, y).
func worldMatrix(p spatialmath.Pose) gg.Matrix {
	m := p.Mat4()
	return gg.Matrix{
		XX: m.At(0, 0), XY: m.At(0, 1), X0: m.At(0, 3),
		YX: m.At(1, 0), YY: m.At(1, 1), Y0: m.At(1, 3),
	}
}

// submapToDevice builds the affine taking raster pixel coordinates of a submap
// into device (canvas pixel) coordinates, before the canvas origin translation:
// flip the raster's rows against its own height to reconcile image row order
// with y-up pose math, scale into meters by the submap's resolution, move into
// the world through pose ∘ slice pose, then scale into device pixels by the
// output resolution with the matching vertical flip.
func submapToDevice(state *submap.State, resolution float64) gg.Matrix {
	m := gg.Translate(0, -float64(state.Height))
	m = m.Multiply(gg.Scale(state.Resolution, state.Resolution))
	m = m.Multiply(worldMatrix(state.WorldPose()))
	m = m.Multiply(gg.Scale(1/resolution, -1/resolution))
	return m
}

// invert returns the inverse affine, or ok=false for a degenerate matrix.
func invert(m gg.Matrix) (gg.Matrix, bool) {
	det := m.XX*m.YY - m.XY*m.YX
	if det == 0 {
		return gg.Matrix{}, false
	}
	inv := 1 / det
	return gg.Matrix{
		XX: m.YY * inv,
		XY: -m.XY * inv,
		YX: -m.YX * inv,
		YY: m.XX * inv,
		X0: (m.XY*m.Y0 - m.YY*m.X0) * inv,
		Y0: (m.YX*m.X0 - m.XX*m.Y0) * inv,
	}, true
}
