package render

import (
	"image"
	"math"
	"testing"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/gridmap/spatialmath"
	"go.viam.com/gridmap/submap"
)

// uniformTexture fills a square texture with one intensity at full alpha.
func uniformTexture(size, version int, resolution float64, intensity byte) *submap.Texture {
	n := size * size
	tex := &submap.Texture{
		Width: size, Height: size, Version: version, Resolution: resolution,
		SlicePose: spatialmath.NewZeroPose(),
		Intensity: make([]byte, n),
		Alpha:     make([]byte, n),
	}
	for i := 0; i < n; i++ {
		tex.Intensity[i] = intensity
		tex.Alpha[i] = 255
	}
	return tex
}

func installAt(t *testing.T, store *submap.Store, id submap.ID, tex *submap.Texture, pose spatialmath.Pose) {
	t.Helper()
	store.UpdateMetadata(id, pose, tex.Version)
	test.That(t, store.InstallRaster(id, tex), test.ShouldBeNil)
}

func TestPlanCanvasIdentity(t *testing.T) {
	store := submap.NewStore()
	installAt(t, store, submap.ID{}, uniformTexture(2, 1, 1, 255), spatialmath.NewZeroPose())

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, size, test.ShouldResemble, image.Point{X: 12, Y: 12})
	test.That(t, origin.X, test.ShouldAlmostEqual, 5)
	test.That(t, origin.Y, test.ShouldAlmostEqual, 5)
}

func TestPlanCanvasRotated(t *testing.T) {
	store := submap.NewStore()
	// a half turn about Z has an exactly representable rotation matrix, so the
	// corner images stay integral and the bounding box ceil adds nothing
	pose := spatialmath.NewPose(r3.Vector{}, quat.Number{Kmag: 1})
	installAt(t, store, submap.ID{}, uniformTexture(2, 1, 1, 255), pose)

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, size, test.ShouldResemble, image.Point{X: 12, Y: 12})
	test.That(t, origin.X, test.ShouldAlmostEqual, 7)
	test.That(t, origin.Y, test.ShouldAlmostEqual, 7)
}

func TestPlanCanvasQuarterTurn(t *testing.T) {
	store := submap.NewStore()
	pose := spatialmath.NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, math.Pi/2)
	installAt(t, store, submap.ID{}, uniformTexture(2, 1, 1, 255), pose)

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)
	// the quaternion-derived matrix carries rounding residue in its
	// off-diagonal entries, so the ceil may pad either extent by one pixel
	test.That(t, size.X, test.ShouldBeBetweenOrEqual, 12, 13)
	test.That(t, size.Y, test.ShouldBeBetweenOrEqual, 12, 13)
	test.That(t, origin.X, test.ShouldAlmostEqual, 5)
	test.That(t, origin.Y, test.ShouldAlmostEqual, 7)
}

func TestPlanCanvasSkipsRasterless(t *testing.T) {
	store := submap.NewStore()
	installAt(t, store, submap.ID{}, uniformTexture(2, 1, 1, 255), spatialmath.NewZeroPose())
	// known but never fetched; must contribute nothing, not a zero-size tile
	store.UpdateMetadata(submap.ID{Trajectory: 5, Index: 5}, spatialmath.NewPoseFromPoint(r3.Vector{X: 100}), 1)

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, size, test.ShouldResemble, image.Point{X: 12, Y: 12})
	test.That(t, origin.X, test.ShouldAlmostEqual, 5)
	test.That(t, origin.Y, test.ShouldAlmostEqual, 5)
}

func TestPlanCanvasEmpty(t *testing.T) {
	store := submap.NewStore()
	store.GetOrCreate(submap.ID{})

	_, _, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestDrawSubmapIdentity(t *testing.T) {
	store := submap.NewStore()
	tex := uniformTexture(2, 1, 1, 0)
	tex.Intensity = []byte{10, 20, 30, 40}
	installAt(t, store, submap.ID{}, tex, spatialmath.NewZeroPose())

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)

	canvas := NewCanvas(size, origin)
	canvas.DrawSubmap(store.Get(submap.ID{}), 1)
	pix := canvas.Pixels()

	// the raster's top row lands above its bottom row on the canvas
	test.That(t, pix[6*12+5], test.ShouldEqual, uint32(0xFF0AFF00))
	test.That(t, pix[6*12+6], test.ShouldEqual, uint32(0xFF14FF00))
	test.That(t, pix[5*12+5], test.ShouldEqual, uint32(0xFF1EFF00))
	test.That(t, pix[5*12+6], test.ShouldEqual, uint32(0xFF28FF00))

	// everything else keeps the background sentinel
	painted := map[int]bool{6*12 + 5: true, 6*12 + 6: true, 5*12 + 5: true, 5*12 + 6: true}
	for i, p := range pix {
		if painted[i] {
			continue
		}
		test.That(t, p, test.ShouldEqual, backgroundPixel)
	}
}

func TestDrawOrderLaterWins(t *testing.T) {
	store := submap.NewStore()
	a := submap.ID{Trajectory: 0, Index: 1}
	b := submap.ID{Trajectory: 0, Index: 2}
	installAt(t, store, a, uniformTexture(2, 1, 1, 50), spatialmath.NewZeroPose())
	installAt(t, store, b, uniformTexture(2, 1, 1, 200), spatialmath.NewZeroPose())

	size, origin, ok := PlanCanvas(store, 1)
	test.That(t, ok, test.ShouldBeTrue)

	canvas := NewCanvas(size, origin)
	for _, id := range store.SortedIDs() {
		canvas.DrawSubmap(store.Get(id), 1)
	}

	// both tiles are opaque and cover the same cells; the higher ID painted last
	pix := canvas.Pixels()
	for _, i := range []int{6*12 + 5, 6*12 + 6, 5*12 + 5, 5*12 + 6} {
		test.That(t, pix[i], test.ShouldEqual, uint32(0xFFC8FF00))
	}
}

func TestDrawSubmapWithoutRaster(t *testing.T) {
	store := submap.NewStore()
	store.GetOrCreate(submap.ID{})

	canvas := NewCanvas(image.Point{X: 3, Y: 3}, gg.Point{X: 1, Y: 1})
	canvas.DrawSubmap(store.Get(submap.ID{}), 1)
	for _, p := range canvas.Pixels() {
		test.That(t, p, test.ShouldEqual, backgroundPixel)
	}
}

func TestBlendOver(t *testing.T) {
	// opaque source replaces the destination outright
	test.That(t, blendOver(0xFF0AFF00, backgroundPixel), test.ShouldEqual, uint32(0xFF0AFF00))

	// half-transparent source blends against the destination by its alpha
	out := blendOver(0x8064FF00, backgroundPixel)
	test.That(t, out>>24, test.ShouldEqual, uint32(0xFF))        // 0x80 + 0xFF*0x7F/0xFF
	test.That(t, (out>>16)&0xFF, test.ShouldEqual, uint32(0xE3)) // 0x64 + 0xFF*0x7F/0xFF
	test.That(t, (out>>8)&0xFF, test.ShouldEqual, uint32(0xFF))
	test.That(t, out&0xFF, test.ShouldEqual, uint32(0))

	// fully transparent source leaves the destination alone
	test.That(t, blendOver(0, 0xFF123400), test.ShouldEqual, uint32(0xFF123400))
}

func TestInvert(t *testing.T) {
	m := submapToDevice(&submap.State{
		Width: 4, Height: 4, Resolution: 0.5,
		Pose: spatialmath.NewZeroPose(), SlicePose: spatialmath.NewZeroPose(),
	}, 0.25)
	inv, ok := invert(m)
	test.That(t, ok, test.ShouldBeTrue)

	x, y := m.TransformPoint(1.5, 2.5)
	u, v := inv.TransformPoint(x, y)
	test.That(t, u, test.ShouldAlmostEqual, 1.5, 1e-9)
	test.That(t, v, test.ShouldAlmostEqual, 2.5, 1e-9)
}
