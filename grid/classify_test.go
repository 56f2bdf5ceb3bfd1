package grid

import (
	"image"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"go.viam.com/test"
)

// fakeCanvas fabricates composited pixels for classification tests.
type fakeCanvas struct {
	size   image.Point
	origin gg.Point
	pix    []uint32
}

func (c *fakeCanvas) Size() image.Point {
	return c.size
}

func (c *fakeCanvas) Origin() gg.Point {
	return c.origin
}

func (c *fakeCanvas) Pixels() []uint32 {
	return c.pix
}

func pixel(alpha, color, observed byte) uint32 {
	return uint32(alpha)<<24 | uint32(color)<<16 | uint32(observed)<<8
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		pix      uint32
		expected int8
	}{
		// intensity 0 and alpha 0 pack to observed 0, whatever color is stale
		{"unobserved", pixel(0, 77, 0), CellUnknown},
		{"fully dark is probability 100", pixel(255, 0, 255), CellOccupied},
		{"fully bright is probability 0", pixel(255, 255, 255), CellFree},
		{"probability 50 stays free", pixel(255, 128, 255), CellFree},
		{"probability 51 tips occupied", pixel(255, 126, 255), CellOccupied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeCanvas{size: image.Point{X: 1, Y: 1}, pix: []uint32{tc.pix}}
			g := FromCanvas(c, "map", time.Time{}, 0.05)
			test.That(t, g.Values, test.ShouldResemble, []int8{tc.expected})
		})
	}
}

func TestClassifyRowOrder(t *testing.T) {
	// one column, two rows: occupied on top, free below
	c := &fakeCanvas{
		size: image.Point{X: 1, Y: 2},
		pix:  []uint32{pixel(255, 0, 255), pixel(255, 255, 255)},
	}
	g := FromCanvas(c, "map", time.Time{}, 0.05)
	// the bottom canvas row comes out first
	test.That(t, g.Values, test.ShouldResemble, []int8{CellFree, CellOccupied})
}

func TestClassifyGeometry(t *testing.T) {
	c := &fakeCanvas{
		size:   image.Point{X: 12, Y: 12},
		origin: gg.Point{X: 5, Y: 5},
		pix:    make([]uint32, 144),
	}
	stamp := time.Now()
	g := FromCanvas(c, "map", stamp, 0.05)

	test.That(t, g.FrameID, test.ShouldEqual, "map")
	test.That(t, g.Stamp.Equal(stamp), test.ShouldBeTrue)
	test.That(t, g.Width, test.ShouldEqual, 12)
	test.That(t, g.Height, test.ShouldEqual, 12)
	test.That(t, g.Resolution, test.ShouldEqual, 0.05)
	test.That(t, len(g.Values), test.ShouldEqual, 144)

	pt := g.Origin.Point()
	test.That(t, pt.X, test.ShouldAlmostEqual, -0.25)
	test.That(t, pt.Y, test.ShouldAlmostEqual, -0.35)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 0)
}
