package grid

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Image renders the grid for viewing: occupied cells black, free cells white,
// unknown cells gray. Grid rows run bottom to top, so they are flipped back
// into image row order.
func (g *OccupancyGrid) Image() image.Image {
	dc := gg.NewContext(g.Width, g.Height)
	dc.SetColor(color.Gray{Y: 128})
	dc.Clear()
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch g.Values[g.index(x, y)] {
			case CellUnknown:
				continue
			case CellFree:
				dc.SetColor(color.White)
			default:
				dc.SetColor(color.Black)
			}
			dc.SetPixel(x, g.Height-1-y)
		}
	}
	return dc.Image()
}
