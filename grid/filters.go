package grid

// A Filter denoises an occupancy grid in place. Filters run as a single
// forward pass in row-major order over the grid's own buffer: a cell modified
// early in the pass is read back as a neighbor by cells visited later, which
// gives both filters a deliberate directional bias.
type Filter func(g *OccupancyGrid, threshold int)

// MajorityFilter smooths speckle by pooling each triggering interior cell with
// its 8 neighbors. Border cells pass through unchanged. A cell triggers when
// it is unknown or above threshold; its pooled value is the sum of itself and
// its neighbors, as currently stored, divided by 10 (one more than the window
// size, discounting the pool). Pools above threshold/10 become occupied, pools
// above 1 free, the rest unknown. Non-triggering cells become free.
func MajorityFilter(g *OccupancyGrid, threshold int) {
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			i := g.index(x, y)
			cell := g.Values[i]
			if cell >= 0 && int(cell) <= threshold {
				g.Values[i] = CellFree
				continue
			}
			sum := 0
			for ny := y - 1; ny <= y+1; ny++ {
				for nx := x - 1; nx <= x+1; nx++ {
					sum += int(g.Values[g.index(nx, ny)])
				}
			}
			switch pooled := sum / 10; {
			case pooled > threshold/10:
				g.Values[i] = CellOccupied
			case pooled > 1:
				g.Values[i] = CellFree
			default:
				g.Values[i] = CellUnknown
			}
		}
	}
}

// VoteFilter lets each triggering cell's neighborhood vote it free. The window
// is up to 5x5 cells centered on the cell, clipped at the grid edges. Cells
// strictly between free and threshold vote non-occupied; a majority of the
// sampled window frees the cell, otherwise it becomes occupied when its
// current value is positive and unknown when not. Non-triggering cells are
// forced free, overwriting unknowns outside the triggering band.
func VoteFilter(g *OccupancyGrid, threshold int) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := g.index(x, y)
			cell := g.Values[i]
			if cell >= 0 && int(cell) <= threshold {
				g.Values[i] = CellFree
				continue
			}
			votes, sampled := 0, 0
			for ny := max(y-2, 0); ny <= min(y+2, g.Height-1); ny++ {
				for nx := max(x-2, 0); nx <= min(x+2, g.Width-1); nx++ {
					sampled++
					if v := g.Values[g.index(nx, ny)]; v > 0 && int(v) < threshold {
						votes++
					}
				}
			}
			switch {
			case votes > sampled/2:
				g.Values[i] = CellFree
			case cell > 0:
				g.Values[i] = CellOccupied
			default:
				g.Values[i] = CellUnknown
			}
		}
	}
}
