// Package submap caches the rasters and poses of the submaps produced by an
// external mapping process.
//
// Each submap is a locally consistent probability grid tile with its own
// resolution and pose. This package owns the per-submap state needed to
// composite those tiles into one world-frame occupancy grid: the latest pose
// metadata and, once fetched, a packed raster of the tile's pixels.
package submap

import (
	"context"
	"fmt"

	"go.viam.com/gridmap/spatialmath"
)

// ID uniquely identifies a submap within a mapping run.
// IDs order ascending by trajectory, then index.
type ID struct {
	Trajectory int
	Index      int
}

// Less reports whether id sorts before other.
func (id ID) Less(other ID) bool {
	if id.Trajectory != other.Trajectory {
		return id.Trajectory < other.Trajectory
	}
	return id.Index < other.Index
}

func (id ID) String() string {
	return fmt.Sprintf("(%d, %d)", id.Trajectory, id.Index)
}

// Texture is the raw per-submap pixel data served by the mapping process.
// Intensity and Alpha are row-major samples of length Width*Height.
type Texture struct {
	Width      int
	Height     int
	Version    int
	Resolution float64
	SlicePose  spatialmath.Pose
	Intensity  []byte
	Alpha      []byte
}

// A Fetcher retrieves submap textures on demand. Implementations typically
// call out to the mapping process over the network and may block.
type Fetcher interface {
	FetchTexture(ctx context.Context, id ID) (*Texture, error)
}
