package submap

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/gridmap/spatialmath"
)

// Packed pixel layout, one uint32 per cell:
// byte 3 alpha, byte 2 intensity, byte 1 observed flag (0 or 255), byte 0 unused.
// A cell counts as observed unless both its intensity and alpha samples are zero.
const (
	bytesPerPixel = 4
	strideAlign   = 4
)

// State is the cached raster and pose state for one submap.
type State struct {
	Width      int
	Height     int
	Version    int
	Resolution float64
	SlicePose  spatialmath.Pose

	// Metadata, refreshed on every update event.
	Pose            spatialmath.Pose
	MetadataVersion int

	raster []uint32
}

// HasRaster reports whether a texture has ever been installed.
func (s *State) HasRaster() bool {
	return s.raster != nil
}

// Raster returns the packed pixel buffer, row-major with the top row first,
// of length Width*Height. It is nil until the first successful install.
func (s *State) Raster() []uint32 {
	return s.raster
}

// WorldPose returns the transform from the raster's local frame to the world
// frame: the submap pose composed with the slice pose.
func (s *State) WorldPose() spatialmath.Pose {
	return spatialmath.Compose(s.Pose, s.SlicePose)
}

// Store owns the mapping from submap ID to cached state. Entries are created
// on first mention and live for the lifetime of the store. The store itself is
// not synchronized; the caller serializes whole update cycles around it.
type Store struct {
	submaps map[ID]*State
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{submaps: map[ID]*State{}}
}

// GetOrCreate returns the state for id, creating a fresh rasterless entry if
// this is the first mention of id.
func (s *Store) GetOrCreate(id ID) *State {
	state, ok := s.submaps[id]
	if !ok {
		state = &State{MetadataVersion: -1, Pose: spatialmath.NewZeroPose(), SlicePose: spatialmath.NewZeroPose()}
		s.submaps[id] = state
	}
	return state
}

// UpdateMetadata unconditionally refreshes the pose and metadata version for
// id. It is called for every descriptor in every update event, independent of
// whether the raster itself needs refreshing.
func (s *Store) UpdateMetadata(id ID, pose spatialmath.Pose, metadataVersion int) {
	state := s.GetOrCreate(id)
	state.Pose = pose
	state.MetadataVersion = metadataVersion
}

// NeedsRefresh reports whether the raster for id must be (re)fetched: true
// when no raster is cached yet or the cached version differs from the
// incoming one.
func (s *Store) NeedsRefresh(id ID, incomingVersion int) bool {
	state := s.GetOrCreate(id)
	return !state.HasRaster() || state.Version != incomingVersion
}

// InstallRaster replaces the cached raster for id with the given texture,
// packing the intensity and alpha samples into the canonical pixel layout.
func (s *Store) InstallRaster(id ID, tex *Texture) error {
	n := tex.Width * tex.Height
	if len(tex.Intensity) != n || len(tex.Alpha) != n {
		return errors.Errorf(
			"submap %s texture is %dx%d but has %d intensity and %d alpha samples",
			id, tex.Width, tex.Height, len(tex.Intensity), len(tex.Alpha))
	}

	// Handling a non-trivial row stride would complicate every consumer of
	// the raster. Verify it is never needed.
	if expected := tex.Width * bytesPerPixel; expected != strideForWidth(tex.Width) {
		panic(fmt.Sprintf(
			"submap %s raster stride %d does not match the native stride %d for width %d",
			id, expected, strideForWidth(tex.Width), tex.Width))
	}

	raster := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		intensity := tex.Intensity[i]
		alpha := tex.Alpha[i]
		var observed uint32
		if intensity != 0 || alpha != 0 {
			observed = 255
		}
		raster = append(raster, uint32(alpha)<<24|uint32(intensity)<<16|observed<<8)
	}

	state := s.GetOrCreate(id)
	state.Width = tex.Width
	state.Height = tex.Height
	state.Version = tex.Version
	state.Resolution = tex.Resolution
	state.SlicePose = tex.SlicePose
	state.raster = raster
	return nil
}

// Len returns the number of known submaps.
func (s *Store) Len() int {
	return len(s.submaps)
}

// HasRasters reports whether at least one submap has a raster to draw.
func (s *Store) HasRasters() bool {
	for _, state := range s.submaps {
		if state.HasRaster() {
			return true
		}
	}
	return false
}

// Get returns the state for id, or nil if unknown.
func (s *Store) Get(id ID) *State {
	return s.submaps[id]
}

// SortedIDs returns every known submap ID in ascending order. Draw order must
// be reproducible, so callers iterate the store through this rather than the
// underlying map.
func (s *Store) SortedIDs() []ID {
	ids := make([]ID, 0, len(s.submaps))
	for id := range s.submaps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// strideForWidth returns the row stride the native 32 bits-per-pixel image
// format computes for a given width.
func strideForWidth(width int) int {
	return (width*bytesPerPixel + strideAlign - 1) &^ (strideAlign - 1)
}
