// Package mapbuilder drives the pipeline that composites versioned submap
// rasters into one world-frame occupancy grid.
//
// Every submap list update triggers one cycle: refresh pose metadata for every
// listed submap, fetch rasters whose version changed, plan the minimal
// enclosing canvas, composite, classify, optionally denoise, and hand the
// result to the publisher. The whole cycle runs under a single lock so the
// canvas is always built from one consistent snapshot of the cache.
package mapbuilder

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/gridmap/grid"
	"go.viam.com/gridmap/render"
	"go.viam.com/gridmap/spatialmath"
	"go.viam.com/gridmap/submap"
)

// A SubmapDescriptor announces the latest pose and raster version of one
// submap.
type SubmapDescriptor struct {
	ID      submap.ID
	Pose    spatialmath.Pose
	Version int
}

// A SubmapList is one update event from the mapping process.
type SubmapList struct {
	FrameID string
	Stamp   time.Time
	Submaps []SubmapDescriptor
}

// A Publisher hands finished grids to downstream consumers.
type Publisher interface {
	// SubscriberCount reports how many consumers are currently listening.
	SubscriberCount() int
	// PublishGrid delivers one finished occupancy grid.
	PublishGrid(ctx context.Context, g *grid.OccupancyGrid) error
}

// DenoiseMode selects the optional post-processing filter.
type DenoiseMode string

// The available denoise modes.
const (
	DenoiseNone     = DenoiseMode("")
	DenoiseMajority = DenoiseMode("majority")
	DenoiseVote     = DenoiseMode("vote")
)

// Config configures a Builder.
type Config struct {
	// Resolution is meters per output grid pixel.
	Resolution float64
	// OccupiedThreshold is the occupancy probability (percent) the denoise
	// filters treat as occupied. Defaults to grid.DefaultOccupiedThreshold.
	OccupiedThreshold int
	// Denoise selects a post-processing filter; off by default.
	Denoise DenoiseMode
}

// validate checks the config, fills in defaults, and resolves the denoise
// mode to its filter.
func (c *Config) validate() (grid.Filter, error) {
	if c.Resolution <= 0 {
		return nil, errors.New("resolution must be positive")
	}
	if c.OccupiedThreshold == 0 {
		c.OccupiedThreshold = grid.DefaultOccupiedThreshold
	}
	return c.filter()
}

func (c *Config) filter() (grid.Filter, error) {
	switch c.Denoise {
	case DenoiseNone:
		return nil, nil
	case DenoiseMajority:
		return grid.MajorityFilter, nil
	case DenoiseVote:
		return grid.VoteFilter, nil
	default:
		return nil, errors.Errorf("unknown denoise mode %q", c.Denoise)
	}
}

// A Builder owns the submap cache and runs update cycles against it.
type Builder struct {
	mu        sync.Mutex
	cfg       Config
	filter    grid.Filter
	fetcher   submap.Fetcher
	publisher Publisher
	store     *submap.Store
	logger    golog.Logger
}

// NewBuilder returns a Builder rendering at the configured resolution.
func NewBuilder(cfg Config, fetcher submap.Fetcher, publisher Publisher, logger golog.Logger) (*Builder, error) {
	filter, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:       cfg,
		filter:    filter,
		fetcher:   fetcher,
		publisher: publisher,
		store:     submap.NewStore(),
		logger:    logger,
	}, nil
}

// HandleSubmapList runs one full update cycle for the given event. When no
// consumer is listening the cycle is skipped entirely, including any fetches,
// since fetching may block on the mapping process.
func (b *Builder) HandleSubmapList(ctx context.Context, update SubmapList) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.publisher.SubscriberCount() == 0 {
		return
	}

	for _, desc := range update.Submaps {
		b.store.UpdateMetadata(desc.ID, desc.Pose, desc.Version)
		if !b.store.NeedsRefresh(desc.ID, desc.Version) {
			continue
		}
		tex, err := b.fetcher.FetchTexture(ctx, desc.ID)
		if err != nil {
			// Not fatal; the previous raster, if any, stays cached and this
			// submap sits out the cycle.
			b.logger.Debugw("failed to fetch submap texture", "submap", desc.ID, "error", err)
			continue
		}
		if err := b.store.InstallRaster(desc.ID, tex); err != nil {
			b.logger.Errorw("failed to install submap raster", "submap", desc.ID, "error", err)
		}
	}

	b.drawAndPublish(ctx, update.FrameID, update.Stamp)
}

func (b *Builder) drawAndPublish(ctx context.Context, frameID string, stamp time.Time) {
	size, origin, ok := render.PlanCanvas(b.store, b.cfg.Resolution)
	if !ok {
		// Nothing has a raster yet; nothing to publish.
		return
	}

	canvas := render.NewCanvas(size, origin)
	for _, id := range b.store.SortedIDs() {
		canvas.DrawSubmap(b.store.Get(id), b.cfg.Resolution)
	}

	g := grid.FromCanvas(canvas, frameID, stamp, b.cfg.Resolution)
	if b.filter != nil {
		b.filter(g, b.cfg.OccupiedThreshold)
	}
	if err := b.publisher.PublishGrid(ctx, g); err != nil {
		b.logger.Errorw("failed to publish occupancy grid", "frame", frameID, "error", err)
	}
}
