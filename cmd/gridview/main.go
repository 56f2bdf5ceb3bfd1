// Package main renders a synthetic set of submaps through the full
// compositing pipeline and writes the resulting occupancy grid to a PNG.
package main

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/edaniels/golog"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/gridmap/grid"
	"go.viam.com/gridmap/mapbuilder"
	"go.viam.com/gridmap/spatialmath"
	"go.viam.com/gridmap/submap"
)

var logger = golog.NewDevelopmentLogger("gridview")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	Out        string         `flag:"out,default=grid.png,usage=output PNG path"`
	Resolution resolutionFlag `flag:"resolution,default=,usage=meters per output pixel"`
	Denoise    string         `flag:"denoise,default=,usage=optional denoise filter (majority or vote)"`
}

type resolutionFlag float64

func (rf *resolutionFlag) String() string {
	return strconv.FormatFloat(float64(*rf), 'f', -1, 64)
}

func (rf *resolutionFlag) Set(val string) error {
	if val == "" {
		*rf = 0.05
		return nil
	}
	conv, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return err
	}
	*rf = resolutionFlag(conv)
	return nil
}

// Get returns the flag's value.
func (rf *resolutionFlag) Get() interface{} {
	return float64(*rf)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	return renderDemo(ctx, argsParsed, logger)
}

// demoFetcher serves textures for a fixed set of synthetic rooms.
type demoFetcher struct {
	rooms map[submap.ID]*submap.Texture
}

func (f *demoFetcher) FetchTexture(ctx context.Context, id submap.ID) (*submap.Texture, error) {
	tex, ok := f.rooms[id]
	if !ok {
		return nil, errors.Errorf("no texture for submap %s", id)
	}
	return tex, nil
}

// pngPublisher saves every published grid as a PNG. It remembers the outcome
// of the last save so the caller can tell whether anything reached disk.
type pngPublisher struct {
	path   string
	logger golog.Logger
	wrote  bool
	err    error
}

func (p *pngPublisher) SubscriberCount() int {
	return 1
}

func (p *pngPublisher) PublishGrid(ctx context.Context, g *grid.OccupancyGrid) error {
	p.logger.Infow("publishing grid", "width", g.Width, "height", g.Height, "origin", g.Origin.Point())
	if err := gg.SavePNG(p.path, g.Image()); err != nil {
		p.err = err
		return err
	}
	p.wrote = true
	return nil
}

// roomTexture builds a square room: walls occupied, interior free, corners
// never observed.
func roomTexture(size, version int, resolution float64) *submap.Texture {
	tex := &submap.Texture{
		Width:      size,
		Height:     size,
		Version:    version,
		Resolution: resolution,
		SlicePose:  spatialmath.NewZeroPose(),
		Intensity:  make([]byte, size*size),
		Alpha:      make([]byte, size*size),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*size + x
			onBorder := x == 0 || y == 0 || x == size-1 || y == size-1
			nearCorner := (x < 3 || x >= size-3) && (y < 3 || y >= size-3)
			switch {
			case nearCorner:
				// leave intensity and alpha zero: unobserved
			case onBorder:
				tex.Alpha[i] = 255 // intensity 0 reads as fully occupied
			default:
				tex.Intensity[i] = 255
				tex.Alpha[i] = 255
			}
		}
	}
	return tex
}

func renderDemo(ctx context.Context, args Arguments, logger golog.Logger) error {
	resolution := float64(args.Resolution)
	fetcher := &demoFetcher{rooms: map[submap.ID]*submap.Texture{
		{Trajectory: 0, Index: 0}: roomTexture(60, 1, resolution),
		{Trajectory: 0, Index: 1}: roomTexture(40, 1, resolution),
		{Trajectory: 1, Index: 0}: roomTexture(50, 1, resolution),
	}}
	publisher := &pngPublisher{path: args.Out, logger: logger}

	builder, err := mapbuilder.NewBuilder(mapbuilder.Config{
		Resolution: resolution,
		Denoise:    mapbuilder.DenoiseMode(args.Denoise),
	}, fetcher, publisher, logger)
	if err != nil {
		return err
	}

	builder.HandleSubmapList(ctx, mapbuilder.SubmapList{
		FrameID: "map",
		Stamp:   time.Now(),
		Submaps: []mapbuilder.SubmapDescriptor{
			{
				ID:      submap.ID{Trajectory: 0, Index: 0},
				Pose:    spatialmath.NewZeroPose(),
				Version: 1,
			},
			{
				ID:      submap.ID{Trajectory: 0, Index: 1},
				Pose:    spatialmath.NewPoseFromPoint(r3.Vector{X: 2, Y: 1}),
				Version: 1,
			},
			{
				ID:      submap.ID{Trajectory: 1, Index: 0},
				Pose:    spatialmath.NewPoseFromAxisAngle(r3.Vector{X: -1, Y: 2}, r3.Vector{Z: 1}, math.Pi/6),
				Version: 1,
			},
		},
	})

	// publish failures are only logged inside the cycle; surface them here
	if publisher.err != nil {
		return publisher.err
	}
	if !publisher.wrote {
		return errors.New("no grid was rendered")
	}
	logger.Infow("wrote occupancy grid", "path", args.Out)
	return nil
}
