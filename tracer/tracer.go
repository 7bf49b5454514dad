package tracer

import (
	"context"
	"errors"

	"github.com/achilleasa/orbitrender/raster"
	"github.com/achilleasa/orbitrender/scene"
)

var (
	ErrRenderFailed = errors.New("tracer: render failed")
	ErrBadOutput    = errors.New("tracer: renderer produced unusable output")
)

// A Tracer renders a scene as seen by a sensor and returns the resulting
// multi-channel raster. Implementations block until the frame is complete.
type Tracer interface {
	// Get tracer id.
	Id() string

	// Render a single frame.
	Render(ctx context.Context, sc *scene.Scene, sensor *scene.Sensor) (*raster.Frame, error)

	// Shutdown and cleanup tracer.
	Close() error
}
