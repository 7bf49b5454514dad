package renderer

import "context"

type Renderer interface {
	// Render all frames.
	Render(ctx context.Context) error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
