package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of frames along the orbit and the radius of the circle swept by
	// the camera target.
	NumFrames int
	Radius    float64

	// Horizontal field of view in degrees; 0 selects the renderer default.
	FOV float64

	// Number of samples.
	SamplesPerPixel uint32

	// Sampler seed passed to the renderer for every frame.
	Seed uint32

	// Divisors for the depth and position channels.
	DepthNormalization    float32
	PositionNormalization float32

	// Output video file.
	VideoFile string

	// Skip the encoding phase.
	SkipEncode bool
}
