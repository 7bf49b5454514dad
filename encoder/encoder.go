// Package encoder assembles rendered color frames into a video by running an
// external ffmpeg process.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/achilleasa/orbitrender/log"
	"github.com/achilleasa/orbitrender/proc"
)

var (
	ErrEncoderFailed = errors.New("encoder: video encoding failed")
	ErrNotInstalled  = errors.New("encoder: encoder binary could not be started")
)

// The Encoder interface is implemented by video encoder backends.
type Encoder interface {
	// Encode the printf-style image sequence matched by inputPattern into
	// the video file at output.
	Encode(ctx context.Context, inputPattern, output string) error
}

type Options struct {
	// Encoder executable; may include extra leading arguments.
	Binary string

	// Video codec and pixel format.
	Codec       string
	PixelFormat string

	// Input frame rate.
	FPS uint32

	// Overwrite an existing output file instead of failing.
	Overwrite bool
}

// Get the default ffmpeg options (H.264 with 4:2:0 chroma subsampling at 30 fps).
func DefaultOptions() Options {
	return Options{
		Binary:      "ffmpeg",
		Codec:       "libx264",
		PixelFormat: "yuv420p",
		FPS:         30,
		Overwrite:   true,
	}
}

// An encoder backed by the ffmpeg command line tool.
type FFmpeg struct {
	opts   Options
	logger log.Logger
}

// Create a new ffmpeg encoder.
func NewFFmpeg(opts Options) *FFmpeg {
	return &FFmpeg{
		opts:   opts,
		logger: log.New("encoder"),
	}
}

// Build the ffmpeg command line for encoding inputPattern into output.
func (e *FFmpeg) Args(inputPattern, output string) ([]string, error) {
	args, err := proc.Expand(e.opts.Binary, nil)
	if err != nil {
		return nil, err
	}

	if e.opts.Overwrite {
		args = append(args, "-y")
	}
	return append(args,
		"-r", strconv.FormatUint(uint64(e.opts.FPS), 10),
		"-i", inputPattern,
		"-vcodec", e.opts.Codec,
		"-pix_fmt", e.opts.PixelFormat,
		output,
	), nil
}

// Run ffmpeg and wait for it to exit. A non-zero exit status is reported as
// ErrEncoderFailed.
func (e *FFmpeg) Encode(ctx context.Context, inputPattern, output string) error {
	args, err := e.Args(inputPattern, output)
	if err != nil {
		return err
	}

	e.logger.Infof("encoding %s -> %s", inputPattern, output)
	e.logger.Debugf("running %q", args)

	start := time.Now()
	if err = proc.Run(ctx, args); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var exitErr *proc.ExitError
		if errors.As(err, &exitErr) && !exitErr.Ran() {
			return fmt.Errorf("%w: %w", ErrNotInstalled, err)
		}
		return fmt.Errorf("%w: %w", ErrEncoderFailed, err)
	}

	e.logger.Infof("encoded %s in %s", output, time.Since(start))
	return nil
}
