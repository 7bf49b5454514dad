package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/achilleasa/orbitrender/encoder"
	"github.com/achilleasa/orbitrender/frameset"
	"github.com/achilleasa/orbitrender/log"
	"github.com/achilleasa/orbitrender/progress"
	"github.com/achilleasa/orbitrender/raster"
	"github.com/achilleasa/orbitrender/scene"
	"github.com/achilleasa/orbitrender/tracer"
)

// Holds the position channel of the previously rendered frame. It is seeded
// by the warm-up frame and overwritten after every indexed frame.
type positionSlot struct {
	pos *raster.Frame
}

// Store the position channel of the current frame and return the previous one.
func (s *positionSlot) swap(pos *raster.Frame) *raster.Frame {
	prev := s.pos
	s.pos = pos
	return prev
}

// The Sequencer renders frames along a circular camera orbit, writes the
// per-channel images of each frame and finally encodes the color frames into
// a video.
type Sequencer struct {
	scene    *scene.Scene
	tracer   tracer.Tracer
	writer   *frameset.Writer
	encoder  encoder.Encoder
	notifier progress.Notifier
	console  io.Writer
	logger   log.Logger

	options Options
	slot    positionSlot
	stats   FrameStats
}

// Create a new sequencer. The encoder may be nil if no video should be
// produced.
func NewSequencer(sc *scene.Scene, tr tracer.Tracer, w *frameset.Writer, enc encoder.Encoder, opts Options) (*Sequencer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if tr == nil {
		return nil, ErrNoTracer
	}

	return &Sequencer{
		scene:    sc,
		tracer:   tr,
		writer:   w,
		encoder:  enc,
		notifier: progress.Nop(),
		console:  os.Stdout,
		logger:   log.New("renderer"),
		options:  opts,
	}, nil
}

// Attach a progress notifier.
func (s *Sequencer) SetNotifier(n progress.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// Redirect the run summary lines (default: stdout).
func (s *Sequencer) SetConsole(w io.Writer) {
	if w != nil {
		s.console = w
	}
}

// Shutdown the attached tracer and notifier.
func (s *Sequencer) Close() {
	if err := s.tracer.Close(); err != nil {
		s.logger.Warningf("error closing tracer %s: %v", s.tracer.Id(), err)
	}
	s.notifier.Close()
}

// Get render statistics.
func (s *Sequencer) Stats() FrameStats {
	return s.stats
}

// Render the warm-up frame, every frame of the orbit and then encode the
// video. Any failure aborts the run.
func (s *Sequencer) Render(ctx context.Context) error {
	s.stats = FrameStats{}
	angles := scene.Orbit(s.options.NumFrames)

	s.logger.Noticef("rendering %d frames of %s at %dx%d (%d spp)", len(angles), s.scene, s.options.FrameW, s.options.FrameH, s.options.SamplesPerPixel)

	if err := s.warmUp(ctx); err != nil {
		return err
	}

	loopStart := time.Now()
	for index, angle := range angles {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrInterrupted, err)
		}

		stat, err := s.renderFrame(ctx, index, angle)
		if err != nil {
			return err
		}
		s.stats.Frames = append(s.stats.Frames, stat)

		s.logger.Infof("frame %03d/%03d rendered in %s", index+1, len(angles), stat.RenderTime)
		s.notify(progress.Event{
			Phase:      progress.Frame,
			Frame:      index,
			Total:      len(angles),
			Angle:      angle,
			RenderTime: stat.RenderTime,
		})
	}
	s.stats.RenderTime = time.Since(loopStart)
	fmt.Fprintf(s.console, "Total rendering time: %f seconds\n", s.stats.RenderTime.Seconds())

	if s.encoder != nil && !s.options.SkipEncode {
		s.notify(progress.Event{Phase: progress.Encode, Total: len(angles)})

		encStart := time.Now()
		if err := s.encoder.Encode(ctx, s.writer.ColorPattern(), s.options.VideoFile); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", ErrInterrupted, err)
			}
			return err
		}
		s.stats.EncodeTime = time.Since(encStart)
		fmt.Fprintf(s.console, "Video saved as %s\n", s.options.VideoFile)
	}

	s.notify(progress.Event{Phase: progress.Done, Frame: len(angles), Total: len(angles)})
	return nil
}

// Render the frame at angle 0, write its color channels and seed the
// position slot with its position channel.
func (s *Sequencer) warmUp(ctx context.Context) error {
	start := time.Now()
	frame, err := s.render(ctx, 0)
	if err != nil {
		return err
	}

	rgb, err := frame.Slice(raster.RGB)
	if err != nil {
		return err
	}
	if err = s.writer.WriteFirstFrame(rgb); err != nil {
		return err
	}

	pos, err := frame.Slice(raster.Position)
	if err != nil {
		return err
	}
	s.slot.swap(pos)

	s.stats.WarmUpTime = time.Since(start)
	s.logger.Infof("warm-up frame rendered in %s", s.stats.WarmUpTime)
	s.notify(progress.Event{Phase: progress.WarmUp, Total: s.options.NumFrames, RenderTime: s.stats.WarmUpTime})
	return nil
}

func (s *Sequencer) renderFrame(ctx context.Context, index int, angle float64) (FrameStat, error) {
	stat := FrameStat{Index: index, Angle: angle}

	start := time.Now()
	frame, err := s.render(ctx, angle)
	if err != nil {
		return stat, err
	}
	stat.RenderTime = time.Since(start)

	start = time.Now()
	if err = s.writeChannels(index, frame); err != nil {
		return stat, err
	}
	stat.WriteTime = time.Since(start)

	return stat, nil
}

func (s *Sequencer) render(ctx context.Context, angle float64) (*raster.Frame, error) {
	sensor := scene.NewSensor(scene.OrbitPose(angle, s.options.Radius), s.options.FrameW, s.options.FrameH)
	sensor.FOV = s.options.FOV
	sensor.SampleCount = s.options.SamplesPerPixel
	sensor.Seed = s.options.Seed

	frame, err := s.tracer.Render(ctx, s.scene, sensor)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrInterrupted, err)
		}
		return nil, err
	}

	if frame.Channels < raster.MinChannels {
		return nil, fmt.Errorf("%w: expected at least %d channels; got %d", ErrTooFewChannels, raster.MinChannels, frame.Channels)
	}
	return frame, nil
}

// Derive and write the five channel images of a frame.
func (s *Sequencer) writeChannels(index int, frame *raster.Frame) error {
	images, err := DeriveChannels(frame, s.slot.pos, s.options.DepthNormalization, s.options.PositionNormalization)
	if err != nil {
		return err
	}

	for _, ch := range frameset.Channels {
		if err = s.writer.WriteChannel(ch, index, images[ch]); err != nil {
			return err
		}
	}

	pos, err := frame.Slice(raster.Position)
	if err != nil {
		return err
	}
	s.slot.swap(pos)
	return nil
}

// Compute the output images for every channel of a frame:
//
//	color    = rgb
//	albedo   = albedo
//	depth    = depth / depthNorm
//	normal   = |normal|
//	position = |position| / posNorm - |prevPosition| / posNorm
func DeriveChannels(frame, prevPosition *raster.Frame, depthNorm, posNorm float32) (map[frameset.Channel]*raster.Frame, error) {
	out := make(map[frameset.Channel]*raster.Frame, len(frameset.Channels))

	var err error
	if out[frameset.Color], err = frame.Slice(raster.RGB); err != nil {
		return nil, err
	}
	if out[frameset.Albedo], err = frame.Slice(raster.Albedo); err != nil {
		return nil, err
	}

	depth, err := frame.Slice(raster.Depth)
	if err != nil {
		return nil, err
	}
	out[frameset.Depth] = depth.Div(depthNorm)

	normal, err := frame.Slice(raster.Normal)
	if err != nil {
		return nil, err
	}
	out[frameset.Normal] = normal.Abs()

	pos, err := frame.Slice(raster.Position)
	if err != nil {
		return nil, err
	}
	if prevPosition == nil {
		return nil, fmt.Errorf("renderer: no previous position channel")
	}
	out[frameset.Position], err = pos.Abs().Div(posNorm).Sub(prevPosition.Abs().Div(posNorm))
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Sequencer) notify(ev progress.Event) {
	if err := s.notifier.Notify(ev); err != nil {
		s.logger.Warningf("could not publish %s progress: %v", ev.Phase, err)
	}
}
