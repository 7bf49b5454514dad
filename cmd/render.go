package cmd

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/achilleasa/orbitrender/config"
	"github.com/achilleasa/orbitrender/encoder"
	"github.com/achilleasa/orbitrender/frameset"
	"github.com/achilleasa/orbitrender/progress"
	"github.com/achilleasa/orbitrender/renderer"
	"github.com/achilleasa/orbitrender/scene"
	"github.com/achilleasa/orbitrender/tracer"
	"github.com/urfave/cli"
)

// Render every frame of the orbit and encode the color frames into a video.
func RenderOrbit(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	sc, err := scene.Load(cfg.Scene)
	if err != nil {
		return err
	}

	tr, err := tracer.NewProcessTracer("renderer", cfg.TracerOptions())
	if err != nil {
		return err
	}

	w, err := frameset.NewWriter(cfg.OutputDir, cfg.SRGB)
	if err != nil {
		tr.Close()
		return err
	}

	enc := encoder.NewFFmpeg(cfg.EncoderOptions())
	seq, err := renderer.NewSequencer(sc, tr, w, enc, rendererOptions(cfg, ctx.Bool("no-encode")))
	if err != nil {
		tr.Close()
		return err
	}
	defer seq.Close()

	if cfg.Progress.MQTT.URL != "" {
		notifier, err := progress.NewMQTT(mqttOptions(cfg))
		if err != nil {
			logger.Warningf("progress publishing disabled: %v", err)
		} else {
			seq.SetNotifier(notifier)
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = seq.Render(runCtx)
	displayFrameStats(seq.Stats(), ctx.Bool("frame-stats"))
	return err
}

func rendererOptions(cfg *config.Config, skipEncode bool) renderer.Options {
	return renderer.Options{
		FrameW:                cfg.Resolution.Width,
		FrameH:                cfg.Resolution.Height,
		NumFrames:             cfg.NumFrames,
		Radius:                cfg.Radius,
		FOV:                   cfg.FOV,
		SamplesPerPixel:       cfg.SamplesPerPixel,
		Seed:                  cfg.Seed,
		DepthNormalization:    float32(cfg.DepthNormalization),
		PositionNormalization: float32(cfg.PositionNormalization),
		VideoFile:             cfg.Encoder.Output,
		SkipEncode:            skipEncode,
	}
}

func mqttOptions(cfg *config.Config) progress.MQTTOptions {
	m := cfg.Progress.MQTT
	return progress.MQTTOptions{
		URL:      m.URL,
		Topic:    m.Topic,
		ClientID: m.ClientID,
		Username: m.Username,
		Password: m.Password,
		QoS:      m.QoS,
	}
}

func displayFrameStats(stats renderer.FrameStats, perFrame bool) {
	if len(stats.Frames) == 0 {
		return
	}

	var buf bytes.Buffer
	stats.WriteSummary(&buf)
	if perFrame {
		stats.WriteFrames(&buf)
	}
	logger.Noticef("frame statistics\n%s", buf.String())
}
