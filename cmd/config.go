package cmd

import (
	"github.com/achilleasa/orbitrender/config"
	"github.com/urfave/cli"
)

// Load the config file passed via the global --config flag (or the defaults)
// and apply any command-line overrides on top.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	applyOverrides(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogging(ctx, cfg.LogLevel)
	return cfg, nil
}

func applyOverrides(ctx *cli.Context, cfg *config.Config) {
	if ctx.NArg() > 0 {
		cfg.Scene = ctx.Args().First()
	}
	if ctx.IsSet("out-dir") {
		cfg.OutputDir = ctx.String("out-dir")
	}
	if ctx.IsSet("frames") {
		cfg.NumFrames = ctx.Int("frames")
	}
	if ctx.IsSet("radius") {
		cfg.Radius = ctx.Float64("radius")
	}
	if ctx.IsSet("width") {
		cfg.Resolution.Width = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		cfg.Resolution.Height = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("fov") {
		cfg.FOV = ctx.Float64("fov")
	}
	if ctx.IsSet("spp") {
		cfg.SamplesPerPixel = uint32(ctx.Int("spp"))
	}
	if ctx.IsSet("seed") {
		cfg.Seed = uint32(ctx.Int("seed"))
	}
	if ctx.IsSet("fps") {
		cfg.FPS = uint32(ctx.Int("fps"))
	}
	if ctx.IsSet("out") {
		cfg.Encoder.Output = ctx.String("out")
	}
	if ctx.IsSet("tracer-cmd") {
		cfg.Tracer.Command = ctx.String("tracer-cmd")
	}
	if ctx.IsSet("keep-jobs") {
		cfg.Tracer.KeepJobs = ctx.Bool("keep-jobs")
	}
	if ctx.IsSet("linear") {
		cfg.SRGB = !ctx.Bool("linear")
	}
	if ctx.IsSet("mqtt-url") {
		cfg.Progress.MQTT.URL = ctx.String("mqtt-url")
	}
}
