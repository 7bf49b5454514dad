package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/orbitrender/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestApplyOverrides(t *testing.T) {
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.Int("frames", 300, "")
	set.Float64("radius", 10, "")
	set.Int("width", 1280, "")
	set.Int("height", 720, "")
	set.Bool("linear", false, "")
	set.String("out", "output.mp4", "")
	require.NoError(t, set.Parse([]string{"--frames", "12", "--width", "320", "--linear", "living_room/scene.xml"}))

	cfg := config.Default()
	applyOverrides(cli.NewContext(nil, set, nil), cfg)

	assert.Equal(t, "living_room/scene.xml", cfg.Scene)
	assert.Equal(t, 12, cfg.NumFrames)
	assert.Equal(t, uint32(320), cfg.Resolution.Width)
	assert.False(t, cfg.SRGB)

	// Flags left at their defaults do not clobber config values
	assert.Equal(t, uint32(720), cfg.Resolution.Height)
	assert.Equal(t, 10.0, cfg.Radius)
	assert.Equal(t, "output.mp4", cfg.Encoder.Output)
}

func TestRendererOptions(t *testing.T) {
	cfg := config.Default()
	cfg.FOV = 60
	opts := rendererOptions(cfg, false)

	assert.Equal(t, uint32(1280), opts.FrameW)
	assert.Equal(t, uint32(720), opts.FrameH)
	assert.Equal(t, 300, opts.NumFrames)
	assert.Equal(t, 60.0, opts.FOV)
	assert.Equal(t, float32(50), opts.DepthNormalization)
	assert.Equal(t, float32(10), opts.PositionNormalization)
	assert.Equal(t, "output.mp4", opts.VideoFile)
	assert.False(t, opts.SkipEncode)

	assert.True(t, rendererOptions(cfg, true).SkipEncode)
}

func setupCommandContext(t *testing.T, configPath string, args ...string) *cli.Context {
	t.Helper()

	globalSet := flag.NewFlagSet("orbitrender", flag.ContinueOnError)
	globalSet.Bool("v", false, "")
	globalSet.Bool("vv", false, "")
	globalSet.String("config", "", "")
	require.NoError(t, globalSet.Parse([]string{"--config", configPath}))

	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.Int("frames", 300, "")
	set.Float64("radius", 10, "")
	require.NoError(t, set.Parse(args))

	return cli.NewContext(nil, set, cli.NewContext(nil, globalSet, nil))
}

func TestLoadConfigOverridesBeforeValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_frames: 0\nfps: 24\n"), 0644))

	// The flag repairs the invalid file value
	cfg, err := loadConfig(setupCommandContext(t, path, "--frames", "5"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NumFrames)
	assert.Equal(t, uint32(24), cfg.FPS)

	_, err = loadConfig(setupCommandContext(t, path))
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = loadConfig(setupCommandContext(t, filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Overrides are validated too
	_, err = loadConfig(setupCommandContext(t, path, "--frames", "5", "--radius", "-1"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}
