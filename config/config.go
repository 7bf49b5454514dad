// Package config holds the parameters of an orbit render together with their
// defaults and loads overrides from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/orbitrender/encoder"
	"github.com/achilleasa/orbitrender/tracer"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalid           = errors.New("config: invalid configuration")
	ErrUnsupportedFormat = errors.New("config: unsupported config file format")
)

type Resolution struct {
	Width  uint32 `yaml:"width" toml:"width"`
	Height uint32 `yaml:"height" toml:"height"`
}

type TracerConfig struct {
	// Command template used to invoke the renderer.
	Command string `yaml:"command" toml:"command"`

	// Directory for per-frame job files; a temp dir is used when empty.
	WorkDir string `yaml:"work_dir" toml:"work_dir"`

	// Request albedo/depth/normal/position AOVs from the renderer.
	AOVIntegrator bool `yaml:"aov_integrator" toml:"aov_integrator"`

	// Make each job a complete scene by including the source scene. Only
	// needed by renderer commands that do not load the scene themselves.
	IncludeScene bool `yaml:"include_scene" toml:"include_scene"`

	// Keep job files around for debugging.
	KeepJobs bool `yaml:"keep_jobs" toml:"keep_jobs"`
}

type EncoderConfig struct {
	Binary      string `yaml:"binary" toml:"binary"`
	Codec       string `yaml:"codec" toml:"codec"`
	PixelFormat string `yaml:"pixel_format" toml:"pixel_format"`
	Output      string `yaml:"output" toml:"output"`
	Overwrite   bool   `yaml:"overwrite" toml:"overwrite"`
}

type MQTTConfig struct {
	// Broker URL; progress publishing is disabled when empty.
	URL      string `yaml:"url" toml:"url"`
	Topic    string `yaml:"topic" toml:"topic"`
	ClientID string `yaml:"client_id" toml:"client_id"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	QoS      byte   `yaml:"qos" toml:"qos"`
}

type ProgressConfig struct {
	MQTT MQTTConfig `yaml:"mqtt" toml:"mqtt"`
}

// The parameters of an orbit render.
type Config struct {
	// Renderer scene description.
	Scene string `yaml:"scene" toml:"scene"`

	// Directory receiving the per-channel frame images.
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// Number of frames along the orbit.
	NumFrames int `yaml:"num_frames" toml:"num_frames"`

	// Radius of the circle traced by the look-at target.
	Radius float64 `yaml:"radius" toml:"radius"`

	Resolution Resolution `yaml:"resolution" toml:"resolution"`

	// Horizontal field of view in degrees; 0 selects the renderer default.
	FOV float64 `yaml:"fov" toml:"fov"`

	// Path samples per pixel and sampler seed.
	SamplesPerPixel uint32 `yaml:"samples_per_pixel" toml:"samples_per_pixel"`
	Seed            uint32 `yaml:"seed" toml:"seed"`

	// Divisors applied to the depth and position channels before they are
	// written out.
	DepthNormalization    float64 `yaml:"depth_normalization" toml:"depth_normalization"`
	PositionNormalization float64 `yaml:"position_normalization" toml:"position_normalization"`

	// Video frame rate.
	FPS uint32 `yaml:"fps" toml:"fps"`

	// Encode PNG output with the sRGB transfer curve.
	SRGB bool `yaml:"srgb" toml:"srgb"`

	LogLevel string `yaml:"log_level" toml:"log_level"`

	Tracer   TracerConfig   `yaml:"tracer" toml:"tracer"`
	Encoder  EncoderConfig  `yaml:"encoder" toml:"encoder"`
	Progress ProgressConfig `yaml:"progress" toml:"progress"`
}

// Get the default configuration.
func Default() *Config {
	encOpts := encoder.DefaultOptions()

	return &Config{
		Scene:                 "classroom/scene.xml",
		OutputDir:             "frames",
		NumFrames:             300,
		Radius:                10.0,
		Resolution:            Resolution{Width: 1280, Height: 720},
		SamplesPerPixel:       1,
		DepthNormalization:    50.0,
		PositionNormalization: 10.0,
		FPS:                   encOpts.FPS,
		SRGB:                  true,
		LogLevel:              "notice",
		Tracer: TracerConfig{
			Command:       tracer.DefaultCommand,
			AOVIntegrator: true,
		},
		Encoder: EncoderConfig{
			Binary:      encOpts.Binary,
			Codec:       encOpts.Codec,
			PixelFormat: encOpts.PixelFormat,
			Output:      "output.mp4",
			Overwrite:   encOpts.Overwrite,
		},
		Progress: ProgressConfig{
			MQTT: MQTTConfig{
				Topic:    "orbitrender/progress",
				ClientID: "orbitrender",
			},
		},
	}
}

// Load the config file at path on top of the defaults. The format is
// selected by the file extension (.yaml, .yml or .toml). The result is not
// validated so that callers can apply further overrides before calling
// Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: could not parse %s: %w", path, err)
	}

	return cfg, nil
}

// Ensure that the configuration describes a renderable orbit.
func (c *Config) Validate() error {
	var problems []string

	if c.Scene == "" {
		problems = append(problems, "scene must be set")
	}
	if c.OutputDir == "" {
		problems = append(problems, "output_dir must be set")
	}
	if c.NumFrames < 1 {
		problems = append(problems, fmt.Sprintf("num_frames must be at least 1; got %d", c.NumFrames))
	}
	if c.Radius <= 0 {
		problems = append(problems, fmt.Sprintf("radius must be positive; got %g", c.Radius))
	}
	if c.Resolution.Width == 0 || c.Resolution.Height == 0 {
		problems = append(problems, fmt.Sprintf("resolution must be positive; got %dx%d", c.Resolution.Width, c.Resolution.Height))
	}
	if c.FOV < 0 || c.FOV >= 180 {
		problems = append(problems, fmt.Sprintf("fov must be in [0, 180); got %g", c.FOV))
	}
	if c.SamplesPerPixel < 1 {
		problems = append(problems, "samples_per_pixel must be at least 1")
	}
	if c.DepthNormalization == 0 {
		problems = append(problems, "depth_normalization must be non-zero")
	}
	if c.PositionNormalization == 0 {
		problems = append(problems, "position_normalization must be non-zero")
	}
	if c.FPS == 0 {
		problems = append(problems, "fps must be positive")
	}
	if c.Encoder.Output == "" {
		problems = append(problems, "encoder.output must be set")
	}
	if c.Progress.MQTT.URL != "" && c.Progress.MQTT.Topic == "" {
		problems = append(problems, "progress.mqtt.topic must be set when a broker url is given")
	}

	if len(problems) != 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Get the encoder options derived from the configuration.
func (c *Config) EncoderOptions() encoder.Options {
	return encoder.Options{
		Binary:      c.Encoder.Binary,
		Codec:       c.Encoder.Codec,
		PixelFormat: c.Encoder.PixelFormat,
		FPS:         c.FPS,
		Overwrite:   c.Encoder.Overwrite,
	}
}

// Get the tracer options derived from the configuration.
func (c *Config) TracerOptions() tracer.ProcessOptions {
	return tracer.ProcessOptions{
		Command:       c.Tracer.Command,
		WorkDir:       c.Tracer.WorkDir,
		AOVIntegrator: c.Tracer.AOVIntegrator,
		IncludeScene:  c.Tracer.IncludeScene,
		KeepJobs:      c.Tracer.KeepJobs,
	}
}
