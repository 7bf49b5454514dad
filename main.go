package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/orbitrender/cmd"
	"github.com/urfave/cli"
)

var orbitFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "frames, n",
		Value: 300,
		Usage: "number of frames along the orbit",
	},
	cli.Float64Flag{
		Name:  "radius, r",
		Value: 10,
		Usage: "radius of the circle traced by the look-at target",
	},
}

var frameFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "out-dir, d",
		Value: "frames",
		Usage: "directory for the per-channel frame images",
	},
	cli.IntFlag{
		Name:  "width",
		Value: 1280,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 720,
		Usage: "frame height",
	},
}

var videoFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "fps",
		Value: 30,
		Usage: "video frame rate",
	},
	cli.StringFlag{
		Name:  "out, o",
		Value: "output.mp4",
		Usage: "video filename",
	},
}

func concatFlags(sets ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "orbitrender"
	app.Usage = "render a scene along a circular camera orbit and encode it into a video"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a YAML or TOML file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render every frame of the orbit and encode the color frames",
			Description: `
Render a warm-up frame followed by the requested number of frames while the
camera look-at target sweeps a horizontal circle around the scene. For every
frame the color, albedo, depth, normal and position-delta channels are written
to the output directory as PNG images. The color frames are then encoded into
a video using ffmpeg.`,
			ArgsUsage: "[scene.xml]",
			Flags: concatFlags(orbitFlags, frameFlags, videoFlags, []cli.Flag{
				cli.IntFlag{
					Name:  "spp",
					Value: 1,
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "seed",
					Usage: "sampler seed",
				},
				cli.Float64Flag{
					Name:  "fov",
					Usage: "horizontal field of view in degrees (0 = renderer default)",
				},
				cli.StringFlag{
					Name:  "tracer-cmd",
					Usage: "renderer command template; supports {job}, {output}, {scene}, {spp} and {seed}",
				},
				cli.BoolFlag{
					Name:  "keep-jobs",
					Usage: "keep the per-frame renderer job files",
				},
				cli.BoolFlag{
					Name:  "linear",
					Usage: "quantize PNG output linearly instead of applying the sRGB curve",
				},
				cli.BoolFlag{
					Name:  "no-encode",
					Usage: "skip video encoding",
				},
				cli.BoolFlag{
					Name:  "frame-stats",
					Usage: "display per-frame statistics",
				},
				cli.StringFlag{
					Name:  "mqtt-url",
					Usage: "publish progress events to this MQTT broker",
				},
			}),
			Action: cmd.RenderOrbit,
		},
		{
			Name:  "trajectory",
			Usage: "print the camera poses along the orbit",
			Flags: concatFlags(orbitFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "plot, p",
					Usage: "also save a top-down plot of the orbit to this file",
				},
			}),
			Action: cmd.ShowTrajectory,
		},
		{
			Name:   "encode",
			Usage:  "encode previously rendered color frames into a video",
			Flags:  concatFlags(frameFlags[:1], videoFlags),
			Action: cmd.EncodeFrames,
		},
		{
			Name:   "verify",
			Usage:  "check that an output directory holds a complete frame set",
			Flags:  concatFlags(orbitFlags[:1], frameFlags),
			Action: cmd.VerifyFrames,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
