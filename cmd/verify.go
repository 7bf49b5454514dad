package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/orbitrender/frameset"
	"github.com/urfave/cli"
)

// Check that the output directory holds a complete frame set.
func VerifyFrames(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	layout := frameset.Layout{Dir: cfg.OutputDir}
	problems := layout.Verify(cfg.NumFrames, int(cfg.Resolution.Width), int(cfg.Resolution.Height))
	if len(problems) == 0 {
		logger.Noticef("%s: all %d frames present", cfg.OutputDir, cfg.NumFrames)
		return nil
	}

	var buf bytes.Buffer
	for _, p := range problems {
		fmt.Fprintf(&buf, "  %s\n", p)
	}
	logger.Errorf("found %d problem(s):\n%s", len(problems), buf.String())

	return fmt.Errorf("frame set in %s is incomplete", cfg.OutputDir)
}
