package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achilleasa/orbitrender/encoder"
	"github.com/achilleasa/orbitrender/frameset"
	"github.com/urfave/cli"
)

// Encode an existing set of color frames into a video.
func EncodeFrames(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layout := frameset.Layout{Dir: cfg.OutputDir}
	enc := encoder.NewFFmpeg(cfg.EncoderOptions())

	start := time.Now()
	if err = enc.Encode(runCtx, layout.ColorPattern(), cfg.Encoder.Output); err != nil {
		return err
	}
	logger.Infof("encoding took %s", time.Since(start))

	fmt.Fprintf(os.Stdout, "Video saved as %s\n", cfg.Encoder.Output)
	return nil
}
