package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/achilleasa/orbitrender/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Print the camera poses along the orbit without rendering anything.
func ShowTrajectory(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	angles := scene.Orbit(cfg.NumFrames)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Angle (rad)", "Origin", "Target", "Up"})
	for index, angle := range angles {
		pose := scene.OrbitPose(angle, cfg.Radius)
		table.Append([]string{
			fmt.Sprintf("%03d", index),
			fmt.Sprintf("%.4f", angle),
			pose.Origin.String(),
			pose.Target.String(),
			pose.Up.String(),
		})
	}
	table.Render()
	fmt.Fprint(os.Stdout, buf.String())

	if plotFile := ctx.String("plot"); plotFile != "" {
		if err = scene.SavePlot(plotFile, angles, cfg.Radius); err != nil {
			return err
		}
		logger.Noticef("wrote trajectory plot to %s", plotFile)
	}
	return nil
}
