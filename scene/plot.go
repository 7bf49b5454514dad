package scene

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Render a top-down (XZ plane) view of the orbit to path. The image format
// is selected by the file extension. The look-at targets are drawn as a
// connected path and the fixed camera origin as a separate marker.
func SavePlot(path string, angles []float64, radius float64) error {
	if len(angles) == 0 {
		return fmt.Errorf("scene: cannot plot an empty trajectory")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Orbit - %d frames, radius %g", len(angles), radius)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Z"

	targets := make(plotter.XYs, 0, len(angles))
	for _, angle := range angles {
		pose := OrbitPose(angle, radius)
		targets = append(targets, plotter.XY{X: pose.Target[0], Y: pose.Target[2]})
	}

	line, points, err := plotter.NewLinePoints(targets)
	if err != nil {
		return fmt.Errorf("scene: could not plot targets: %w", err)
	}
	line.Width = vg.Points(1)
	points.Shape = draw.CircleGlyph{}

	origin, err := plotter.NewScatter(plotter.XYs{{X: OrbitOrigin[0], Y: OrbitOrigin[2]}})
	if err != nil {
		return fmt.Errorf("scene: could not plot origin: %w", err)
	}
	origin.Shape = draw.CrossGlyph{}
	origin.Radius = vg.Points(5)

	p.Add(plotter.NewGrid(), line, points, origin)
	p.Legend.Add("target", line, points)
	p.Legend.Add("origin", origin)

	if err = p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("scene: could not save plot: %w", err)
	}
	return nil
}
