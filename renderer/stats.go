package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

type FrameStat struct {
	// Frame index along the orbit and its angle in radians.
	Index int
	Angle float64

	// Time spent in the tracer.
	RenderTime time.Duration

	// Time spent deriving and writing channel images.
	WriteTime time.Duration
}

type FrameStats struct {
	// Individual frame stats.
	Frames []FrameStat

	// Time for rendering and writing the warm-up frame.
	WarmUpTime time.Duration

	// Total time for the indexed frame loop (warm-up excluded).
	RenderTime time.Duration

	// Time spent encoding the video.
	EncodeTime time.Duration
}

type durationSummary struct {
	total, min, max time.Duration
}

func (s *durationSummary) add(d time.Duration, first bool) {
	s.total += d
	if first || d < s.min {
		s.min = d
	}
	if first || d > s.max {
		s.max = d
	}
}

func (s durationSummary) row(name string, count int) []string {
	avg := time.Duration(0)
	if count > 0 {
		avg = s.total / time.Duration(count)
	}
	return []string{name, fmt.Sprintf("%d", count), s.total.String(), avg.String(), s.min.String(), s.max.String()}
}

// Write a summary table of per-phase timings.
func (st FrameStats) WriteSummary(w io.Writer) {
	var render, write durationSummary
	for i, fs := range st.Frames {
		render.add(fs.RenderTime, i == 0)
		write.add(fs.WriteTime, i == 0)
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Phase", "Frames", "Total", "Avg", "Min", "Max"})
	table.Append([]string{"warm-up", "1", st.WarmUpTime.String(), st.WarmUpTime.String(), st.WarmUpTime.String(), st.WarmUpTime.String()})
	table.Append(render.row("render", len(st.Frames)))
	table.Append(write.row("write", len(st.Frames)))
	table.SetFooter([]string{"", "", "", "", "LOOP TOTAL", st.RenderTime.String()})
	table.Render()
}

// Write a table with one row per rendered frame.
func (st FrameStats) WriteFrames(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Angle (rad)", "Render time", "Write time"})
	for _, fs := range st.Frames {
		table.Append([]string{
			fmt.Sprintf("%03d", fs.Index),
			fmt.Sprintf("%.4f", fs.Angle),
			fs.RenderTime.String(),
			fs.WriteTime.String(),
		})
	}
	table.Render()
}
