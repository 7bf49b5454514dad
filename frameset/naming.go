// Package frameset names, writes and verifies the per-channel images
// produced for every frame of an orbit.
package frameset

import (
	"fmt"
	"path/filepath"
)

// The per-frame output channels, in the order they are written.
type Channel string

const (
	Color    Channel = "frame"
	Albedo   Channel = "albedo"
	Depth    Channel = "depth"
	Normal   Channel = "normal"
	Position Channel = "position"
)

// All channels written for each indexed frame.
var Channels = []Channel{Color, Albedo, Depth, Normal, Position}

// The file name of the RGB image of the warm-up frame.
const FirstFrameName = "first_frame.png"

// A frame set rooted at a directory.
type Layout struct {
	Dir string
}

// Get the file name of channel ch for frame index.
func FileName(ch Channel, index int) string {
	return fmt.Sprintf("%s_%03d.png", ch, index)
}

// Get the path of channel ch for frame index.
func (l Layout) Path(ch Channel, index int) string {
	return filepath.Join(l.Dir, FileName(ch, index))
}

// Get the path of the warm-up frame.
func (l Layout) FirstFrame() string {
	return filepath.Join(l.Dir, FirstFrameName)
}

// Get the printf-style input pattern for the color frames, as understood by
// the video encoder.
func (l Layout) ColorPattern() string {
	return filepath.Join(l.Dir, string(Color)+"_%03d.png")
}

// List every artifact expected for a run of numFrames frames: the warm-up
// frame followed by all channels of each indexed frame.
func (l Layout) Expected(numFrames int) []string {
	paths := make([]string, 0, 1+numFrames*len(Channels))
	paths = append(paths, l.FirstFrame())
	for i := 0; i < numFrames; i++ {
		for _, ch := range Channels {
			paths = append(paths, l.Path(ch, i))
		}
	}
	return paths
}
