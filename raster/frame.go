// Package raster holds the multi-channel float images returned by the
// external renderer together with the element-wise operations used to derive
// the per-channel outputs.
package raster

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrChannelRange  = errors.New("raster: channel range out of bounds")
	ErrDimsMismatch  = errors.New("raster: frame dimensions do not match")
	ErrInvalidLayout = errors.New("raster: invalid frame dimensions")
)

// A half-open range [Lo, Hi) of channels within a frame.
type ChannelRange struct {
	Name string
	Lo   int
	Hi   int
}

// Number of channels in the range.
func (r ChannelRange) Len() int {
	return r.Hi - r.Lo
}

func (r ChannelRange) String() string {
	return fmt.Sprintf("%s[%d:%d]", r.Name, r.Lo, r.Hi)
}

// The channel layout produced by the renderer's AOV integrator.
var (
	RGB      = ChannelRange{"rgb", 0, 3}
	Albedo   = ChannelRange{"albedo", 3, 6}
	Depth    = ChannelRange{"depth", 6, 7}
	Normal   = ChannelRange{"normal", 7, 10}
	Position = ChannelRange{"position", 10, 13}
)

// The minimum number of channels a rendered frame must carry.
const MinChannels = 13

// A multi-channel float raster. Pixels are stored row-major with channels
// interleaved, i.e. Pix[(y*Width+x)*Channels+c].
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// Allocate a zeroed frame.
func NewFrame(width, height, channels int) (*Frame, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidLayout, width, height, channels)
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}, nil
}

// Get the value of channel c at pixel (x, y).
func (f *Frame) At(x, y, c int) float32 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Set the value of channel c at pixel (x, y).
func (f *Frame) Set(x, y, c int, v float32) {
	f.Pix[(y*f.Width+x)*f.Channels+c] = v
}

// Extract a copy of the channels in range r.
func (f *Frame) Slice(r ChannelRange) (*Frame, error) {
	if r.Lo < 0 || r.Hi > f.Channels || r.Lo >= r.Hi {
		return nil, fmt.Errorf("%w: %s of %d channels", ErrChannelRange, r, f.Channels)
	}

	out, err := NewFrame(f.Width, f.Height, r.Len())
	if err != nil {
		return nil, err
	}

	numPixels := f.Width * f.Height
	for p := 0; p < numPixels; p++ {
		copy(out.Pix[p*out.Channels:(p+1)*out.Channels], f.Pix[p*f.Channels+r.Lo:p*f.Channels+r.Hi])
	}
	return out, nil
}

// Return a copy of the frame with every element multiplied by s.
func (f *Frame) Scale(s float32) *Frame {
	return f.mapValues(func(v float32) float32 { return v * s })
}

// Return a copy of the frame with every element divided by d.
func (f *Frame) Div(d float32) *Frame {
	return f.mapValues(func(v float32) float32 { return v / d })
}

// Return a copy of the frame with the absolute value of every element.
func (f *Frame) Abs() *Frame {
	return f.mapValues(func(v float32) float32 { return float32(math.Abs(float64(v))) })
}

// Return the element-wise difference f - other.
func (f *Frame) Sub(other *Frame) (*Frame, error) {
	if !f.SameDims(other) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrDimsMismatch, f.dims(), other.dims())
	}
	out := f.Clone()
	for i, v := range other.Pix {
		out.Pix[i] -= v
	}
	return out, nil
}

// Check whether two frames share width, height and channel count.
func (f *Frame) SameDims(other *Frame) bool {
	return other != nil && f.Width == other.Width && f.Height == other.Height && f.Channels == other.Channels
}

// Create a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]float32, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Pix: pix}
}

func (f *Frame) mapValues(fn func(float32) float32) *Frame {
	out := f.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = fn(v)
	}
	return out
}

func (f *Frame) dims() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%dx%d", f.Width, f.Height, f.Channels)
}
