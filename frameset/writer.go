package frameset

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/achilleasa/orbitrender/raster"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/lucasb-eyer/go-colorful"
)

// Writes frame channels as 8-bit PNG images.
type Writer struct {
	Layout

	// Encode values with the sRGB transfer curve; when false values are
	// quantized linearly. Values are clamped to [0, 1] either way.
	SRGB bool
}

// Create a writer for dir, creating the directory if it does not exist.
func NewWriter(dir string, srgb bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("frameset: could not create output dir: %w", err)
	}
	return &Writer{Layout: Layout{Dir: dir}, SRGB: srgb}, nil
}

// Write the RGB image of the warm-up frame.
func (w *Writer) WriteFirstFrame(rgb *raster.Frame) error {
	return w.save(w.FirstFrame(), rgb)
}

// Write channel ch of frame index.
func (w *Writer) WriteChannel(ch Channel, index int, f *raster.Frame) error {
	return w.save(w.Path(ch, index), f)
}

func (w *Writer) save(path string, f *raster.Frame) error {
	img, err := ToImage(f, w.SRGB)
	if err != nil {
		return fmt.Errorf("frameset: %s: %w", path, err)
	}
	if err = imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("frameset: could not write %s: %w", path, err)
	}
	return nil
}

// Convert a 1 or 3 channel float raster into an 8-bit image. Single channel
// rasters become grayscale images.
func ToImage(f *raster.Frame, srgb bool) (image.Image, error) {
	quantize := quantizeLinear
	if srgb {
		quantize = quantizeSRGB
	}

	bounds := image.Rect(0, 0, f.Width, f.Height)
	switch f.Channels {
	case 1:
		img := image.NewGray(bounds)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				v := float64(f.At(x, y, 0))
				r, _, _ := quantize(v, v, v)
				img.SetGray(x, y, color.Gray{Y: r})
			}
		}
		return img, nil
	case 3:
		img := image.NewNRGBA(bounds)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				r, g, b := quantize(float64(f.At(x, y, 0)), float64(f.At(x, y, 1)), float64(f.At(x, y, 2)))
				img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("unsupported channel count %d", f.Channels)
}

func quantizeSRGB(r, g, b float64) (uint8, uint8, uint8) {
	return colorful.LinearRgb(finite(r), finite(g), finite(b)).Clamped().RGB255()
}

func quantizeLinear(r, g, b float64) (uint8, uint8, uint8) {
	return colorful.Color{R: finite(r), G: finite(g), B: finite(b)}.Clamped().RGB255()
}

// NaN maps to black and infinities saturate.
func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
