package frameset

import (
	"errors"
	"fmt"
	"os"

	"github.com/anthonynsimon/bild/imgio"
)

var (
	ErrMissing   = errors.New("frameset: file missing")
	ErrCorrupt   = errors.New("frameset: file could not be decoded")
	ErrWrongSize = errors.New("frameset: unexpected image size")
)

// A problem found while verifying a frame set.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// Check that every artifact of a numFrames run exists and decodes as a
// width x height image. The returned list is empty when the frame set is
// complete.
func (l Layout) Verify(numFrames, width, height int) []Problem {
	var problems []Problem
	for _, path := range l.Expected(numFrames) {
		if err := verifyImage(path, width, height); err != nil {
			problems = append(problems, Problem{Path: path, Err: err})
		}
	}
	return problems
}

func verifyImage(path string, width, height int) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrMissing
		}
		return err
	}

	img, err := imgio.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("%w: expected %dx%d; got %dx%d", ErrWrongSize, width, height, b.Dx(), b.Dy())
	}
	return nil
}
