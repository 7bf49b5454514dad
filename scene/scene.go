package scene

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrNotFound         = errors.New("scene: scene file not found")
	ErrInvalidScene     = errors.New("scene: not a renderer scene description")
	ErrDegenerateLookAt = errors.New("scene: degenerate look-at transform")
)

// A handle to a scene description owned by the external renderer. The scene
// format is opaque to us; we only check that the file looks like a scene so
// that errors surface before the first frame is rendered.
type Scene struct {
	// Absolute path to the scene file.
	Path string

	// The value of the version attribute of the root element, if any.
	Version string
}

// Load a scene handle for the scene file at path.
func Load(path string) (*Scene, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	version, err := readRootElement(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScene, path, err)
	}

	return &Scene{
		Path:    absPath,
		Version: version,
	}, nil
}

// Directory containing the scene file; relative resources referenced by the
// scene are resolved against it by the renderer.
func (s *Scene) Dir() string {
	return filepath.Dir(s.Path)
}

func (s *Scene) String() string {
	if s.Version == "" {
		return s.Path
	}
	return fmt.Sprintf("%s (v%s)", s.Path, s.Version)
}

// Scan up to the first start element and ensure it is <scene>.
func readRootElement(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return "", errors.New("no root element")
			}
			return "", err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "scene" {
			return "", fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "version" {
				return attr.Value, nil
			}
		}
		return "", nil
	}
}
