package scene

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/achilleasa/orbitrender/types"
)

// The camera pose for a single frame.
type Pose struct {
	Origin types.Vec3
	Target types.Vec3
	Up     types.Vec3
}

func (p Pose) String() string {
	return fmt.Sprintf("origin (%s) target (%s) up (%s)", p.Origin, p.Target, p.Up)
}

// The sensor description handed to the renderer: a perspective camera
// placed with a look-at transform and paired with an HDR film.
type Sensor struct {
	Pose

	// Optional plugin id, used by renderers to pick this sensor out of a
	// scene that declares several.
	ID string

	// Film resolution.
	Width  uint32
	Height uint32

	// Horizontal field of view in degrees. When zero the renderer's
	// default projection is used.
	FOV float64

	// Sampler settings.
	SampleCount uint32
	Seed        uint32
}

// Create a sensor for the given pose and film resolution.
func NewSensor(pose Pose, width, height uint32) *Sensor {
	return &Sensor{
		Pose:        pose,
		Width:       width,
		Height:      height,
		SampleCount: 1,
	}
}

// Ensure that the sensor pose defines a valid look-at transform.
func (s *Sensor) Validate() error {
	if _, ok := types.LookAt(s.Origin, s.Target, s.Up); !ok {
		return fmt.Errorf("%w: %s", ErrDegenerateLookAt, s.Pose)
	}
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("scene: invalid film resolution %dx%d", s.Width, s.Height)
	}
	return nil
}

// Get the camera-to-world transform for the sensor.
func (s *Sensor) ToWorld() (types.Mat4, error) {
	m, ok := types.LookAt(s.Origin, s.Target, s.Up)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrDegenerateLookAt, s.Pose)
	}
	return m, nil
}

// Get the film aspect ratio.
func (s *Sensor) Aspect() float64 {
	return float64(s.Width) / float64(s.Height)
}

type xmlValue struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlLookAt struct {
	Origin string `xml:"origin,attr"`
	Target string `xml:"target,attr"`
	Up     string `xml:"up,attr"`
}

type xmlTransform struct {
	Name   string    `xml:"name,attr"`
	LookAt xmlLookAt `xml:"lookat"`
}

type xmlPlugin struct {
	Type     string     `xml:"type,attr"`
	Integers []xmlValue `xml:"integer"`
}

type xmlSensor struct {
	Type      string       `xml:"type,attr"`
	ID        string       `xml:"id,attr,omitempty"`
	Floats    []xmlValue   `xml:"float,omitempty"`
	Transform xmlTransform `xml:"transform"`
	Sampler   xmlPlugin    `xml:"sampler"`
	Film      xmlPlugin    `xml:"film"`
}

func uintValue(name string, v uint32) xmlValue {
	return xmlValue{Name: name, Value: strconv.FormatUint(uint64(v), 10)}
}

// Encode the sensor as a renderer <sensor> element.
func (s *Sensor) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	desc := xmlSensor{
		Type: "perspective",
		ID:   s.ID,
		Transform: xmlTransform{
			Name: "to_world",
			LookAt: xmlLookAt{
				Origin: s.Origin.String(),
				Target: s.Target.String(),
				Up:     s.Up.String(),
			},
		},
		Sampler: xmlPlugin{
			Type:     "independent",
			Integers: []xmlValue{uintValue("sample_count", s.SampleCount), uintValue("seed", s.Seed)},
		},
		Film: xmlPlugin{
			Type:     "hdrfilm",
			Integers: []xmlValue{uintValue("width", s.Width), uintValue("height", s.Height)},
		},
	}
	if s.FOV > 0 {
		desc.Floats = append(desc.Floats, xmlValue{Name: "fov", Value: strconv.FormatFloat(s.FOV, 'g', -1, 64)})
	}

	start.Name = xml.Name{Local: "sensor"}
	start.Attr = nil
	return e.EncodeElement(desc, start)
}
