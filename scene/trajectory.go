package scene

import (
	"math"

	"github.com/achilleasa/orbitrender/types"
	"gonum.org/v1/gonum/floats"
)

// Fixed parameters of the orbit: the eye stays put while the look-at target
// sweeps a horizontal circle at a constant height.
var (
	OrbitOrigin = types.XYZ(-1, 1, -1)
	OrbitUp     = types.XYZ(0, 1, 0)
)

const OrbitHeight = 1.0

// Generate numFrames angles evenly spaced over one revolution. The first
// angle is 0 and the endpoint (2π) is excluded so that no two frames share a
// pose. A non-positive frame count yields an empty trajectory.
func Orbit(numFrames int) []float64 {
	if numFrames < 1 {
		return []float64{}
	}

	// floats.Span includes both endpoints so generate one extra sample
	// and drop the one that coincides with angle 0.
	angles := floats.Span(make([]float64, numFrames+1), 0, 2*math.Pi)
	return angles[:numFrames]
}

// Get the camera pose for the given orbit angle and radius.
func OrbitPose(angle, radius float64) Pose {
	return Pose{
		Origin: OrbitOrigin,
		Target: types.XYZ(radius*math.Cos(angle), OrbitHeight, radius*math.Sin(angle)),
		Up:     OrbitUp,
	}
}
