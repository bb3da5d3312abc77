package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	BaseWidth  = 960
	BaseHeight = 540

	// FixedStep is the simulation step in seconds.
	FixedStep = 1.0 / 60.0
)

// ZeroMotionNudge is added to a sweep end point when the detector did not
// move, so a stationary capsule still reports what it touches.
var ZeroMotionNudge = cp.Vector{X: 0.1, Y: 0}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// LerpAngle interpolates between two angles along the shortest arc.
func LerpAngle(a, b, t float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return a + d*t
}

func NearlyZero(v cp.Vector) bool {
	return v.LengthSq() < 1e-12
}
