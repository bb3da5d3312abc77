package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/ecs/component"
)

// Capsule is a segment with a radius. HalfHeight is measured along the
// rotated local Y axis and includes the rounded caps.
type Capsule struct {
	Center     cp.Vector
	Rotation   float64
	HalfHeight float64
	Radius     float64
}

func CapsuleAt(t component.Transform, halfHeight, radius float64) Capsule {
	return Capsule{
		Center:     t.Position(),
		Rotation:   t.Rotation,
		HalfHeight: halfHeight,
		Radius:     radius,
	}
}

func (c Capsule) Up() cp.Vector {
	sin, cos := math.Sincos(c.Rotation)
	return cp.Vector{X: -sin, Y: cos}
}

// Segment returns the end points of the capsule core.
func (c Capsule) Segment() (cp.Vector, cp.Vector) {
	h := math.Max(c.HalfHeight-c.Radius, 0)
	up := c.Up().Mult(h)
	return c.Center.Sub(up), c.Center.Add(up)
}

// support is how far the capsule extends from its center along dir.
func (c Capsule) support(dir cp.Vector) float64 {
	h := math.Max(c.HalfHeight-c.Radius, 0)
	return c.Radius + math.Abs(c.Up().Dot(dir))*h
}

func (c Capsule) Moved(to cp.Vector) Capsule {
	c.Center = to
	return c
}
