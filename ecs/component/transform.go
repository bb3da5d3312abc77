package component

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/common"
	"github.com/milk9111/damagebehaviors/prefabs"
)

// Transform is a 2D position, rotation (radians) and scale. A zero scale
// component is treated as 1 so zero-valued transforms are identities.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()

func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

func TransformFromSpec(s prefabs.TransformSpec) Transform {
	return Transform{X: s.X, Y: s.Y, ScaleX: s.ScaleX, ScaleY: s.ScaleY, Rotation: s.Rotation}
}

// Lerp blends a toward b. Rotation takes the shortest arc.
func (t Transform) Lerp(b Transform, f float64) Transform {
	sx, sy := t.scale()
	bsx, bsy := b.scale()
	return Transform{
		X:        common.Lerp(t.X, b.X, f),
		Y:        common.Lerp(t.Y, b.Y, f),
		ScaleX:   common.Lerp(sx, bsx, f),
		ScaleY:   common.Lerp(sy, bsy, f),
		Rotation: common.LerpAngle(t.Rotation, b.Rotation, f),
	}
}

func (t Transform) Position() cp.Vector {
	return cp.Vector{X: t.X, Y: t.Y}
}

func (t Transform) scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Apply composes t with a transform expressed in t's local space.
func (t Transform) Apply(local Transform) Transform {
	sx, sy := t.scale()
	lsx, lsy := local.scale()
	p := t.Point(cp.Vector{X: local.X, Y: local.Y})
	return Transform{
		X:        p.X,
		Y:        p.Y,
		ScaleX:   sx * lsx,
		ScaleY:   sy * lsy,
		Rotation: t.Rotation + local.Rotation,
	}
}

// Relative returns the local transform l such that t.Apply(l) == world.
func (t Transform) Relative(world Transform) Transform {
	sx, sy := t.scale()
	wsx, wsy := world.scale()
	dx, dy := world.X-t.X, world.Y-t.Y
	sin, cos := math.Sincos(-t.Rotation)
	return Transform{
		X:        (dx*cos - dy*sin) / sx,
		Y:        (dx*sin + dy*cos) / sy,
		ScaleX:   wsx / sx,
		ScaleY:   wsy / sy,
		Rotation: world.Rotation - t.Rotation,
	}
}

// Point maps a local point into t's parent space.
func (t Transform) Point(local cp.Vector) cp.Vector {
	sx, sy := t.scale()
	x, y := local.X*sx, local.Y*sy
	sin, cos := math.Sincos(t.Rotation)
	return cp.Vector{X: t.X + x*cos - y*sin, Y: t.Y + x*sin + y*cos}
}

// Up is the rotated local +Y axis.
func (t Transform) Up() cp.Vector {
	sin, cos := math.Sincos(t.Rotation)
	return cp.Vector{X: -sin, Y: cos}
}
