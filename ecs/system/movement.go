package system

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
)

// MovementSystem integrates velocities of free actors. Attached actors
// follow their parent instead.
type MovementSystem struct {
	dt float64
}

func NewMovementSystem(dt float64) *MovementSystem {
	return &MovementSystem{dt: dt}
}

func (s *MovementSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.VelocityComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, v *component.Velocity, t *component.Transform) {
		if ecs.Has(w, e, component.AttachmentComponent) {
			return
		}
		t.X += v.X * s.dt
		t.Y += v.Y * s.dt
		t.Rotation += v.Angular * s.dt
	})
}
