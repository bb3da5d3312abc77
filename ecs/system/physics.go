package system

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/physics"
)

// PhysicsSystem moves hurt shapes to their actors' world transforms and
// steps the space.
type PhysicsSystem struct {
	dt float64
}

func NewPhysicsSystem(dt float64) *PhysicsSystem {
	return &PhysicsSystem{dt: dt}
}

func (p *PhysicsSystem) Update(w *ecs.World) {
	pw, ok := physics.Of(w)
	if !ok {
		return
	}
	pw.SyncHurtboxes(w)
	pw.Step(p.dt)
}
