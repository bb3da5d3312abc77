package hitreg

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/physics"
)

// Env is what detectors need from the host: the actor world, the
// collision space and the debug sink.
type Env struct {
	World   *ecs.World
	Physics *physics.PhysicsWorld
	Debug   *Debug
}

func (e *Env) ready() bool {
	return e != nil && e.World != nil && e.Physics != nil
}

// EnvResourceKey is the world resource key the detector environment is
// stored under.
const EnvResourceKey = "hitreg"

func EnvOf(w *ecs.World) (*Env, bool) {
	v, ok := w.Resource(EnvResourceKey)
	if !ok {
		return nil, false
	}
	env, ok := v.(*Env)
	return env, ok
}
