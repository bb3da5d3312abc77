package system

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/trigger"
)

// AnimationSystem advances track players, which fire invoke windows and
// pose sockets.
type AnimationSystem struct {
	dt float64
}

func NewAnimationSystem(dt float64) *AnimationSystem {
	return &AnimationSystem{dt: dt}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	ecs.ForEach(w, trigger.PlayerComponent.Kind(), func(e ecs.Entity, p *trigger.Player) {
		p.Advance(w, e, a.dt)
	})
}
