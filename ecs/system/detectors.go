package system

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/hitreg"
)

// DetectorSystem ticks every hit detector once per frame.
type DetectorSystem struct{}

func NewDetectorSystem() *DetectorSystem {
	return &DetectorSystem{}
}

func (s *DetectorSystem) Update(w *ecs.World) {
	if env, ok := hitreg.EnvOf(w); ok {
		env.Debug.Expire(w.Frame())
	}
	hitreg.TickAll(w)
}
