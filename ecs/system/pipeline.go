package system

import (
	"github.com/milk9111/damagebehaviors/common"
	"github.com/milk9111/damagebehaviors/ecs"
)

// NewPipeline returns the frame systems in order. Containers start before
// tracks can invoke them and detectors tick after hurt shapes moved.
func NewPipeline(dt float64) *ecs.Scheduler {
	if dt <= 0 {
		dt = common.FixedStep
	}
	s := ecs.NewScheduler()
	s.Add(NewBehaviorStartSystem())
	s.Add(NewMovementSystem(dt))
	s.Add(NewAnimationSystem(dt))
	s.Add(NewPhysicsSystem(dt))
	s.Add(NewDetectorSystem())
	s.Add(NewDamageSystem())
	return s
}
