package system

import (
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/sirupsen/logrus"
)

// BehaviorStartSystem starts containers the frame after they are spawned.
type BehaviorStartSystem struct{}

func NewBehaviorStartSystem() *BehaviorStartSystem {
	return &BehaviorStartSystem{}
}

func (s *BehaviorStartSystem) Update(w *ecs.World) {
	var pending []*container.Container
	ecs.ForEach(w, container.ContainerComponent.Kind(), func(_ ecs.Entity, c *container.Container) {
		if !c.Started() {
			pending = append(pending, c)
		}
	})
	for _, c := range pending {
		if err := c.Start(); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"actor": source.ActorName(w, c.Actor()),
				"error": err,
			}).Error("behaviors: start container")
			_ = ecs.Remove(w, c.Actor(), container.ContainerComponent)
		}
	}
}
