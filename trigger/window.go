package trigger

import (
	"sort"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/sirupsen/logrus"
)

// InvokeWindow activates a behavior for a span of track time.
type InvokeWindow struct {
	Behavior      string
	TargetSources map[string]bool
	Payload       behavior.Payload
	Start         float64
	End           float64
}

// Sources lists the enabled target sources, self first and the rest by
// name.
func (iw InvokeWindow) Sources() []string {
	var out []string
	for name, on := range iw.TargetSources {
		if on && name != source.SelfSourceName {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	if iw.TargetSources[source.SelfSourceName] {
		out = append([]string{source.SelfSourceName}, out...)
	}
	return out
}

func (iw InvokeWindow) NotifyBegin(w *ecs.World, meshOwner ecs.Entity) {
	iw.notify(w, meshOwner, true)
}

func (iw InvokeWindow) NotifyEnd(w *ecs.World, meshOwner ecs.Entity) {
	iw.notify(w, meshOwner, false)
}

func (iw InvokeWindow) notify(w *ecs.World, meshOwner ecs.Entity, activate bool) {
	c, ok := container.Of(w, meshOwner)
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"behavior": iw.Behavior,
			"actor":    source.ActorName(w, meshOwner),
		}).Debug("trigger: actor has no behavior container")
		return
	}
	c.Invoke(iw.Behavior, activate, iw.Sources(), iw.Payload.Clone())
}
