package hitreg

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/sirupsen/logrus"
)

// Detectors is the set of live detectors on one actor, keyed by name.
type Detectors struct {
	list   []*Detector
	byName map[string]*Detector
}

var DetectorsComponent = component.NewComponent[Detectors]()

// Add registers d. A later detector with the same name replaces the
// earlier one in lookups.
func (s *Detectors) Add(d *Detector) {
	if d == nil {
		return
	}
	if s.byName == nil {
		s.byName = make(map[string]*Detector)
	}
	if prev, ok := s.byName[d.name]; ok {
		logger.Log.WithFields(logrus.Fields{
			"detector": d.name,
			"actor":    d.actor,
		}).Warn("hitreg: duplicate detector name")
		for i, v := range s.list {
			if v == prev {
				s.list = append(s.list[:i], s.list[i+1:]...)
				break
			}
		}
	}
	s.list = append(s.list, d)
	s.byName[d.name] = d
}

func (s *Detectors) Get(name string) (*Detector, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.byName[name]
	return d, ok
}

// All returns detectors in registration order.
func (s *Detectors) All() []*Detector {
	if s == nil {
		return nil
	}
	return append([]*Detector(nil), s.list...)
}

// Build creates the detectors described by the actor's DetectorShapes and
// stores them on the actor.
func Build(env *Env, actor ecs.Entity) (*Detectors, error) {
	set := &Detectors{}
	if shapes, ok := ecs.Get(env.World, actor, component.DetectorShapesComponent); ok {
		for _, shape := range *shapes {
			set.Add(NewDetector(env, actor, shape))
		}
	}
	if err := ecs.Add(env.World, actor, DetectorsComponent, set); err != nil {
		return nil, err
	}
	return set, nil
}

// TickAll ticks every detector in the world.
func TickAll(w *ecs.World) {
	ecs.ForEach(w, DetectorsComponent.Kind(), func(_ ecs.Entity, set *Detectors) {
		for _, d := range set.list {
			d.Tick()
		}
	})
}
