package source

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/sirupsen/logrus"
)

// SelfSourceName names the actor that owns the behavior container.
const SelfSourceName = "ThisActor"

// Source is a named actor whose detectors behaviors can enable.
type Source struct {
	Name      string
	Actor     ecs.Entity
	Evaluator Evaluator
	Detectors []*hitreg.Detector

	byName map[string]*hitreg.Detector
}

func (s *Source) IsSelf() bool {
	return s.Name == SelfSourceName
}

// Detector looks up a detector of this source by exact name.
func (s *Source) Detector(name string) (*hitreg.Detector, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.byName[name]
	return d, ok
}

// DetectorNames lists this source's detectors in registration order.
func (s *Source) DetectorNames() []string {
	names := make([]string, 0, len(s.Detectors))
	for _, d := range s.Detectors {
		names = append(names, d.Name())
	}
	return names
}

// ResolveActor returns the source's current actor. Non-self sources
// re-run their evaluator and fall back to the actor found at startup.
func (s *Source) ResolveActor(w *ecs.World, owner ecs.Entity) (ecs.Entity, bool) {
	if s.IsSelf() {
		return owner, ecs.IsAlive(w, owner)
	}
	if s.Evaluator != nil {
		if e, ok := s.Evaluator.ActorWithDamageBehaviors(w, owner); ok {
			return e, true
		}
	}
	return s.Actor, ecs.IsAlive(w, s.Actor)
}

// Resolve builds the source list for owner: the self source first, then
// one per evaluator that currently yields a live actor.
func Resolve(w *ecs.World, owner ecs.Entity, evaluators []Evaluator) []*Source {
	sources := []*Source{newSource(w, SelfSourceName, owner, nil)}
	for _, ev := range evaluators {
		if ev == nil {
			continue
		}
		name := ev.SourceName()
		if name == SelfSourceName {
			logger.Log.WithField("source", name).Warn("source: evaluator uses the reserved self name")
			continue
		}
		actor, ok := ev.ActorWithDamageBehaviors(w, owner)
		if !ok {
			logger.Log.WithFields(logrus.Fields{
				"source": name,
				"actor":  ActorName(w, owner),
			}).Warn("source: evaluator found no actor")
			continue
		}
		sources = append(sources, newSource(w, name, actor, ev))
	}
	return sources
}

func newSource(w *ecs.World, name string, actor ecs.Entity, ev Evaluator) *Source {
	list, byName := FindDetectors(w, actor)
	return &Source{
		Name:      name,
		Actor:     actor,
		Evaluator: ev,
		Detectors: list,
		byName:    byName,
	}
}

// FindDetectors returns the detectors registered on actor, in order and
// by name.
func FindDetectors(w *ecs.World, actor ecs.Entity) ([]*hitreg.Detector, map[string]*hitreg.Detector) {
	byName := make(map[string]*hitreg.Detector)
	set, ok := ecs.Get(w, actor, hitreg.DetectorsComponent)
	if !ok {
		return nil, byName
	}
	list := set.All()
	for _, d := range list {
		byName[d.Name()] = d
	}
	return list, byName
}

// ActorName is the actor's Name component, or its handle when unnamed.
func ActorName(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent); ok {
		return n.Value
	}
	return e.String()
}
