package system

import (
	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/sirupsen/logrus"
)

// DamageSystem drains registered hits, applies damage for behaviors that
// handle it themselves and records every hit in the hit log.
type DamageSystem struct{}

func NewDamageSystem() *DamageSystem {
	return &DamageSystem{}
}

func (s *DamageSystem) Update(w *ecs.World) {
	events := w.Events().Drain()
	if len(events) == 0 {
		return
	}
	log := HitLogOf(w)
	var keep []ecs.Event
	for _, evt := range events {
		if evt.Type != ecs.EventHitRegistered {
			keep = append(keep, evt)
			continue
		}
		ev, ok := evt.Data.(behavior.HitEvent)
		if !ok {
			continue
		}
		log.Add(s.apply(w, evt.Frame, ev))
	}
	for _, evt := range keep {
		w.Events().Push(evt)
	}
}

func (s *DamageSystem) apply(w *ecs.World, frame uint64, ev behavior.HitEvent) HitRecord {
	struck := ev.Hit.HitActor
	target := struck
	if v, ok := ev.Payload[behavior.KeyTarget].(uint64); ok && ecs.IsAlive(w, ecs.Entity(v)) {
		target = ecs.Entity(v)
	}

	rec := HitRecord{
		Frame:    frame,
		Window:   ev.Window.String(),
		Behavior: ev.Behavior.Name(),
		Actor:    source.ActorName(w, ev.Behavior.Owner()),
		Detector: ev.Detector.Name(),
		Target:   source.ActorName(w, target),
		Struck:   source.ActorName(w, struck),
		Surface:  ev.Hit.Surface,
	}

	fields := logrus.Fields{
		"behavior": rec.Behavior,
		"actor":    rec.Actor,
		"detector": rec.Detector,
		"target":   rec.Target,
		"surface":  rec.Surface,
		"frame":    frame,
	}
	dmg, ok := ev.Payload.Float(behavior.KeyDamage)
	if !ok || !ev.Behavior.Definition().AutoHandleDamage {
		logger.Log.WithFields(fields).Info("hit")
		return rec
	}

	health, ok := ecs.Get(w, target, component.HealthComponent)
	if !ok {
		logger.Log.WithFields(fields).Info("hit on actor without health")
		return rec
	}
	health.Current -= dmg
	if health.Current < 0 {
		health.Current = 0
	}
	rec.Damage = dmg
	rec.Health = health.Current
	fields["damage"] = dmg
	fields["health"] = health.Current
	logger.Log.WithFields(fields).Info("hit")
	if health.Current == 0 {
		logger.Log.WithField("actor", rec.Target).Info("actor defeated")
	}
	return rec
}
