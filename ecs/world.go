package ecs

import (
	"errors"
	"fmt"

	"github.com/milk9111/damagebehaviors/ecs/component"
)

var (
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrAttachCycle    = errors.New("ecs: attachment would create a cycle")
)

// World owns actors and their components. Domain services (physics,
// settings) are attached by the host and looked up by the packages that
// need them.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue
	frame    uint64

	resources map[string]any
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:    make(map[component.ComponentID]*SparseSet),
		resources: make(map[string]any),
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return NoEntity
	}
	return w.entities.create()
}

// DestroyEntity removes every component of e and invalidates the handle.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(e.id())
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Frame returns the number of completed scheduler updates.
func (w *World) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}

// SetResource stores a world-scoped singleton under key.
func (w *World) SetResource(key string, v any) {
	if w == nil {
		return
	}
	if v == nil {
		delete(w.resources, key)
		return
	}
	w.resources[key] = v
}

// Resource returns the singleton stored under key.
func (w *World) Resource(key string) (any, bool) {
	if w == nil {
		return nil, false
	}
	v, ok := w.resources[key]
	return v, ok
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

func (w *World) addComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return fmt.Errorf("add component %d to %v: %w", id, e, ErrEntityNotAlive)
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	w.store(id, true).Set(e.id(), value)
	return nil
}

func (w *World) getComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s := w.store(id, false)
	if s == nil || !s.Has(e.id()) {
		return nil, false
	}
	return s.Get(e.id()), true
}

func (w *World) removeComponent(e Entity, id component.ComponentID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	s := w.store(id, false)
	if s == nil {
		return false
	}
	return s.Remove(e.id())
}
