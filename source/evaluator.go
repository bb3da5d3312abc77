package source

import (
	"errors"
	"fmt"

	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
)

var ErrUnknownEvaluator = errors.New("source: unknown evaluator kind")

// Evaluator finds the actor that plays a named source for an owner,
// e.g. whatever is equipped in the main hand.
type Evaluator interface {
	SourceName() string
	ActorWithDamageBehaviors(w *ecs.World, owner ecs.Entity) (ecs.Entity, bool)
}

// Factory builds an evaluator from its settings entry.
type Factory func(cfg config.Evaluator) (Evaluator, error)

// Registry maps evaluator kinds to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("equipped_slot", func(cfg config.Evaluator) (Evaluator, error) {
		if cfg.Slot == "" {
			return nil, fmt.Errorf("source: evaluator %q: slot is required", cfg.Name)
		}
		return EquippedSlot{Name: cfg.Name, Slot: cfg.Slot}, nil
	})
	r.Register("attached_socket", func(cfg config.Evaluator) (Evaluator, error) {
		if cfg.Socket == "" {
			return nil, fmt.Errorf("source: evaluator %q: socket is required", cfg.Name)
		}
		return AttachedSocket{Name: cfg.Name, Socket: cfg.Socket}, nil
	})
	r.Register("owner", func(cfg config.Evaluator) (Evaluator, error) {
		return OwnerOf{Name: cfg.Name}, nil
	})
	return r
}

func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Build instantiates evaluators in settings order.
func (r *Registry) Build(cfgs []config.Evaluator) ([]Evaluator, error) {
	out := make([]Evaluator, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("source: evaluator of kind %q has no name", cfg.Kind)
		}
		f, ok := r.factories[cfg.Kind]
		if !ok {
			return nil, fmt.Errorf("source: evaluator %q kind %q: %w", cfg.Name, cfg.Kind, ErrUnknownEvaluator)
		}
		ev, err := f(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// EquippedSlot resolves to the actor in one of the owner's equipment slots.
type EquippedSlot struct {
	Name string
	Slot string
}

func (e EquippedSlot) SourceName() string { return e.Name }

func (e EquippedSlot) ActorWithDamageBehaviors(w *ecs.World, owner ecs.Entity) (ecs.Entity, bool) {
	eq, ok := ecs.Get(w, owner, component.EquipmentComponent)
	if !ok {
		return ecs.NoEntity, false
	}
	id, ok := eq.Slots[e.Slot]
	if !ok {
		return ecs.NoEntity, false
	}
	actor := ecs.Entity(id)
	return actor, ecs.IsAlive(w, actor)
}

// AttachedSocket resolves to the first actor attached to the owner at a
// socket.
type AttachedSocket struct {
	Name   string
	Socket string
}

func (a AttachedSocket) SourceName() string { return a.Name }

func (a AttachedSocket) ActorWithDamageBehaviors(w *ecs.World, owner ecs.Entity) (ecs.Entity, bool) {
	for _, e := range w.Query(component.AttachmentComponent.Kind()) {
		att, _ := ecs.Get(w, e, component.AttachmentComponent)
		if ecs.Entity(att.Parent) == owner && att.Socket == a.Socket {
			return e, true
		}
	}
	return ecs.NoEntity, false
}

// OwnerOf resolves to the owner's own Owner, e.g. a weapon's wielder.
type OwnerOf struct {
	Name string
}

func (o OwnerOf) SourceName() string { return o.Name }

func (o OwnerOf) ActorWithDamageBehaviors(w *ecs.World, owner ecs.Entity) (ecs.Entity, bool) {
	ow, ok := ecs.Get(w, owner, component.OwnerComponent)
	if !ok {
		return ecs.NoEntity, false
	}
	actor := ecs.Entity(ow.Actor)
	return actor, ecs.IsAlive(w, actor)
}
