package behavior

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/prefabs"
)

var ErrUnknownKind = errors.New("behavior: unknown kind")

const (
	KindDefault  = "default"
	KindDamage   = "damage"
	KindScripted = "scripted"
)

// Kind holds the overridable steps of a behavior. Embed Base and
// override only what differs; call the Base method to keep the default.
type Kind interface {
	MakeActive(b *Behavior, active bool, payload Payload)
	CanBeAddedToHitActors(b *Behavior, r hitreg.HitResult) bool
	HitTarget(b *Behavior, r hitreg.HitResult) ecs.Entity
	ProcessHit(b *Behavior, r hitreg.HitResult, d *hitreg.Detector) (bool, Payload)
	AddHitActor(b *Behavior, actor ecs.Entity, attach bool)
	ClearHitActors(b *Behavior)
}

// Base is the default behavior.
type Base struct{}

func (Base) MakeActive(b *Behavior, active bool, payload Payload) {
	b.applyActive(active, payload)
}

// CanBeAddedToHitActors accepts any live actor.
func (Base) CanBeAddedToHitActors(b *Behavior, r hitreg.HitResult) bool {
	return ecs.IsAlive(b.world, r.HitActor)
}

// HitTarget is the topmost actor in the struck actor's attachment chain.
func (Base) HitTarget(b *Behavior, r hitreg.HitResult) ecs.Entity {
	return ecs.RootAttachedActor(b.world, r.HitActor)
}

func (Base) ProcessHit(b *Behavior, _ hitreg.HitResult, _ *hitreg.Detector) (bool, Payload) {
	return true, b.Payload()
}

func (Base) AddHitActor(b *Behavior, actor ecs.Entity, attach bool) {
	b.addHitActor(actor, attach)
}

func (Base) ClearHitActors(b *Behavior) {
	b.clearHitActors()
}

// KindFactory creates the per-instance kind for a definition.
type KindFactory func(k *Kinds, def *Definition) (Kind, error)

// ScriptLoader reads a script by name.
type ScriptLoader func(name string) ([]byte, error)

// Kinds maps kind names to factories and caches compiled scripts so each
// script is compiled once and cloned per instance.
type Kinds struct {
	factories map[string]KindFactory
	load      ScriptLoader
	compiled  map[string]*tengo.Compiled
}

// NewKinds registers the built-in kinds. A nil loader reads scripts from
// prefabs.
func NewKinds(load ScriptLoader) *Kinds {
	if load == nil {
		load = prefabs.LoadScript
	}
	k := &Kinds{
		factories: make(map[string]KindFactory),
		load:      load,
		compiled:  make(map[string]*tengo.Compiled),
	}
	k.Register(KindDefault, func(*Kinds, *Definition) (Kind, error) { return Base{}, nil })
	k.Register(KindDamage, newDamageKind)
	k.Register(KindScripted, newScriptedKind)
	return k
}

func (k *Kinds) Register(name string, f KindFactory) {
	k.factories[name] = f
}

func (k *Kinds) New(def *Definition) (Kind, error) {
	name := def.Kind
	if name == "" {
		name = KindDefault
	}
	f, ok := k.factories[name]
	if !ok {
		return nil, fmt.Errorf("behavior %q kind %q: %w", def.Name, name, ErrUnknownKind)
	}
	return f(k, def)
}

// Forget drops a cached script so the next instance recompiles it.
func (k *Kinds) Forget(script string) {
	delete(k.compiled, script)
}
