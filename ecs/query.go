package ecs

import "github.com/milk9111/damagebehaviors/ecs/component"

// Query returns live entities that have every listed kind, in insertion
// order of the first kind's store.
func (w *World) Query(kinds ...component.Kinder) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.store(k.ID(), false)
		if s == nil || s.Len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}

	var out []Entity
	for _, id := range sets[0].ids() {
		matched := true
		for _, s := range sets[1:] {
			if !s.Has(id) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if e, ok := w.entities.handle(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func lookup[T any](w *World, e Entity, k component.ComponentKind[T]) (*T, bool) {
	v, ok := w.getComponent(e, k.ID())
	if !ok {
		return nil, false
	}
	cast, ok := v.(*T)
	return cast, ok
}

// ForEach visits entities with kind a. Entities whose components are
// removed during iteration are skipped.
func ForEach[A any](w *World, a component.ComponentKind[A], fn func(Entity, *A)) {
	for _, e := range w.Query(a) {
		av, ok := lookup(w, e, a)
		if !ok {
			continue
		}
		fn(e, av)
	}
}

func ForEach2[A, B any](w *World, a component.ComponentKind[A], b component.ComponentKind[B], fn func(Entity, *A, *B)) {
	for _, e := range w.Query(a, b) {
		av, okA := lookup(w, e, a)
		bv, okB := lookup(w, e, b)
		if !okA || !okB {
			continue
		}
		fn(e, av, bv)
	}
}

func ForEach3[A, B, C any](w *World, a component.ComponentKind[A], b component.ComponentKind[B], c component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	for _, e := range w.Query(a, b, c) {
		av, okA := lookup(w, e, a)
		bv, okB := lookup(w, e, b)
		cv, okC := lookup(w, e, c)
		if !okA || !okB || !okC {
			continue
		}
		fn(e, av, bv, cv)
	}
}

// First returns the first entity with kind, if any.
func First[A any](w *World, a component.ComponentKind[A]) (Entity, bool) {
	ents := w.Query(a)
	if len(ents) == 0 {
		return NoEntity, false
	}
	return ents[0], true
}
