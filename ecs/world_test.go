package ecs

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/damagebehaviors/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false for a dead entity")
				}
			}
		})
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h, intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	DestroyEntity(w, old)

	reused := CreateEntity(w)
	if reused == old {
		t.Fatalf("reused handle should differ from stale handle")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle reported alive")
	}
	if Has(w, reused, h) {
		t.Fatalf("reused slot should not inherit components")
	}
	if err := Add(w, old, h, intPtr(2)); !errors.Is(err, ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestSparseWorldComponentsAndQueries(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1, intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1)
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2, stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2, stringPtr("b"))
			},
			check: func(t *testing.T) {
				if got := w.Query(h2.Kind()); len(got) != 2 {
					t.Fatalf("expected 2 entities with string, got %d", len(got))
				}
			},
			teardown: func() bool { return Remove(w, e1, h2) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestForEachSkipsRemoved(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	for i, e := range []Entity{e1, e2, e3} {
		if err := Add(w, e, h, intPtr(i)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	var visited []Entity
	ForEach(w, h.Kind(), func(e Entity, _ *int) {
		visited = append(visited, e)
		if e == e1 {
			DestroyEntity(w, e2)
		}
	})
	if len(visited) != 2 {
		t.Fatalf("expected 2 visits after removal, got %d", len(visited))
	}
}

func TestAttachmentHierarchy(t *testing.T) {
	w := NewWorld()
	root := CreateEntity(w)
	arm := CreateEntity(w)
	sword := CreateEntity(w)
	_ = Add(w, root, component.TransformComponent, &component.Transform{X: 10, Y: 0})
	_ = Add(w, root, component.SocketsComponent, &component.Sockets{Local: map[string]component.Transform{
		"hand": {X: 5, Y: 0, Rotation: math.Pi / 2},
	}})

	if err := AttachAt(w, arm, root, "hand", component.Transform{X: 1}); err != nil {
		t.Fatalf("attach arm: %v", err)
	}
	if err := AttachAt(w, sword, arm, "", component.Identity()); err != nil {
		t.Fatalf("attach sword: %v", err)
	}

	t.Run("root", func(t *testing.T) {
		if got := RootAttachedActor(w, sword); got != root {
			t.Fatalf("expected root %v, got %v", root, got)
		}
		if got := RootAttachedActor(w, root); got != root {
			t.Fatalf("unattached actor should be its own root")
		}
	})

	t.Run("attached_actors_recursive", func(t *testing.T) {
		got := AttachedActors(w, root)
		if len(got) != 2 {
			t.Fatalf("expected 2 attached actors, got %v", got)
		}
	})

	t.Run("world_transform_through_socket", func(t *testing.T) {
		tr := WorldTransform(w, sword)
		if math.Abs(tr.X-15) > 1e-9 || math.Abs(tr.Y-1) > 1e-9 {
			t.Fatalf("expected (15,1), got (%v,%v)", tr.X, tr.Y)
		}
	})

	t.Run("cycle_rejected", func(t *testing.T) {
		if err := AttachAt(w, root, sword, "", component.Identity()); !errors.Is(err, ErrAttachCycle) {
			t.Fatalf("expected ErrAttachCycle, got %v", err)
		}
	})

	t.Run("detach_keeps_world", func(t *testing.T) {
		before := WorldTransform(w, sword)
		if !DetachFromActor(w, sword) {
			t.Fatalf("detach should succeed")
		}
		after := WorldTransform(w, sword)
		if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
			t.Fatalf("detach moved actor from %v to %v", before, after)
		}
	})
}

func TestAttachToActorKeepsWorld(t *testing.T) {
	w := NewWorld()
	parent := CreateEntity(w)
	child := CreateEntity(w)
	_ = Add(w, parent, component.TransformComponent, &component.Transform{X: 3, Y: 4, Rotation: 0.7, ScaleX: 2, ScaleY: 2})
	_ = Add(w, child, component.TransformComponent, &component.Transform{X: -8, Y: 12, Rotation: 0.2})

	before := WorldTransform(w, child)
	if err := AttachToActor(w, child, parent, ""); err != nil {
		t.Fatalf("attach: %v", err)
	}
	after := WorldTransform(w, child)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 || math.Abs(before.Rotation-after.Rotation) > 1e-9 {
		t.Fatalf("keep-world attach moved child from %+v to %+v", before, after)
	}

	// Moving the parent now drags the child.
	pt, _ := Get(w, parent, component.TransformComponent)
	pt.X += 10
	if moved := WorldTransform(w, child); math.Abs(moved.X-after.X) < 1 {
		t.Fatalf("child did not follow parent")
	}
}

func TestEventQueueDrain(t *testing.T) {
	var q EventQueue
	q.Push(Event{Type: EventHitRegistered, Data: 1})
	q.Push(Event{Type: EventHitRegistered, Data: 2})
	if q.Len() != 2 {
		t.Fatalf("expected 2 pending events, got %d", q.Len())
	}
	got := q.Drain()
	if len(got) != 2 || got[0].Data != 1 {
		t.Fatalf("unexpected drain order: %+v", got)
	}
	if q.Drain() != nil {
		t.Fatalf("queue should be empty after drain")
	}
}
