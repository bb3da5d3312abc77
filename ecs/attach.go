package ecs

import (
	"fmt"

	"github.com/milk9111/damagebehaviors/ecs/component"
)

// maxAttachDepth bounds parent walks so a corrupted hierarchy cannot hang
// a frame.
const maxAttachDepth = 64

// AttachParent returns the actor e is attached to.
func AttachParent(w *World, e Entity) (Entity, bool) {
	att, ok := Get(w, e, component.AttachmentComponent)
	if !ok {
		return NoEntity, false
	}
	parent := Entity(att.Parent)
	if !IsAlive(w, parent) {
		return NoEntity, false
	}
	return parent, true
}

// RootAttachedActor walks up the attachment chain and returns the topmost
// actor. An unattached actor is its own root.
func RootAttachedActor(w *World, e Entity) Entity {
	if !IsAlive(w, e) {
		return NoEntity
	}
	root := e
	for i := 0; i < maxAttachDepth; i++ {
		parent, ok := AttachParent(w, root)
		if !ok || parent == e {
			break
		}
		root = parent
	}
	return root
}

// AttachedActors returns every actor attached to e, directly or through
// other attached actors. e itself is never included.
func AttachedActors(w *World, e Entity) []Entity {
	if !IsAlive(w, e) {
		return nil
	}
	children := make(map[Entity][]Entity)
	ForEach(w, component.AttachmentComponent.Kind(), func(child Entity, att *component.Attachment) {
		parent := Entity(att.Parent)
		children[parent] = append(children[parent], child)
	})

	var out []Entity
	seen := map[Entity]bool{e: true}
	queue := []Entity{e}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

func isAncestor(w *World, candidate, e Entity) bool {
	cur := e
	for i := 0; i < maxAttachDepth; i++ {
		if cur == candidate {
			return true
		}
		parent, ok := AttachParent(w, cur)
		if !ok {
			return false
		}
		cur = parent
	}
	return true
}

// AttachAt attaches child to parent's socket with an explicit local
// transform.
func AttachAt(w *World, child, parent Entity, socket string, local component.Transform) error {
	if !IsAlive(w, child) || !IsAlive(w, parent) {
		return fmt.Errorf("attach %v to %v: %w", child, parent, ErrEntityNotAlive)
	}
	if isAncestor(w, child, parent) {
		return fmt.Errorf("attach %v to %v: %w", child, parent, ErrAttachCycle)
	}
	return Add(w, child, component.AttachmentComponent, &component.Attachment{
		Parent: uint64(parent),
		Socket: socket,
		Local:  local,
	})
}

// AttachToActor attaches child to parent keeping child's current world
// transform.
func AttachToActor(w *World, child, parent Entity, socket string) error {
	if !IsAlive(w, child) || !IsAlive(w, parent) {
		return fmt.Errorf("attach %v to %v: %w", child, parent, ErrEntityNotAlive)
	}
	world := WorldTransform(w, child)
	base := SocketWorldTransform(w, parent, socket)
	return AttachAt(w, child, parent, socket, base.Relative(world))
}

// DetachFromActor removes child's attachment and bakes its world transform
// into its Transform component.
func DetachFromActor(w *World, child Entity) bool {
	if !Has(w, child, component.AttachmentComponent) {
		return false
	}
	world := WorldTransform(w, child)
	Remove(w, child, component.AttachmentComponent)
	if t, ok := Get(w, child, component.TransformComponent); ok {
		*t = world
	} else {
		_ = Add(w, child, component.TransformComponent, &world)
	}
	return true
}

// SocketWorldTransform is the world transform of e's socket, or of e
// itself when the socket is empty or unknown.
func SocketWorldTransform(w *World, e Entity, socket string) component.Transform {
	base := WorldTransform(w, e)
	if socket == "" {
		return base
	}
	sockets, ok := Get(w, e, component.SocketsComponent)
	if !ok {
		return base
	}
	local, ok := sockets.Get(socket)
	if !ok {
		return base
	}
	return base.Apply(local)
}

// WorldTransform resolves e's transform through the attachment chain.
func WorldTransform(w *World, e Entity) component.Transform {
	return worldTransform(w, e, 0)
}

func worldTransform(w *World, e Entity, depth int) component.Transform {
	if att, ok := Get(w, e, component.AttachmentComponent); ok && depth < maxAttachDepth {
		parent := Entity(att.Parent)
		if IsAlive(w, parent) {
			base := worldTransform(w, parent, depth+1)
			if att.Socket != "" {
				if sockets, ok := Get(w, parent, component.SocketsComponent); ok {
					if local, ok := sockets.Get(att.Socket); ok {
						base = base.Apply(local)
					}
				}
			}
			return base.Apply(att.Local)
		}
	}
	if t, ok := Get(w, e, component.TransformComponent); ok {
		return *t
	}
	return component.Identity()
}
