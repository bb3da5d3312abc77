package behavior

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	StateInactive = "inactive"
	StateActive   = "active"

	eventActivate   = "activate"
	eventDeactivate = "deactivate"
)

// HitEvent is broadcast for every hit a behavior registers.
type HitEvent struct {
	Hit      hitreg.HitResult
	Behavior *Behavior
	Detector *hitreg.Detector
	Payload  Payload
	// Window identifies the activation the hit happened in.
	Window ulid.ULID
}

type HitListener func(HitEvent)

// Behavior is a live instance of a Definition owned by one actor.
type Behavior struct {
	def   *Definition
	kind  Kind
	world *ecs.World
	owner ecs.Entity

	state   *fsm.FSM
	window  ulid.ULID
	payload Payload

	sources []*source.Source
	subs    map[*hitreg.Detector]int

	hit      map[ecs.Entity]bool
	hitOrder []ecs.Entity
	dragged  []ecs.Entity

	listeners map[int]HitListener
	order     []int
	nextID    int
}

// Instantiate creates a live behavior for owner. Definitions are never
// mutated, so one definition can back many instances.
func (d *Definition) Instantiate(w *ecs.World, owner ecs.Entity, kinds *Kinds) (*Behavior, error) {
	if kinds == nil {
		kinds = NewKinds(nil)
	}
	kind, err := kinds.New(d)
	if err != nil {
		return nil, err
	}
	return New(d, kind, w, owner), nil
}

// New wires a behavior with an explicit kind.
func New(def *Definition, kind Kind, w *ecs.World, owner ecs.Entity) *Behavior {
	if kind == nil {
		kind = Base{}
	}
	b := &Behavior{
		def:       def,
		kind:      kind,
		world:     w,
		owner:     owner,
		subs:      make(map[*hitreg.Detector]int),
		hit:       make(map[ecs.Entity]bool),
		listeners: make(map[int]HitListener),
	}
	b.state = fsm.NewFSM(
		StateInactive,
		fsm.Events{
			{Name: eventActivate, Src: []string{StateInactive, StateActive}, Dst: StateActive},
			{Name: eventDeactivate, Src: []string{StateActive, StateInactive}, Dst: StateInactive},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Log.WithFields(logrus.Fields{
					"behavior": b.def.Name,
					"actor":    source.ActorName(b.world, b.owner),
					"from":     e.Src,
					"to":       e.Dst,
				}).Debug("behavior: state change")
			},
		},
	)
	return b
}

func (b *Behavior) Name() string { return b.def.Name }
func (b *Behavior) Definition() *Definition { return b.def }
func (b *Behavior) Kind() Kind { return b.kind }
func (b *Behavior) World() *ecs.World { return b.world }
func (b *Behavior) Owner() ecs.Entity { return b.owner }
func (b *Behavior) Window() ulid.ULID { return b.window }
func (b *Behavior) IsActive() bool { return b.state.Is(StateActive) }
func (b *Behavior) Sources() []*source.Source { return b.sources }

// Payload returns a copy of the payload of the current activation.
func (b *Behavior) Payload() Payload {
	return b.payload.Clone()
}

// HitActors returns the already-hit set in insertion order.
func (b *Behavior) HitActors() []ecs.Entity {
	return append([]ecs.Entity(nil), b.hitOrder...)
}

func (b *Behavior) HasHit(e ecs.Entity) bool {
	_, ok := b.hit[e]
	return ok
}

// AttachEligible reports whether e was added as a drag candidate.
func (b *Behavior) AttachEligible(e ecs.Entity) bool {
	return b.hit[e]
}

// Bind gives the behavior its sources and subscribes it to every detector
// its activation map names.
func (b *Behavior) Bind(sources []*source.Source) {
	b.Unbind()
	b.sources = sources

	known := make(map[string]*source.Source, len(sources))
	for _, s := range sources {
		known[s.Name] = s
	}
	for _, name := range b.def.Sources() {
		if _, ok := known[name]; !ok {
			logger.Log.WithFields(logrus.Fields{
				"behavior": b.def.Name,
				"source":   name,
			}).Warn("behavior: activation names a source that was not resolved")
		}
	}

	for _, d := range b.listedDetectors(true) {
		det := d
		b.subs[det] = det.Subscribe(func(from *hitreg.Detector, r hitreg.HitResult) {
			b.onHit(from, r)
		})
	}
}

// Unbind drops every detector subscription.
func (b *Behavior) Unbind() {
	for d, id := range b.subs {
		d.Unsubscribe(id)
	}
	b.subs = make(map[*hitreg.Detector]int)
}

// listedDetectors resolves the activation map against the bound sources.
func (b *Behavior) listedDetectors(warn bool) []*hitreg.Detector {
	var out []*hitreg.Detector
	seen := make(map[*hitreg.Detector]bool)
	for _, src := range b.sources {
		for _, name := range b.def.DetectorNames(src.Name) {
			d, ok := src.Detector(name)
			if !ok {
				if warn {
					logger.Log.WithFields(logrus.Fields{
						"behavior": b.def.Name,
						"source":   src.Name,
						"detector": name,
					}).Warn("behavior: detector not found on source")
				}
				continue
			}
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// Detectors returns the detectors this behavior toggles.
func (b *Behavior) Detectors() []*hitreg.Detector {
	return b.listedDetectors(false)
}

// MakeActive starts or ends an activation through the behavior's kind.
func (b *Behavior) MakeActive(active bool, payload Payload) {
	b.kind.MakeActive(b, active, payload)
}

func (b *Behavior) applyActive(active bool, payload Payload) {
	event := eventDeactivate
	if active {
		b.payload = payload.Clone()
		b.window = ulid.Make()
		event = eventActivate
	}
	if err := b.state.Event(context.Background(), event); err != nil {
		var noop fsm.NoTransitionError
		if !errors.As(err, &noop) {
			logger.Log.WithError(err).WithField("behavior", b.def.Name).Warn("behavior: state transition failed")
		}
	}

	for _, d := range b.listedDetectors(false) {
		d.SetActive(active, b.def.Detection)
	}

	if !active {
		b.kind.ClearHitActors(b)
		b.releaseDragged()
	}
}

// IgnoreActors adds actors to the ignore list of every enabled detector
// of this behavior. Enabling a detector clears its list, so call this
// after activation.
func (b *Behavior) IgnoreActors(actors ...ecs.Entity) {
	for _, d := range b.listedDetectors(false) {
		if d.Enabled() {
			d.AddIgnoredActors(actors...)
		}
	}
}

func (b *Behavior) onHit(d *hitreg.Detector, r hitreg.HitResult) {
	if !b.IsActive() {
		return
	}
	actor := r.HitActor
	if !ecs.IsAlive(b.world, actor) || b.HasHit(actor) {
		return
	}
	// A rejected actor is still processed; it just stays out of the
	// already-hit set and can be struck again.
	if b.kind.CanBeAddedToHitActors(b, r) {
		target := b.kind.HitTarget(b, r)
		if ecs.IsAlive(b.world, target) && target != actor {
			b.kind.AddHitActor(b, target, true)
			b.kind.AddHitActor(b, actor, false)
		} else {
			b.kind.AddHitActor(b, actor, true)
		}
	}

	registered, out := b.kind.ProcessHit(b, r, d)
	if !registered {
		return
	}
	b.broadcast(HitEvent{
		Hit:      r,
		Behavior: b,
		Detector: d,
		Payload:  out,
		Window:   b.window,
	})
}

func (b *Behavior) addHitActor(actor ecs.Entity, attach bool) {
	if !ecs.IsAlive(b.world, actor) {
		return
	}
	b.markHit(actor, attach)
	for _, child := range ecs.AttachedActors(b.world, actor) {
		b.markHit(child, false)
	}

	if attach && b.def.AttachHitActorsWhileActive && b.def.Detection.Type != hitreg.ByEntering {
		b.drag(actor)
	}
}

func (b *Behavior) markHit(e ecs.Entity, attach bool) {
	if prev, ok := b.hit[e]; ok {
		b.hit[e] = prev || attach
		return
	}
	b.hit[e] = attach
	b.hitOrder = append(b.hitOrder, e)
}

func (b *Behavior) clearHitActors() {
	b.hit = make(map[ecs.Entity]bool)
	b.hitOrder = nil
}

func (b *Behavior) drag(actor ecs.Entity) {
	if parent, ok := ecs.AttachParent(b.world, actor); ok && parent == b.owner {
		return
	}
	if err := ecs.AttachToActor(b.world, actor, b.owner, ""); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"behavior": b.def.Name,
			"actor":    source.ActorName(b.world, actor),
		}).Warn("behavior: cannot attach hit actor")
		return
	}
	b.dragged = append(b.dragged, actor)
}

// DraggedActors are actors attached to the owner by this activation.
func (b *Behavior) DraggedActors() []ecs.Entity {
	return append([]ecs.Entity(nil), b.dragged...)
}

func (b *Behavior) releaseDragged() {
	for _, e := range b.dragged {
		if parent, ok := ecs.AttachParent(b.world, e); ok && parent == b.owner {
			ecs.DetachFromActor(b.world, e)
		}
	}
	b.dragged = nil
}

// Subscribe registers fn for registered hits.
func (b *Behavior) Subscribe(fn HitListener) int {
	if fn == nil {
		return 0
	}
	b.nextID++
	b.listeners[b.nextID] = fn
	b.order = append(b.order, b.nextID)
	return b.nextID
}

func (b *Behavior) Unsubscribe(id int) {
	if _, ok := b.listeners[id]; !ok {
		return
	}
	delete(b.listeners, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *Behavior) broadcast(ev HitEvent) {
	if len(b.order) == 0 {
		return
	}
	for _, id := range append([]int(nil), b.order...) {
		if fn, ok := b.listeners[id]; ok {
			fn(ev)
		}
	}
}
