package hitreg

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/common"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/physics"
)

// Listener receives every hit a detector reports.
type Listener func(d *Detector, r HitResult)

type overlapKey struct {
	actor ecs.Entity
	index int
}

// Detector is a capsule attached to an actor (optionally at a socket)
// that reports hurt shapes it sweeps through or starts overlapping.
type Detector struct {
	name       string
	actor      ecs.Entity
	socket     string
	local      component.Transform
	radius     float64
	halfHeight float64
	env        *Env

	enabled  bool
	settings DetectionSettings
	profile  string

	prev    component.Transform
	hasPrev bool
	ignored []ecs.Entity

	overlapping map[overlapKey]bool

	listeners map[int]Listener
	order     []int
	nextID    int
}

func NewDetector(env *Env, actor ecs.Entity, shape component.DetectorShape) *Detector {
	return &Detector{
		name:       shape.Name,
		actor:      actor,
		socket:     shape.Socket,
		local:      shape.Local,
		radius:     shape.Radius,
		halfHeight: shape.HalfHeight,
		env:        env,
		settings:   DefaultDetectionSettings(),
		profile:    config.ProfileNoCollision,
		listeners:  make(map[int]Listener),
	}
}

func (d *Detector) Name() string { return d.name }
func (d *Detector) Actor() ecs.Entity { return d.actor }
func (d *Detector) Socket() string { return d.socket }
func (d *Detector) Radius() float64 { return d.radius }
func (d *Detector) HalfHeight() float64 { return d.halfHeight }
func (d *Detector) Enabled() bool { return d.enabled }
func (d *Detector) Settings() DetectionSettings { return d.settings }

// Profile is the collision profile currently applied to the capsule.
func (d *Detector) Profile() string { return d.profile }

func (d *Detector) Ignored() []ecs.Entity {
	return append([]ecs.Entity(nil), d.ignored...)
}

// WorldTransform resolves the capsule pose through the actor's
// attachment chain and socket.
func (d *Detector) WorldTransform() (component.Transform, bool) {
	if !d.env.ready() || !ecs.IsAlive(d.env.World, d.actor) {
		return component.Transform{}, false
	}
	base := ecs.SocketWorldTransform(d.env.World, d.actor, d.socket)
	return base.Apply(d.local), true
}

func (d *Detector) Capsule() (physics.Capsule, bool) {
	t, ok := d.WorldTransform()
	if !ok {
		return physics.Capsule{}, false
	}
	return physics.CapsuleAt(t, d.halfHeight, d.radius), true
}

// SetActive enables or disables the detector under settings. The ignore
// list is always cleared.
func (d *Detector) SetActive(enabled bool, settings DetectionSettings) {
	d.ignored = d.ignored[:0]
	d.settings = settings
	d.enabled = enabled

	switch settings.Type {
	case ByTrace:
		if cur, ok := d.WorldTransform(); ok {
			d.prev = cur
			d.hasPrev = true
		}
	case ByEntering:
		if enabled {
			d.profile = settings.profile()
			d.overlapping = make(map[overlapKey]bool)
			if settings.CheckOverlappingOnStart {
				d.updateOverlaps()
			}
		} else {
			d.profile = config.ProfileNoCollision
			d.overlapping = nil
		}
	}
}

func (d *Detector) AddIgnoredActors(actors ...ecs.Entity) {
	d.ignored = append(d.ignored, actors...)
}

// Subscribe registers fn for hit events and returns an id for Unsubscribe.
func (d *Detector) Subscribe(fn Listener) int {
	if fn == nil {
		return 0
	}
	d.nextID++
	id := d.nextID
	d.listeners[id] = fn
	d.order = append(d.order, id)
	return id
}

func (d *Detector) Unsubscribe(id int) {
	if _, ok := d.listeners[id]; !ok {
		return
	}
	delete(d.listeners, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *Detector) ListenerCount() int {
	return len(d.order)
}

// Tick runs the per-frame query for the active detection type and
// records the current pose as the next sweep's start.
func (d *Detector) Tick() {
	cur, ok := d.WorldTransform()
	if !ok {
		return
	}
	if d.enabled {
		switch d.settings.Type {
		case ByTrace:
			if d.hasPrev {
				d.sweep(d.prev, cur)
			}
		case ByEntering:
			d.updateOverlaps()
		}
	}
	d.prev = cur
	d.hasPrev = true
}

func (d *Detector) sweep(from, to component.Transform) {
	start := physics.CapsuleAt(from, d.halfHeight, d.radius)
	end := physics.CapsuleAt(to, d.halfHeight, d.radius)
	if common.NearlyZero(end.Center.Sub(start.Center)) {
		end.Center = end.Center.Add(common.ZeroMotionNudge)
	}
	direction := end.Center.Sub(start.Center).Normalize()

	channel := d.settings.traceChannel(d.env.Physics.TraceChannel())
	ignore := d.ignoreFilter()
	hits := d.env.Physics.SweepCapsule(start, end, channel, ignore)

	d.env.Debug.Record(SweepRecord{
		Detector: d.name,
		From:     start,
		To:       end,
		Hits:     hits,
		Frame:    d.env.World.Frame(),
	})

	for _, h := range hits {
		d.broadcast(HitResult{
			HitActor:   h.Actor,
			Hit:        h,
			Direction:  direction,
			Instigator: d.actor,
			Surface:    h.Surface,
		})
	}
}

func (d *Detector) updateOverlaps() {
	c, ok := d.Capsule()
	if !ok {
		return
	}
	if d.overlapping == nil {
		d.overlapping = make(map[overlapKey]bool)
	}
	hits := d.env.Physics.OverlapCapsule(c, d.profile, d.ignoreFilter())

	d.env.Debug.Record(SweepRecord{
		Detector: d.name,
		From:     c,
		To:       c,
		Overlap:  true,
		Hits:     hits,
		Frame:    d.env.World.Frame(),
	})

	direction := cp.Vector{}
	if d.hasPrev {
		if delta := c.Center.Sub(d.prev.Position()); !common.NearlyZero(delta) {
			direction = delta.Normalize()
		}
	}

	current := make(map[overlapKey]bool, len(hits))
	var entered []physics.Hit
	for _, h := range hits {
		key := overlapKey{actor: h.Actor, index: h.Index}
		current[key] = true
		if !d.overlapping[key] {
			entered = append(entered, h)
		}
	}
	d.overlapping = current

	for _, h := range entered {
		d.broadcast(HitResult{
			HitActor:   h.Actor,
			Hit:        h,
			Direction:  direction,
			Instigator: d.actor,
			Surface:    h.Surface,
		})
	}
}

// ignoreFilter skips the detector's actor, its owner, everything attached
// to either, and the explicit ignore list.
func (d *Detector) ignoreFilter() func(ecs.Entity) bool {
	w := d.env.World
	skip := map[ecs.Entity]bool{d.actor: true}
	for _, e := range ecs.AttachedActors(w, d.actor) {
		skip[e] = true
	}
	if owner, ok := ecs.Get(w, d.actor, component.OwnerComponent); ok {
		o := ecs.Entity(owner.Actor)
		if ecs.IsAlive(w, o) {
			skip[o] = true
			for _, e := range ecs.AttachedActors(w, o) {
				skip[e] = true
			}
		}
	}
	for _, e := range d.ignored {
		skip[e] = true
	}
	return func(e ecs.Entity) bool { return skip[e] }
}

func (d *Detector) broadcast(r HitResult) {
	if len(d.order) == 0 {
		return
	}
	ids := append([]int(nil), d.order...)
	for _, id := range ids {
		if fn, ok := d.listeners[id]; ok {
			fn(d, r)
		}
	}
}
