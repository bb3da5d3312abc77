package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/sirupsen/logrus"
)

// ResourceKey is the world resource key the physics world is stored under.
const ResourceKey = "physics"

// PhysicsWorld mirrors actor hurtboxes into a cp.Space and answers sweep
// and overlap queries against them.
type PhysicsWorld struct {
	space    *cp.Space
	channels map[string]uint
	profiles map[string]config.Profile
	trace    string

	hurt      map[ecs.Entity]*hurtBody
	queryBody *cp.Body
	warned    map[string]bool
}

type hurtBody struct {
	body   *cp.Body
	shapes []*cp.Shape
	sig    string
	placed bool
}

// shapeRef is stored in cp.Shape.UserData for hurt shapes.
type shapeRef struct {
	actor   ecs.Entity
	index   int
	surface string
}

func NewPhysicsWorld(settings config.Settings) *PhysicsWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})

	p := &PhysicsWorld{
		space:     space,
		channels:  make(map[string]uint, len(settings.Channels)),
		profiles:  make(map[string]config.Profile, len(settings.Profiles)),
		trace:     settings.TraceChannel,
		hurt:      make(map[ecs.Entity]*hurtBody),
		queryBody: cp.NewKinematicBody(),
		warned:    make(map[string]bool),
	}
	for i, name := range settings.Channels {
		if i >= 32 {
			logger.Log.WithField("channel", name).Warn("physics: too many channels, ignoring")
			continue
		}
		p.channels[name] = 1 << uint(i)
	}
	for _, prof := range settings.Profiles {
		p.profiles[prof.Name] = prof
	}
	return p
}

// Of returns the physics world attached to w.
func Of(w *ecs.World) (*PhysicsWorld, bool) {
	v, ok := w.Resource(ResourceKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*PhysicsWorld)
	return p, ok && p != nil
}

func (p *PhysicsWorld) Space() *cp.Space {
	if p == nil {
		return nil
	}
	return p.space
}

// TraceChannel is the default channel sweeps run on.
func (p *PhysicsWorld) TraceChannel() string {
	if p == nil {
		return ""
	}
	return p.trace
}

// ChannelBit returns the category bit for a channel name.
func (p *PhysicsWorld) ChannelBit(name string) (uint, bool) {
	bit, ok := p.channels[name]
	if !ok && name != "" && !p.warned[name] {
		p.warned[name] = true
		logger.Log.WithField("channel", name).Warn("physics: unknown collision channel")
	}
	return bit, ok
}

func (p *PhysicsWorld) channelMask(names []string) uint {
	if len(names) == 0 {
		return cp.ALL_CATEGORIES
	}
	var mask uint
	for _, n := range names {
		bit, _ := p.ChannelBit(n)
		mask |= bit
	}
	return mask
}

// ProfileFilter returns the filter a detector shape uses under profile.
// Unknown profiles and profiles without an object type collide with nothing.
func (p *PhysicsWorld) ProfileFilter(profile string) cp.ShapeFilter {
	prof, ok := p.profiles[profile]
	if !ok {
		if profile != "" && !p.warned["profile:"+profile] {
			p.warned["profile:"+profile] = true
			logger.Log.WithField("profile", profile).Warn("physics: unknown collision profile")
		}
		return cp.ShapeFilter{}
	}
	if prof.ObjectType == "" {
		return cp.ShapeFilter{}
	}
	cat, _ := p.ChannelBit(prof.ObjectType)
	var mask uint
	for _, n := range prof.Overlaps {
		bit, _ := p.ChannelBit(n)
		mask |= bit
	}
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cat, Mask: mask}
}

// SyncHurtboxes creates, moves and removes hurt shapes so the space
// matches every live actor's hurtbox list.
func (p *PhysicsWorld) SyncHurtboxes(w *ecs.World) {
	if p == nil || w == nil {
		return
	}
	seen := make(map[ecs.Entity]bool)
	ecs.ForEach(w, component.HurtboxComponent.Kind(), func(e ecs.Entity, boxes *[]component.Hurtbox) {
		seen[e] = true
		hb := p.hurt[e]
		sig := fmt.Sprintf("%v", *boxes)
		if hb == nil || hb.sig != sig {
			p.RemoveActor(e)
			hb = p.buildHurtBody(e, *boxes)
			hb.sig = sig
			p.hurt[e] = hb
		}
		t := ecs.WorldTransform(w, e)
		if hb.placed && hb.body.Position().Equal(t.Position()) && hb.body.Angle() == t.Rotation {
			return
		}
		hb.body.SetPosition(t.Position())
		hb.body.SetAngle(t.Rotation)
		hb.placed = true
		// Re-adding recaches each shape's bounds so queries see the new pose
		// before the next Step.
		for _, s := range hb.shapes {
			p.space.RemoveShape(s)
			p.space.AddShape(s)
		}
	})
	for e := range p.hurt {
		if !seen[e] {
			p.RemoveActor(e)
		}
	}
}

func (p *PhysicsWorld) buildHurtBody(e ecs.Entity, boxes []component.Hurtbox) *hurtBody {
	body := p.space.AddBody(cp.NewKinematicBody())
	hb := &hurtBody{body: body}
	for i, box := range boxes {
		shape := newHurtShape(body, box)
		if shape == nil {
			logger.Log.WithFields(logrus.Fields{
				"actor": e,
				"shape": box.Shape,
			}).Warn("physics: unsupported hurtbox shape")
			continue
		}
		cat := cp.ALL_CATEGORIES
		if box.ObjectType != "" {
			cat, _ = p.ChannelBit(box.ObjectType)
		}
		shape.SetSensor(true)
		shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cat, Mask: p.channelMask(box.RespondsTo)})
		shape.UserData = &shapeRef{actor: e, index: i, surface: box.Surface}
		p.space.AddShape(shape)
		hb.shapes = append(hb.shapes, shape)
	}
	return hb
}

func newHurtShape(body *cp.Body, box component.Hurtbox) *cp.Shape {
	offset := component.Transform{X: box.OffsetX, Y: box.OffsetY, Rotation: box.Rotation}
	switch box.Shape {
	case component.ShapeCircle:
		return cp.NewCircle(body, box.Radius, offset.Position())
	case component.ShapeBox, "":
		hw, hh := box.Width/2, box.Height/2
		verts := []cp.Vector{
			offset.Point(cp.Vector{X: -hw, Y: -hh}),
			offset.Point(cp.Vector{X: hw, Y: -hh}),
			offset.Point(cp.Vector{X: hw, Y: hh}),
			offset.Point(cp.Vector{X: -hw, Y: hh}),
		}
		return cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	case component.ShapeCapsule:
		h := math.Max(box.HalfHeight-box.Radius, 0)
		a := offset.Point(cp.Vector{X: 0, Y: -h})
		b := offset.Point(cp.Vector{X: 0, Y: h})
		return cp.NewSegment(body, a, b, box.Radius)
	default:
		return nil
	}
}

// RemoveActor drops every hurt shape of e.
func (p *PhysicsWorld) RemoveActor(e ecs.Entity) {
	hb, ok := p.hurt[e]
	if !ok {
		return
	}
	for _, s := range hb.shapes {
		p.space.RemoveShape(s)
	}
	p.space.RemoveBody(hb.body)
	delete(p.hurt, e)
}

func (p *PhysicsWorld) Step(dt float64) {
	if p == nil || dt <= 0 {
		return
	}
	p.space.Step(dt)
}

// SweepCapsule moves a capsule from one pose to another on channel and
// returns every hurt shape it touches, ordered by time of impact.
// Actors for which ignore returns true are skipped.
func (p *PhysicsWorld) SweepCapsule(from, to Capsule, channel string, ignore func(ecs.Entity) bool) []Hit {
	if p == nil {
		return nil
	}
	bit, ok := p.ChannelBit(channel)
	if !ok {
		return nil
	}

	motion := to.Center.Sub(from.Center)
	length := motion.Length()
	dir := cp.Vector{}
	if length > 0 {
		dir = motion.Mult(1 / length)
	}

	shape := p.sweptShape(from, to)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: bit, Mask: cp.ALL_CATEGORIES})

	lead := from.support(dir)
	hits := p.query(shape, ignore, func(h *Hit) {
		if length == 0 {
			h.Location = from.Center
			return
		}
		t := (h.ImpactPoint.Sub(from.Center).Dot(dir) - lead) / length
		h.Time = math.Max(0, math.Min(1, t))
		h.Distance = h.Time * length
		h.Location = from.Center.Add(motion.Mult(h.Time))
	})
	sortHits(hits)
	return hits
}

// OverlapCapsule returns the hurt shapes overlapping c under a collision
// profile. Time is always zero.
func (p *PhysicsWorld) OverlapCapsule(c Capsule, profile string, ignore func(ecs.Entity) bool) []Hit {
	if p == nil {
		return nil
	}
	filter := p.ProfileFilter(profile)
	if filter.Categories == 0 || filter.Mask == 0 {
		return nil
	}
	a, b := c.Segment()
	shape := cp.NewSegment(p.queryBody, a, b, c.Radius)
	shape.SetFilter(filter)
	hits := p.query(shape, ignore, func(h *Hit) {
		h.Location = c.Center
	})
	sortHits(hits)
	return hits
}

func (p *PhysicsWorld) query(shape *cp.Shape, ignore func(ecs.Entity) bool, finish func(*Hit)) []Hit {
	var hits []Hit
	seen := make(map[*cp.Shape]bool)
	p.space.ShapeQuery(shape, func(other *cp.Shape, pts *cp.ContactPointSet) {
		ref, ok := other.UserData.(*shapeRef)
		if !ok || seen[other] || pts.Count == 0 {
			return
		}
		if ignore != nil && ignore(ref.actor) {
			return
		}
		seen[other] = true

		deepest := 0
		for i := 1; i < pts.Count; i++ {
			if pts.Points[i].Distance < pts.Points[deepest].Distance {
				deepest = i
			}
		}
		normal := pts.Normal.Neg()
		h := Hit{
			Actor:        ref.actor,
			Index:        ref.index,
			Surface:      ref.surface,
			Point:        pts.Points[deepest].PointA,
			Normal:       normal,
			ImpactPoint:  pts.Points[deepest].PointB,
			ImpactNormal: normal,
		}
		finish(&h)
		hits = append(hits, h)
	})
	return hits
}

// sweptShape builds the convex volume covered by moving the capsule core
// from one pose to another, falling back to a segment when the hull
// degenerates to a line.
func (p *PhysicsWorld) sweptShape(from, to Capsule) *cp.Shape {
	a0, b0 := from.Segment()
	a1, b1 := to.Segment()
	pts := []cp.Vector{a0, b0, a1, b1}

	if lo, hi, ok := collinearSpan(pts); ok {
		return cp.NewSegment(p.queryBody, lo, hi, from.Radius)
	}
	return cp.NewPolyShape(p.queryBody, len(pts), pts, cp.NewTransformIdentity(), from.Radius)
}

// collinearSpan reports whether pts lie on one line and returns the two
// extreme points when they do.
func collinearSpan(pts []cp.Vector) (cp.Vector, cp.Vector, bool) {
	const eps = 1e-6
	base := pts[0]
	far := base
	for _, v := range pts[1:] {
		if v.DistanceSq(base) > far.DistanceSq(base) {
			far = v
		}
	}
	axis := far.Sub(base)
	length := axis.Length()
	if length < eps {
		return base, base.Add(cp.Vector{X: eps}), true
	}
	axis = axis.Mult(1 / length)
	lo, hi := base, base
	loT, hiT := 0.0, 0.0
	for _, v := range pts {
		d := v.Sub(base)
		if math.Abs(d.Cross(axis)) > eps*math.Max(1, length) {
			return cp.Vector{}, cp.Vector{}, false
		}
		t := d.Dot(axis)
		if t < loT {
			lo, loT = v, t
		}
		if t > hiT {
			hi, hiT = v, t
		}
	}
	return lo, hi, true
}

func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Time != hits[j].Time {
			return hits[i].Time < hits[j].Time
		}
		if hits[i].Actor != hits[j].Actor {
			return hits[i].Actor < hits[j].Actor
		}
		return hits[i].Index < hits[j].Index
	})
}
