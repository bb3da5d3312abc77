package entity

import (
	"fmt"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/physics"
	"github.com/milk9111/damagebehaviors/prefabs"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/milk9111/damagebehaviors/trigger"
)

// Scenario is a world populated from a scenario spec.
type Scenario struct {
	Name     string
	World    *ecs.World
	Env      *hitreg.Env
	Settings config.Settings
	Tracks   map[string]*trigger.Track

	actors map[string]ecs.Entity
	order  []string
}

// Options overrides the registries a scenario is built with.
type Options struct {
	Kinds    *behavior.Kinds
	Registry *source.Registry
}

type builder struct {
	w          *ecs.World
	env        *hitreg.Env
	kinds      *behavior.Kinds
	evaluators []source.Evaluator
	tracks     map[string]*trigger.Track
	actors     map[string]ecs.Entity
}

type actorBuildFn func(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error

// Actor sections are applied in this order once every actor exists, so
// references between actors always resolve.
var actorBuildOrder = []struct {
	name string
	fn   actorBuildFn
}{
	{"transform", addTransform},
	{"velocity", addVelocity},
	{"sockets", addSockets},
	{"health", addHealth},
	{"hurtboxes", addHurtboxes},
	{"owner", addOwner},
	{"equipment", addEquipment},
	{"detectors", addDetectors},
	{"animation", addAnimation},
}

// LoadScenario reads a scenario spec by file name and builds it.
func LoadScenario(filename string, settings config.Settings, opts Options) (*Scenario, error) {
	spec, err := prefabs.LoadScenarioSpec(filename)
	if err != nil {
		return nil, err
	}
	return BuildScenario(spec, settings, opts)
}

// BuildScenario creates the world, its physics and detector environment
// and every actor of spec. Containers are attached but not started.
func BuildScenario(spec prefabs.ScenarioSpec, settings config.Settings, opts Options) (*Scenario, error) {
	registry := opts.Registry
	if registry == nil {
		registry = source.NewRegistry()
	}
	evaluators, err := registry.Build(settings.Evaluators)
	if err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", spec.Name, err)
	}
	kinds := opts.Kinds
	if kinds == nil {
		kinds = behavior.NewKinds(nil)
	}
	tracks, err := trigger.TracksFromSpec(spec.Tracks)
	if err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", spec.Name, err)
	}

	w := ecs.NewWorld()
	phys := physics.NewPhysicsWorld(settings)
	env := &hitreg.Env{World: w, Physics: phys, Debug: hitreg.NewDebug(settings.Debug)}
	w.SetResource(physics.ResourceKey, phys)
	w.SetResource(hitreg.EnvResourceKey, env)

	b := &builder{
		w:          w,
		env:        env,
		kinds:      kinds,
		evaluators: evaluators,
		tracks:     tracks,
		actors:     make(map[string]ecs.Entity, len(spec.Actors)),
	}
	s := &Scenario{
		Name:     spec.Name,
		World:    w,
		Env:      env,
		Settings: settings,
		Tracks:   tracks,
		actors:   b.actors,
	}

	for _, as := range spec.Actors {
		if as.Name == "" {
			return nil, fmt.Errorf("build scenario %q: actor without name", spec.Name)
		}
		if _, dup := b.actors[as.Name]; dup {
			return nil, fmt.Errorf("build scenario %q: duplicate actor %q", spec.Name, as.Name)
		}
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.NameComponent, &component.Name{Value: as.Name}); err != nil {
			return nil, err
		}
		b.actors[as.Name] = e
		s.order = append(s.order, as.Name)
	}

	for _, step := range actorBuildOrder {
		for _, as := range spec.Actors {
			if err := step.fn(b, b.actors[as.Name], as); err != nil {
				return nil, fmt.Errorf("build scenario %q: actor %q: add %s: %w", spec.Name, as.Name, step.name, err)
			}
		}
	}
	if err := b.attachAll(spec.Actors); err != nil {
		return nil, fmt.Errorf("build scenario %q: %w", spec.Name, err)
	}
	for _, as := range spec.Actors {
		if err := b.addContainer(b.actors[as.Name], as); err != nil {
			return nil, fmt.Errorf("build scenario %q: actor %q: add behaviors: %w", spec.Name, as.Name, err)
		}
	}

	phys.SyncHurtboxes(w)
	return s, nil
}

func (s *Scenario) Actor(name string) (ecs.Entity, bool) {
	e, ok := s.actors[name]
	return e, ok
}

// ActorNames lists actors in spec order.
func (s *Scenario) ActorNames() []string {
	return append([]string(nil), s.order...)
}

// Containers lists behavior containers in actor order.
func (s *Scenario) Containers() []*container.Container {
	var out []*container.Container
	for _, name := range s.order {
		if c, ok := container.Of(s.World, s.actors[name]); ok {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) lookup(name string) (ecs.Entity, error) {
	e, ok := b.actors[name]
	if !ok {
		return ecs.NoEntity, fmt.Errorf("unknown actor %q", name)
	}
	return e, nil
}

func addTransform(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	t := component.TransformFromSpec(spec.Transform)
	return ecs.Add(b.w, e, component.TransformComponent, &t)
}

func addVelocity(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if spec.Velocity == nil {
		return nil
	}
	return ecs.Add(b.w, e, component.VelocityComponent, &component.Velocity{
		X:       spec.Velocity.X,
		Y:       spec.Velocity.Y,
		Angular: spec.Velocity.Angular,
	})
}

func addSockets(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	sockets := &component.Sockets{}
	for name, ts := range spec.Sockets {
		sockets.Set(name, component.TransformFromSpec(ts))
	}
	return ecs.Add(b.w, e, component.SocketsComponent, sockets)
}

func addHealth(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if spec.Health <= 0 {
		return nil
	}
	return ecs.Add(b.w, e, component.HealthComponent, &component.Health{Initial: spec.Health, Current: spec.Health})
}

func addHurtboxes(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if len(spec.Hurtboxes) == 0 {
		return nil
	}
	boxes := make([]component.Hurtbox, 0, len(spec.Hurtboxes))
	for i, hs := range spec.Hurtboxes {
		hb := component.Hurtbox{
			Shape:      component.ShapeKind(hs.Shape),
			Radius:     hs.Radius,
			Width:      hs.Width,
			Height:     hs.Height,
			HalfHeight: hs.HalfHeight,
			OffsetX:    hs.OffsetX,
			OffsetY:    hs.OffsetY,
			Rotation:   hs.Rotation,
			Surface:    hs.Surface,
			ObjectType: hs.ObjectType,
			RespondsTo: append([]string(nil), hs.RespondsTo...),
		}
		if err := validateHurtbox(hb); err != nil {
			return fmt.Errorf("hurtbox %d: %w", i, err)
		}
		boxes = append(boxes, hb)
	}
	return ecs.Add(b.w, e, component.HurtboxComponent, &boxes)
}

func validateHurtbox(hb component.Hurtbox) error {
	switch hb.Shape {
	case component.ShapeCircle:
		if hb.Radius <= 0 {
			return fmt.Errorf("circle needs a positive radius")
		}
	case component.ShapeBox:
		if hb.Width <= 0 || hb.Height <= 0 {
			return fmt.Errorf("box needs a positive width and height")
		}
	case component.ShapeCapsule:
		if hb.Radius <= 0 || hb.HalfHeight < hb.Radius {
			return fmt.Errorf("capsule needs radius > 0 and half_height >= radius")
		}
	default:
		return fmt.Errorf("unknown shape %q", hb.Shape)
	}
	return nil
}

func addOwner(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if spec.Owner == "" {
		return nil
	}
	owner, err := b.lookup(spec.Owner)
	if err != nil {
		return err
	}
	if owner == e {
		return fmt.Errorf("actor cannot own itself")
	}
	return ecs.Add(b.w, e, component.OwnerComponent, &component.Owner{Actor: uint64(owner)})
}

func addEquipment(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if len(spec.Equipment) == 0 {
		return nil
	}
	eq := &component.Equipment{Slots: make(map[string]uint64, len(spec.Equipment))}
	for slot, name := range spec.Equipment {
		item, err := b.lookup(name)
		if err != nil {
			return fmt.Errorf("slot %q: %w", slot, err)
		}
		eq.Slots[slot] = uint64(item)
	}
	return ecs.Add(b.w, e, component.EquipmentComponent, eq)
}

func addDetectors(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if len(spec.Detectors) == 0 {
		return nil
	}
	shapes := make([]component.DetectorShape, 0, len(spec.Detectors))
	for _, ds := range spec.Detectors {
		if ds.Name == "" {
			return fmt.Errorf("detector without name")
		}
		if ds.Radius <= 0 {
			return fmt.Errorf("detector %q: radius must be positive", ds.Name)
		}
		shapes = append(shapes, component.DetectorShape{
			Name:       ds.Name,
			Socket:     ds.Socket,
			Local:      component.TransformFromSpec(ds.Transform),
			Radius:     ds.Radius,
			HalfHeight: ds.HalfHeight,
		})
	}
	if err := ecs.Add(b.w, e, component.DetectorShapesComponent, &shapes); err != nil {
		return err
	}
	_, err := hitreg.Build(b.env, e)
	return err
}

func addAnimation(b *builder, e ecs.Entity, spec prefabs.ActorSpec) error {
	if spec.Animation == nil {
		return nil
	}
	track, ok := b.tracks[spec.Animation.Track]
	if !ok {
		return fmt.Errorf("unknown track %q", spec.Animation.Track)
	}
	p := &trigger.Player{Track: track, Speed: spec.Animation.Speed}
	if spec.Animation.Playing {
		p.Play(b.w, e, track)
	}
	return ecs.Add(b.w, e, trigger.PlayerComponent, p)
}

// attachAll attaches parents before children so keep_world attachments
// see their parent's final world transform.
func (b *builder) attachAll(actors []prefabs.ActorSpec) error {
	done := make(map[string]bool, len(actors))
	pending := 0
	for _, as := range actors {
		if as.Attach == nil {
			done[as.Name] = true
		} else {
			pending++
		}
	}

	for pending > 0 {
		progressed := false
		for _, as := range actors {
			if as.Attach == nil || done[as.Name] || !done[as.Attach.Parent] {
				continue
			}
			if err := b.attach(as); err != nil {
				return fmt.Errorf("actor %q: attach: %w", as.Name, err)
			}
			done[as.Name] = true
			pending--
			progressed = true
		}
		if !progressed {
			for _, as := range actors {
				if as.Attach != nil && !done[as.Name] {
					if _, ok := b.actors[as.Attach.Parent]; !ok {
						return fmt.Errorf("actor %q: attach: unknown actor %q", as.Name, as.Attach.Parent)
					}
					return fmt.Errorf("actor %q: attach: %w", as.Name, ecs.ErrAttachCycle)
				}
			}
		}
	}
	return nil
}

func (b *builder) attach(as prefabs.ActorSpec) error {
	child := b.actors[as.Name]
	parent, err := b.lookup(as.Attach.Parent)
	if err != nil {
		return err
	}
	if as.Attach.KeepWorld {
		return ecs.AttachToActor(b.w, child, parent, as.Attach.Socket)
	}
	return ecs.AttachAt(b.w, child, parent, as.Attach.Socket, component.TransformFromSpec(as.Attach.Local))
}

func (b *builder) addContainer(e ecs.Entity, spec prefabs.ActorSpec) error {
	if len(spec.Behaviors) == 0 {
		return nil
	}
	defs := make([]*behavior.Definition, 0, len(spec.Behaviors))
	for _, bs := range spec.Behaviors {
		def, err := behavior.DefinitionFromSpec(bs)
		if err != nil {
			return err
		}
		defs = append(defs, &def)
	}
	c := container.New(b.w, e, defs, container.Options{Evaluators: b.evaluators, Kinds: b.kinds})
	c.OnHitAnything(func(ev behavior.HitEvent) {
		b.w.Events().Push(ecs.Event{Type: ecs.EventHitRegistered, Frame: b.w.Frame(), Data: ev})
	})
	return container.Attach(c)
}
