package container

import (
	"fmt"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/sirupsen/logrus"
)

// Container owns the behaviors of one actor and routes invoke requests to
// them, forwarding to other actors' containers for non-self sources.
type Container struct {
	world *ecs.World
	actor ecs.Entity

	defs       []*behavior.Definition
	evaluators []source.Evaluator
	kinds      *behavior.Kinds

	started   bool
	sources   []*source.Source
	behaviors []*behavior.Behavior
	byName    map[string]*behavior.Behavior

	listeners map[int]behavior.HitListener
	order     []int
	nextID    int
}

var ContainerComponent = component.NewComponent[Container]()

// Options carries the startup dependencies of a container.
type Options struct {
	Evaluators []source.Evaluator
	Kinds      *behavior.Kinds
}

func New(w *ecs.World, actor ecs.Entity, defs []*behavior.Definition, opts Options) *Container {
	kinds := opts.Kinds
	if kinds == nil {
		kinds = behavior.NewKinds(nil)
	}
	return &Container{
		world:      w,
		actor:      actor,
		defs:       defs,
		evaluators: opts.Evaluators,
		kinds:      kinds,
		byName:     make(map[string]*behavior.Behavior),
		listeners:  make(map[int]behavior.HitListener),
	}
}

// Attach stores c on its actor so other containers can forward to it.
func Attach(c *Container) error {
	if err := ecs.Add(c.world, c.actor, ContainerComponent, c); err != nil {
		return fmt.Errorf("container: %w", err)
	}
	return nil
}

// Of returns the container stored on actor.
func Of(w *ecs.World, actor ecs.Entity) (*Container, bool) {
	return ecs.Get(w, actor, ContainerComponent)
}

func (c *Container) Actor() ecs.Entity { return c.actor }
func (c *Container) World() *ecs.World { return c.world }
func (c *Container) Started() bool { return c.started }

// Start resolves sources, instantiates every behavior, subscribes the
// hit relay and invokes the behaviors flagged to run on start. It runs
// once; later calls are no-ops.
func (c *Container) Start() error {
	if c.started {
		return nil
	}

	sources := source.Resolve(c.world, c.actor, c.evaluators)
	behaviors := make([]*behavior.Behavior, 0, len(c.defs))
	byName := make(map[string]*behavior.Behavior, len(c.defs))
	for _, def := range c.defs {
		if _, dup := byName[def.Name]; dup {
			return fmt.Errorf("container: actor %s: duplicate behavior %q", source.ActorName(c.world, c.actor), def.Name)
		}
		b, err := def.Instantiate(c.world, c.actor, c.kinds)
		if err != nil {
			return fmt.Errorf("container: actor %s: %w", source.ActorName(c.world, c.actor), err)
		}
		behaviors = append(behaviors, b)
		byName[def.Name] = b
	}

	c.sources = sources
	c.behaviors = behaviors
	c.byName = byName
	c.started = true

	for _, b := range c.behaviors {
		b.Bind(c.sources)
		b.Subscribe(c.relay)
	}
	for _, b := range c.behaviors {
		if b.Definition().InvokeOnStart {
			c.Invoke(b.Name(), true, nil, nil)
		}
	}
	return nil
}

// Invoke activates or deactivates the named behavior on each source.
// An empty source list means the self source.
func (c *Container) Invoke(name string, activate bool, sources []string, payload behavior.Payload) {
	log := logger.Log.WithFields(logrus.Fields{
		"behavior": name,
		"actor":    source.ActorName(c.world, c.actor),
	})
	if name == "" {
		log.Warn("container: invoke with empty behavior name")
		return
	}
	if len(sources) == 0 {
		sources = []string{source.SelfSourceName}
	}

	for _, src := range sources {
		if src == source.SelfSourceName {
			b, ok := c.byName[name]
			if !ok {
				log.Warn("container: behavior not found")
				continue
			}
			b.MakeActive(activate, payload)
			continue
		}
		c.forward(name, activate, src, payload)
	}
}

// forward asks the container on a source's actor to run the behavior on
// its own self source. It never forwards to this container.
func (c *Container) forward(name string, activate bool, srcName string, payload behavior.Payload) {
	log := logger.Log.WithFields(logrus.Fields{
		"behavior": name,
		"source":   srcName,
		"actor":    source.ActorName(c.world, c.actor),
	})

	src, ok := c.Source(srcName)
	if !ok {
		log.Warn("container: source not resolved")
		return
	}
	actor, ok := src.ResolveActor(c.world, c.actor)
	if !ok {
		log.Warn("container: source actor is gone")
		return
	}
	if actor == c.actor {
		log.Warn("container: source resolves to this actor, not forwarding")
		return
	}
	target, ok := Of(c.world, actor)
	if !ok {
		log.Warn("container: source actor has no behavior container")
		return
	}
	if target == c {
		return
	}
	target.Invoke(name, activate, []string{source.SelfSourceName}, payload)
}

// Behavior looks up a behavior by exact name.
func (c *Container) Behavior(name string) (*behavior.Behavior, bool) {
	b, ok := c.byName[name]
	return b, ok
}

func (c *Container) Behaviors() []*behavior.Behavior {
	return append([]*behavior.Behavior(nil), c.behaviors...)
}

func (c *Container) Sources() []*source.Source {
	return append([]*source.Source(nil), c.sources...)
}

func (c *Container) Source(name string) (*source.Source, bool) {
	for _, s := range c.sources {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// DetectorNames lists "source/detector" for every detector reachable from
// this container, for tooling pickers.
func (c *Container) DetectorNames() []string {
	var out []string
	for _, s := range c.sources {
		for _, n := range s.DetectorNames() {
			out = append(out, s.Name+"/"+n)
		}
	}
	return out
}

// OnHitAnything subscribes fn to hits registered by any behavior of this
// container.
func (c *Container) OnHitAnything(fn behavior.HitListener) int {
	if fn == nil {
		return 0
	}
	c.nextID++
	c.listeners[c.nextID] = fn
	c.order = append(c.order, c.nextID)
	return c.nextID
}

func (c *Container) Unsubscribe(id int) {
	if _, ok := c.listeners[id]; !ok {
		return
	}
	delete(c.listeners, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Container) relay(ev behavior.HitEvent) {
	logger.Log.WithFields(logrus.Fields{
		"behavior": ev.Behavior.Name(),
		"actor":    source.ActorName(c.world, c.actor),
		"target":   source.ActorName(c.world, ev.Hit.HitActor),
		"detector": ev.Detector.Name(),
	}).Debug("container: hit registered")
	for _, id := range append([]int(nil), c.order...) {
		if fn, ok := c.listeners[id]; ok {
			fn(ev)
		}
	}
}
