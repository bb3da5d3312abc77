package container

import (
	"testing"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/physics"
	"github.com/milk9111/damagebehaviors/source"
)

// pointsAt resolves to a fixed actor.
type pointsAt struct {
	name   string
	target ecs.Entity
}

func (p pointsAt) SourceName() string { return p.name }

func (p pointsAt) ActorWithDamageBehaviors(w *ecs.World, _ ecs.Entity) (ecs.Entity, bool) {
	return p.target, ecs.IsAlive(w, p.target)
}

type stage struct {
	w   *ecs.World
	env *hitreg.Env
}

func newStage() *stage {
	w := ecs.NewWorld()
	return &stage{w: w, env: &hitreg.Env{World: w, Physics: physics.NewPhysicsWorld(config.Default())}}
}

func (s *stage) actor(t *testing.T, name string, x float64, detectors ...string) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(s.w)
	_ = ecs.Add(s.w, e, component.NameComponent, &component.Name{Value: name})
	_ = ecs.Add(s.w, e, component.TransformComponent, &component.Transform{X: x})
	shapes := make([]component.DetectorShape, 0, len(detectors))
	for _, d := range detectors {
		shapes = append(shapes, component.DetectorShape{Name: d, Radius: 4, HalfHeight: 20})
	}
	_ = ecs.Add(s.w, e, component.DetectorShapesComponent, &shapes)
	if _, err := hitreg.Build(s.env, e); err != nil {
		t.Fatalf("build detectors: %v", err)
	}
	return e
}

func (s *stage) container(t *testing.T, actor ecs.Entity, evs []source.Evaluator, defs ...*behavior.Definition) *Container {
	t.Helper()
	c := New(s.w, actor, defs, Options{Evaluators: evs})
	if err := Attach(c); err != nil {
		t.Fatalf("attach container: %v", err)
	}
	return c
}

func def(name, src string, detectors ...string) *behavior.Definition {
	return &behavior.Definition{
		Name:       name,
		Detection:  hitreg.DefaultDetectionSettings(),
		Activation: []behavior.Activation{{Source: src, Detectors: detectors}},
	}
}

func mustStart(t *testing.T, cs ...*Container) {
	t.Helper()
	for _, c := range cs {
		if err := c.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
}

func active(t *testing.T, c *Container, name string) bool {
	t.Helper()
	b, ok := c.Behavior(name)
	if !ok {
		t.Fatalf("behavior %q missing", name)
	}
	return b.IsActive()
}

func TestStart(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	onStart := def("Guard", source.SelfSourceName, "Fist")
	onStart.InvokeOnStart = true
	c := s.container(t, knight, nil, def("Punch", source.SelfSourceName, "Fist"), onStart)

	if c.Started() || len(c.Behaviors()) != 0 {
		t.Fatalf("nothing should be instantiated before Start")
	}
	mustStart(t, c)
	if !c.Started() || len(c.Behaviors()) != 2 {
		t.Fatalf("expected 2 behaviors after start, got %d", len(c.Behaviors()))
	}
	if active(t, c, "Punch") {
		t.Fatalf("Punch is not invoked on start")
	}
	if !active(t, c, "Guard") {
		t.Fatalf("Guard should be active after start")
	}

	mustStart(t, c)
	if len(c.Behaviors()) != 2 {
		t.Fatalf("second Start must be a no-op")
	}
	if got, ok := Of(s.w, knight); !ok || got != c {
		t.Fatalf("container should be stored on its actor")
	}
}

func TestStartRejectsDuplicateNames(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	c := s.container(t, knight, nil, def("Punch", source.SelfSourceName, "Fist"), def("Punch", source.SelfSourceName, "Fist"))
	if err := c.Start(); err == nil {
		t.Fatalf("expected duplicate behavior error")
	}
}

func TestInvokeSelf(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	c := s.container(t, knight, nil, def("Punch", source.SelfSourceName, "Fist"))
	mustStart(t, c)

	cases := []struct {
		name    string
		invoke  string
		on      bool
		sources []string
		want    bool
	}{
		{"empty_sources_mean_self", "Punch", true, nil, true},
		{"explicit_self_off", "Punch", false, []string{source.SelfSourceName}, false},
		{"empty_name_is_ignored", "", true, nil, false},
		{"unknown_behavior_is_ignored", "Kick", true, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.Invoke(tc.invoke, tc.on, tc.sources, nil)
			if got := active(t, c, "Punch"); got != tc.want {
				t.Fatalf("Punch active = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInvokeForwardsToSourceContainer(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	sword := s.actor(t, "sword", 0, "Blade")

	kc := s.container(t, knight, []source.Evaluator{pointsAt{"MainHand", sword}}, def("Slash", source.SelfSourceName, "Fist"))
	sc := s.container(t, sword, nil, def("Slash", source.SelfSourceName, "Blade"))
	mustStart(t, kc, sc)

	kc.Invoke("Slash", true, []string{"MainHand"}, behavior.Payload{"amount": 5})
	if !active(t, sc, "Slash") {
		t.Fatalf("sword's Slash should be active")
	}
	if active(t, kc, "Slash") {
		t.Fatalf("knight's own Slash must not be touched by a forwarded invoke")
	}
	b, _ := sc.Behavior("Slash")
	if b.Payload()["amount"] != 5 {
		t.Fatalf("payload should be forwarded, got %v", b.Payload())
	}

	kc.Invoke("Slash", true, []string{source.SelfSourceName, "MainHand"}, nil)
	if !active(t, kc, "Slash") || !active(t, sc, "Slash") {
		t.Fatalf("both behaviors should be active")
	}
}

func TestForwardingCycleTerminates(t *testing.T) {
	s := newStage()
	a := s.actor(t, "a", 0, "Fist")
	b := s.actor(t, "b", 100, "Fist")

	ac := s.container(t, a, []source.Evaluator{pointsAt{"Partner", b}}, def("Ping", source.SelfSourceName, "Fist"))
	bc := s.container(t, b, []source.Evaluator{pointsAt{"Partner", a}}, def("Ping", source.SelfSourceName, "Fist"))
	mustStart(t, ac, bc)

	ac.Invoke("Ping", true, []string{"Partner"}, nil)
	if !active(t, bc, "Ping") {
		t.Fatalf("b should be pinged")
	}
	if active(t, ac, "Ping") {
		t.Fatalf("a forwarded only and must stay inactive")
	}
}

func TestInvokeUnresolvedSourceIsNoop(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	mirror := s.actor(t, "mirror", 0)
	loner := s.actor(t, "loner", 0)

	c := s.container(t, knight, []source.Evaluator{
		pointsAt{"Self", knight},
		pointsAt{"Loner", loner},
		pointsAt{"Mirror", mirror},
	}, def("Punch", source.SelfSourceName, "Fist"))
	mustStart(t, c)
	_ = ecs.DestroyEntity(s.w, mirror)

	for _, src := range []string{"Ghost", "Self", "Loner", "Mirror"} {
		t.Run(src, func(t *testing.T) {
			c.Invoke("Punch", true, []string{src}, nil)
			if active(t, c, "Punch") {
				t.Fatalf("invoke through %s must not activate anything", src)
			}
		})
	}
}

func TestOnHitAnything(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist")
	c := s.container(t, knight, nil, def("Punch", source.SelfSourceName, "Fist"), def("Kick", source.SelfSourceName, "Fist"))
	mustStart(t, c)

	target := ecs.CreateEntity(s.w)
	_ = ecs.Add(s.w, target, component.TransformComponent, &component.Transform{X: 60})
	_ = ecs.Add(s.w, target, component.HurtboxComponent, &[]component.Hurtbox{
		{Shape: component.ShapeCircle, Radius: 8, ObjectType: "pawn"},
	})

	var names []string
	id := c.OnHitAnything(func(ev behavior.HitEvent) { names = append(names, ev.Behavior.Name()) })

	c.Invoke("Punch", true, nil, nil)
	tr, _ := ecs.Get(s.w, knight, component.TransformComponent)
	tr.X = 80
	s.env.Physics.SyncHurtboxes(s.w)
	hitreg.TickAll(s.w)

	if len(names) != 1 || names[0] != "Punch" {
		t.Fatalf("expected one relayed Punch hit, got %v", names)
	}

	c.Unsubscribe(id)
	c.Invoke("Punch", false, nil, nil)
	c.Invoke("Punch", true, nil, nil)
	tr.X = 0
	s.env.Physics.SyncHurtboxes(s.w)
	hitreg.TickAll(s.w)
	if len(names) != 1 {
		t.Fatalf("unsubscribed relay must not fire, got %v", names)
	}
}

func TestDetectorNames(t *testing.T) {
	s := newStage()
	knight := s.actor(t, "knight", 0, "Fist", "Knee")
	sword := s.actor(t, "sword", 0, "Blade")
	c := s.container(t, knight, []source.Evaluator{pointsAt{"MainHand", sword}})
	mustStart(t, c)

	got := c.DetectorNames()
	want := []string{"ThisActor/Fist", "ThisActor/Knee", "MainHand/Blade"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
