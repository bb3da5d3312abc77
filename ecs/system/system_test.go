package system

import (
	"fmt"
	"testing"

	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/ecs/entity"
	"github.com/milk9111/damagebehaviors/prefabs"
)

func jabScenario(autoDamage bool) prefabs.ScenarioSpec {
	return prefabs.ScenarioSpec{
		Name: "jab",
		Actors: []prefabs.ActorSpec{
			{
				Name:      "boxer",
				Velocity:  &prefabs.VelocitySpec{X: 600},
				Detectors: []prefabs.DetectorSpec{{Name: "Fist", Radius: 4, HalfHeight: 20}},
				Behaviors: []prefabs.BehaviorSpec{{
					Name:             "Punch",
					Kind:             "damage",
					AutoHandleDamage: autoDamage,
					Activation:       []prefabs.ActivationSpec{{Source: "ThisActor", Detectors: []string{"Fist"}}},
					Params:           map[string]any{"amount": 10},
				}},
				Animation: &prefabs.AnimationSpec{Track: "jab", Playing: true},
			},
			{
				Name:      "dummy",
				Transform: prefabs.TransformSpec{X: 100},
				Health:    50,
				Hurtboxes: []prefabs.HurtboxSpec{{Shape: "circle", Radius: 8, ObjectType: "pawn"}},
			},
		},
		Tracks: []prefabs.TrackSpec{{
			Name:    "jab",
			Length:  1,
			Windows: []prefabs.InvokeWindowSpec{{Behavior: "Punch", Start: 0, End: 0.5}},
		}},
	}
}

func run(t *testing.T, spec prefabs.ScenarioSpec, frames int) *entity.Scenario {
	t.Helper()
	s, err := entity.BuildScenario(spec, config.Default(), entity.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	pipeline := NewPipeline(0)
	for i := 0; i < frames; i++ {
		pipeline.Update(s.World)
	}
	return s
}

func TestPipelineAppliesDamageOnce(t *testing.T) {
	s := run(t, jabScenario(true), 35)

	dummy, _ := s.Actor("dummy")
	health, _ := ecs.Get(s.World, dummy, component.HealthComponent)
	if health.Current != 40 {
		t.Fatalf("expected one 10 damage hit, health is %v", health.Current)
	}

	records := HitLogOf(s.World).Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 hit record, got %d", len(records))
	}
	r := records[0]
	if r.Behavior != "Punch" || r.Actor != "boxer" || r.Struck != "dummy" || r.Detector != "Fist" || r.Damage != 10 {
		t.Fatalf("unexpected record %+v", r)
	}

	boxer, _ := s.Actor("boxer")
	c, ok := container.Of(s.World, boxer)
	if !ok || !c.Started() {
		t.Fatalf("boxer container should be started")
	}
	punch, _ := c.Behavior("Punch")
	if punch.IsActive() {
		t.Fatalf("Punch should be inactive after the window closed")
	}
	if s.World.Frame() != 35 {
		t.Fatalf("expected frame 35, got %d", s.World.Frame())
	}
}

func TestPipelineWithoutAutoDamage(t *testing.T) {
	s := run(t, jabScenario(false), 20)

	dummy, _ := s.Actor("dummy")
	health, _ := ecs.Get(s.World, dummy, component.HealthComponent)
	if health.Current != 50 {
		t.Fatalf("health must be untouched, got %v", health.Current)
	}
	records := HitLogOf(s.World).Records()
	if len(records) != 1 || records[0].Damage != 0 {
		t.Fatalf("expected one undamaged hit record, got %+v", records)
	}
}

func TestDuelScenarioRuns(t *testing.T) {
	settings, err := config.Load(config.SettingsFile)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s, err := entity.LoadScenario("duel.yaml", settings, entity.Options{})
	if err != nil {
		t.Fatalf("load duel: %v", err)
	}
	pipeline := NewPipeline(settings.FixedStep)
	for i := 0; i < 180; i++ {
		pipeline.Update(s.World)
	}
	containers := s.Containers()
	if len(containers) != 2 {
		t.Fatalf("expected knight and spike_trap containers, got %d", len(containers))
	}
	for _, c := range containers {
		if !c.Started() {
			t.Fatalf("container on %v was not started", c.Actor())
		}
	}
}

func TestHitLogKeepsNewest(t *testing.T) {
	log := NewHitLog(3)
	for i := 0; i < 5; i++ {
		log.Add(HitRecord{Frame: uint64(i), Behavior: fmt.Sprint("b", i)})
	}
	records := log.Records()
	if len(records) != 3 || records[0].Frame != 2 || records[2].Frame != 4 {
		t.Fatalf("expected frames 2..4, got %+v", records)
	}
	if log.Text() == "" {
		t.Fatalf("text should list records")
	}
	log.Clear()
	if len(log.Records()) != 0 {
		t.Fatalf("clear should empty the log")
	}
}

func TestMovementSkipsAttached(t *testing.T) {
	w := ecs.NewWorld()
	parent := ecs.CreateEntity(w)
	child := ecs.CreateEntity(w)
	for _, e := range []ecs.Entity{parent, child} {
		_ = ecs.Add(w, e, component.TransformComponent, &component.Transform{})
		_ = ecs.Add(w, e, component.VelocityComponent, &component.Velocity{X: 60})
	}
	if err := ecs.AttachAt(w, child, parent, "", component.Identity()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	NewMovementSystem(0.5).Update(w)

	pt, _ := ecs.Get(w, parent, component.TransformComponent)
	ct, _ := ecs.Get(w, child, component.TransformComponent)
	if pt.X != 30 || ct.X != 0 {
		t.Fatalf("expected parent at 30 and child untouched, got %v and %v", pt.X, ct.X)
	}
	if ecs.WorldTransform(w, child).X != 30 {
		t.Fatalf("child should follow its parent")
	}
}
