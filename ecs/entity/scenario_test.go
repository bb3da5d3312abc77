package entity

import (
	"errors"
	"testing"

	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/physics"
	"github.com/milk9111/damagebehaviors/prefabs"
	"github.com/milk9111/damagebehaviors/trigger"
)

func TestLoadDuel(t *testing.T) {
	settings, err := config.Load(config.SettingsFile)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s, err := LoadScenario("duel.yaml", settings, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := s.World

	names := s.ActorNames()
	if len(names) == 0 || names[0] != "knight" {
		t.Fatalf("actors should keep spec order, got %v", names)
	}
	knight, _ := s.Actor("knight")
	sword, _ := s.Actor("sword")
	head, _ := s.Actor("dummy_head")
	dummy, _ := s.Actor("dummy")

	if parent, ok := ecs.AttachParent(w, sword); !ok || parent != knight {
		t.Fatalf("sword should be attached to knight")
	}
	if ecs.RootAttachedActor(w, head) != dummy {
		t.Fatalf("dummy_head root should be dummy")
	}
	eq, ok := ecs.Get(w, knight, component.EquipmentComponent)
	if !ok || ecs.Entity(eq.Slots["main_hand"]) != sword {
		t.Fatalf("knight main_hand should hold the sword")
	}
	owner, ok := ecs.Get(w, sword, component.OwnerComponent)
	if !ok || ecs.Entity(owner.Actor) != knight {
		t.Fatalf("sword should be owned by knight")
	}
	if hp, ok := ecs.Get(w, dummy, component.HealthComponent); !ok || hp.Current != 200 {
		t.Fatalf("dummy health should be 200")
	}

	set, ok := ecs.Get(w, sword, hitreg.DetectorsComponent)
	if !ok || len(set.All()) != 2 {
		t.Fatalf("sword should carry Blade and Tip")
	}
	if p, ok := ecs.Get(w, knight, trigger.PlayerComponent); !ok || !p.Playing || p.Track != s.Tracks["swing"] {
		t.Fatalf("knight should be playing swing")
	}
	if len(s.Containers()) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(s.Containers()))
	}
	for _, c := range s.Containers() {
		if c.Started() {
			t.Fatalf("containers start with the first frame, not at build")
		}
	}

	if _, ok := physics.Of(w); !ok {
		t.Fatalf("physics resource missing")
	}
	if env, ok := hitreg.EnvOf(w); !ok || env.Debug == nil || !env.Debug.HitBoxes {
		t.Fatalf("detector env should carry debug settings")
	}
}

func TestAttachKeepWorldParentsFirst(t *testing.T) {
	spec := prefabs.ScenarioSpec{
		Name: "order",
		Actors: []prefabs.ActorSpec{
			{Name: "gem", Transform: prefabs.TransformSpec{X: 15}, Attach: &prefabs.AttachSpec{Parent: "hilt", KeepWorld: true}},
			{Name: "hilt", Transform: prefabs.TransformSpec{X: 100}, Attach: &prefabs.AttachSpec{Parent: "hand", Local: prefabs.TransformSpec{X: 5}}},
			{Name: "hand", Transform: prefabs.TransformSpec{X: 10}},
		},
	}
	s, err := BuildScenario(spec, config.Default(), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	gem, _ := s.Actor("gem")
	hilt, _ := s.Actor("hilt")
	if got := ecs.WorldTransform(s.World, hilt).X; got != 15 {
		t.Fatalf("hilt should sit at hand+5, got %v", got)
	}
	if got := ecs.WorldTransform(s.World, gem).X; got != 15 {
		t.Fatalf("gem should keep its world position, got %v", got)
	}
}

func TestBuildScenarioErrors(t *testing.T) {
	circle := []prefabs.HurtboxSpec{{Shape: "circle", Radius: 4}}
	cases := []struct {
		name    string
		actors  []prefabs.ActorSpec
		tracks  []prefabs.TrackSpec
		wantErr error
	}{
		{"unnamed_actor", []prefabs.ActorSpec{{}}, nil, nil},
		{"duplicate_actor", []prefabs.ActorSpec{{Name: "a"}, {Name: "a"}}, nil, nil},
		{"unknown_owner", []prefabs.ActorSpec{{Name: "a", Owner: "ghost"}}, nil, nil},
		{"unknown_equipment", []prefabs.ActorSpec{{Name: "a", Equipment: map[string]string{"main_hand": "ghost"}}}, nil, nil},
		{"unknown_parent", []prefabs.ActorSpec{{Name: "a", Attach: &prefabs.AttachSpec{Parent: "ghost"}}}, nil, nil},
		{"attach_cycle", []prefabs.ActorSpec{
			{Name: "a", Attach: &prefabs.AttachSpec{Parent: "b"}},
			{Name: "b", Attach: &prefabs.AttachSpec{Parent: "a"}},
		}, nil, ecs.ErrAttachCycle},
		{"bad_hurtbox", []prefabs.ActorSpec{{Name: "a", Hurtboxes: []prefabs.HurtboxSpec{{Shape: "box"}}}}, nil, nil},
		{"unknown_shape", []prefabs.ActorSpec{{Name: "a", Hurtboxes: []prefabs.HurtboxSpec{{Shape: "star", Radius: 3}}}}, nil, nil},
		{"unknown_track", []prefabs.ActorSpec{{Name: "a", Hurtboxes: circle, Animation: &prefabs.AnimationSpec{Track: "ghost"}}}, nil, nil},
		{"bad_track", []prefabs.ActorSpec{{Name: "a"}}, []prefabs.TrackSpec{{Name: "t"}}, nil},
		{"bad_behavior", []prefabs.ActorSpec{{Name: "a", Behaviors: []prefabs.BehaviorSpec{{Name: "x", Detection: prefabs.DetectionSpec{Type: "by_magic"}}}}}, nil, nil},
		{"detector_without_radius", []prefabs.ActorSpec{{Name: "a", Detectors: []prefabs.DetectorSpec{{Name: "d"}}}}, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := prefabs.ScenarioSpec{Name: tc.name, Actors: tc.actors, Tracks: tc.tracks}
			_, err := BuildScenario(spec, config.Default(), Options{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
