package trigger

import (
	"math"
	"testing"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/physics"
	"github.com/milk9111/damagebehaviors/prefabs"
	"github.com/milk9111/damagebehaviors/source"
)

type call struct {
	active  bool
	payload behavior.Payload
}

// recordingKind logs every activation change before applying it.
type recordingKind struct {
	behavior.Base
	calls *[]call
}

func (k recordingKind) MakeActive(b *behavior.Behavior, active bool, payload behavior.Payload) {
	*k.calls = append(*k.calls, call{active: active, payload: payload})
	k.Base.MakeActive(b, active, payload)
}

type rig struct {
	w     *ecs.World
	actor ecs.Entity
	slash *behavior.Behavior
	calls []call
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{w: ecs.NewWorld()}
	env := &hitreg.Env{World: r.w, Physics: physics.NewPhysicsWorld(config.Default())}

	r.actor = ecs.CreateEntity(r.w)
	_ = ecs.Add(r.w, r.actor, component.TransformComponent, &component.Transform{})
	_ = ecs.Add(r.w, r.actor, component.SocketsComponent, &component.Sockets{})
	_ = ecs.Add(r.w, r.actor, component.DetectorShapesComponent, &[]component.DetectorShape{{Name: "Fist", Radius: 4, HalfHeight: 10}})
	if _, err := hitreg.Build(env, r.actor); err != nil {
		t.Fatalf("build detectors: %v", err)
	}

	kinds := behavior.NewKinds(nil)
	kinds.Register("recording", func(*behavior.Kinds, *behavior.Definition) (behavior.Kind, error) {
		return recordingKind{calls: &r.calls}, nil
	})
	def := &behavior.Definition{
		Name:       "Slash",
		Kind:       "recording",
		Detection:  hitreg.DefaultDetectionSettings(),
		Activation: []behavior.Activation{{Source: source.SelfSourceName, Detectors: []string{"Fist"}}},
	}
	c := container.New(r.w, r.actor, []*behavior.Definition{def}, container.Options{Kinds: kinds})
	if err := container.Attach(c); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.slash, _ = c.Behavior("Slash")
	return r
}

func track(t *testing.T, loop bool, start, end float64) *Track {
	t.Helper()
	tr, err := TrackFromSpec(prefabs.TrackSpec{
		Name:   "swing",
		Length: 1,
		Loop:   loop,
		Windows: []prefabs.InvokeWindowSpec{
			{Behavior: "Slash", Payload: map[string]any{"multiplier": 1.5}, Start: start, End: end},
		},
	})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	return tr
}

func TestInvokeWindowSources(t *testing.T) {
	iw := InvokeWindow{TargetSources: map[string]bool{
		"Shield":              true,
		source.SelfSourceName: true,
		"MainHand":            true,
		"OffHand":             false,
	}}
	got := iw.Sources()
	want := []string{source.SelfSourceName, "MainHand", "Shield"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPlayerFiresWindow(t *testing.T) {
	r := newRig(t)
	p := &Player{}
	p.Play(r.w, r.actor, track(t, false, 0.25, 0.55))

	steps := []struct {
		wantActive bool
	}{
		{false}, // 0.1
		{false}, // 0.2
		{true},  // 0.3
		{true},  // 0.4
		{true},  // 0.5
		{false}, // 0.6
		{false}, // 0.7
	}
	for i, s := range steps {
		p.Advance(r.w, r.actor, 0.1)
		if r.slash.IsActive() != s.wantActive {
			t.Fatalf("step %d at t=%.2f: active=%v, want %v", i, p.Time, r.slash.IsActive(), s.wantActive)
		}
	}
	if len(r.calls) != 2 || !r.calls[0].active || r.calls[1].active {
		t.Fatalf("expected one begin and one end, got %+v", r.calls)
	}
	if r.calls[0].payload["multiplier"] != 1.5 {
		t.Fatalf("begin should carry the window payload, got %v", r.calls[0].payload)
	}
}

func TestPlayerWindowInsideOneStep(t *testing.T) {
	r := newRig(t)
	p := &Player{}
	p.Play(r.w, r.actor, track(t, false, 0.25, 0.3))

	p.Advance(r.w, r.actor, 0.5)
	if len(r.calls) != 2 || !r.calls[0].active || r.calls[1].active {
		t.Fatalf("expected begin then end within one step, got %+v", r.calls)
	}
}

func TestPlayerEndsOpenWindows(t *testing.T) {
	cases := []struct {
		name      string
		loop      bool
		run       func(p *Player, r *rig)
		wantCalls int
		playing   bool
	}{
		{"loop_wrap", true, func(p *Player, r *rig) {
			p.Advance(r.w, r.actor, 0.9)
			p.Advance(r.w, r.actor, 0.2)
		}, 2, true},
		{"track_end", false, func(p *Player, r *rig) {
			p.Advance(r.w, r.actor, 0.9)
			p.Advance(r.w, r.actor, 0.2)
		}, 2, false},
		{"stop", true, func(p *Player, r *rig) {
			p.Advance(r.w, r.actor, 0.9)
			p.Stop(r.w, r.actor)
		}, 2, false},
		{"replay", true, func(p *Player, r *rig) {
			p.Advance(r.w, r.actor, 0.9)
			p.Play(r.w, r.actor, p.Track)
		}, 2, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t)
			p := &Player{}
			p.Play(r.w, r.actor, track(t, tc.loop, 0.8, 1))
			tc.run(p, r)
			if r.slash.IsActive() {
				t.Fatalf("window must be closed")
			}
			if len(r.calls) != tc.wantCalls {
				t.Fatalf("expected %d calls, got %+v", tc.wantCalls, r.calls)
			}
			if p.Playing != tc.playing {
				t.Fatalf("playing = %v, want %v", p.Playing, tc.playing)
			}
		})
	}
}

func TestPlayerLoopReopensWindow(t *testing.T) {
	r := newRig(t)
	p := &Player{}
	p.Play(r.w, r.actor, track(t, true, 0.1, 0.2))

	p.Advance(r.w, r.actor, 0.15)
	p.Advance(r.w, r.actor, 1.0)
	if !r.slash.IsActive() {
		t.Fatalf("window should be open again after wrapping to %.2f", p.Time)
	}
	if len(r.calls) != 3 {
		t.Fatalf("expected begin, end, begin, got %+v", r.calls)
	}
}

func TestSocketKeys(t *testing.T) {
	r := newRig(t)
	tr, err := TrackFromSpec(prefabs.TrackSpec{
		Name:   "swing",
		Length: 1,
		SocketKeys: []prefabs.SocketKeySpec{
			{Time: 1, Socket: "hand", Transform: prefabs.TransformSpec{X: 20, Rotation: 1}},
			{Time: 0, Socket: "hand", Transform: prefabs.TransformSpec{X: 10}},
		},
	})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	p := &Player{}
	p.Play(r.w, r.actor, tr)
	p.Advance(r.w, r.actor, 0.5)

	sockets, _ := ecs.Get(r.w, r.actor, component.SocketsComponent)
	hand, ok := sockets.Get("hand")
	if !ok {
		t.Fatalf("hand socket should be posed")
	}
	if math.Abs(hand.X-15) > 1e-9 || math.Abs(hand.Rotation-0.5) > 1e-9 {
		t.Fatalf("expected hand halfway, got %+v", hand)
	}
}

func TestTrackFromSpecErrors(t *testing.T) {
	cases := []struct {
		name string
		spec prefabs.TrackSpec
	}{
		{"no_name", prefabs.TrackSpec{Length: 1}},
		{"no_length", prefabs.TrackSpec{Name: "a"}},
		{"window_without_behavior", prefabs.TrackSpec{Name: "a", Length: 1, Windows: []prefabs.InvokeWindowSpec{{Start: 0, End: 0.5}}}},
		{"inverted_window", prefabs.TrackSpec{Name: "a", Length: 1, Windows: []prefabs.InvokeWindowSpec{{Behavior: "X", Start: 0.5, End: 0.2}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := TrackFromSpec(tc.spec); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
