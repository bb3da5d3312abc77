package trigger

import (
	"fmt"
	"sort"

	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/ecs/component"
	"github.com/milk9111/damagebehaviors/prefabs"
)

// SocketKey poses a socket at a point in track time.
type SocketKey struct {
	Time      float64
	Socket    string
	Transform component.Transform
}

// Track is a timeline of invoke windows and socket keys.
type Track struct {
	Name       string
	Length     float64
	Loop       bool
	Windows    []InvokeWindow
	SocketKeys []SocketKey
}

func TrackFromSpec(spec prefabs.TrackSpec) (*Track, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("trigger: track without name")
	}
	if spec.Length <= 0 {
		return nil, fmt.Errorf("trigger: track %q: length must be positive", spec.Name)
	}

	t := &Track{Name: spec.Name, Length: spec.Length, Loop: spec.Loop}
	for _, ws := range spec.Windows {
		if ws.Behavior == "" {
			return nil, fmt.Errorf("trigger: track %q: window without behavior", spec.Name)
		}
		if ws.Start < 0 || ws.End <= ws.Start || ws.Start >= spec.Length {
			return nil, fmt.Errorf("trigger: track %q: window %s has bad range [%g, %g)", spec.Name, ws.Behavior, ws.Start, ws.End)
		}
		targets := make(map[string]bool, len(ws.Sources))
		for _, s := range ws.Sources {
			targets[s] = true
		}
		t.Windows = append(t.Windows, InvokeWindow{
			Behavior:      ws.Behavior,
			TargetSources: targets,
			Payload:       behavior.Payload(ws.Payload).Clone(),
			Start:         ws.Start,
			End:           ws.End,
		})
	}
	for _, ks := range spec.SocketKeys {
		t.SocketKeys = append(t.SocketKeys, SocketKey{
			Time:      ks.Time,
			Socket:    ks.Socket,
			Transform: component.TransformFromSpec(ks.Transform),
		})
	}
	sort.SliceStable(t.SocketKeys, func(i, j int) bool { return t.SocketKeys[i].Time < t.SocketKeys[j].Time })
	return t, nil
}

// TracksFromSpec builds a track library keyed by name.
func TracksFromSpec(specs []prefabs.TrackSpec) (map[string]*Track, error) {
	out := make(map[string]*Track, len(specs))
	for _, s := range specs {
		t, err := TrackFromSpec(s)
		if err != nil {
			return nil, err
		}
		if _, dup := out[t.Name]; dup {
			return nil, fmt.Errorf("trigger: duplicate track %q", t.Name)
		}
		out[t.Name] = t
	}
	return out, nil
}

// Sockets lists the keyed socket names.
func (t *Track) Sockets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range t.SocketKeys {
		if !seen[k.Socket] {
			seen[k.Socket] = true
			out = append(out, k.Socket)
		}
	}
	return out
}

// SocketAt interpolates the socket's keys at time.
func (t *Track) SocketAt(socket string, time float64) (component.Transform, bool) {
	var prev, next *SocketKey
	for i := range t.SocketKeys {
		k := &t.SocketKeys[i]
		if k.Socket != socket {
			continue
		}
		if k.Time <= time {
			prev = k
			continue
		}
		next = k
		break
	}
	switch {
	case prev == nil && next == nil:
		return component.Identity(), false
	case prev == nil:
		return next.Transform, true
	case next == nil || next.Time == prev.Time:
		return prev.Transform, true
	}
	f := (time - prev.Time) / (next.Time - prev.Time)
	return prev.Transform.Lerp(next.Transform, f), true
}
