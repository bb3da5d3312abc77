package config

import (
	"fmt"

	"github.com/milk9111/damagebehaviors/prefabs"
)

const (
	SettingsFile = "settings.yaml"

	ProfileNoCollision          = "NoCollision"
	ProfileVolumeHitRegistrator = "VolumeHitRegistrator"

	defaultTraceChannel = "melee"
	defaultFixedStep    = 1.0 / 60.0
)

// Profile selects which channels a shape belongs to and overlaps.
type Profile struct {
	Name       string
	ObjectType string
	Overlaps   []string
}

// Evaluator configures one named source resolver.
type Evaluator struct {
	Kind   string
	Name   string
	Slot   string
	Socket string
}

type Debug struct {
	HitBoxes      bool
	History       bool
	HistoryFrames int
}

// Settings is built once at startup and passed to the packages that need
// it. Nothing reads it through a global.
type Settings struct {
	TraceChannel string
	Channels     []string
	Profiles     []Profile
	Evaluators   []Evaluator
	Debug        Debug
	FixedStep    float64
}

// Default returns settings that work without any spec file.
func Default() Settings {
	return Settings{
		TraceChannel: defaultTraceChannel,
		Channels: []string{
			"world_static", "world_dynamic", "pawn", "physics_body",
			"hit_registrator", defaultTraceChannel,
		},
		Profiles: []Profile{
			{Name: ProfileNoCollision},
			{
				Name:       ProfileVolumeHitRegistrator,
				ObjectType: "hit_registrator",
				Overlaps:   []string{"pawn", "physics_body", "world_dynamic"},
			},
		},
		Debug:     Debug{HistoryFrames: 30},
		FixedStep: defaultFixedStep,
	}
}

// FromSpec fills gaps in spec with defaults. The two built-in profiles are
// always present.
func FromSpec(spec prefabs.SettingsSpec) Settings {
	s := Default()
	if spec.TraceChannel != "" {
		s.TraceChannel = spec.TraceChannel
	}
	if len(spec.Channels) > 0 {
		s.Channels = append([]string(nil), spec.Channels...)
	}
	if spec.FixedStep > 0 {
		s.FixedStep = spec.FixedStep
	}

	for _, p := range spec.Profiles {
		s.setProfile(Profile{Name: p.Name, ObjectType: p.ObjectType, Overlaps: append([]string(nil), p.Overlaps...)})
	}

	for _, e := range spec.Evaluators {
		s.Evaluators = append(s.Evaluators, Evaluator{Kind: e.Kind, Name: e.Name, Slot: e.Slot, Socket: e.Socket})
	}

	s.Debug = Debug{
		HitBoxes:      spec.Debug.HitBoxes,
		History:       spec.Debug.History,
		HistoryFrames: spec.Debug.HistoryFrames,
	}
	if s.Debug.HistoryFrames <= 0 {
		s.Debug.HistoryFrames = Default().Debug.HistoryFrames
	}
	return s
}

// Load reads settings.yaml (or the named override) through prefabs.
func Load(name string) (Settings, error) {
	if name == "" {
		name = SettingsFile
	}
	spec, err := prefabs.LoadSettingsSpec(name)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return FromSpec(spec), nil
}

func (s *Settings) setProfile(p Profile) {
	for i := range s.Profiles {
		if s.Profiles[i].Name == p.Name {
			s.Profiles[i] = p
			return
		}
	}
	s.Profiles = append(s.Profiles, p)
}

func (s Settings) Profile(name string) (Profile, bool) {
	for _, p := range s.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
