package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads a YAML spec from the disk override directory or the
// embedded defaults.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type TransformSpec struct {
	X        float64 `yaml:"x" json:"x,omitempty"`
	Y        float64 `yaml:"y" json:"y,omitempty"`
	ScaleX   float64 `yaml:"scale_x" json:"scale_x,omitempty"`
	ScaleY   float64 `yaml:"scale_y" json:"scale_y,omitempty"`
	Rotation float64 `yaml:"rotation" json:"rotation,omitempty" jsonschema:"description=Radians"`
}

type VelocitySpec struct {
	X       float64 `yaml:"x" json:"x,omitempty"`
	Y       float64 `yaml:"y" json:"y,omitempty"`
	Angular float64 `yaml:"angular" json:"angular,omitempty"`
}

type AttachSpec struct {
	Parent string        `yaml:"parent" json:"parent"`
	Socket string        `yaml:"socket" json:"socket,omitempty"`
	Local  TransformSpec `yaml:"local" json:"local,omitempty"`
	// KeepWorld ignores Local and keeps the actor where its transform puts it.
	KeepWorld bool `yaml:"keep_world" json:"keep_world,omitempty"`
}

type HurtboxSpec struct {
	Shape      string   `yaml:"shape" json:"shape" jsonschema:"enum=circle,enum=box,enum=capsule"`
	Radius     float64  `yaml:"radius" json:"radius,omitempty"`
	Width      float64  `yaml:"width" json:"width,omitempty"`
	Height     float64  `yaml:"height" json:"height,omitempty"`
	HalfHeight float64  `yaml:"half_height" json:"half_height,omitempty"`
	OffsetX    float64  `yaml:"offset_x" json:"offset_x,omitempty"`
	OffsetY    float64  `yaml:"offset_y" json:"offset_y,omitempty"`
	Rotation   float64  `yaml:"rotation" json:"rotation,omitempty"`
	Surface    string   `yaml:"surface" json:"surface,omitempty"`
	ObjectType string   `yaml:"object_type" json:"object_type,omitempty"`
	RespondsTo []string `yaml:"responds_to" json:"responds_to,omitempty"`
}

type DetectorSpec struct {
	Name       string        `yaml:"name" json:"name"`
	Socket     string        `yaml:"socket" json:"socket,omitempty"`
	Transform  TransformSpec `yaml:"transform" json:"transform,omitempty"`
	Radius     float64       `yaml:"radius" json:"radius"`
	HalfHeight float64       `yaml:"half_height" json:"half_height"`
}

type DetectionSpec struct {
	Type string `yaml:"type" json:"type,omitempty" jsonschema:"enum=by_trace,enum=by_entering"`
	// CheckOverlappingOnStart defaults to true when omitted.
	CheckOverlappingOnStart *bool  `yaml:"check_overlapping_on_start" json:"check_overlapping_on_start,omitempty"`
	CollisionProfile        string `yaml:"collision_profile" json:"collision_profile,omitempty"`
	CustomTraceChannel      string `yaml:"custom_trace_channel" json:"custom_trace_channel,omitempty"`
}

type ActivationSpec struct {
	Source    string   `yaml:"source" json:"source"`
	Detectors []string `yaml:"detectors" json:"detectors"`
}

type BehaviorSpec struct {
	Name                       string           `yaml:"name" json:"name"`
	Comment                    string           `yaml:"comment" json:"comment,omitempty"`
	Kind                       string           `yaml:"kind" json:"kind,omitempty" jsonschema:"enum=default,enum=damage,enum=scripted"`
	InvokeOnStart              bool             `yaml:"invoke_on_start" json:"invoke_on_start,omitempty"`
	AttachHitActorsWhileActive bool             `yaml:"attach_hit_actors" json:"attach_hit_actors,omitempty"`
	AutoHandleDamage           bool             `yaml:"auto_handle_damage" json:"auto_handle_damage,omitempty"`
	Detection                  DetectionSpec    `yaml:"detection" json:"detection,omitempty"`
	Activation                 []ActivationSpec `yaml:"activation" json:"activation"`
	Params                     map[string]any   `yaml:"params" json:"params,omitempty"`
	Script                     string           `yaml:"script" json:"script,omitempty"`
}

type AnimationSpec struct {
	Track   string  `yaml:"track" json:"track"`
	Playing bool    `yaml:"playing" json:"playing,omitempty"`
	Speed   float64 `yaml:"speed" json:"speed,omitempty"`
}

type ActorSpec struct {
	Name      string                   `yaml:"name" json:"name"`
	Transform TransformSpec            `yaml:"transform" json:"transform,omitempty"`
	Velocity  *VelocitySpec            `yaml:"velocity" json:"velocity,omitempty"`
	Owner     string                   `yaml:"owner" json:"owner,omitempty"`
	Attach    *AttachSpec              `yaml:"attach" json:"attach,omitempty"`
	Sockets   map[string]TransformSpec `yaml:"sockets" json:"sockets,omitempty"`
	Equipment map[string]string        `yaml:"equipment" json:"equipment,omitempty"`
	Health    float64                  `yaml:"health" json:"health,omitempty"`
	Hurtboxes []HurtboxSpec            `yaml:"hurtboxes" json:"hurtboxes,omitempty"`
	Detectors []DetectorSpec           `yaml:"detectors" json:"detectors,omitempty"`
	Behaviors []BehaviorSpec           `yaml:"behaviors" json:"behaviors,omitempty"`
	Animation *AnimationSpec           `yaml:"animation" json:"animation,omitempty"`
}

type InvokeWindowSpec struct {
	Behavior string         `yaml:"behavior" json:"behavior"`
	Sources  []string       `yaml:"sources" json:"sources,omitempty"`
	Payload  map[string]any `yaml:"payload" json:"payload,omitempty"`
	Start    float64        `yaml:"start" json:"start"`
	End      float64        `yaml:"end" json:"end"`
}

type SocketKeySpec struct {
	Time      float64       `yaml:"time" json:"time"`
	Socket    string        `yaml:"socket" json:"socket"`
	Transform TransformSpec `yaml:"transform" json:"transform"`
}

type TrackSpec struct {
	Name       string             `yaml:"name" json:"name"`
	Length     float64            `yaml:"length" json:"length"`
	Loop       bool               `yaml:"loop" json:"loop,omitempty"`
	Windows    []InvokeWindowSpec `yaml:"windows" json:"windows,omitempty"`
	SocketKeys []SocketKeySpec    `yaml:"socket_keys" json:"socket_keys,omitempty"`
}

// ScenarioSpec is a complete preview/simulation setup.
type ScenarioSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Actors []ActorSpec `yaml:"actors" json:"actors"`
	Tracks []TrackSpec `yaml:"tracks" json:"tracks,omitempty"`
}

func LoadScenarioSpec(filename string) (ScenarioSpec, error) {
	return LoadSpec[ScenarioSpec](filename)
}

type ProfileSpec struct {
	Name       string   `yaml:"name" json:"name"`
	ObjectType string   `yaml:"object_type" json:"object_type,omitempty"`
	Overlaps   []string `yaml:"overlaps" json:"overlaps,omitempty"`
}

type EvaluatorSpec struct {
	Kind   string `yaml:"kind" json:"kind" jsonschema:"enum=equipped_slot,enum=attached_socket,enum=owner"`
	Name   string `yaml:"name" json:"name"`
	Slot   string `yaml:"slot" json:"slot,omitempty"`
	Socket string `yaml:"socket" json:"socket,omitempty"`
}

type DebugSpec struct {
	HitBoxes      bool `yaml:"hit_boxes" json:"hit_boxes,omitempty"`
	History       bool `yaml:"history" json:"history,omitempty"`
	HistoryFrames int  `yaml:"history_frames" json:"history_frames,omitempty"`
}

// SettingsSpec holds the project-wide hit registration settings.
type SettingsSpec struct {
	TraceChannel string          `yaml:"trace_channel" json:"trace_channel"`
	Channels     []string        `yaml:"channels" json:"channels"`
	Profiles     []ProfileSpec   `yaml:"profiles" json:"profiles,omitempty"`
	Evaluators   []EvaluatorSpec `yaml:"evaluators" json:"evaluators,omitempty"`
	Debug        DebugSpec       `yaml:"debug" json:"debug,omitempty"`
	FixedStep    float64         `yaml:"fixed_step" json:"fixed_step,omitempty"`
}

func LoadSettingsSpec(filename string) (SettingsSpec, error) {
	return LoadSpec[SettingsSpec](filename)
}
