package behavior

import (
	"fmt"

	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/prefabs"
)

// Activation lists the detectors of one source a behavior enables.
type Activation struct {
	Source    string
	Detectors []string
}

// Definition is the immutable template a live Behavior is cloned from.
type Definition struct {
	Name    string
	Comment string
	Kind    string

	InvokeOnStart              bool
	AttachHitActorsWhileActive bool
	// AutoHandleDamage tells hit consumers to apply damage themselves.
	AutoHandleDamage bool

	Detection  hitreg.DetectionSettings
	Activation []Activation

	Params map[string]any
	Script string
}

// DetectorNames returns the detectors listed for source, in order.
func (d *Definition) DetectorNames(source string) []string {
	var out []string
	for _, a := range d.Activation {
		if a.Source == source {
			out = append(out, a.Detectors...)
		}
	}
	return out
}

// Sources returns every source named by the activation map.
func (d *Definition) Sources() []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range d.Activation {
		if !seen[a.Source] {
			seen[a.Source] = true
			out = append(out, a.Source)
		}
	}
	return out
}

func DefinitionFromSpec(spec prefabs.BehaviorSpec) (Definition, error) {
	if spec.Name == "" {
		return Definition{}, fmt.Errorf("behavior: definition without a name")
	}
	typ, err := hitreg.ParseDetectionType(spec.Detection.Type)
	if err != nil {
		return Definition{}, fmt.Errorf("behavior %q: %w", spec.Name, err)
	}
	detection := hitreg.DefaultDetectionSettings()
	detection.Type = typ
	if spec.Detection.CheckOverlappingOnStart != nil {
		detection.CheckOverlappingOnStart = *spec.Detection.CheckOverlappingOnStart
	}
	if spec.Detection.CollisionProfile != "" {
		detection.CollisionProfile = spec.Detection.CollisionProfile
	}
	if spec.Detection.CustomTraceChannel != "" {
		detection.UseCustomTraceChannel = true
		detection.CustomTraceChannel = spec.Detection.CustomTraceChannel
	}

	def := Definition{
		Name:                       spec.Name,
		Comment:                    spec.Comment,
		Kind:                       spec.Kind,
		InvokeOnStart:              spec.InvokeOnStart,
		AttachHitActorsWhileActive: spec.AttachHitActorsWhileActive,
		AutoHandleDamage:           spec.AutoHandleDamage,
		Detection:                  detection,
		Params:                     spec.Params,
		Script:                     spec.Script,
	}
	for _, a := range spec.Activation {
		def.Activation = append(def.Activation, Activation{
			Source:    a.Source,
			Detectors: append([]string(nil), a.Detectors...),
		})
	}
	return def, nil
}
