package hitreg

import (
	"fmt"
	"strings"

	"github.com/milk9111/damagebehaviors/config"
)

type DetectionType int

const (
	// ByTrace sweeps the capsule between frames.
	ByTrace DetectionType = iota
	// ByEntering reports hurt shapes that start overlapping the capsule.
	ByEntering
)

func (t DetectionType) String() string {
	switch t {
	case ByTrace:
		return "by_trace"
	case ByEntering:
		return "by_entering"
	default:
		return fmt.Sprintf("DetectionType(%d)", int(t))
	}
}

func ParseDetectionType(s string) (DetectionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "by_trace", "trace":
		return ByTrace, nil
	case "by_entering", "entering", "overlap":
		return ByEntering, nil
	default:
		return ByTrace, fmt.Errorf("hitreg: unknown detection type %q", s)
	}
}

// DetectionSettings is the per-behavior snapshot a detector runs with
// while enabled.
type DetectionSettings struct {
	Type                    DetectionType
	CheckOverlappingOnStart bool
	CollisionProfile        string
	UseCustomTraceChannel   bool
	CustomTraceChannel      string
}

func DefaultDetectionSettings() DetectionSettings {
	return DetectionSettings{
		Type:                    ByTrace,
		CheckOverlappingOnStart: true,
		CollisionProfile:        config.ProfileVolumeHitRegistrator,
	}
}

func (s DetectionSettings) traceChannel(fallback string) string {
	if s.UseCustomTraceChannel && s.CustomTraceChannel != "" {
		return s.CustomTraceChannel
	}
	return fallback
}

func (s DetectionSettings) profile() string {
	if s.CollisionProfile == "" {
		return config.ProfileVolumeHitRegistrator
	}
	return s.CollisionProfile
}
