package system

import (
	"fmt"
	"strings"

	"github.com/milk9111/damagebehaviors/ecs"
)

// HitLogResourceKey is the world resource key of the hit log.
const HitLogResourceKey = "hit_log"

const defaultHitLogSize = 256

// HitRecord is one registered hit as shown in the preview and exported
// to the clipboard.
type HitRecord struct {
	Frame    uint64
	Window   string
	Behavior string
	Actor    string
	Detector string
	Target   string
	Struck   string
	Surface  string
	Damage   float64
	Health   float64
}

func (r HitRecord) String() string {
	s := fmt.Sprintf("[%d] %s/%s %s -> %s", r.Frame, r.Actor, r.Behavior, r.Detector, r.Struck)
	if r.Target != "" && r.Target != r.Struck {
		s += " (" + r.Target + ")"
	}
	if r.Surface != "" {
		s += " on " + r.Surface
	}
	if r.Damage > 0 {
		s += fmt.Sprintf(" dmg=%.1f hp=%.1f", r.Damage, r.Health)
	}
	return s
}

// HitLog keeps the most recent hit records.
type HitLog struct {
	Max     int
	records []HitRecord
}

func NewHitLog(max int) *HitLog {
	if max <= 0 {
		max = defaultHitLogSize
	}
	return &HitLog{Max: max}
}

// HitLogOf returns the world's hit log, creating it on first use.
func HitLogOf(w *ecs.World) *HitLog {
	if v, ok := w.Resource(HitLogResourceKey); ok {
		if log, ok := v.(*HitLog); ok {
			return log
		}
	}
	log := NewHitLog(0)
	w.SetResource(HitLogResourceKey, log)
	return log
}

func (l *HitLog) Add(r HitRecord) {
	l.records = append(l.records, r)
	if over := len(l.records) - l.Max; over > 0 {
		l.records = append(l.records[:0], l.records[over:]...)
	}
}

func (l *HitLog) Records() []HitRecord {
	return append([]HitRecord(nil), l.records...)
}

func (l *HitLog) Clear() {
	l.records = nil
}

// Text renders the log one record per line.
func (l *HitLog) Text() string {
	var sb strings.Builder
	for _, r := range l.records {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
