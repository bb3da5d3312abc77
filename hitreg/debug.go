package hitreg

import (
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/physics"
)

// SweepRecord is one detector query kept for debug drawing.
type SweepRecord struct {
	Detector string
	From, To physics.Capsule
	Overlap  bool
	Hits     []physics.Hit
	Frame    uint64
}

// Debug collects detector queries for drawing. HitBoxes toggles drawing;
// History keeps records for HistoryFrames instead of a single frame.
type Debug struct {
	HitBoxes      bool
	History       bool
	HistoryFrames int

	records []SweepRecord
}

func NewDebug(cfg config.Debug) *Debug {
	return &Debug{HitBoxes: cfg.HitBoxes, History: cfg.History, HistoryFrames: cfg.HistoryFrames}
}

func (d *Debug) Record(r SweepRecord) {
	if d == nil || !d.HitBoxes {
		return
	}
	d.records = append(d.records, r)
}

// Expire drops records that are no longer visible at frame.
func (d *Debug) Expire(frame uint64) {
	if d == nil {
		return
	}
	keep := uint64(1)
	if d.History && d.HistoryFrames > 0 {
		keep = uint64(d.HistoryFrames)
	}
	n := 0
	for _, r := range d.records {
		if frame < r.Frame+keep {
			d.records[n] = r
			n++
		}
	}
	d.records = d.records[:n]
}

func (d *Debug) Records() []SweepRecord {
	if d == nil {
		return nil
	}
	return d.records
}
