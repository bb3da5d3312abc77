package trigger

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/component"
)

// maxWraps bounds how many loops one Advance may cover.
const maxWraps = 8

// Player plays a track on an actor and fires its invoke windows.
type Player struct {
	Track   *Track
	Time    float64
	Speed   float64
	Playing bool

	open map[int]bool
}

var PlayerComponent = component.NewComponent[Player]()

// Play restarts p on track, ending any window still open on the old one.
func (p *Player) Play(w *ecs.World, e ecs.Entity, track *Track) {
	p.endOpen(w, e)
	p.Track = track
	p.Time = 0
	p.Playing = track != nil
}

// Stop ends every open window and pauses playback.
func (p *Player) Stop(w *ecs.World, e ecs.Entity) {
	p.endOpen(w, e)
	p.Playing = false
}

// Open reports whether the window at index i is currently open.
func (p *Player) Open(i int) bool {
	return p.open[i]
}

// Advance moves playback by dt seconds, firing window begins and ends
// crossed in [previous, current) and posing keyed sockets.
func (p *Player) Advance(w *ecs.World, e ecs.Entity, dt float64) {
	if !p.Playing || p.Track == nil || p.Track.Length <= 0 || dt <= 0 {
		return
	}
	speed := p.Speed
	if speed <= 0 {
		speed = 1
	}

	from := p.Time
	to := from + dt*speed
	length := p.Track.Length

	for wraps := 0; to >= length; wraps++ {
		p.cross(w, e, from, length)
		if !p.Track.Loop {
			p.Time = length
			p.pose(w, e)
			p.Stop(w, e)
			return
		}
		p.endOpen(w, e)
		if wraps >= maxWraps {
			to = 0
			break
		}
		from, to = 0, to-length
	}
	p.cross(w, e, from, to)
	p.Time = to
	p.pose(w, e)
}

func (p *Player) cross(w *ecs.World, e ecs.Entity, from, to float64) {
	if p.open == nil {
		p.open = make(map[int]bool)
	}
	for i, win := range p.Track.Windows {
		if !p.open[i] && win.Start >= from && win.Start < to {
			p.open[i] = true
			win.NotifyBegin(w, e)
		}
		if p.open[i] && win.End >= from && win.End < to {
			p.open[i] = false
			win.NotifyEnd(w, e)
		}
	}
}

func (p *Player) endOpen(w *ecs.World, e ecs.Entity) {
	if p.Track == nil {
		return
	}
	for i, win := range p.Track.Windows {
		if p.open[i] {
			p.open[i] = false
			win.NotifyEnd(w, e)
		}
	}
}

func (p *Player) pose(w *ecs.World, e ecs.Entity) {
	if len(p.Track.SocketKeys) == 0 {
		return
	}
	sockets, ok := ecs.Get(w, e, component.SocketsComponent)
	if !ok {
		return
	}
	for _, name := range p.Track.Sockets() {
		if t, ok := p.Track.SocketAt(name, p.Time); ok {
			sockets.Set(name, t)
		}
	}
}
