package main

import (
	"fmt"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/damagebehaviors/behavior"
	"github.com/milk9111/damagebehaviors/common"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/ecs/entity"
	"github.com/milk9111/damagebehaviors/ecs/system"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/prefabs"
	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const hudHitLines = 8

type Game struct {
	scenarioFile string
	settingsFile string

	settings config.Settings
	kinds    *behavior.Kinds
	scenario *entity.Scenario
	pipeline *ecs.Scheduler
	ui       *ebitenui.UI
	watcher  *prefabs.Watcher

	paused         bool
	clipboardReady bool
	status         string
}

func NewGame(scenarioFile, settingsFile string, watch bool) (*Game, error) {
	g := &Game{
		scenarioFile: scenarioFile,
		settingsFile: settingsFile,
		kinds:        behavior.NewKinds(nil),
	}
	if err := g.reload(); err != nil {
		return nil, err
	}

	if err := clipboard.Init(); err != nil {
		logger.Log.WithError(err).Warn("preview: clipboard unavailable, hit log export disabled")
	} else {
		g.clipboardReady = true
	}

	if watch {
		w, err := prefabs.NewWatcher()
		if err != nil {
			logger.Log.WithError(err).Warn("preview: file watching disabled")
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

// reload rebuilds settings and the scenario. On failure the running
// scenario is kept.
func (g *Game) reload() error {
	settings, err := config.Load(g.settingsFile)
	if err != nil {
		return g.fail(err)
	}
	s, err := entity.LoadScenario(g.scenarioFile, settings, entity.Options{Kinds: g.kinds})
	if err != nil {
		return g.fail(err)
	}

	g.settings = settings
	g.scenario = s
	g.pipeline = system.NewPipeline(settings.FixedStep)
	g.ui = NewPreviewUI(g)
	g.status = "loaded " + s.Name
	logger.Log.WithFields(logrus.Fields{
		"scenario": s.Name,
		"actors":   len(s.ActorNames()),
	}).Info("preview: scenario loaded")
	return nil
}

func (g *Game) fail(err error) error {
	g.status = "reload failed: " + err.Error()
	logger.Log.WithError(err).Error("preview: reload")
	return err
}

func (g *Game) Update() error {
	g.pollWatcher()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		_ = g.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.toggleHitBoxes()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyHitLog()
	}

	step := !g.paused || inpututil.IsKeyJustPressed(ebiten.KeyN)
	if step {
		g.pipeline.Update(g.scenario.World)
	}
	g.ui.Update()
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	if err := g.watcher.Err(); err != nil {
		logger.Log.WithError(err).Warn("preview: watcher error")
	}
	changed := g.watcher.Pending()
	if len(changed) == 0 {
		return
	}
	files := make([]string, 0, len(changed))
	for _, c := range changed {
		if c.Kind == prefabs.ScriptChanged {
			g.kinds.Forget(c.Name())
		}
		files = append(files, c.Name())
	}
	logger.Log.WithField("files", files).Info("preview: files changed")
	_ = g.reload()
}

func (g *Game) toggleHitBoxes() {
	if env, ok := hitreg.EnvOf(g.scenario.World); ok && env.Debug != nil {
		env.Debug.HitBoxes = !env.Debug.HitBoxes
	}
}

func (g *Game) copyHitLog() {
	if !g.clipboardReady {
		g.status = "clipboard unavailable"
		return
	}
	log := system.HitLogOf(g.scenario.World)
	clipboard.Write(clipboard.FmtText, []byte(log.Text()))
	g.status = fmt.Sprintf("copied %d hits", len(log.Records()))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkslategray)
	w := g.scenario.World

	system.DrawHitDebug(w, screen, system.DebugView{Zoom: 1})
	for _, name := range g.scenario.ActorNames() {
		e, _ := g.scenario.Actor(name)
		if !ecs.IsAlive(w, e) {
			continue
		}
		p := ecs.WorldTransform(w, e).Position()
		ebitenutil.DebugPrintAt(screen, name, int(p.X)+6, int(p.Y)+6)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  frame %d  FPS %.1f", g.scenario.Name, w.Frame(), ebiten.ActualFPS())
	if g.paused {
		sb.WriteString("  [paused, N steps]")
	}
	sb.WriteString("\nP pause  R reload  H hit boxes  C copy hits\n")
	sb.WriteString(g.status)
	sb.WriteByte('\n')
	for _, c := range g.scenario.Containers() {
		for _, b := range c.Behaviors() {
			if b.IsActive() {
				fmt.Fprintf(&sb, "active: %s/%s\n", g.actorName(c.Actor()), b.Name())
			}
		}
	}
	records := system.HitLogOf(w).Records()
	if len(records) > hudHitLines {
		records = records[len(records)-hudHitLines:]
	}
	for _, r := range records {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	ebitenutil.DebugPrintAt(screen, sb.String(), 10, 10)

	g.ui.Draw(screen)
}

func (g *Game) actorName(e ecs.Entity) string {
	for _, name := range g.scenario.ActorNames() {
		if a, _ := g.scenario.Actor(name); a == e {
			return name
		}
	}
	return e.String()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
