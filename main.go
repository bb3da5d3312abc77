package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/logger"
)

func main() {
	scenario := flag.String("scenario", "duel.yaml", "scenario spec file in prefabs/")
	settings := flag.String("settings", config.SettingsFile, "settings spec file in prefabs/")
	watch := flag.Bool("watch", true, "reload when files under prefabs/ change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	logger.Init()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("damage behaviors preview")

	game, err := NewGame(*scenario, *settings, *watch)
	if err != nil {
		logger.Log.WithError(err).Fatal("preview: start")
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Log.WithError(err).Fatal("preview: run")
	}
}
