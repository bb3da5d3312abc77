package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/milk9111/damagebehaviors/config"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/ecs/entity"
	"github.com/milk9111/damagebehaviors/ecs/system"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	scenario := flag.String("scenario", "duel.yaml", "scenario spec file")
	settingsFile := flag.String("settings", config.SettingsFile, "settings spec file")
	frames := flag.Int("frames", 600, "number of frames to simulate")
	invoke := flag.String("invoke", "", "actor/behavior to activate after start, e.g. knight/Grab")
	flag.Parse()

	logger.Init()

	if err := run(*scenario, *settingsFile, *frames, *invoke); err != nil {
		logger.Log.WithError(err).Error("dbsim failed")
		os.Exit(1)
	}
}

func run(scenarioFile, settingsFile string, frames int, invoke string) error {
	settings, err := config.Load(settingsFile)
	if err != nil {
		return err
	}
	s, err := entity.LoadScenario(scenarioFile, settings, entity.Options{})
	if err != nil {
		return err
	}

	pipeline := system.NewPipeline(settings.FixedStep)
	for i := 0; i < frames; i++ {
		pipeline.Update(s.World)
		if i == 0 && invoke != "" {
			if err := invokeBehavior(s, invoke); err != nil {
				return err
			}
		}
	}

	log := system.HitLogOf(s.World)
	logger.Log.WithFields(logrus.Fields{
		"scenario": s.Name,
		"frames":   frames,
		"hits":     len(log.Records()),
	}).Info("simulation finished")
	fmt.Print(log.Text())
	return nil
}

func invokeBehavior(s *entity.Scenario, target string) error {
	actorName, behaviorName, ok := strings.Cut(target, "/")
	if !ok || actorName == "" || behaviorName == "" {
		return fmt.Errorf("invoke %q: want actor/behavior", target)
	}
	actor, ok := s.Actor(actorName)
	if !ok {
		return fmt.Errorf("invoke %q: unknown actor %q", target, actorName)
	}
	c, ok := container.Of(s.World, actor)
	if !ok {
		return fmt.Errorf("invoke %q: actor has no behaviors", target)
	}
	c.Invoke(behaviorName, true, nil, nil)
	return nil
}
