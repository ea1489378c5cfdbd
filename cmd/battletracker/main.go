// Package main provides the battle tracker binary: a Telnet console where
// game masters track fights, hit points, conditions and initiative.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battletracker/internal/config"
	"github.com/cory-johannsen/battletracker/internal/frontend/handlers"
	"github.com/cory-johannsen/battletracker/internal/frontend/telnet"
	"github.com/cory-johannsen/battletracker/internal/game/condition"
	"github.com/cory-johannsen/battletracker/internal/game/dice"
	"github.com/cory-johannsen/battletracker/internal/game/fight"
	"github.com/cory-johannsen/battletracker/internal/game/session"
	"github.com/cory-johannsen/battletracker/internal/observability"
	"github.com/cory-johannsen/battletracker/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and BT_ environment only")
	conditionsDir := flag.String("conditions-dir", "", "path to condition YAML definitions; overrides tracker.conditions_dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *conditionsDir != "" {
		cfg.Tracker.ConditionsDir = *conditionsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting battle tracker",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Int("event_history", cfg.Tracker.EventHistory),
		zap.Int("max_fights", cfg.Tracker.MaxFights),
	)

	conditions, err := loadConditions(cfg.Tracker.ConditionsDir)
	if err != nil {
		logger.Fatal("loading conditions", zap.Error(err), zap.String("dir", cfg.Tracker.ConditionsDir))
	}
	logger.Info("conditions loaded", zap.Int("count", conditions.Len()))

	var src dice.Source
	if cfg.Tracker.DiceSeed != 0 {
		src = dice.NewSeededSource(cfg.Tracker.DiceSeed)
		logger.Warn("using seeded dice source", zap.Uint64("seed", cfg.Tracker.DiceSeed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	sessions := session.NewManager(
		fight.WithMaxFights(cfg.Tracker.MaxFights),
		fight.WithFightOptions(fight.WithHistory(cfg.Tracker.EventHistory)),
	)
	tracker := handlers.NewTrackerHandler(sessions, conditions, roller, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, tracker, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("battle tracker initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadConditions reads condition definitions from dir, or returns the
// built-in catalog when dir is empty.
func loadConditions(dir string) (*condition.Registry, error) {
	if dir == "" {
		return condition.DefaultRegistry(), nil
	}
	return condition.LoadDirectory(dir)
}
