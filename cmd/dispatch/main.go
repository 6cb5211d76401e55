package main

import (
	"context"
	"os"

	"github.com/yerzhank/ride-dispatch/config"
	"github.com/yerzhank/ride-dispatch/internal/app"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
)

func main() {
	ctx := context.Background()
	log := logger.InitLogger("dispatch", logger.LevelInfo)

	cfg, err := config.NewConfig()
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	if level := cfg.Log.Level; logger.ValidateLogLevel(level) {
		log = logger.InitLogger("dispatch", level)
	}

	application, err := app.New(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
