package main

import (
	"context"
	"fmt"
	"os"

	"portal/cmd/migration/initialize"
	"portal/cmd/migration/seed"
	"portal/config"
	"portal/internal/app"
	"portal/internal/database"
	"portal/internal/logger"
)

const usage = "usage: migration <up|down|seed|initialize>"

func main() {
	log := logger.New("migration").Function("main")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		log.Er("failed to initialize logger", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Er("failed to initialize app", err)
		logger.Sync()
		os.Exit(1)
	}

	err = run(context.Background(), a, os.Args[1], log)
	if closeErr := a.Close(); closeErr != nil {
		log.Er("failed to close app", closeErr)
	}
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, log logger.Logger) error {
	switch command {
	case "up":
		_, err := a.Database.Migrate(database.MigrateUp)
		return err
	case "down":
		_, err := a.Database.Migrate(database.MigrateDown)
		return err
	case "seed":
		if a.Config.IsProduction() {
			return log.ErrMsg("refusing to seed a production database")
		}
		if _, err := a.Database.Migrate(database.MigrateUp); err != nil {
			return err
		}
		if err := initialize.InitializeTables(ctx, a, log); err != nil {
			return err
		}
		return seed.Seed(ctx, a, log)
	case "initialize":
		if _, err := a.Database.Migrate(database.MigrateUp); err != nil {
			return err
		}
		return initialize.InitializeTables(ctx, a, log)
	}

	fmt.Fprintln(os.Stderr, usage)
	return log.Error("unknown command", "command", command)
}
