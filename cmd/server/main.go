package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal/config"
	"portal/internal/app"
	"portal/internal/database"
	"portal/internal/handlers"
	"portal/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.New("main").Function("main")

	cfg, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		log.Er("failed to initialize logger", err)
	}

	if err := run(cfg, log); err != nil {
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg config.Config, log logger.Logger) error {
	a, err := app.New(cfg)
	if err != nil {
		return log.Err("failed to initialize app", err)
	}
	defer a.Close()

	if _, err := a.Database.Migrate(database.MigrateUp); err != nil {
		return log.Err("failed to migrate database", err)
	}

	server := fiber.New(fiber.Config{
		AppName:               "portal " + cfg.GeneralVersion,
		DisableStartupMessage: cfg.IsProduction(),
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	server.Use(requestid.New())
	server.Use(recover.New())

	if err := handlers.Router(server, a); err != nil {
		return log.Err("failed to register routes", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	address := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Info("Starting server", "address", address, "environment", cfg.Environment)
	return serve(server, address, quit, log)
}

// serve listens on address until a signal arrives on quit or the listener fails.
func serve(server *fiber.App, address string, quit <-chan os.Signal, log logger.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.Listen(address)
	}()

	select {
	case err := <-listenErr:
		return log.Err("server stopped", err, "address", address)
	case sig := <-quit:
		log.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.ShutdownWithContext(ctx); err != nil {
		return log.Err("failed to shut down server", err)
	}
	return nil
}
