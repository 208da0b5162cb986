package handlers

import (
	"portal/internal/app"
	"portal/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	log    logger.Logger
	router fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewGroupSelectionHandler(*app, api).Register()
	NewReportsHandler(*app, api).Register()

	return nil
}
