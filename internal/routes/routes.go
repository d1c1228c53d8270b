package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/apps"
	"github.com/noveos/backend/internal/config"
	"github.com/noveos/backend/internal/handlers"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	// Liveness probe
	app.Get("/", healthHandler.Check)

	api := app.Group("/api")
	for _, p := range plugins {
		p.RegisterRoutes(api, db, cfg)
	}
}
