package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/config"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature area must implement.
type Plugin interface {
	// ID returns the unique plugin identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the plugin's routes on the given Fiber group.
	// The group is already prefixed with /api; admin-only routes attach
	// their own middleware per route.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
