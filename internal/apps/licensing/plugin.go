package licensing

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/config"
	"github.com/noveos/backend/internal/mailer"
	"github.com/noveos/backend/internal/middleware"
	"gorm.io/gorm"
)

type LicensingPlugin struct {
	mail *mailer.Mailer
}

func New(mail *mailer.Mailer) *LicensingPlugin {
	return &LicensingPlugin{mail: mail}
}

func (p *LicensingPlugin) ID() string { return "licensing" }

func (p *LicensingPlugin) Models() []interface{} {
	return []interface{}{
		&License{},
		&Activation{},
	}
}

func (p *LicensingPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewLicenseService(db, p.mail, cfg.SiteURL)
	handler := NewLicenseHandler(svc)
	admin := middleware.AdminRequired(cfg)

	// Public endpoints (installers and the website)
	router.Post("/trial/request", handler.RequestTrial)
	router.Post("/license/activate", handler.Activate)
	router.Get("/license/validate/:key", handler.ValidateKey)

	// Admin endpoints
	router.Post("/license/generate", admin, handler.GenerateLicense)
	router.Get("/licenses", admin, handler.ListLicenses)
	router.Get("/license/:key/activations", admin, handler.ListActivations)
	router.Delete("/license/:key/activations/:machine_id", admin, handler.RemoveActivation)
	router.Delete("/license/:key", admin, handler.RevokeLicense)
}
