package contact

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/config"
	"github.com/noveos/backend/internal/mailer"
	"github.com/noveos/backend/internal/middleware"
	"gorm.io/gorm"
)

type ContactPlugin struct {
	mail *mailer.Mailer
}

func New(mail *mailer.Mailer) *ContactPlugin {
	return &ContactPlugin{mail: mail}
}

func (p *ContactPlugin) ID() string { return "contact" }

func (p *ContactPlugin) Models() []interface{} {
	return []interface{}{
		&Contact{},
	}
}

func (p *ContactPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewContactService(db)
	handler := NewContactHandler(svc, p.mail, cfg.SiteURL)

	router.Post("/contact", handler.SubmitContact)
	router.Get("/contacts", middleware.AdminRequired(cfg), handler.ListContacts)
}
