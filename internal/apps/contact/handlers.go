package contact

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/dto"
	"github.com/noveos/backend/internal/mailer"
	"github.com/noveos/backend/internal/validation"
)

type ContactHandler struct {
	contactService *ContactService
	mail           *mailer.Mailer
	siteURL        string
}

func NewContactHandler(contactService *ContactService, mail *mailer.Mailer, siteURL string) *ContactHandler {
	return &ContactHandler{contactService: contactService, mail: mail, siteURL: siteURL}
}

// SubmitContact handles POST /contact - stores the submission and fires the
// operator notice plus the customer auto-reply.
func (h *ContactHandler) SubmitContact(c *fiber.Ctx) error {
	var form ContactForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validation.Struct(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validation.Message(err),
		})
	}

	entry, err := h.contactService.Create(&form)
	if err != nil {
		slog.Error("contact submission failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store inquiry",
		})
	}

	servers := ""
	if form.Servers > 0 {
		servers = strconv.Itoa(form.Servers)
	}
	h.mail.SendContactNotifications(mailer.ContactMailData{
		UserType: entry.UserType,
		Name:     entry.Name,
		Email:    entry.Email,
		Company:  entry.Company,
		Plan:     entry.Plan,
		Servers:  servers,
		Timeline: form.Timeline,
		Message:  entry.Message,
		SiteURL:  h.siteURL,
	})

	slog.Info("contact received", "user_type", entry.UserType)
	return c.JSON(dto.StatusResponse{Status: "ok", Message: "Inquiry received"})
}

// ListContacts handles GET /contacts - all submissions, newest first.
func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.contactService.List()
	if err != nil {
		slog.Error("contact listing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list contacts",
		})
	}
	return c.JSON(contacts)
}
