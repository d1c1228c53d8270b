package licensing

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/dto"
	"github.com/noveos/backend/internal/validation"
)

type LicenseHandler struct {
	licenseService *LicenseService
}

func NewLicenseHandler(licenseService *LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

// GenerateLicense handles POST /license/generate - issues a standard license.
func (h *LicenseHandler) GenerateLicense(c *fiber.Ctx) error {
	var req GenerateLicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validation.Message(err),
		})
	}

	lic, err := h.licenseService.Issue(IssueParams{
		Plan:          req.Plan,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Months:        req.Months,
		Note:          req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown plan",
			})
		case errors.Is(err, ErrKeyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Key generation failed, please retry",
			})
		default:
			slog.Error("license issuance failed", "plan", req.Plan, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to issue license",
			})
		}
	}

	slog.Info("license issued", "key", lic.Key, "plan", lic.Plan)
	return c.JSON(GenerateLicenseResponse{
		Status:        "ok",
		LicenseKey:    lic.Key,
		Plan:          PlanDisplayName(lic.Plan),
		CustomerEmail: lic.CustomerEmail,
		ValidFrom:     fmtDate(lic.ValidFrom),
		ValidUntil:    fmtDate(lic.ValidUntil),
		ServerLimit:   lic.ServerLimit,
	})
}

// RequestTrial handles POST /trial/request - self-serve 14-day trial, one
// per email.
func (h *LicenseHandler) RequestTrial(c *fiber.Ctx) error {
	var req TrialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validation.Message(err),
		})
	}

	lic, err := h.licenseService.IssueTrial(req.Name, req.Email, req.Company)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateTrial):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "A trial license was already issued for this email",
			})
		case errors.Is(err, ErrKeyConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Key generation failed, please retry",
			})
		default:
			slog.Error("trial issuance failed", "email", req.Email, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to issue trial license",
			})
		}
	}

	slog.Info("trial license issued", "key", lic.Key)
	return c.JSON(TrialResponse{
		Status:         "ok",
		LicenseKey:     lic.Key,
		ValidUntil:     fmtDate(lic.ValidUntil),
		ServerLimit:    lic.ServerLimit,
		InstallCommand: h.licenseService.InstallCommand(lic.Key),
	})
}

// Activate handles POST /license/activate - binds or heartbeats a machine.
func (h *LicenseHandler) Activate(c *fiber.Ctx) error {
	var req ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: validation.Message(err),
		})
	}

	result, err := h.licenseService.Activate(req.LicenseKey, req.MachineID)
	if err != nil {
		var forbidden *ForbiddenError
		switch {
		case errors.Is(err, ErrLicenseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "License key not found",
			})
		case errors.As(err, &forbidden):
			return c.Status(fiber.StatusForbidden).JSON(ActivationDenied{
				Error:       true,
				Reason:      forbidden.Reason,
				Message:     forbidden.Error(),
				ValidUntil:  forbidden.ValidUntil,
				ServerLimit: forbidden.ServerLimit,
			})
		default:
			slog.Error("activation failed", "key", req.LicenseKey, "machine_id", req.MachineID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to activate license",
			})
		}
	}

	return c.JSON(ActivateResponse{
		IsValid:        true,
		Status:         result.Status,
		Plan:           PlanDisplayName(result.License.Plan),
		CustomerName:   result.License.CustomerName,
		ValidUntil:     fmtDate(result.License.ValidUntil),
		ServerLimit:    result.License.ServerLimit,
		ActivatedCount: result.ActivatedCount,
	})
}

// ValidateKey handles GET /license/validate/:key - pure validity read.
func (h *LicenseHandler) ValidateKey(c *fiber.Ctx) error {
	status, err := h.licenseService.Validate(c.Params("key"))
	if err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "License key not found",
			})
		}
		slog.Error("license validation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to validate license",
		})
	}

	return c.JSON(ValidateResponse{
		LicenseResponse: licenseResponse(&status.License, status.ActivatedCount),
		IsExpired:       status.IsExpired,
		IsValid:         status.IsValid,
	})
}

// ListLicenses handles GET /licenses - all licenses with counts, newest first.
func (h *LicenseHandler) ListLicenses(c *fiber.Ctx) error {
	rows, err := h.licenseService.ListLicenses()
	if err != nil {
		slog.Error("license listing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list licenses",
		})
	}

	out := make([]LicenseResponse, len(rows))
	for i, row := range rows {
		out[i] = licenseResponse(&row.License, row.ActivatedCount)
	}
	return c.JSON(out)
}

// ListActivations handles GET /license/:key/activations.
func (h *LicenseHandler) ListActivations(c *fiber.Ctx) error {
	acts, err := h.licenseService.ListActivations(c.Params("key"))
	if err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "License key not found",
			})
		}
		slog.Error("activation listing failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list activations",
		})
	}

	out := make([]ActivationResponse, len(acts))
	for i, a := range acts {
		out[i] = ActivationResponse{
			MachineID:   a.MachineID,
			ActivatedAt: a.ActivatedAt.UTC().Format(time.RFC3339),
			LastSeen:    a.LastSeen.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(out)
}

// RemoveActivation handles DELETE /license/:key/activations/:machine_id.
func (h *LicenseHandler) RemoveActivation(c *fiber.Ctx) error {
	key := c.Params("key")
	machineID := c.Params("machine_id")

	if err := h.licenseService.RemoveActivation(key, machineID); err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "License key not found",
			})
		}
		slog.Error("activation removal failed", "key", key, "machine_id", machineID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove activation",
		})
	}

	return c.JSON(dto.StatusResponse{Status: "ok", Message: machineID + " unbound"})
}

// RevokeLicense handles DELETE /license/:key - deactivates a license.
func (h *LicenseHandler) RevokeLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.licenseService.Revoke(key); err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "License key not found",
			})
		}
		slog.Error("license revocation failed", "key", key, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to revoke license",
		})
	}

	slog.Info("license revoked", "key", key)
	return c.JSON(dto.StatusResponse{Status: "ok", Message: key + " deactivated"})
}

func licenseResponse(lic *License, count int64) LicenseResponse {
	return LicenseResponse{
		ID:             lic.ID,
		LicenseKey:     lic.Key,
		Plan:           lic.Plan,
		CustomerName:   lic.CustomerName,
		CustomerEmail:  lic.CustomerEmail,
		ServerLimit:    lic.ServerLimit,
		ValidFrom:      fmtDate(lic.ValidFrom),
		ValidUntil:     fmtDate(lic.ValidUntil),
		IsActive:       lic.IsActive,
		Note:           lic.Note,
		CreatedAt:      lic.CreatedAt.UTC().Format(time.RFC3339),
		ActivatedCount: count,
	}
}
