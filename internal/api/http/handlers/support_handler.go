package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/dto"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/service"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// SupportHandler manages unregistered-support claims.
type SupportHandler struct {
	service *service.SupportService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(supportService *service.SupportService) *SupportHandler {
	return &SupportHandler{service: supportService}
}

// Submit POST /api/unregistered-support.
func (h *SupportHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.SubmitSupportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	entry, err := h.service.Submit(c.UserContext(), actorFromPrincipal(principal), service.SubmitSupportInput{
		Area:        req.Area,
		Fixture:     req.Fixture,
		Description: req.Description,
		SupportType: req.SupportType,
		EvidenceRef: req.EvidenceRef,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"support": dto.SupportFromDomain(entry)})
}

// List GET /api/unregistered-support.
func (h *SupportHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	entries, err := h.service.List(c.UserContext(), actorFromPrincipal(principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"support": dto.SupportsFromDomain(entries)})
}

// Approve POST /api/unregistered-support/:id/approve.
func (h *SupportHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	if _, err := h.service.Approve(c.UserContext(), actorFromPrincipal(principal), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.ActionResult{Success: true, Message: "soporte aprobado"})
}

// Reject POST /api/unregistered-support/:id/reject.
func (h *SupportHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.ReviewSupportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.Comment == "" {
		return apperrors.NewValidationError("el rechazo requiere un comentario", nil)
	}
	if _, err := h.service.Reject(c.UserContext(), actorFromPrincipal(principal), c.Params("id"), req.Comment); err != nil {
		return err
	}
	return c.JSON(dto.ActionResult{Success: true, Message: "soporte rechazado"})
}
