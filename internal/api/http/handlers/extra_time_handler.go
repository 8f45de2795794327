package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/dto"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/service"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// ExtraTimeHandler manages extra-time scheduling endpoints.
type ExtraTimeHandler struct {
	service *service.ExtraTimeService
}

// NewExtraTimeHandler constructs handler.
func NewExtraTimeHandler(extraTimeService *service.ExtraTimeService) *ExtraTimeHandler {
	return &ExtraTimeHandler{service: extraTimeService}
}

// Create POST /api/extra-time.
func (h *ExtraTimeHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.CreateExtraTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return apperrors.NewValidationError("date inválida", nil)
	}

	entry, err := h.service.Create(c.UserContext(), actorFromPrincipal(principal), service.ExtraTimeInput{
		EngineerName: req.EngineerName,
		Reason:       req.Reason,
		Hours:        req.Hours,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": dto.ExtraTimeFromDomain(entry)})
}

// List GET /api/extra-time.
func (h *ExtraTimeHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"requests": dto.ExtraTimesFromDomain(entries)})
}

// Review POST /api/extra-time/:id.
func (h *ExtraTimeHandler) Review(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.ReviewExtraTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	approve := req.Action == "approve"
	entry, err := h.service.Review(c.UserContext(), actorFromPrincipal(principal), c.Params("id"), approve, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"request": dto.ExtraTimeFromDomain(entry)})
}

// Delete DELETE /api/extra-time/:id/delete.
func (h *ExtraTimeHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	if err := h.service.Delete(c.UserContext(), actorFromPrincipal(principal), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.ActionResult{Success: true, Message: "solicitud eliminada"})
}
