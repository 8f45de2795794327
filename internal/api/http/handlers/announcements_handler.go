package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/dto"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/service"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// AnnouncementsHandler manages the published change feed.
type AnnouncementsHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementsHandler constructs handler.
func NewAnnouncementsHandler(announcementService *service.AnnouncementService) *AnnouncementsHandler {
	return &AnnouncementsHandler{service: announcementService}
}

// Publish POST /api/changelog.
func (h *AnnouncementsHandler) Publish(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.PublishAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	entry, err := h.service.Publish(c.UserContext(), actorFromPrincipal(principal), service.AnnouncementInput{
		Title:       req.Title,
		Description: req.Description,
		Area:        req.Area,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"announcement": dto.AnnouncementFromDomain(entry)})
}

// List GET /api/changelog?area=.
func (h *AnnouncementsHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.UserContext(), c.Query("area"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcements": dto.AnnouncementsFromDomain(entries)})
}

// Get GET /api/changelog/:id.
func (h *AnnouncementsHandler) Get(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcement": dto.AnnouncementFromDomain(entry)})
}

// AddComment POST /api/changelog/:id/comments.
func (h *AnnouncementsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.AnnouncementCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	entry, err := h.service.AddComment(c.UserContext(), actorFromPrincipal(principal), c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcement": dto.AnnouncementFromDomain(entry)})
}

// AddUpdate POST /api/changelog/:id/updates.
func (h *AnnouncementsHandler) AddUpdate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.AnnouncementUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	attachments := make([]domain.AnnouncementAttachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, domain.AnnouncementAttachment(att))
	}
	entry, err := h.service.AddUpdate(c.UserContext(), actorFromPrincipal(principal), c.Params("id"), service.AnnouncementUpdateInput{
		Title:       req.Title,
		Body:        req.Body,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"announcement": dto.AnnouncementFromDomain(entry)})
}
