package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/dto"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/service"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Submit POST /api/tickets/submit.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	ticket, err := h.service.SubmitTicket(c.UserContext(), actorFromPrincipal(principal), service.SubmitTicketInput{
		Area:             req.Area,
		Fixture:          req.Fixture,
		ProblemType:      req.ProblemType,
		OtherDescription: req.OtherDescription,
		Priority:         domain.Priority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ticket": dto.TicketFromDomain(ticket)})
}

// List GET /api/tickets?filter=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	filter := c.Query("filter", "all")
	tickets, err := h.service.ListTickets(c.UserContext(), actorFromPrincipal(principal), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.TicketsFromDomain(tickets)})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": dto.TicketFromDomain(ticket)})
}

// Action POST /api/tickets/:id. The body's action field selects the verb.
func (h *TicketsHandler) Action(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	var req dto.TicketActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	actor := actorFromPrincipal(principal)
	ticketID := c.Params("id")

	var err error
	message := ""
	switch req.Action {
	case dto.ActionAssign:
		if req.EngineerName == "" {
			return apperrors.NewValidationError("engineerName requerido", nil)
		}
		_, err = h.service.AssignTicket(c.UserContext(), actor, ticketID, req.EngineerName, req.EngineerEmail)
		message = "ticket asignado"
	case dto.ActionComment:
		if strings.TrimSpace(req.Text) == "" {
			return apperrors.NewValidationError("text requerido", nil)
		}
		_, err = h.service.AddComment(c.UserContext(), actor, ticketID, req.Text)
		message = "comentario agregado"
	case dto.ActionResolve:
		if strings.TrimSpace(req.ResolutionDetails) == "" {
			return apperrors.NewValidationError("resolutionDetails requerido", nil)
		}
		_, err = h.service.ResolveTicket(c.UserContext(), actor, ticketID, req.ResolutionDetails, req.SupportedBy)
		message = "ticket resuelto"
	case dto.ActionConfirm:
		if req.Confirmed == nil {
			return apperrors.NewValidationError("confirmed requerido", nil)
		}
		_, err = h.service.ConfirmResolution(c.UserContext(), actor, ticketID, *req.Confirmed)
		if *req.Confirmed {
			message = "resolución confirmada"
		} else {
			message = "ticket reabierto"
		}
	case dto.ActionClose:
		_, err = h.service.CloseTicket(c.UserContext(), actor, ticketID, req.Reason)
		message = "ticket cerrado"
	default:
		return apperrors.NewValidationError("acción desconocida", nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.ActionResult{Success: true, Message: message})
}

// Delete DELETE /api/tickets/:id/delete.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	if err := h.service.DeleteTicket(c.UserContext(), actorFromPrincipal(principal), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.ActionResult{Success: true, Message: "ticket eliminado"})
}
