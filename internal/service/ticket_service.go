package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/events"
	"github.com/fixtrack/fixtrack/internal/persistence"
	"github.com/fixtrack/fixtrack/internal/repository"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// Actor identifies who is performing a service operation. Built from the
// request principal by the handlers.
type Actor struct {
	Name  string
	Email string
	Role  domain.Role
	Area  string
}

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	support    repository.SupportRepository
	experience *ExperienceService
	tx         persistence.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	SupportRepo repository.SupportRepository
	Experience  *ExperienceService
	Tx          persistence.TxRunner
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SubmitTicketInput describes ticket creation payload.
type SubmitTicketInput struct {
	Area             string
	Fixture          string
	ProblemType      string
	OtherDescription string
	Priority         domain.Priority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		support:    deps.SupportRepo,
		experience: deps.Experience,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SubmitTicket validates and creates an open ticket. No experience side
// effect.
func (s *TicketService) SubmitTicket(ctx context.Context, actor Actor, input SubmitTicketInput) (*domain.Ticket, error) {
	if !domain.ValidSubmitArea(input.Area) {
		return nil, apperrors.NewValidationError("área no permitida", map[string]any{"area": input.Area})
	}
	if !domain.ValidProblemType(input.ProblemType) {
		return nil, apperrors.NewValidationError("tipo de problema inválido", map[string]any{"tipo": input.ProblemType})
	}
	if input.ProblemType == domain.ProblemTypeOther && strings.TrimSpace(input.OtherDescription) == "" {
		return nil, apperrors.NewValidationError("descripción requerida para tipo Other", nil)
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("prioridad inválida", map[string]any{"prioridad": input.Priority})
	}
	if strings.TrimSpace(input.Fixture) == "" {
		return nil, apperrors.NewValidationError("fixtura requerida", nil)
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ReporterName:     actor.Name,
		ReporterEmail:    actor.Email,
		Area:             input.Area,
		Fixture:          strings.TrimSpace(input.Fixture),
		ProblemType:      input.ProblemType,
		OtherDescription: strings.TrimSpace(input.OtherDescription),
		Priority:         input.Priority,
		Status:           domain.StatusAbierto,
	}
	ticket.AppendChangelog("Ticket creado", actor.Name, now)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCreated, actor.Name, events.TicketCreatedPayload{
		TicketID: ticket.ID,
		Area:     ticket.Area,
		Fixture:  ticket.Fixture,
		Priority: ticket.Priority,
	})
	return ticket, nil
}

// AssignTicket sets the assignment fields. Calling it again overwrites the
// previous assignment and appends another changelog entry; the source
// system behaves the same way.
func (s *TicketService) AssignTicket(ctx context.Context, actor Actor, ticketID, engineerName, engineerEmail string) (*domain.Ticket, error) {
	if !auth.Can(actor.Role, auth.ActionAssignTicket) {
		return nil, apperrors.NewForbidden("rol sin permiso para asignar tickets")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.AssignedToName = engineerName
	ticket.AssignedToEmail = engineerEmail
	ticket.AssignedAt = &now
	ticket.AppendChangelog(fmt.Sprintf("Asignado a %s", engineerName), domain.SystemUser, now)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketAssigned, actor.Name, events.TicketAssignedPayload{
		TicketID:      ticket.ID,
		EngineerName:  engineerName,
		EngineerEmail: engineerEmail,
	})
	return ticket, nil
}

// AddComment appends a comment authored by the actor. Duplicate texts are
// kept; ids keep increasing.
func (s *TicketService) AddComment(ctx context.Context, actor Actor, ticketID, text string) (*domain.Ticket, error) {
	if !auth.Can(actor.Role, auth.ActionCommentTicket) {
		return nil, apperrors.NewForbidden("rol sin permiso para comentar tickets")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("comentario vacío", nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.Comments = append(ticket.Comments, domain.Comment{
		ID:        ticket.NextCommentID(),
		Author:    actor.Name,
		Text:      text,
		Timestamp: time.Now(),
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ResolveTicket marks the ticket resolved pending reporter confirmation and
// awards experience. Ticket update and experience grants commit in one
// transaction.
func (s *TicketService) ResolveTicket(ctx context.Context, actor Actor, ticketID, resolutionDetails, supportedBy string) (*domain.Ticket, error) {
	if !auth.Can(actor.Role, auth.ActionResolveTicket) {
		return nil, apperrors.NewForbidden("rol sin permiso para resolver tickets")
	}
	if strings.TrimSpace(resolutionDetails) == "" {
		return nil, apperrors.NewValidationError("detalles de resolución requeridos", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Resolved {
		return nil, apperrors.NewConflict("ticket ya resuelto", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Status == domain.StatusCerrado {
		return nil, apperrors.NewConflict("ticket cerrado", map[string]any{"ticket_id": ticketID})
	}

	now := time.Now()
	elapsed := now.Sub(ticket.CreatedAt)
	elapsedText := formatElapsed(elapsed)
	expAwarded := domain.CalculateTicketExperience(ticket.Priority)

	var resolverResult, supporterResult *AwardResult
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		resolverResult, err = s.experience.Award(txCtx, actor.Email, expAwarded, true)
		if err != nil {
			return err
		}

		if supportedBy != "" {
			supporter, lookupErr := s.users.GetByName(txCtx, supportedBy)
			switch {
			case lookupErr == nil:
				supporterResult, err = s.experience.Award(txCtx, supporter.Email, expAwarded/2, false)
				if err != nil {
					return err
				}
			case errors.Is(lookupErr, pgx.ErrNoRows):
				// unknown co-resolver names are recorded but earn nothing
			default:
				return lookupErr
			}
		}

		ticket.Resolved = true
		ticket.PendingUserConfirmation = true
		ticket.Status = domain.StatusResuelto
		ticket.ResolvedAt = &now
		ticket.ResolutionDetails = fmt.Sprintf("%s\n\nTiempo de resolución: %s", strings.TrimSpace(resolutionDetails), elapsedText)
		ticket.SupportedBy = supportedBy
		ticket.ExpAwarded = expAwarded
		ticket.ElapsedMs = elapsed.Milliseconds()

		ticket.AppendChangelog(fmt.Sprintf("Ticket resuelto por %s", actor.Name), actor.Name, now)
		ticket.AppendChangelog(fmt.Sprintf("Resolución: %s", strings.TrimSpace(resolutionDetails)), actor.Name, now)
		ticket.AppendChangelog(fmt.Sprintf("Tiempo de resolución: %s", elapsedText), domain.SystemUser, now)
		if supportedBy != "" {
			ticket.AppendChangelog(fmt.Sprintf("Con apoyo de %s", supportedBy), actor.Name, now)
		}
		if resolverResult.LeveledUp {
			ticket.AppendChangelog(
				fmt.Sprintf("%s subió al nivel %d (%s)", actor.Name, resolverResult.NewLevel.Level, resolverResult.NewLevel.Name),
				domain.SystemUser, now)
		}
		if supporterResult != nil && supporterResult.LeveledUp {
			ticket.AppendChangelog(
				fmt.Sprintf("%s subió al nivel %d (%s)", supporterResult.User.Name, supporterResult.NewLevel.Level, supporterResult.NewLevel.Name),
				domain.SystemUser, now)
		}

		return s.tickets.Update(txCtx, ticket)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketResolved, actor.Name, events.TicketResolvedPayload{
		TicketID:    ticket.ID,
		ResolvedBy:  actor.Name,
		SupportedBy: supportedBy,
		ExpAwarded:  expAwarded,
		ElapsedMs:   ticket.ElapsedMs,
	})
	s.publishLevelUps(ctx, actor.Name, resolverResult, supporterResult)
	return ticket, nil
}

// ConfirmResolution records the reporter's verdict on a resolved ticket.
// Confirmation closes the ticket; rejection reopens it without retracting
// the experience already awarded.
func (s *TicketService) ConfirmResolution(ctx context.Context, actor Actor, ticketID string, confirmed bool) (*domain.Ticket, error) {
	if !auth.Can(actor.Role, auth.ActionConfirmTicket) {
		return nil, apperrors.NewForbidden("rol sin permiso para confirmar resoluciones")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.PendingUserConfirmation {
		return nil, apperrors.NewConflict("ticket sin confirmación pendiente", map[string]any{"ticket_id": ticketID})
	}
	if actor.Email != ticket.ReporterEmail && !auth.Can(actor.Role, auth.ActionCloseTicket) {
		return nil, apperrors.NewForbidden("solo el reportante puede confirmar la resolución")
	}

	now := time.Now()
	ticket.PendingUserConfirmation = false
	if confirmed {
		ticket.Status = domain.StatusCerrado
		ticket.AppendChangelog(fmt.Sprintf("Resolución confirmada por %s", actor.Name), actor.Name, now)
	} else {
		ticket.Resolved = false
		ticket.Status = domain.StatusAbierto
		ticket.AppendChangelog(fmt.Sprintf("Resolución rechazada por %s", actor.Name), actor.Name, now)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	eventType := events.EventTicketConfirmed
	if !confirmed {
		eventType = events.EventTicketReopened
	}
	s.publish(ctx, eventType, actor.Name, events.TicketConfirmedPayload{
		TicketID:  ticket.ID,
		Confirmed: confirmed,
	})
	return ticket, nil
}

// CloseTicket force-closes regardless of lifecycle position. Skips the
// resolve step entirely, so no experience is awarded; ResolvedAt defaults
// to now when the ticket never went through resolution.
func (s *TicketService) CloseTicket(ctx context.Context, actor Actor, ticketID, reason string) (*domain.Ticket, error) {
	if !auth.Can(actor.Role, auth.ActionCloseTicket) {
		return nil, apperrors.NewForbidden("rol sin permiso para cerrar tickets")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.Status = domain.StatusCerrado
	ticket.Resolved = true
	ticket.PendingUserConfirmation = false
	if ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	ticket.AppendChangelog(fmt.Sprintf("Cerrado por %s: %s", actor.Name, reason), actor.Name, now)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketClosed, actor.Name, events.TicketClosedPayload{
		TicketID: ticket.ID,
		Reason:   reason,
	})
	return ticket, nil
}

// DeleteTicket removes the record entirely.
func (s *TicketService) DeleteTicket(ctx context.Context, actor Actor, ticketID string) error {
	if !auth.Can(actor.Role, auth.ActionDeleteTicket) {
		return apperrors.NewForbidden("rol sin permiso para eliminar tickets")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListTickets returns tickets matching the named filter, scoped by role,
// plus the caller's approved unregistered-support entries re-shaped as
// closed tickets. The union happens at read time; nothing is stored.
func (s *TicketService) ListTickets(ctx context.Context, actor Actor, filter string) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{}
	switch filter {
	case "open":
		repoFilter.Statuses = []domain.Status{domain.StatusAbierto}
	case "assigned":
		email := actor.Email
		repoFilter.AssignedEmail = &email
	case "resolved":
		repoFilter.Statuses = []domain.Status{domain.StatusResuelto}
	case "pending":
		pending := true
		repoFilter.Pending = &pending
	case "", "all":
	default:
		return nil, apperrors.NewValidationError("filtro desconocido", map[string]any{"filter": filter})
	}

	if actor.Role == domain.RoleSupervisor && actor.Area != "" {
		area := actor.Area
		repoFilter.Area = &area
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	approved := true
	email := actor.Email
	supportEntries, err := s.support.List(ctx, repository.SupportFilter{
		SubmitterEmail: &email,
		Approved:       &approved,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range supportEntries {
		tickets = append(tickets, supportAsTicket(&supportEntries[i]))
	}
	return tickets, nil
}

// GetTicket fetches one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// supportAsTicket shapes an approved support claim like a closed, resolved
// ticket. ExpAwarded stays zero: the grant already happened at approval.
func supportAsTicket(entry *domain.UnregisteredSupport) domain.Ticket {
	resolvedAt := entry.CreatedAt
	if entry.ReviewedAt != nil {
		resolvedAt = *entry.ReviewedAt
	}
	return domain.Ticket{
		ID:                    entry.ID,
		ReporterName:          entry.SubmitterName,
		ReporterEmail:         entry.SubmitterEmail,
		Area:                  entry.Area,
		Fixture:               entry.Fixture,
		ProblemType:           entry.SupportType,
		Priority:              domain.PriorityBaja,
		Status:                domain.StatusCerrado,
		Resolved:              true,
		ResolutionDetails:     entry.Description,
		ResolvedAt:            &resolvedAt,
		ExpAwarded:            0,
		IsUnregisteredSupport: true,
		CreatedAt:             entry.CreatedAt,
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (s *TicketService) publishLevelUps(ctx context.Context, actor string, results ...*AwardResult) {
	for _, result := range results {
		if result == nil || !result.LeveledUp {
			continue
		}
		s.publish(ctx, events.EventEngineerLeveledUp, actor, events.EngineerLeveledUpPayload{
			Email:     result.User.Email,
			NewLevel:  result.NewLevel.Level,
			LevelName: result.NewLevel.Name,
		})
	}
}

// formatElapsed renders a duration the way resolution notes expect it.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return "menos de un minuto"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	parts := make([]string, 0, 3)
	if days == 1 {
		parts = append(parts, "1 día")
	} else if days > 1 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours == 1 {
		parts = append(parts, "1 hora")
	} else if hours > 1 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes == 1 {
		parts = append(parts, "1 minuto")
	} else if minutes > 1 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if len(parts) == 0 {
		return "menos de un minuto"
	}
	return strings.Join(parts, " ")
}
