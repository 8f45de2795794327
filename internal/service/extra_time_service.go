package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/events"
	"github.com/fixtrack/fixtrack/internal/repository"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// ExtraTimeService runs the extra-time request workflow. Independent of
// tickets and experience.
type ExtraTimeService struct {
	requests   repository.ExtraTimeRepository
	dispatcher events.Dispatcher
}

// ExtraTimeInput describes a new request.
type ExtraTimeInput struct {
	EngineerName string
	Reason       string
	Hours        float64
	Date         time.Time
	StartTime    string
	EndTime      string
}

// NewExtraTimeService constructs the service.
func NewExtraTimeService(requests repository.ExtraTimeRepository, dispatcher events.Dispatcher) *ExtraTimeService {
	return &ExtraTimeService{requests: requests, dispatcher: dispatcher}
}

// Create records a pending request.
func (s *ExtraTimeService) Create(ctx context.Context, actor Actor, input ExtraTimeInput) (*domain.ExtraTimeRequest, error) {
	if !auth.Can(actor.Role, auth.ActionRequestExtraTime) {
		return nil, apperrors.NewForbidden("rol sin permiso para solicitar tiempo extra")
	}
	if strings.TrimSpace(input.EngineerName) == "" {
		return nil, apperrors.NewValidationError("ingeniero requerido", nil)
	}
	if input.Hours <= 0 {
		return nil, apperrors.NewValidationError("horas inválidas", map[string]any{"hours": input.Hours})
	}

	req := &domain.ExtraTimeRequest{
		RequesterName: actor.Name,
		EngineerName:  strings.TrimSpace(input.EngineerName),
		Reason:        strings.TrimSpace(input.Reason),
		Hours:         input.Hours,
		Date:          input.Date,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Status:        domain.ExtraTimePendiente,
		CreatedBy:     actor.Email,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventExtraTimeRequested, actor.Name, req)
	return req, nil
}

// Review approves or declines a pending request.
func (s *ExtraTimeService) Review(ctx context.Context, actor Actor, id string, approve bool, comment string) (*domain.ExtraTimeRequest, error) {
	if !auth.Can(actor.Role, auth.ActionReviewExtraTime) {
		return nil, apperrors.NewForbidden("rol sin permiso para revisar tiempo extra")
	}
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ExtraTimePendiente {
		return nil, apperrors.NewConflict("solicitud ya revisada", map[string]any{"request_id": id})
	}

	if approve {
		req.Status = domain.ExtraTimeAprobada
	} else {
		req.Status = domain.ExtraTimeRechazada
	}
	req.ReviewComment = comment
	req.UpdatedBy = actor.Email

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventExtraTimeReviewed, actor.Name, req)
	return req, nil
}

// Delete removes a request.
func (s *ExtraTimeService) Delete(ctx context.Context, actor Actor, id string) error {
	if !auth.Can(actor.Role, auth.ActionDeleteExtraTime) {
		return apperrors.NewForbidden("rol sin permiso para eliminar solicitudes")
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("solicitud", map[string]any{"request_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// List returns all requests, newest first.
func (s *ExtraTimeService) List(ctx context.Context) ([]domain.ExtraTimeRequest, error) {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

func (s *ExtraTimeService) getRequest(ctx context.Context, id string) (*domain.ExtraTimeRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("solicitud", map[string]any{"request_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

func (s *ExtraTimeService) publish(ctx context.Context, eventType events.EventType, actor string, req *domain.ExtraTimeRequest) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload: events.ExtraTimePayload{
			RequestID:    req.ID,
			EngineerName: req.EngineerName,
			Status:       req.Status,
		},
	})
}
