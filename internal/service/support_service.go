package service

import (
	"context"
	"errors"
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

// SupportService runs the unregistered-support approval workflow.
type SupportService struct {
	support    repository.SupportRepository
	experience *ExperienceService
	tx         persistence.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SupportDependencies bundles collaborators.
type SupportDependencies struct {
	SupportRepo repository.SupportRepository
	Experience  *ExperienceService
	Tx          persistence.TxRunner
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SubmitSupportInput describes a new support claim.
type SubmitSupportInput struct {
	Area        string
	Fixture     string
	Description string
	SupportType string
	EvidenceRef string
}

// NewSupportService constructs the service.
func NewSupportService(deps SupportDependencies) *SupportService {
	return &SupportService{
		support:    deps.SupportRepo,
		experience: deps.Experience,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Submit records a pending claim.
func (s *SupportService) Submit(ctx context.Context, actor Actor, input SubmitSupportInput) (*domain.UnregisteredSupport, error) {
	if !domain.ValidArea(input.Area) {
		return nil, apperrors.NewValidationError("área desconocida", map[string]any{"area": input.Area})
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("descripción requerida", nil)
	}

	entry := &domain.UnregisteredSupport{
		Area:           input.Area,
		Fixture:        strings.TrimSpace(input.Fixture),
		Description:    strings.TrimSpace(input.Description),
		SupportType:    input.SupportType,
		EvidenceRef:    input.EvidenceRef,
		SubmitterName:  actor.Name,
		SubmitterEmail: actor.Email,
	}
	if err := s.support.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// Approve is terminal and grants the flat support experience through the
// same routine ticket resolution uses.
func (s *SupportService) Approve(ctx context.Context, actor Actor, id string) (*domain.UnregisteredSupport, error) {
	if !auth.Can(actor.Role, auth.ActionReviewSupport) {
		return nil, apperrors.NewForbidden("rol sin permiso para revisar apoyos")
	}
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.Pending() {
		return nil, apperrors.NewConflict("apoyo ya revisado", map[string]any{"support_id": id})
	}

	now := time.Now()
	approved := true
	entry.Approved = &approved
	entry.ReviewedBy = actor.Name
	entry.ReviewedAt = &now

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, awardErr := s.experience.Award(txCtx, entry.SubmitterEmail, domain.ExpUnregisteredSupport, true); awardErr != nil {
			return awardErr
		}
		return s.support.Update(txCtx, entry)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishReview(ctx, actor.Name, entry, true)
	return entry, nil
}

// Reject is terminal. The review comment is checked at the request layer;
// the service itself stays lenient, matching the source behavior.
func (s *SupportService) Reject(ctx context.Context, actor Actor, id, comment string) (*domain.UnregisteredSupport, error) {
	if !auth.Can(actor.Role, auth.ActionReviewSupport) {
		return nil, apperrors.NewForbidden("rol sin permiso para revisar apoyos")
	}
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.Pending() {
		return nil, apperrors.NewConflict("apoyo ya revisado", map[string]any{"support_id": id})
	}

	now := time.Now()
	rejected := false
	entry.Approved = &rejected
	entry.ReviewComment = comment
	entry.ReviewedBy = actor.Name
	entry.ReviewedAt = &now

	if err := s.support.Update(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishReview(ctx, actor.Name, entry, false)
	return entry, nil
}

// List returns claims; engineers see their own, reviewers see everything.
func (s *SupportService) List(ctx context.Context, actor Actor) ([]domain.UnregisteredSupport, error) {
	filter := repository.SupportFilter{}
	if !auth.Can(actor.Role, auth.ActionReviewSupport) {
		email := actor.Email
		filter.SubmitterEmail = &email
	}
	entries, err := s.support.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *SupportService) getEntry(ctx context.Context, id string) (*domain.UnregisteredSupport, error) {
	entry, err := s.support.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("apoyo", map[string]any{"support_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

func (s *SupportService) publishReview(ctx context.Context, actor string, entry *domain.UnregisteredSupport, approved bool) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSupportReviewed,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload: events.SupportReviewedPayload{
			SupportID: entry.ID,
			Approved:  approved,
			Submitter: entry.SubmitterEmail,
		},
	})
}
