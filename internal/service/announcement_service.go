package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/repository"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// AnnouncementService manages the published change feed.
type AnnouncementService struct {
	announcements repository.AnnouncementRepository
}

// AnnouncementInput describes a new feed entry.
type AnnouncementInput struct {
	Title       string
	Description string
	Area        string
}

// AnnouncementUpdateInput describes a nested follow-up post.
type AnnouncementUpdateInput struct {
	Title       string
	Body        string
	Attachments []domain.AnnouncementAttachment
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(announcements repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcements: announcements}
}

// Publish creates a feed entry.
func (s *AnnouncementService) Publish(ctx context.Context, actor Actor, input AnnouncementInput) (*domain.Announcement, error) {
	if !auth.Can(actor.Role, auth.ActionPublishChangelog) {
		return nil, apperrors.NewForbidden("rol sin permiso para publicar")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("título requerido", nil)
	}
	if input.Area != "" && !domain.ValidArea(input.Area) {
		return nil, apperrors.NewValidationError("área desconocida", map[string]any{"area": input.Area})
	}

	entry := &domain.Announcement{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Area:        input.Area,
		AuthorName:  actor.Name,
		AuthorRole:  actor.Role,
	}
	if err := s.announcements.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// List returns feed entries, optionally narrowed to one area.
func (s *AnnouncementService) List(ctx context.Context, area string) ([]domain.Announcement, error) {
	var areaFilter *string
	if area != "" {
		if !domain.ValidArea(area) {
			return nil, apperrors.NewValidationError("área desconocida", map[string]any{"area": area})
		}
		areaFilter = &area
	}
	entries, err := s.announcements.List(ctx, areaFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Get fetches one entry.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*domain.Announcement, error) {
	return s.getEntry(ctx, id)
}

// AddComment appends a reader comment.
func (s *AnnouncementService) AddComment(ctx context.Context, actor Actor, id, text string) (*domain.Announcement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("comentario vacío", nil)
	}
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.Comments = append(entry.Comments, domain.AnnouncementComment{
		ID:        entry.NextCommentID(),
		Author:    actor.Name,
		Text:      text,
		Timestamp: time.Now(),
	})
	if err := s.announcements.Update(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// AddUpdate appends a nested follow-up post, author-only.
func (s *AnnouncementService) AddUpdate(ctx context.Context, actor Actor, id string, input AnnouncementUpdateInput) (*domain.Announcement, error) {
	if !auth.Can(actor.Role, auth.ActionPublishChangelog) {
		return nil, apperrors.NewForbidden("rol sin permiso para publicar")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewValidationError("contenido requerido", nil)
	}
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.Updates = append(entry.Updates, domain.AnnouncementUpdate{
		ID:          entry.NextUpdateID(),
		Title:       strings.TrimSpace(input.Title),
		Body:        strings.TrimSpace(input.Body),
		Timestamp:   time.Now(),
		Attachments: input.Attachments,
	})
	if err := s.announcements.Update(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

func (s *AnnouncementService) getEntry(ctx context.Context, id string) (*domain.Announcement, error) {
	entry, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("publicación", map[string]any{"changelog_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}
