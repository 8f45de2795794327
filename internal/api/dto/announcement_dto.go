package dto

import (
	"time"

	"github.com/fixtrack/fixtrack/internal/domain"
)

// PublishAnnouncementRequest payload.
type PublishAnnouncementRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Area        string `json:"area"`
}

// AnnouncementCommentRequest payload.
type AnnouncementCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AnnouncementUpdateRequest payload for a nested follow-up post.
type AnnouncementUpdateRequest struct {
	Title       string                  `json:"title" validate:"required"`
	Body        string                  `json:"body" validate:"required"`
	Attachments []AnnouncementFileEntry `json:"attachments" validate:"dive"`
}

// AnnouncementFileEntry references an attached file.
type AnnouncementFileEntry struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
	Mime string `json:"mime"`
}

// AnnouncementResponse is one feed entry.
type AnnouncementResponse struct {
	ID          string                       `json:"id"`
	Title       string                       `json:"title"`
	Description string                       `json:"description"`
	Area        string                       `json:"area,omitempty"`
	AuthorName  string                       `json:"authorName"`
	AuthorRole  string                       `json:"authorRole"`
	Comments    []CommentResponse            `json:"comments"`
	Updates     []AnnouncementUpdateResponse `json:"updates"`
	CreatedAt   time.Time                    `json:"createdAt"`
}

// AnnouncementUpdateResponse is one follow-up post.
type AnnouncementUpdateResponse struct {
	ID          int                     `json:"id"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	Timestamp   time.Time               `json:"timestamp"`
	Attachments []AnnouncementFileEntry `json:"attachments,omitempty"`
}

// AnnouncementFromDomain maps a feed entry to its response shape.
func AnnouncementFromDomain(a *domain.Announcement) AnnouncementResponse {
	comments := make([]CommentResponse, 0, len(a.Comments))
	for _, c := range a.Comments {
		comments = append(comments, CommentResponse(c))
	}
	updates := make([]AnnouncementUpdateResponse, 0, len(a.Updates))
	for _, u := range a.Updates {
		attachments := make([]AnnouncementFileEntry, 0, len(u.Attachments))
		for _, att := range u.Attachments {
			attachments = append(attachments, AnnouncementFileEntry(att))
		}
		updates = append(updates, AnnouncementUpdateResponse{
			ID:          u.ID,
			Title:       u.Title,
			Body:        u.Body,
			Timestamp:   u.Timestamp,
			Attachments: attachments,
		})
	}
	return AnnouncementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Area:        a.Area,
		AuthorName:  a.AuthorName,
		AuthorRole:  string(a.AuthorRole),
		Comments:    comments,
		Updates:     updates,
		CreatedAt:   a.CreatedAt,
	}
}

// AnnouncementsFromDomain maps a slice of feed entries.
func AnnouncementsFromDomain(entries []domain.Announcement) []AnnouncementResponse {
	items := make([]AnnouncementResponse, 0, len(entries))
	for i := range entries {
		items = append(items, AnnouncementFromDomain(&entries[i]))
	}
	return items
}
