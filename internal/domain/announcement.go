package domain

import "time"

// AnnouncementComment is one reader comment on a published announcement.
type AnnouncementComment struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AnnouncementAttachment references a file attached to an update.
type AnnouncementAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Mime string `json:"mime"`
}

// AnnouncementUpdate is a nested follow-up post under an announcement.
type AnnouncementUpdate struct {
	ID          int                      `json:"id"`
	Title       string                   `json:"title"`
	Body        string                   `json:"body"`
	Timestamp   time.Time                `json:"timestamp"`
	Attachments []AnnouncementAttachment `json:"attachments,omitempty"`
}

// Announcement is one entry of the published change feed. Distinct from the
// per-ticket changelog; append-only, no status field.
type Announcement struct {
	ID          string
	Title       string
	Description string
	Area        string
	AuthorName  string
	AuthorRole  Role
	Comments    []AnnouncementComment
	Updates     []AnnouncementUpdate
	CreatedAt   time.Time
}

// NextCommentID returns the sequence id for the next comment.
func (a *Announcement) NextCommentID() int {
	return len(a.Comments) + 1
}

// NextUpdateID returns the sequence id for the next update.
func (a *Announcement) NextUpdateID() int {
	return len(a.Updates) + 1
}
