package dto

import (
	"time"

	"github.com/fixtrack/fixtrack/internal/domain"
)

// Ticket action verbs accepted by the single action endpoint.
const (
	ActionAssign  = "assign"
	ActionComment = "comment"
	ActionResolve = "resolve"
	ActionConfirm = "confirm"
	ActionClose   = "close"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	Area             string `json:"area" validate:"required"`
	Fixture          string `json:"fixture" validate:"required"`
	ProblemType      string `json:"problemType" validate:"required"`
	OtherDescription string `json:"otherDescription"`
	Priority         string `json:"priority" validate:"required"`
}

// TicketActionRequest is the shared body for ticket state transitions.
// Action selects the verb; the remaining fields apply per verb.
type TicketActionRequest struct {
	Action string `json:"action" validate:"required,oneof=assign comment resolve confirm close"`

	// assign
	EngineerName  string `json:"engineerName"`
	EngineerEmail string `json:"engineerEmail"`

	// comment
	Text string `json:"text"`

	// resolve
	ResolutionDetails string `json:"resolutionDetails"`
	SupportedBy       string `json:"supportedBy"`

	// confirm
	Confirmed *bool `json:"confirmed"`

	// close
	Reason string `json:"reason"`
}

// CommentResponse is one embedded comment.
type CommentResponse struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangelogEntryResponse is one embedded audit entry.
type ChangelogEntryResponse struct {
	ID        int       `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                      string                   `json:"id"`
	ReporterName            string                   `json:"reporterName"`
	ReporterEmail           string                   `json:"reporterEmail"`
	Area                    string                   `json:"area"`
	Fixture                 string                   `json:"fixture"`
	ProblemType             string                   `json:"problemType"`
	OtherDescription        string                   `json:"otherDescription,omitempty"`
	Priority                string                   `json:"priority"`
	Status                  string                   `json:"status"`
	Resolved                bool                     `json:"resolved"`
	PendingUserConfirmation bool                     `json:"pendingUserConfirmation"`
	AssignedToName          string                   `json:"assignedToName,omitempty"`
	AssignedToEmail         string                   `json:"assignedToEmail,omitempty"`
	AssignedAt              *time.Time               `json:"assignedAt,omitempty"`
	ResolutionDetails       string                   `json:"resolutionDetails,omitempty"`
	SupportedBy             string                   `json:"supportedBy,omitempty"`
	ResolvedAt              *time.Time               `json:"resolvedAt,omitempty"`
	ExpAwarded              int                      `json:"expAwarded"`
	ElapsedMs               int64                    `json:"elapsedMs,omitempty"`
	IsUnregisteredSupport   bool                     `json:"isUnregisteredSupport,omitempty"`
	Comments                []CommentResponse        `json:"comments"`
	Changelog               []ChangelogEntryResponse `json:"changelog"`
	CreatedAt               time.Time                `json:"createdAt"`
	UpdatedAt               time.Time                `json:"updatedAt"`
}

// ActionResult is the uniform mutation response.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	comments := make([]CommentResponse, 0, len(t.Comments))
	for _, c := range t.Comments {
		comments = append(comments, CommentResponse(c))
	}
	changelog := make([]ChangelogEntryResponse, 0, len(t.Changelog))
	for _, e := range t.Changelog {
		changelog = append(changelog, ChangelogEntryResponse(e))
	}
	return TicketResponse{
		ID:                      t.ID,
		ReporterName:            t.ReporterName,
		ReporterEmail:           t.ReporterEmail,
		Area:                    t.Area,
		Fixture:                 t.Fixture,
		ProblemType:             t.ProblemType,
		OtherDescription:        t.OtherDescription,
		Priority:                string(t.Priority),
		Status:                  string(t.Status),
		Resolved:                t.Resolved,
		PendingUserConfirmation: t.PendingUserConfirmation,
		AssignedToName:          t.AssignedToName,
		AssignedToEmail:         t.AssignedToEmail,
		AssignedAt:              t.AssignedAt,
		ResolutionDetails:       t.ResolutionDetails,
		SupportedBy:             t.SupportedBy,
		ResolvedAt:              t.ResolvedAt,
		ExpAwarded:              t.ExpAwarded,
		ElapsedMs:               t.ElapsedMs,
		IsUnregisteredSupport:   t.IsUnregisteredSupport,
		Comments:                comments,
		Changelog:               changelog,
		CreatedAt:               t.CreatedAt,
		UpdatedAt:               t.UpdatedAt,
	}
}

// TicketsFromDomain maps a slice of tickets.
func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, TicketFromDomain(&tickets[i]))
	}
	return items
}
