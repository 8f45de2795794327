package events

import (
	"time"

	"github.com/fixtrack/fixtrack/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventTicketResolved     EventType = "ticket_resolved"
	EventTicketConfirmed    EventType = "ticket_confirmed"
	EventTicketReopened     EventType = "ticket_reopened"
	EventTicketClosed       EventType = "ticket_closed"
	EventSupportReviewed    EventType = "support_reviewed"
	EventEngineerLeveledUp  EventType = "engineer_leveled_up"
	EventExtraTimeRequested EventType = "extra_time_requested"
	EventExtraTimeReviewed  EventType = "extra_time_reviewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID string          `json:"ticket_id"`
	Area     string          `json:"area"`
	Fixture  string          `json:"fixture"`
	Priority domain.Priority `json:"priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID      string `json:"ticket_id"`
	EngineerName  string `json:"engineer_name"`
	EngineerEmail string `json:"engineer_email"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	TicketID    string `json:"ticket_id"`
	ResolvedBy  string `json:"resolved_by"`
	SupportedBy string `json:"supported_by,omitempty"`
	ExpAwarded  int    `json:"exp_awarded"`
	ElapsedMs   int64  `json:"elapsed_ms"`
}

// TicketConfirmedPayload payload.
type TicketConfirmedPayload struct {
	TicketID  string `json:"ticket_id"`
	Confirmed bool   `json:"confirmed"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// SupportReviewedPayload payload.
type SupportReviewedPayload struct {
	SupportID string `json:"support_id"`
	Approved  bool   `json:"approved"`
	Submitter string `json:"submitter"`
}

// EngineerLeveledUpPayload payload.
type EngineerLeveledUpPayload struct {
	Email     string `json:"email"`
	NewLevel  int    `json:"new_level"`
	LevelName string `json:"level_name"`
}

// ExtraTimePayload payload for request and review events.
type ExtraTimePayload struct {
	RequestID    string                 `json:"request_id"`
	EngineerName string                 `json:"engineer_name"`
	Status       domain.ExtraTimeStatus `json:"status"`
}
