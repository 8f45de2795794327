package domain

import "time"

// Status enumerates ticket lifecycle states.
type Status string

const (
	StatusAbierto  Status = "Abierto"
	StatusResuelto Status = "Resuelto"
	StatusCerrado  Status = "Cerrado"
)

// Priority enumerates ticket urgency.
type Priority string

const (
	PriorityAlta  Priority = "Alta"
	PriorityMedia Priority = "Media"
	PriorityBaja  Priority = "Baja"
)

// Areas lists every site area known to the system. TELEMATICS is a valid
// area for announcements and filters but is absent from the ticket
// submission allow-list below, matching observed behavior of the source
// system.
var Areas = []string{"ACG", "SMT", "ICT", "FLASH", "EOL", "TELEMATICS"}

// SubmitAreas is the allow-list checked when a ticket is submitted.
var SubmitAreas = []string{"ACG", "SMT", "ICT", "FLASH", "EOL"}

// ProblemTypes lists accepted problem categories. ProblemTypeOther requires
// a free-text description.
var ProblemTypes = []string{
	"Checksum",
	"Comunicación",
	"Mecánico",
	"Eléctrico",
	"Software",
	ProblemTypeOther,
}

// ProblemTypeOther marks a problem outside the fixed categories.
const ProblemTypeOther = "Other"

// SystemUser authors changelog entries generated by the service itself.
const SystemUser = "Sistema"

// Comment is one entry of a ticket's embedded comment thread. IDs are a
// per-ticket sequence: next id = len(comments) + 1.
type Comment struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangelogEntry is one entry of a ticket's embedded audit trail. IDs follow
// the same per-ticket sequence rule as comments.
type ChangelogEntry struct {
	ID        int       `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
}

// Ticket is the aggregate for one reported fixture problem.
//
// Lifecycle invariants: Resolved implies ResolvedAt set and
// ResolutionDetails non-empty; PendingUserConfirmation implies Resolved;
// StatusCerrado implies Resolved.
type Ticket struct {
	ID               string
	ReporterName     string
	ReporterEmail    string
	Area             string
	Fixture          string
	ProblemType      string
	OtherDescription string
	Priority         Priority

	Status                  Status
	Resolved                bool
	PendingUserConfirmation bool

	AssignedToName  string
	AssignedToEmail string
	AssignedAt      *time.Time

	ResolutionDetails string
	SupportedBy       string
	ResolvedAt        *time.Time
	ExpAwarded        int
	ElapsedMs         int64

	Comments  []Comment
	Changelog []ChangelogEntry

	// IsUnregisteredSupport marks list entries synthesized from approved
	// unregistered-support records. Never persisted on a ticket row.
	IsUnregisteredSupport bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextCommentID returns the sequence id for the next comment.
func (t *Ticket) NextCommentID() int {
	return len(t.Comments) + 1
}

// NextChangelogID returns the sequence id for the next changelog entry.
func (t *Ticket) NextChangelogID() int {
	return len(t.Changelog) + 1
}

// AppendChangelog adds an audit entry with the next sequence id.
func (t *Ticket) AppendChangelog(action, user string, at time.Time) {
	t.Changelog = append(t.Changelog, ChangelogEntry{
		ID:        t.NextChangelogID(),
		Action:    action,
		Timestamp: at,
		User:      user,
	})
}

// ValidSubmitArea reports whether area is accepted for new tickets.
func ValidSubmitArea(area string) bool {
	for _, a := range SubmitAreas {
		if a == area {
			return true
		}
	}
	return false
}

// ValidArea reports whether area is known anywhere in the system.
func ValidArea(area string) bool {
	for _, a := range Areas {
		if a == area {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is one of the fixed priorities.
func ValidPriority(p Priority) bool {
	return p == PriorityAlta || p == PriorityMedia || p == PriorityBaja
}

// ValidProblemType reports whether t is an accepted problem category.
func ValidProblemType(t string) bool {
	for _, p := range ProblemTypes {
		if p == t {
			return true
		}
	}
	return false
}
