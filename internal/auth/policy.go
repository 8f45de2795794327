package auth

import "github.com/fixtrack/fixtrack/internal/domain"

// Action names a guarded operation. Permissions are decided once, here,
// instead of role-string comparisons scattered across services.
type Action string

const (
	ActionSubmitTicket      Action = "ticket.submit"
	ActionAssignTicket      Action = "ticket.assign"
	ActionCommentTicket     Action = "ticket.comment"
	ActionResolveTicket     Action = "ticket.resolve"
	ActionConfirmTicket     Action = "ticket.confirm"
	ActionCloseTicket       Action = "ticket.close"
	ActionDeleteTicket      Action = "ticket.delete"
	ActionReviewSupport     Action = "support.review"
	ActionSubmitSupport     Action = "support.submit"
	ActionReviewExtraTime   Action = "extratime.review"
	ActionRequestExtraTime  Action = "extratime.request"
	ActionDeleteExtraTime   Action = "extratime.delete"
	ActionPublishChangelog  Action = "changelog.publish"
	ActionViewEngineerStats Action = "stats.view"
)

var policy = map[Action][]domain.Role{
	ActionSubmitTicket:      {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente, domain.RoleIngeniero},
	ActionAssignTicket:      {domain.RoleAdmin, domain.RoleGerente, domain.RoleIngeniero},
	ActionCommentTicket:     {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente, domain.RoleIngeniero},
	ActionResolveTicket:     {domain.RoleAdmin, domain.RoleGerente, domain.RoleIngeniero},
	ActionConfirmTicket:     {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente, domain.RoleIngeniero},
	ActionCloseTicket:       {domain.RoleAdmin, domain.RoleGerente},
	ActionDeleteTicket:      {domain.RoleAdmin, domain.RoleGerente},
	ActionReviewSupport:     {domain.RoleAdmin, domain.RoleGerente},
	ActionSubmitSupport:     {domain.RoleIngeniero},
	ActionReviewExtraTime:   {domain.RoleAdmin, domain.RoleGerente},
	ActionRequestExtraTime:  {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente},
	ActionDeleteExtraTime:   {domain.RoleAdmin, domain.RoleGerente},
	ActionPublishChangelog:  {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente},
	ActionViewEngineerStats: {domain.RoleAdmin, domain.RoleSupervisor, domain.RoleGerente, domain.RoleIngeniero},
}

// Can reports whether the role may perform the action.
func Can(role domain.Role, action Action) bool {
	for _, allowed := range policy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
