package domain

import "time"

// Role enumerates account roles. Authorization decisions go through the
// auth policy table, not ad hoc string comparisons.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleGerente    Role = "gerente"
	RoleIngeniero  Role = "ingeniero"
)

// User is an account. Gamification fields are meaningful for engineers but
// present on every account.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          Role
	Area          string
	Exp           int
	Level         int
	TicketsSolved int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
