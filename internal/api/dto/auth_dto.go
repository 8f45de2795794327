package dto

import "github.com/fixtrack/fixtrack/internal/domain"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionUser describes the authenticated user.
type SessionUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Area          string `json:"area,omitempty"`
	Exp           int    `json:"exp"`
	Level         int    `json:"level"`
	TicketsSolved int    `json:"ticketsSolved"`
}

// SessionUserFromDomain maps a user record to its session shape.
func SessionUserFromDomain(user *domain.User) SessionUser {
	return SessionUser{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          string(user.Role),
		Area:          user.Area,
		Exp:           user.Exp,
		Level:         user.Level,
		TicketsSolved: user.TicketsSolved,
	}
}
