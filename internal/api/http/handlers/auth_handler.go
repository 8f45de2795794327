package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/dto"
	"github.com/fixtrack/fixtrack/internal/auth"
	"github.com/fixtrack/fixtrack/internal/config"
	"github.com/fixtrack/fixtrack/internal/repository"
	"github.com/fixtrack/fixtrack/internal/service"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

// AuthHandler manages session endpoints.
type AuthHandler struct {
	cfg    config.AuthConfig
	tokens *auth.TokenManager
	users  repository.UserRepository
}

// NewAuthHandler constructs handler.
func NewAuthHandler(cfg config.AuthConfig, tokens *auth.TokenManager, users repository.UserRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, tokens: tokens, users: users}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return apperrors.NewUnauthorized("credenciales inválidas")
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("credenciales inválidas")
	}

	token, expiresAt, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"user": dto.SessionUserFromDomain(user)})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(dto.ActionResult{Success: true})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("sesión requerida")
	}
	user, err := h.users.GetByEmail(c.UserContext(), principal.Email)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"user": dto.SessionUserFromDomain(user)})
}

func actorFromPrincipal(p *auth.Principal) service.Actor {
	return service.Actor{Name: p.Name, Email: p.Email, Role: p.Role, Area: p.Area}
}
