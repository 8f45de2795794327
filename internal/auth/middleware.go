package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/repository"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the request-scoped identity derived from the session cookie.
type Principal struct {
	ID    string
	Email string
	Name  string
	Role  domain.Role
	Area  string
}

// AuthMiddleware validates session cookies and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	cookie := c.Cookies(m.cookieName)
	if cookie == "" {
		return apperrors.NewUnauthorized("sesión requerida")
	}

	claims, err := m.tokens.ParseToken(cookie)
	if err != nil {
		return apperrors.NewUnauthorized("sesión inválida")
	}

	// The account record wins over claims for mutable fields (role, area),
	// so a role change takes effect before the cookie expires.
	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("usuario no encontrado")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Area:  user.Area,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireAction ensures the principal's role may perform the action.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("sesión requerida")
		}
		if !Can(principal.Role, action) {
			return apperrors.NewForbidden("rol sin permiso para esta acción")
		}
		return c.Next()
	}
}
