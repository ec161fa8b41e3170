package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/repository"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated member.
type Principal struct {
	Member *domain.Member
}

// Middleware validates bearer tokens and loads the acting member.
type Middleware struct {
	tokens  *TokenManager
	members repository.MemberRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, members repository.MemberRepository) *Middleware {
	return &Middleware{tokens: tokens, members: members}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	member, err := m.members.GetByID(c.Context(), claims.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("member not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Member: member})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated member.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
