package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caltman24/zaptrack/internal/api/dto"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/service"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// MembersHandler exposes registration and login.
type MembersHandler struct {
	authService *service.AuthService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(authService *service.AuthService) *MembersHandler {
	return &MembersHandler{authService: authService}
}

// Register POST /auth/register.
func (h *MembersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CompanyID == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("company_id, name, email, password required", nil)
	}

	member, token, exp, err := h.authService.Register(c.Context(), service.RegisterInput{
		CompanyID: req.CompanyID,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(member, token, exp)})
}

// Login POST /auth/login.
func (h *MembersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, token, exp, err := h.authService.Login(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(member, token, exp)})
}

func authResponse(member *domain.Member, token string, exp time.Time) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		Member: dto.MemberResponse{
			ID:        member.ID,
			CompanyID: member.CompanyID,
			Name:      member.Name,
			Email:     member.Email,
			Role:      member.Role,
		},
	}
}
