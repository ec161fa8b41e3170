package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/caltman24/zaptrack/internal/auth"
	"github.com/caltman24/zaptrack/internal/config"
	"github.com/caltman24/zaptrack/internal/domain"
	"github.com/caltman24/zaptrack/internal/repository"
	apperrors "github.com/caltman24/zaptrack/pkg/util"
)

// AuthService coordinates member registration and login flows.
type AuthService struct {
	members    repository.MemberRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, members repository.MemberRepository) *AuthService {
	return &AuthService{
		members:    members,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes a member registration payload.
type RegisterInput struct {
	CompanyID string
	Name      string
	Email     string
	Password  string
	Role      domain.Role
}

// Register creates a new member account and returns a bearer token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Member, string, time.Time, error) {
	if _, err := s.members.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewPersistenceFailure(err)
	}

	switch input.Role {
	case domain.RoleAdmin, domain.RoleProjectManager, domain.RoleDeveloper, domain.RoleSubmitter:
	default:
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	member := &domain.Member{
		CompanyID:    input.CompanyID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, "", time.Time{}, apperrors.NewPersistenceFailure(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(member)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return member, token, exp, nil
}

// Login authenticates a member.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Member, string, time.Time, error) {
	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewPersistenceFailure(err)
	}
	if err := auth.ComparePassword(member.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(member)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return member, token, exp, nil
}
