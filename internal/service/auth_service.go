package service

import (
	"context"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/config"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Verify re-reads the user behind an already-validated token, so a
	// deactivated account fails verification even before its token expires.
	Verify(ctx context.Context, p Principal) (*dto.VerifyResponse, error)
}

type authService struct {
	repo  repository.UserRepository
	cfg   *config.Config
	clock Clock
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config, clock Clock) AuthService {
	return &authService{repo: repo, cfg: cfg, clock: clock}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apierror.Forbidden("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Forbidden("Invalid credentials")
	}
	if !user.IsActive {
		return nil, apierror.Forbidden("Account is deactivated")
	}

	token, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apierror.Storage(err)
	}

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: s.cfg.JWTExpirationHours * 3600,
		User:      userToResponse(user),
	}, nil
}

func (s *authService) Verify(ctx context.Context, p Principal) (*dto.VerifyResponse, error) {
	user, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil || !user.IsActive {
		return nil, apierror.Forbidden("Account not found or deactivated")
	}
	return &dto.VerifyResponse{
		Valid: true,
		User:  userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	if user.SupplierID != nil {
		claims["supplier_id"] = user.SupplierID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
