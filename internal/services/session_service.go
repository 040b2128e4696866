package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"account-service/internal/models"
	"account-service/internal/repository"
)

// SessionService owns the token lifecycle: issuing pairs, rotating refresh
// tokens and revoking them on logout.
type SessionService struct {
	jwtService *JWTService
	tokenRepo  repository.TokenRepository
	userRepo   repository.IUserRepository
	roleSvc    *RoleService
}

func NewSessionService(jwtService *JWTService, tokenRepo repository.TokenRepository, userRepo repository.IUserRepository, roleSvc *RoleService) *SessionService {
	return &SessionService{
		jwtService: jwtService,
		tokenRepo:  tokenRepo,
		userRepo:   userRepo,
		roleSvc:    roleSvc,
	}
}

// IssuePair issues a fresh token pair for the user, snapshotting the
// currently active role slugs into both payloads.
func (s *SessionService) IssuePair(user *models.User) (*models.TokenPair, error) {
	slugs, err := s.roleSvc.ActiveRoleSlugs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read active roles: %w", err)
	}

	pair, err := s.jwtService.GeneratePair(user, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. Refresh tokens
// are single-use: the presented token's jti is blacklisted until its
// natural expiry before the replacement pair is issued.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.jwtService.VerifyToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	blacklisted, err := s.tokenRepo.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		return nil, models.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	if err := s.tokenRepo.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	pair, err := s.IssuePair(user)
	if err != nil {
		return nil, err
	}

	log.Printf("Refresh token rotated for user %s", user.ID)
	return pair, nil
}

// Logout blacklists the supplied refresh token. Malformed, expired and
// already-blacklisted tokens all report the same generic failure.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.VerifyToken(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return models.ErrInvalidToken
	}

	blacklisted, err := s.tokenRepo.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		return models.ErrInvalidToken
	}

	if err := s.tokenRepo.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("failed to blacklist refresh token: %w", err)
	}

	return nil
}
