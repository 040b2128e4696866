package services

import (
	"fmt"
	"time"

	"account-service/internal/config"
	"account-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTService struct {
	secret          []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{
		secret:          []byte(cfg.JWTSecret),
		accessLifetime:  cfg.AccessTokenLifetime,
		refreshLifetime: cfg.RefreshTokenLifetime,
	}
}

// GeneratePair issues an access/refresh token pair. Both payloads snapshot
// the user's active role slugs at issuance time; the snapshot is display
// data only and goes stale when assignments change.
func (jwt_s *JWTService) GeneratePair(user *models.User, roles []string) (*models.TokenPair, error) {
	access, err := jwt_s.generateToken(models.TokenTypeAccess, jwt_s.accessLifetime, user, roles)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt_s.generateToken(models.TokenTypeRefresh, jwt_s.refreshLifetime, user, roles)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (jwt_s *JWTService) generateToken(tokenType string, lifetime time.Duration, user *models.User, roles []string) (string, error) {
	now := time.Now()
	claim := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			Issuer:    "account-service",
		},
		TokenType: tokenType,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString(jwt_s.secret)
	if err != nil {
		return "", fmt.Errorf("error generate token string: %s", err)
	}
	return tokenString, nil
}

// VerifyToken parses and validates a token and checks it is of the wanted
// type, so a refresh token cannot pass as an access token or vice versa.
func (jwt_s *JWTService) VerifyToken(tokenString, wantType string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwt_s.secret, nil
		},
	)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}
