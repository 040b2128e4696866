package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepository tracks revoked refresh tokens by jti. A blacklisted entry
// only needs to live until the token's natural expiry, so each key carries
// that TTL and Redis reclaims it afterwards.
type TokenRepository interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

type tokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) TokenRepository {
	return &tokenRepository{client: client}
}

func (r *tokenRepository) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("token ID cannot be empty")
	}
	if ttl <= 0 {
		// Already expired; nothing to track.
		return nil
	}

	key := r.getBlacklistKey(jti)
	if err := r.client.Set(ctx, key, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (r *tokenRepository) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, fmt.Errorf("token ID cannot be empty")
	}

	key := r.getBlacklistKey(jti)
	_, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return true, nil
}

func (r *tokenRepository) getBlacklistKey(jti string) string {
	return fmt.Sprintf("token_blacklist:%s", jti)
}
