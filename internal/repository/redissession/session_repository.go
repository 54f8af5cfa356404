// Package redissession stores bearer-token sessions in Redis. Deleting the
// key revokes the session immediately, which keeps token validation
// revocation-aware.
package redissession

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

const keyPrefix = "session:"

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+sessionID, userID, ttl).Err()
}

func (r *sessionRepository) UserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := r.client.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	return userID, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, keyPrefix+sessionID).Err()
}
