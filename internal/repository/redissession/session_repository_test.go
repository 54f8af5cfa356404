package redissession_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository/redissession"
)

func setupRepo(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStoreAndResolve(t *testing.T) {
	ctx := context.Background()
	_, client := setupRepo(t)
	repo := redissession.NewSessionRepository(client)

	require.NoError(t, repo.Store(ctx, "sid-1", "user-1", time.Hour))

	userID, err := repo.UserID(ctx, "sid-1")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	_, client := setupRepo(t)
	repo := redissession.NewSessionRepository(client)

	_, err := repo.UserID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	_, client := setupRepo(t)
	repo := redissession.NewSessionRepository(client)

	require.NoError(t, repo.Store(ctx, "sid-1", "user-1", time.Hour))
	require.NoError(t, repo.Revoke(ctx, "sid-1"))

	_, err := repo.UserID(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRepo(t)
	repo := redissession.NewSessionRepository(client)

	require.NoError(t, repo.Store(ctx, "sid-1", "user-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.UserID(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
