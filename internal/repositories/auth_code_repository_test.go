package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCodeRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewAuthCodeRepository(client, 5*time.Minute)
	ctx := context.Background()
	pair := &security.TokenPair{AccessToken: "a", RefreshToken: "r"}

	require.NoError(t, repo.Store(ctx, "CODE1", pair))
	assert.Equal(t, 5*time.Minute, mr.TTL("auth_code:CODE1"))

	got, err := repo.Consume(ctx, "CODE1")
	require.NoError(t, err)
	assert.Equal(t, pair, got)

	_, err = repo.Consume(ctx, "CODE1")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestAuthCodeRepository_Expired(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewAuthCodeRepository(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, "CODE2", &security.TokenPair{AccessToken: "a"}))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Consume(ctx, "CODE2")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestAuthCodeRepository_Disabled(t *testing.T) {
	repo := NewAuthCodeRepository(nil, time.Minute)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	assert.True(t, errors.Is(repo.Store(ctx, "x", &security.TokenPair{}), errors.ErrCodeServiceUnavailable))

	_, err := repo.Consume(ctx, "x")
	assert.True(t, errors.Is(err, errors.ErrCodeServiceUnavailable))
}
