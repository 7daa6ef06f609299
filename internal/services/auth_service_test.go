package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/internal/testutil"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "service_test_secret_with_at_least_32_chars"

func newAuthService(t *testing.T, client *redis.Client) (*AuthService, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)

	hash, err := security.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{UserName: "user1", Email: "user1@example.com", Password: hash}
	require.NoError(t, db.Create(user).Error)

	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewAuthCodeRepository(client, time.Minute),
		security.NewTokenManager(testSecret, 30*time.Minute, 24*time.Hour),
	)
	return svc, user
}

func TestLogin(t *testing.T) {
	svc, user := newAuthService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
		code     string
	}{
		{name: "By user name", login: "user1", password: "password123"},
		{name: "By email", login: "user1@example.com", password: "password123"},
		{name: "Wrong password", login: "user1", password: "nope", code: errors.ErrCodeUnauthorized},
		{name: "Unknown user", login: "ghost", password: "password123", code: errors.ErrCodeUnauthorized},
		{name: "Missing password", login: "user1", code: errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := svc.Login(ctx, tt.login, tt.password)
			if tt.code != "" {
				assert.True(t, errors.Is(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)

			me, err := svc.Authenticate(ctx, pair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID, me.ID)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	_, err = svc.Authenticate(ctx, "garbage")
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	orphan, err := svc.tokens.GeneratePair(uuid.New())
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, orphan.AccessToken)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	_, err = svc.Authenticate(ctx, orphan.RefreshToken)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestCodeExchange(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc, user := newAuthService(t, client)
	ctx := context.Background()

	code, err := svc.IssueCode(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, code, authCodeLength)

	pair, err := svc.ExchangeCode(ctx, "  "+code+" ")
	require.NoError(t, err)
	userID, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = svc.ExchangeCode(ctx, code)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	_, err = svc.ExchangeCode(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestCodeExchange_RedisDisabled(t *testing.T) {
	svc, user := newAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.IssueCode(ctx, user.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeServiceUnavailable))

	// Disabled wins over a missing code.
	_, err = svc.ExchangeCode(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrCodeServiceUnavailable))
}
