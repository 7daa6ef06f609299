package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const authCodePrefix = "auth_code:"

// AuthCodeRepository keeps token pairs under one-time codes in Redis. A nil
// client makes every call fail with SERVICE_UNAVAILABLE.
type AuthCodeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAuthCodeRepository(client *redis.Client, ttl time.Duration) *AuthCodeRepository {
	return &AuthCodeRepository{client: client, ttl: ttl}
}

func (r *AuthCodeRepository) Enabled() bool {
	return r != nil && r.client != nil
}

func unavailable() error {
	return errors.New(errors.ErrCodeServiceUnavailable, "Token exchange is unavailable")
}

// Store saves pair under code until the TTL expires
func (r *AuthCodeRepository) Store(ctx context.Context, code string, pair *security.TokenPair) error {
	if !r.Enabled() {
		return unavailable()
	}

	payload, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode tokens")
	}
	if err := r.client.Set(ctx, authCodePrefix+code, payload, r.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "Token exchange is unavailable")
	}
	return nil
}

// Consume returns the pair stored under code and deletes it in the same
// round trip, so a code works once.
func (r *AuthCodeRepository) Consume(ctx context.Context, code string) (*security.TokenPair, error) {
	if !r.Enabled() {
		return nil, unavailable()
	}

	payload, err := r.client.GetDel(ctx, authCodePrefix+code).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid or expired code")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "Token exchange is unavailable")
	}

	var pair security.TokenPair
	if err := json.Unmarshal(payload, &pair); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to decode tokens")
	}
	return &pair, nil
}
