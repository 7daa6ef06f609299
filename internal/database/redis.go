package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/kudos/internal/config"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without error when Redis is disabled; features
// that depend on it answer 503 in that case.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.RedisEnabled {
		logger.Info("Redis disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected", "addr", opts.Addr)
	return client, nil
}
