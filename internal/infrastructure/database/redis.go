package database

import (
	"context"
	"fmt"

	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis and checks the connection with PING
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
