package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/lumenshop/api/pkg/global"
)

// NewClient builds the shared redis client. Unlike the database pool this
// client is cheap to hold for the process lifetime; it is constructed once
// in main and injected where needed.
func NewClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
		Protocol: 2,
	})
}
