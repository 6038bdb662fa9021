// Package cache provides Redis caching for read-heavy feed lookups.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to addr (host:port or redis:// URL). It returns nil
// when addr is empty or the server is unreachable; callers run without cache.
func NewRedisClient(addr string, log logrus.FieldLogger) *redis.Client {
	if addr == "" {
		log.Info("REDIS_URL not set, running without cache")
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.WithError(err).Warn("Invalid REDIS_URL, continuing without cache")
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, continuing without cache")
		_ = client.Close()
		return nil
	}
	log.Info("Redis connected successfully")
	return client
}
