// Package redis opens the go-redis client shared by the key-value store,
// session records and the rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/Alijeyrad/mindcare_backend/config"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultDialTimeout  = 5 * time.Second
	defaultIOTimeout    = 3 * time.Second
)

// Options maps the redis config section onto client options. Zero pool sizes
// and timeouts fall back to the package defaults.
func Options(c config.RedisConfig) *goredis.Options {
	return &goredis.Options{
		Addr:         c.Addr,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     lo.CoalesceOrEmpty(c.PoolSize, defaultPoolSize),
		MinIdleConns: lo.CoalesceOrEmpty(c.MinIdleConns, defaultMinIdleConns),
		DialTimeout:  secondsOr(c.DialTimeoutSeconds, defaultDialTimeout),
		ReadTimeout:  secondsOr(c.ReadTimeoutSeconds, defaultIOTimeout),
		WriteTimeout: secondsOr(c.WriteTimeoutSeconds, defaultIOTimeout),
	}
}

// NewRedisFromCentral connects and pings once so a bad address fails startup
// instead of the first request.
func NewRedisFromCentral(c config.RedisConfig) (*goredis.Client, error) {
	if c.Addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}
	rdb := goredis.NewClient(Options(c))

	ctx, cancel := context.WithTimeout(context.Background(), secondsOr(c.DialTimeoutSeconds, defaultDialTimeout))
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func secondsOr(n int, def time.Duration) time.Duration {
	return lo.Ternary(n > 0, time.Duration(n)*time.Second, def)
}
