package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 5 * time.Second
	// ledger commands never block on redis for long; a slow cache is skipped
	opTimeout = 500 * time.Millisecond
)

// OpenRedis connects and pings; the caller owns Close.
func OpenRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  pingTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
