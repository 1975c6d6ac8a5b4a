// Package idempotency remembers the outcome of commands keyed by a caller
// supplied request id so a retried command is answered, not re-executed.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// How long the "in-progress" marker lives if the owner never finishes.
const provisionalLockTTL = 60 * time.Second

var (
	ErrInProgress          = errors.New("request is already in progress")
	ErrFingerprintMismatch = errors.New("request id reused with a different command")
)

type entry struct {
	InProgress  bool      `json:"in_progress"`
	Fingerprint string    `json:"fingerprint"`
	Result      []byte    `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

// Begin claims the request id. It returns (nil, nil) when the caller should
// run the command, or the stored result of an earlier identical command.
func (s *Store) Begin(ctx context.Context, scope, requestID, fingerprint string) ([]byte, error) {
	key := buildKey(scope, requestID)
	ok, err := provisionalSet(ctx, s.rdb, key, entry{
		InProgress:  true,
		Fingerprint: fingerprint,
		CreatedAt:   nowUTC(),
	})
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	cur, err := loadEntry(ctx, s.rdb, key)
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; claim again
		return s.Begin(ctx, scope, requestID, fingerprint)
	}
	if err != nil {
		return nil, err
	}
	if cur.Fingerprint != "" && cur.Fingerprint != fingerprint {
		return nil, ErrFingerprintMismatch
	}
	if !cur.InProgress && len(cur.Result) > 0 {
		return cur.Result, nil
	}
	return nil, ErrInProgress
}

// Complete stores the command's result for replay until the TTL runs out.
func (s *Store) Complete(ctx context.Context, scope, requestID, fingerprint string, result []byte) error {
	return saveFinal(ctx, s.rdb, buildKey(scope, requestID), entry{
		Fingerprint: fingerprint,
		Result:      result,
		CreatedAt:   nowUTC(),
	}, s.ttl)
}

// Release drops the claim after a failed command so it can be retried.
func (s *Store) Release(ctx context.Context, scope, requestID string) error {
	return s.rdb.Del(ctx, buildKey(scope, requestID)).Err()
}
