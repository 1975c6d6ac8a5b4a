// Package summarycache keeps read-model snapshots in Redis as JSON.
//
// Each loan request has a generation counter. Snapshots are stored under
// the generation observed before the read that produced them, and
// Invalidate bumps the counter, so a snapshot computed before a write can
// never be served after it.
package summarycache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "ledger:summary:"
	genPrefix = "ledger:summary-gen:"

	// counters outlive every snapshot written under them
	minGenTTL = 24 * time.Hour
)

type Store[T any] struct {
	rdb    *redis.Client
	ttl    time.Duration
	genTTL time.Duration
}

func New[T any](rdb *redis.Client, ttl time.Duration) *Store[T] {
	genTTL := 2 * ttl
	if genTTL < minGenTTL {
		genTTL = minGenTTL
	}
	return &Store[T]{rdb: rdb, ttl: ttl, genTTL: genTTL}
}

func genKey(id string) string { return genPrefix + id }

func key(id string, gen int64) string {
	return keyPrefix + id + ":" + strconv.FormatInt(gen, 10)
}

// Get returns the snapshot of the current generation. A miss is reported
// as (nil, gen, false, nil); pass gen to Set.
func (s *Store[T]) Get(ctx context.Context, id string) (*T, int64, bool, error) {
	gen, err := s.generation(ctx, id)
	if err != nil {
		return nil, 0, false, err
	}
	b, err := s.rdb.Get(ctx, key(id, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		// corrupt entry: drop it and treat as a miss
		_ = s.rdb.Del(ctx, key(id, gen)).Err()
		return nil, gen, false, nil
	}
	return &v, gen, true, nil
}

// Set stores v under gen. If a writer invalidated since gen was read the
// entry is unreachable and simply expires.
func (s *Store[T]) Set(ctx context.Context, id string, gen int64, v *T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(id, gen), payload, s.ttl).Err()
}

func (s *Store[T]) Invalidate(ctx context.Context, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey(id))
		p.Expire(ctx, genKey(id), s.genTTL)
		return nil
	})
	return err
}

func (s *Store[T]) generation(ctx context.Context, id string) (int64, error) {
	n, err := s.rdb.Get(ctx, genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
