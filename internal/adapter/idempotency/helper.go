package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fingerprint hashes the parts of a command that must match on replay.
func Fingerprint(parts ...string) string {
	s := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(s[:])
}

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(scope, requestID string) string {
	return "idemp:ledger:" + strings.ToLower(scope) + ":" + requestID
}

// ---- Redis helpers ----
func provisionalSet(ctx context.Context, rdb *redis.Client, key string, e entry) (bool, error) {
	payload, _ := json.Marshal(e)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (entry, error) {
	var e entry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, e entry, ttl time.Duration) error {
	payload, _ := json.Marshal(e)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
