package idempotency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// --- small helpers ---

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func Test_buildKey(t *testing.T) {
	k := buildKey("PAY", strings.Repeat("a", 32))
	if k != "idemp:ledger:pay:"+strings.Repeat("a", 32) {
		t.Fatalf("buildKey = %q", k)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("lr1", "100", "b1")
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	if a != Fingerprint("lr1", "100", "b1") {
		t.Fatalf("fingerprint not deterministic")
	}
	// joined parts must not collide
	if Fingerprint("lr1", "1", "00") == Fingerprint("lr1", "10", "0") {
		t.Fatalf("fingerprint collides across part boundaries")
	}
}

func TestStore_FirstBeginClaims(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	ctx := context.Background()

	replay, err := s.Begin(ctx, "pay", "req-1", "fp")
	if err != nil || replay != nil {
		t.Fatalf("Begin: replay=%q err=%v", replay, err)
	}
	if ttl := mr.TTL(buildKey("pay", "req-1")); ttl != provisionalLockTTL {
		t.Fatalf("provisional ttl = %v, want %v", ttl, provisionalLockTTL)
	}

	// concurrent duplicate while in progress
	if _, err := s.Begin(ctx, "pay", "req-1", "fp"); !errors.Is(err, ErrInProgress) {
		t.Fatalf("want ErrInProgress, got %v", err)
	}
}

func TestStore_ReplayAfterComplete(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	ctx := context.Background()

	if _, err := s.Begin(ctx, "pay", "req-1", "fp"); err != nil {
		t.Fatal(err)
	}
	if err := s.Complete(ctx, "pay", "req-1", "fp", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if ttl := mr.TTL(buildKey("pay", "req-1")); ttl != time.Hour {
		t.Fatalf("final ttl = %v, want 1h", ttl)
	}

	replay, err := s.Begin(ctx, "pay", "req-1", "fp")
	if err != nil {
		t.Fatalf("Begin replay: %v", err)
	}
	if string(replay) != `{"ok":true}` {
		t.Fatalf("replay = %q", replay)
	}
}

func TestStore_FingerprintMismatch(t *testing.T) {
	_, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	ctx := context.Background()

	_, _ = s.Begin(ctx, "pay", "req-1", "fp-a")
	_ = s.Complete(ctx, "pay", "req-1", "fp-a", []byte(`{}`))

	if _, err := s.Begin(ctx, "pay", "req-1", "fp-b"); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("want ErrFingerprintMismatch, got %v", err)
	}
}

func TestStore_ReleaseAllowsRetry(t *testing.T) {
	_, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	ctx := context.Background()

	_, _ = s.Begin(ctx, "pay", "req-1", "fp")
	if err := s.Release(ctx, "pay", "req-1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if replay, err := s.Begin(ctx, "pay", "req-1", "fp"); err != nil || replay != nil {
		t.Fatalf("retry after release: replay=%q err=%v", replay, err)
	}
}

func TestStore_ProvisionalClaimExpires(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	ctx := context.Background()

	_, _ = s.Begin(ctx, "pay", "req-1", "fp")
	mr.FastForward(provisionalLockTTL + time.Second)

	if replay, err := s.Begin(ctx, "pay", "req-1", "fp"); err != nil || replay != nil {
		t.Fatalf("claim after expiry: replay=%q err=%v", replay, err)
	}
}

func TestStore_RedisDown(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	s := NewStore(rdb, time.Hour)
	mr.Close()

	if _, err := s.Begin(context.Background(), "pay", "req-1", "fp"); err == nil {
		t.Fatalf("expected error with redis down")
	}
}
