package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestRedisStoreRevokeAndExpire(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gl")
	ctx := context.Background()

	if err := store.Revoke(ctx, "lic-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "lic-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked = %v, %v", revoked, err)
	}
	if !mr.Exists("gl:rv:lic-1") {
		t.Fatal("expected revocation key in redis")
	}

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "lic-1")
	if err != nil || revoked {
		t.Fatalf("after window IsRevoked = %v, %v", revoked, err)
	}
}

func TestRedisStoreOnlyExtendsWindow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gl")
	ctx := context.Background()

	if err := store.Revoke(ctx, "lic-2", time.Now().Add(48*time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := store.Revoke(ctx, "lic-2", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("shorter revoke: %v", err)
	}
	if ttl := mr.TTL("gl:rv:lic-2"); ttl < 47*time.Hour {
		t.Fatalf("ttl shrank to %v", ttl)
	}
}

func TestRedisStorePastDeadlineIsNoop(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "")
	ctx := context.Background()

	if err := store.Revoke(ctx, "lic-3", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mr.Exists("gl:rv:lic-3") {
		t.Fatal("expired revocation should not be stored")
	}
	if _, err := store.IsRevoked(ctx, " "); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("blank id error = %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gl")
	mr.Close()

	if err := store.Revoke(context.Background(), "lic-4", time.Now().Add(time.Hour)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("revoke error = %v, want ErrUnavailable", err)
	}
	if _, err := store.IsRevoked(context.Background(), "lic-4"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("IsRevoked error = %v, want ErrUnavailable", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Revoke(ctx, "lic-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := store.Revoke(ctx, "lic-1", now.Add(time.Second)); err != nil {
		t.Fatalf("shorter revoke: %v", err)
	}
	if err := store.Revoke(ctx, "lic-2", now); err != nil {
		t.Fatalf("past revoke: %v", err)
	}

	if revoked, _ := store.IsRevoked(ctx, "lic-1"); !revoked {
		t.Fatal("lic-1 should be revoked")
	}
	if revoked, _ := store.IsRevoked(ctx, "lic-2"); revoked {
		t.Fatal("lic-2 deadline already passed")
	}

	now = now.Add(30 * time.Second)
	if revoked, _ := store.IsRevoked(ctx, "lic-1"); !revoked {
		t.Fatal("shorter revoke must not shrink the window")
	}
	now = now.Add(time.Minute)
	if revoked, _ := store.IsRevoked(ctx, "lic-1"); revoked {
		t.Fatal("lic-1 should have expired")
	}
	if n := store.c.ItemCount(); n != 0 {
		t.Fatalf("expired entries kept: %d", n)
	}
	if err := store.Revoke(ctx, "", now.Add(time.Hour)); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("blank id error = %v", err)
	}
}
