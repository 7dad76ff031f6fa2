package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

func TestSnapshotCacheWithoutRedisIsInert(t *testing.T) {
	cache := NewSnapshotCache(nil, testutil.Logger(t), "", 0)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, 3); ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if err := cache.Put(ctx, linking.SnapshotView{Version: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}

// redisCache connects to a real redis when TEST_REDIS_ADDR is set, under a
// per-test key so runs never collide.
func redisCache(t *testing.T) (SnapshotCache, *goredis.Client, string) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: 5 * time.Second})
	t.Cleanup(func() { _ = rdb.Close() })

	key := fmt.Sprintf("test:dictionary:snapshot:%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = rdb.Del(context.Background(), key).Err() })
	return NewSnapshotCache(rdb, testutil.Logger(t), key, time.Minute), rdb, key
}

func TestSnapshotCacheServesMatchingVersion(t *testing.T) {
	cache, _, _ := redisCache(t)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, 5); ok || err != nil {
		t.Fatalf("Get on empty key: ok=%v err=%v", ok, err)
	}

	view := linking.SnapshotView{Version: 5, Data: map[string]linking.TermEntry{
		"softmax": {CanonicalTerm: "Softmax", StandaloneTitle: "Softmax Function"},
	}}
	if err := cache.Put(ctx, view); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(ctx, 5)
	if !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Version != 5 || got.Data["softmax"].StandaloneTitle != "Softmax Function" {
		t.Fatalf("Get payload: %+v", got)
	}
}

func TestSnapshotCacheDropsStaleEntry(t *testing.T) {
	cache, rdb, key := redisCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, linking.SnapshotView{Version: 5}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// The store has moved on; the colder entry is a miss and gets deleted.
	_, ok, err := cache.Get(ctx, 6)
	if ok {
		t.Fatalf("stale entry served")
	}
	if linking.CodeOf(err) != linking.CodeStaleSnapshot {
		t.Fatalf("stale code: want=%s got=%v", linking.CodeStaleSnapshot, err)
	}
	if exists, err := rdb.Exists(ctx, key).Result(); err != nil || exists != 0 {
		t.Fatalf("stale entry not deleted: exists=%d err=%v", exists, err)
	}
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	cache, _, _ := redisCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, linking.SnapshotView{Version: 9}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, 9); ok {
		t.Fatalf("entry survived invalidate")
	}
}
