package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// SnapshotCache mirrors the authoritative dictionary snapshot into redis so
// render-path reads skip the full row load. The cache is ephemeral and
// version-gated: an entry is only served when it carries exactly the version
// the caller established from the store, and a colder or missing entry is a
// miss, never an error surfaced to readers.
type SnapshotCache interface {
	Get(ctx context.Context, version int64) (linking.SnapshotView, bool, error)
	Put(ctx context.Context, view linking.SnapshotView) error
	Invalidate(ctx context.Context) error
}

type cachedSnapshot struct {
	Version int64                        `json:"version"`
	Data    map[string]linking.TermEntry `json:"data"`
}

type snapshotCache struct {
	rdb *goredis.Client
	log *logger.Logger
	key string
	ttl time.Duration
}

func NewSnapshotCache(rdb *goredis.Client, baseLog *logger.Logger, key string, ttl time.Duration) SnapshotCache {
	if key == "" {
		key = "dictionary:snapshot"
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &snapshotCache{
		rdb: rdb,
		log: baseLog.With("service", "SnapshotCache"),
		key: key,
		ttl: ttl,
	}
}

func (c *snapshotCache) Get(ctx context.Context, version int64) (linking.SnapshotView, bool, error) {
	if c.rdb == nil {
		return linking.SnapshotView{}, false, nil
	}
	metrics := observability.Current()
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		metrics.IncSnapshotCache("miss")
		return linking.SnapshotView{}, false, nil
	}
	if err != nil {
		metrics.IncSnapshotCache("miss")
		return linking.SnapshotView{}, false, err
	}

	var entry cachedSnapshot
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Unreadable payloads are dropped so the next Put heals the key.
		_ = c.rdb.Del(ctx, c.key).Err()
		metrics.IncSnapshotCache("miss")
		return linking.SnapshotView{}, false, err
	}
	if entry.Version != version {
		if entry.Version < version {
			_ = c.rdb.Del(ctx, c.key).Err()
		}
		metrics.IncSnapshotCache("stale")
		err := linking.NewError(linking.CodeStaleSnapshot, "snapshot_cache.get",
			fmt.Sprintf("cached version %d, store version %d", entry.Version, version), nil)
		return linking.SnapshotView{}, false, err
	}
	metrics.IncSnapshotCache("hit")
	return linking.SnapshotView{Version: entry.Version, Data: entry.Data}, true, nil
}

func (c *snapshotCache) Put(ctx context.Context, view linking.SnapshotView) error {
	if c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(cachedSnapshot{Version: view.Version, Data: view.Data})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *snapshotCache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key).Err()
}
