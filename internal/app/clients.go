package app

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type Clients struct {
	Redis *goredis.Client
}

// wireClients builds the optional redis client for the snapshot edge cache.
// A missing REDIS_ADDR means no cache; an unreachable one is kept anyway,
// since go-redis reconnects and cache reads already tolerate failures.
func wireClients(log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, snapshot edge cache starts cold", "addr", cfg.RedisAddr, "error", err)
		} else {
			log.Info("Redis connected", "addr", cfg.RedisAddr)
		}
	}

	return Clients{Redis: rdb}
}
