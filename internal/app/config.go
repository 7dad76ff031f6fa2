package app

import (
	"time"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/linker"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/envutil"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// Config carries the app-level knobs. Postgres credentials are read by the
// db package and the observability gates read their own env, so neither
// shows up here.
type Config struct {
	RedisAddr             string
	SnapshotCacheKey      string
	SnapshotCacheTTL      time.Duration
	MatcherCacheTTL       time.Duration
	LinkRoute             string
	HeadingRepairEnabled  bool
	HeadingRepairInterval time.Duration
	MetricsAddr           string
	ServiceName           string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		RedisAddr:             envutil.Str("REDIS_ADDR", ""),
		SnapshotCacheKey:      envutil.Str("SNAPSHOT_CACHE_KEY", "dictionary:snapshot"),
		SnapshotCacheTTL:      envutil.Seconds("SNAPSHOT_CACHE_TTL_SECONDS", 15*time.Minute),
		MatcherCacheTTL:       envutil.Seconds("MATCHER_CACHE_TTL_SECONDS", time.Hour),
		LinkRoute:             envutil.Str("LINK_ROUTE", linker.DefaultLinkRoute),
		HeadingRepairEnabled:  envutil.Bool("HEADING_REPAIR_ENABLED", true),
		HeadingRepairInterval: envutil.Seconds("HEADING_REPAIR_INTERVAL_SECONDS", 30*time.Second),
		MetricsAddr:           envutil.Str("METRICS_ADDR", ":9090"),
		ServiceName:           envutil.Str("SERVICE_NAME", "explainanything"),
	}
	log.Info("Config loaded",
		"redis_addr", cfg.RedisAddr,
		"link_route", cfg.LinkRoute,
		"heading_repair_enabled", cfg.HeadingRepairEnabled,
	)
	return cfg
}
