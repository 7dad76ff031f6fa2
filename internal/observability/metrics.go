package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// Metrics aggregates the process-wide instrumentation. All observe methods
// are safe on a nil receiver so call sites never have to branch on whether
// metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	resolveTotal   *prometheus.CounterVec
	resolveLatency *prometheus.HistogramVec
	resolvedLinks  *prometheus.CounterVec

	snapshotRebuilds       *prometheus.CounterVec
	snapshotRebuildLatency prometheus.Histogram
	snapshotVersion        prometheus.Gauge
	snapshotCache          *prometheus.CounterVec

	matcherBuilds       prometheus.Counter
	matcherBuildLatency prometheus.Histogram

	headingRebuilds      *prometheus.CounterVec
	headingRepairBacklog prometheus.Gauge

	pgStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		reg := prometheus.NewRegistry()
		m := &Metrics{
			registry: reg,
			apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_api_requests_total",
				Help: "Total API requests by method/route/status.",
			}, []string{"method", "route", "status"}),
			apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ea_api_request_duration_seconds",
				Help:    "API request latency in seconds by method/route/status.",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			}, []string{"method", "route", "status"}),
			apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ea_api_inflight_requests",
				Help: "In-flight API requests.",
			}),
			resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_link_resolve_total",
				Help: "Display-time link resolutions by outcome (linked/degraded/error).",
			}, []string{"outcome"}),
			resolveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ea_link_resolve_duration_seconds",
				Help:    "Link resolution latency in seconds by outcome.",
				Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			}, []string{"outcome"}),
			resolvedLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_resolved_links_total",
				Help: "Links emitted by render output, by source (term/heading).",
			}, []string{"source"}),
			snapshotRebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_snapshot_rebuild_total",
				Help: "Dictionary snapshot rebuilds by trigger (mutation/explicit/heal).",
			}, []string{"trigger"}),
			snapshotRebuildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "ea_snapshot_rebuild_duration_seconds",
				Help:    "Dictionary snapshot rebuild latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			}),
			snapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ea_snapshot_version",
				Help: "Current dictionary snapshot version.",
			}),
			snapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_snapshot_cache_total",
				Help: "Snapshot edge cache lookups by outcome (hit/miss/stale).",
			}, []string{"outcome"}),
			matcherBuilds: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ea_matcher_build_total",
				Help: "Matcher automaton compilations.",
			}),
			matcherBuildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "ea_matcher_build_duration_seconds",
				Help:    "Matcher automaton compilation latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			}),
			headingRebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ea_heading_rebuild_total",
				Help: "Heading link set rebuilds by trigger (create/repair).",
			}, []string{"trigger"}),
			headingRepairBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ea_heading_repair_backlog",
				Help: "Explanations whose heading link set is pending a rebuild.",
			}),
			pgStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "ea_postgres_stats",
				Help: "Postgres connection pool stats.",
			}, []string{"metric"}),
			redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ea_redis_up",
				Help: "Redis connectivity (1=up, 0=down).",
			}),
			redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ea_redis_ping_seconds",
				Help: "Redis ping latency in seconds.",
			}),
		}
		reg.MustRegister(
			m.apiRequests, m.apiLatency, m.apiInflight,
			m.resolveTotal, m.resolveLatency, m.resolvedLinks,
			m.snapshotRebuilds, m.snapshotRebuildLatency, m.snapshotVersion, m.snapshotCache,
			m.matcherBuilds, m.matcherBuildLatency,
			m.headingRebuilds, m.headingRepairBacklog,
			m.pgStats, m.redisUp, m.redisPing,
		)
		instance = m
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveResolve(outcome string, dur time.Duration, termLinks, headingLinks int) {
	if m == nil {
		return
	}
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	m.resolveTotal.WithLabelValues(outcome).Inc()
	m.resolveLatency.WithLabelValues(outcome).Observe(dur.Seconds())
	if termLinks > 0 {
		m.resolvedLinks.WithLabelValues("term").Add(float64(termLinks))
	}
	if headingLinks > 0 {
		m.resolvedLinks.WithLabelValues("heading").Add(float64(headingLinks))
	}
}

func (m *Metrics) ObserveSnapshotRebuild(trigger string, version int64, dur time.Duration) {
	if m == nil {
		return
	}
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = "unknown"
	}
	m.snapshotRebuilds.WithLabelValues(trigger).Inc()
	m.snapshotRebuildLatency.Observe(dur.Seconds())
	m.snapshotVersion.Set(float64(version))
}

func (m *Metrics) IncSnapshotCache(outcome string) {
	if m == nil {
		return
	}
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	m.snapshotCache.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMatcherBuild(dur time.Duration) {
	if m == nil {
		return
	}
	m.matcherBuilds.Inc()
	m.matcherBuildLatency.Observe(dur.Seconds())
}

func (m *Metrics) IncHeadingRebuild(trigger string) {
	if m == nil {
		return
	}
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = "unknown"
	}
	m.headingRebuilds.WithLabelValues(trigger).Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.pgStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.pgStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.pgStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.pgStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.pgStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := scrapeInterval()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// StartRepairBacklogCollector samples how many explanations are waiting for a
// heading link rebuild, which is also the repair worker's queue depth.
func (m *Metrics) StartRepairBacklogCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var pending int64
				if err := db.WithContext(ctx).
					Model(&types.Explanation{}).
					Where("heading_links_built_at IS NULL").
					Count(&pending).Error; err != nil {
					if log != nil {
						log.Warn("metrics: heading repair backlog query failed", "error", err)
					}
					continue
				}
				m.headingRepairBacklog.Set(float64(pending))
			}
		}
	}()
}
