package services

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/linker"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/observability"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// MatcherRegistry hands out the compiled matcher for a snapshot version.
// Compilation is deferred to first use, deduplicated under concurrent
// renders, and keyed by version so a rebuild naturally retires the old
// automaton once its entry expires.
type MatcherRegistry interface {
	MatcherFor(view linking.SnapshotView) *linker.Matcher
}

type matcherRegistry struct {
	log   *logger.Logger
	cache *gocache.Cache
	group singleflight.Group
}

func NewMatcherRegistry(baseLog *logger.Logger, ttl time.Duration) MatcherRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &matcherRegistry{
		log:   baseLog.With("service", "MatcherRegistry"),
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (r *matcherRegistry) MatcherFor(view linking.SnapshotView) *linker.Matcher {
	key := fmt.Sprintf("v%d", view.Version)
	if hit, ok := r.cache.Get(key); ok {
		return hit.(*linker.Matcher)
	}

	built, _, _ := r.group.Do(key, func() (interface{}, error) {
		if hit, ok := r.cache.Get(key); ok {
			return hit, nil
		}
		start := time.Now()
		terms := make([]string, 0, len(view.Data))
		for term := range view.Data {
			terms = append(terms, term)
		}
		m := linker.NewMatcher(terms)
		r.cache.Set(key, m, gocache.DefaultExpiration)
		observability.Current().ObserveMatcherBuild(time.Since(start))
		r.log.Debug("matcher compiled",
			"version", view.Version,
			"terms", m.Size(),
			"took", time.Since(start))
		return m, nil
	})
	return built.(*linker.Matcher)
}
