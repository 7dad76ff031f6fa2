package app

import (
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/jobs"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/services"
)

type Services struct {
	SnapshotCache services.SnapshotCache
	Matchers      services.MatcherRegistry
	Titles        services.TitleProvider
	Dictionary    services.DictionaryService
	Overrides     services.OverrideService
	Explanations  services.ExplanationService

	// HeadingRepair is nil when HEADING_REPAIR_ENABLED is off; invalidated
	// heading links then wait for explicit regeneration calls.
	HeadingRepair *jobs.HeadingRepairWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	cache := services.NewSnapshotCache(c.Redis, log, cfg.SnapshotCacheKey, cfg.SnapshotCacheTTL)
	matchers := services.NewMatcherRegistry(log, cfg.MatcherCacheTTL)
	titles := services.NewStaticTitleProvider()

	dict := services.NewDictionaryService(db, log, r.Term, r.Alias, r.Snapshot, cache)
	overrides := services.NewOverrideService(db, log, r.Override, r.Explanation)
	expls := services.NewExplanationService(
		db, log,
		r.Explanation, r.HeadingLink, r.Override,
		overrides, dict, matchers, titles,
		cfg.LinkRoute,
	)

	var repair *jobs.HeadingRepairWorker
	if cfg.HeadingRepairEnabled {
		repair = jobs.NewHeadingRepairWorker(log, r.Explanation, expls, cfg.HeadingRepairInterval, 0, 0)
	}

	return Services{
		SnapshotCache: cache,
		Matchers:      matchers,
		Titles:        titles,
		Dictionary:    dict,
		Overrides:     overrides,
		Explanations:  expls,
		HeadingRepair: repair,
	}
}
