package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/services"
)

// HeadingRepairWorker rebuilds heading title sets invalidated by edits.
// Renders never compute titles inline; an article whose heading structure
// changed waits here (or for an explicit regeneration call) with its
// built-at marker cleared.
type HeadingRepairWorker struct {
	log         *logger.Logger
	expls       repos.ExplanationRepo
	svc         services.ExplanationService
	interval    time.Duration
	batchSize   int
	concurrency int
}

func NewHeadingRepairWorker(
	baseLog *logger.Logger,
	expls repos.ExplanationRepo,
	svc services.ExplanationService,
	interval time.Duration,
	batchSize int,
	concurrency int,
) *HeadingRepairWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize < 1 {
		batchSize = 50
	}
	if concurrency < 1 {
		concurrency = 4
	}
	return &HeadingRepairWorker{
		log:         baseLog.With("component", "HeadingRepairWorker"),
		expls:       expls,
		svc:         svc,
		interval:    interval,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

func (w *HeadingRepairWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Sweep(ctx)
			}
		}
	}()
}

// Sweep processes one batch of pending articles. A failing article is
// logged and left pending for the next sweep; it never aborts the batch.
func (w *HeadingRepairWorker) Sweep(ctx context.Context) {
	ids, err := w.expls.ListIDsNeedingHeadingLinks(dbctx.Context{Ctx: ctx}, w.batchSize)
	if err != nil {
		w.log.Warn("ListIDsNeedingHeadingLinks failed", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	var repaired int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := w.svc.RegenerateHeadingLinks(gctx, id); err != nil {
				w.log.Warn("heading link rebuild failed", "explanation_id", id, "error", err)
				return nil
			}
			atomic.AddInt32(&repaired, 1)
			return nil
		})
	}
	_ = g.Wait()
	w.log.Info("heading repair sweep", "pending", len(ids), "repaired", atomic.LoadInt32(&repaired))
}
