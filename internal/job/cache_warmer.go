package job

import (
	"context"
	"time"

	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotRefresher re-fetches a snapshot, bypassing the cache.
type SnapshotRefresher interface {
	Refresh(ctx context.Context, symbol string) (*domain.CryptoSnapshot, error)
}

// ExpiringCache is implemented by caches that can drop expired entries.
type ExpiringCache interface {
	DeleteExpired() int
}

// CacheWarmer keeps registry snapshots warm. Each tick refreshes the next
// batch of symbols round-robin and prunes expired entries.
type CacheWarmer struct {
	tracer    trace.Tracer
	market    SnapshotRefresher
	cache     ExpiringCache
	symbols   []string
	interval  time.Duration
	batchSize int
	log       *logrus.Entry

	next int
}

// NewCacheWarmer builds a warmer over domain.KnownSymbols. store may be nil
// when the backing cache expires entries on its own.
func NewCacheWarmer(tracer trace.Tracer, market SnapshotRefresher, store ExpiringCache, intervalSecs, batchSize int) *CacheWarmer {
	if intervalSecs <= 0 {
		intervalSecs = 60
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &CacheWarmer{
		tracer:    tracer,
		market:    market,
		cache:     store,
		symbols:   domain.KnownSymbols,
		interval:  time.Duration(intervalSecs) * time.Second,
		batchSize: batchSize,
		log:       logger.WithComponent("cache-warmer"),
	}
}

// Start warms the cache immediately and then on every tick. Blocks until
// ctx is cancelled.
func (w *CacheWarmer) Start(ctx context.Context) {
	w.log.WithFields(logrus.Fields{
		"interval":   w.interval,
		"batch_size": w.batchSize,
	}).Info("cache warmer starting")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *CacheWarmer) tick(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "cache-warmer.tick")
	defer span.End()

	refreshed := w.refreshBatch(ctx)
	span.SetAttributes(attribute.Int("refreshed", refreshed))

	if w.cache != nil {
		if n := w.cache.DeleteExpired(); n > 0 {
			w.log.WithField("removed", n).Debug("pruned expired cache entries")
		}
	}
}

// refreshBatch refreshes the next batchSize symbols and returns how many
// produced a snapshot.
func (w *CacheWarmer) refreshBatch(ctx context.Context) int {
	if len(w.symbols) == 0 {
		return 0
	}
	refreshed := 0
	for i := 0; i < w.batchSize; i++ {
		if ctx.Err() != nil {
			return refreshed
		}
		symbol := w.symbols[w.next%len(w.symbols)]
		w.next++

		snap, err := w.market.Refresh(ctx, symbol)
		switch {
		case err != nil:
			w.log.WithError(err).WithField("symbol", symbol).Warn("snapshot refresh failed")
		case snap == nil:
			w.log.WithField("symbol", symbol).Warn("no provider returned a snapshot")
		default:
			refreshed++
		}
	}
	return refreshed
}
