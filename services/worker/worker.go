package worker

import (
	"context"
	"sync"
	"time"

	"kshyun328/storesnap/internal/scrape"
	"kshyun328/storesnap/logger"
	serrors "kshyun328/storesnap/pkg/errors"
	"kshyun328/storesnap/services/publisher"
	"kshyun328/storesnap/services/store"
)

// ExtractorRegistry resolves a store URL to the extractor for its site
type ExtractorRegistry interface {
	Lookup(storeURL string) (scrape.Extractor, bool)
}

// Worker drives the scrape-and-snapshot cycle for the tracked stores
type Worker struct {
	ctx      context.Context
	registry ExtractorRegistry
	store    store.SnapshotStore
	pub      publisher.Publisher
	log      *logger.Logger

	trackedStores []string
	interval      time.Duration
	hours         []int
	now           func() time.Time
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	registry ExtractorRegistry,
	st store.SnapshotStore,
	pub publisher.Publisher,
	trackedStores []string,
	interval time.Duration,
	hours []int,
) *Worker {
	return &Worker{
		ctx:           ctx,
		registry:      registry,
		store:         st,
		pub:           pub,
		log:           logger.ForComponent("worker"),
		trackedStores: trackedStores,
		interval:      interval,
		hours:         hours,
		now:           time.Now,
	}
}

// Start runs update cycles until the context is cancelled. Cycles outside
// the designated hours are skipped, not delayed.
func (w *Worker) Start() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle()
	for {
		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.runCycle()
		}
	}
}

// runCycle updates every tracked store in parallel and then trims the
// event streams
func (w *Worker) runCycle() {
	if !w.inScrapeWindow() {
		w.log.Debug().Int("hour", w.now().Hour()).Msg("outside scrape hours, skipping cycle")
		return
	}

	start := w.now()
	var wg sync.WaitGroup
	for _, storeURL := range w.trackedStores {
		wg.Add(1)
		go func(storeURL string) {
			defer wg.Done()
			if _, err := w.UpdateStore(w.ctx, storeURL); err != nil {
				w.log.WithError(err).Error().Str("store", storeURL).Msg("store update failed")
			}
		}(storeURL)
	}
	wg.Wait()

	if err := w.pub.TrimStreams(); err != nil {
		w.log.WithError(err).Error().Msg("stream trimming failed")
	}
	w.log.Info().Dur("elapsed", time.Since(start)).Int("stores", len(w.trackedStores)).Msg("update cycle finished")
}

// inScrapeWindow reports whether the current hour is a designated scrape
// hour. An empty hour list means always.
func (w *Worker) inScrapeWindow() bool {
	if len(w.hours) == 0 {
		return true
	}
	hour := w.now().Hour()
	for _, h := range w.hours {
		if h == hour {
			return true
		}
	}
	return false
}

// UpdateStore produces the snapshot for the store's current time bucket.
// If a snapshot already exists for the bucket the stored products are
// returned and no scrape happens, so re-runs inside a bucket are no-ops.
func (w *Worker) UpdateStore(ctx context.Context, storeURL string) ([]scrape.Product, error) {
	bucket := store.TimeBucket(w.now())
	log := w.log.WithFields(logger.Fields{"store": storeURL, "bucket": bucket})

	exists, err := w.store.HasSnapshot(ctx, storeURL, bucket)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Debug().Msg("snapshot already recorded, reading back")
		return w.store.ReadSnapshot(ctx, storeURL, bucket)
	}

	extractor, ok := w.registry.Lookup(storeURL)
	if !ok {
		return nil, serrors.NewConfiguration("no extractor registered for store "+storeURL, nil)
	}

	products, err := extractor.ExtractAll(ctx, storeURL)
	if err != nil {
		return nil, err
	}

	if err := w.store.WriteSnapshot(ctx, storeURL, bucket, products); err != nil {
		return nil, err
	}

	if err := w.pub.Publish(publisher.SnapshotEvent{
		StoreURL:     storeURL,
		Bucket:       bucket,
		ProductCount: len(products),
	}); err != nil {
		// The snapshot is already durable, a lost event is not fatal
		log.WithError(err).Warn().Msg("snapshot event publish failed")
	}

	log.Info().Int("products", len(products)).Str("site", extractor.Name()).Msg("snapshot written")
	return products, nil
}
