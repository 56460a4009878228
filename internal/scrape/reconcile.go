package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kshyun328/storesnap/logger"
	"kshyun328/storesnap/pkg/errors"
)

// fetchPageFunc performs one page fetch and fills page.Products.
type fetchPageFunc func(ctx context.Context, page *Page) error

// PageCount returns ceil(totalItems / pageSize).
func PageCount(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// PlanPages builds the fetch working set for one category (or for the whole
// catalog when the site has no taxonomy; pass categoryID 0).
func PlanPages(categoryID int, categoryLabel string, totalItems, pageSize int) []*Page {
	pages := make([]*Page, 0, PageCount(totalItems, pageSize))
	for num := 1; num <= PageCount(totalItems, pageSize); num++ {
		pages = append(pages, &Page{CategoryID: categoryID, Num: num, Category: categoryLabel})
	}
	return pages
}

// Reconciler drives many concurrent page fetches and re-issues pages that
// came back empty until the whole working set is satisfied or the retry
// budget runs out.
type Reconciler struct {
	site        string
	concurrency int
	maxRounds   int
	backoff     time.Duration
	metrics     *Metrics
	log         *logger.Logger
}

// NewReconciler creates a reconciler for one site.
func NewReconciler(site string, concurrency, maxRounds int, metrics *Metrics) *Reconciler {
	if concurrency < 1 {
		concurrency = 12
	}
	if maxRounds < 1 {
		maxRounds = 3
	}
	return &Reconciler{
		site:        site,
		concurrency: concurrency,
		maxRounds:   maxRounds,
		backoff:     500 * time.Millisecond,
		metrics:     metrics,
		log:         logger.ForSite(site),
	}
}

// FetchAllPages fetches every page in the working set. Pages are planned
// from a declared item count, so every page expects at least one item; a
// page that completes with zero items (or an error) is re-queued into the
// next round. Completion order is unspecified; results land in place keyed
// by the page's declared number, so the final ordering never depends on
// which fetch finished first.
//
// Returns a PartialResultError when pages are still empty after maxRounds.
func (r *Reconciler) FetchAllPages(ctx context.Context, pages []*Page, fetch fetchPageFunc) error {
	if len(pages) == 0 {
		return nil
	}

	pending := pages
	backoff := r.backoff

	for round := 1; ; round++ {
		r.runRound(ctx, pending, fetch)
		if err := ctx.Err(); err != nil {
			return errors.NewNetwork(r.site, "scrape abandoned", err)
		}

		var next []*Page
		for _, p := range pending {
			if len(p.Products) == 0 {
				next = append(next, p)
			}
		}
		if len(next) == 0 {
			return nil
		}
		if round >= r.maxRounds {
			return errors.NewPartial(r.site, len(pages), len(next),
				fmt.Sprintf("pages still empty after %d rounds", round))
		}

		for range next {
			r.metrics.ObserveRetry(r.site)
		}
		r.log.Warn().
			Int("round", round).
			Int("remaining", len(next)).
			Msg("re-queueing empty pages")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return errors.NewNetwork(r.site, "scrape abandoned", ctx.Err())
		}
		backoff *= 2
		pending = next
	}
}

// runRound fetches the given pages through a bounded worker pool.
func (r *Reconciler) runRound(ctx context.Context, pages []*Page, fetch fetchPageFunc) {
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(pg *Page) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := fetch(ctx, pg); err != nil {
				// Errored fetches count as empty and ride the retry rounds.
				pg.Products = nil
				r.log.Debug().
					Err(err).
					Int("category", pg.CategoryID).
					Int("page", pg.Num).
					Msg("page fetch failed")
			}
		}(p)
	}

	wg.Wait()
}
