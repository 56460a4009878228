package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kshyun328/storesnap/helpers"
	"kshyun328/storesnap/logger"
	"kshyun328/storesnap/pkg/errors"
)

// CategoryResolver discovers a site's category IDs and probes each for its
// item count before page planning.
type CategoryResolver struct {
	site        string
	concurrency int
	maxRounds   int
	backoff     time.Duration
	log         *logger.Logger
}

// NewCategoryResolver creates a resolver for one site.
func NewCategoryResolver(site string, concurrency, maxRounds int) *CategoryResolver {
	if concurrency < 1 {
		concurrency = 12
	}
	if maxRounds < 1 {
		maxRounds = 5
	}
	return &CategoryResolver{
		site:        site,
		concurrency: concurrency,
		maxRounds:   maxRounds,
		backoff:     500 * time.Millisecond,
		log:         logger.ForSite(site),
	}
}

// Resolve runs both phases: ID discovery on the root listing page, then
// count probing with bounded re-probe rounds that touch only categories
// still unresolved. Categories that never resolve leave with a
// PartialResultError alongside the resolved subset.
func (r *CategoryResolver) Resolve(ctx context.Context, f Fetcher, p *SiteProfile, entry string) ([]Category, error) {
	rootURL := p.CountURL(entry)
	doc, err := f.Fetch(ctx, rootURL)
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(p.Categories.DiscoverIDs(doc))
	if len(ids) == 0 {
		return nil, errors.NewParse(r.site, "no category IDs found on root page", nil)
	}

	categories := make([]Category, len(ids))
	for i, id := range ids {
		categories[i] = Category{ID: id, ProductAmount: CountUnknown}
	}

	backoff := r.backoff
	for round := 1; ; round++ {
		var unresolved []*Category
		for i := range categories {
			if categories[i].ProductAmount == CountUnknown {
				unresolved = append(unresolved, &categories[i])
			}
		}
		if len(unresolved) == 0 {
			return categories, nil
		}
		if round > r.maxRounds {
			return categories, errors.NewPartial(r.site, len(categories), len(unresolved),
				fmt.Sprintf("category counts still unknown after %d rounds", r.maxRounds))
		}
		if round > 1 {
			r.log.Warn().
				Int("round", round).
				Int("remaining", len(unresolved)).
				Msg("re-probing unresolved categories")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return categories, errors.NewNetwork(r.site, "category probing abandoned", ctx.Err())
			}
			backoff *= 2
		}

		r.probe(ctx, f, p, entry, unresolved)
		if err := ctx.Err(); err != nil {
			return categories, errors.NewNetwork(r.site, "category probing abandoned", err)
		}
	}
}

// probe fetches each category's listing page and parses its item count and
// display title. A failed parse leaves the count unknown for the next round.
func (r *CategoryResolver) probe(ctx context.Context, f Fetcher, p *SiteProfile, entry string, categories []*Category) {
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, c := range categories {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(cat *Category) {
			defer wg.Done()
			defer func() { <-sem }()

			doc, err := f.Fetch(ctx, p.CategoryURL(entry, cat.ID))
			if err != nil {
				return
			}

			countText := doc.Find(p.Categories.Count).First().Text()
			amount := helpers.ParseIntDefault(countText, CountUnknown)
			cat.ProductAmount = int(amount)

			if p.Categories.Title != "" {
				cat.Title = strings.TrimSpace(doc.Find(p.Categories.Title).First().Text())
			}
		}(c)
	}

	wg.Wait()
}

// dedupeIDs drops duplicate category IDs keeping first occurrence.
func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	var out []int
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
