package scrape

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"kshyun328/storesnap/helpers"
	"kshyun328/storesnap/logger"
	"kshyun328/storesnap/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// SiteExtractor is the generic extraction pipeline: count probe → page plan
// → reconciled fetch → item mapping → dedup. Everything site-specific lives
// in the SiteProfile.
type SiteExtractor struct {
	profile    *SiteProfile
	fetcher    Fetcher
	launcher   SessionLauncher
	reconciler *Reconciler
	resolver   *CategoryResolver
	metrics    *Metrics
	log        *logger.Logger
}

// ExtractorOptions tunes the shared pipeline behavior.
type ExtractorOptions struct {
	Concurrency      int
	PageRetryRounds  int
	ProbeRetryRounds int
	Metrics          *Metrics
}

// NewSiteExtractor builds an extractor for one site profile. launcher is
// required only for profiles with Login set.
func NewSiteExtractor(profile *SiteProfile, fetcher Fetcher, launcher SessionLauncher, opts ExtractorOptions) *SiteExtractor {
	return &SiteExtractor{
		profile:    profile,
		fetcher:    fetcher,
		launcher:   launcher,
		reconciler: NewReconciler(profile.Name, opts.Concurrency, opts.PageRetryRounds, opts.Metrics),
		resolver:   NewCategoryResolver(profile.Name, opts.Concurrency, opts.ProbeRetryRounds),
		metrics:    opts.Metrics,
		log:        logger.ForSite(profile.Name),
	}
}

// Name returns the site name for logging and identification
func (e *SiteExtractor) Name() string {
	return e.profile.Name
}

// ExtractAll scrapes the full catalog behind entry. A failure anywhere
// rejects the whole call; no partial product list is ever returned.
func (e *SiteExtractor) ExtractAll(ctx context.Context, entry string) ([]Product, error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveScrape(e.profile.Name, time.Since(start))
	}()

	fetcher := e.fetcher
	if e.profile.Login != nil {
		// The browser session is exclusive to this call and is released on
		// every exit path.
		session, release, err := e.launcher.Launch(ctx, e.profile.Login)
		if err != nil {
			e.metrics.ObserveError(e.profile.Name, string(errors.ErrorTypeLogin))
			return nil, err
		}
		defer release()
		fetcher = session
	}

	pages, err := e.planPages(ctx, fetcher, entry)
	if err != nil {
		e.observeErr(err)
		return nil, err
	}

	fetch := func(ctx context.Context, pg *Page) error {
		return e.fetchPage(ctx, fetcher, entry, pg)
	}
	if err := e.reconciler.FetchAllPages(ctx, pages, fetch); err != nil {
		e.observeErr(err)
		return nil, err
	}

	products := Reconcile(MergePages(pages))
	e.metrics.ObserveProducts(e.profile.Name, len(products))

	e.log.Info().
		Int("pages", len(pages)).
		Int("products", len(products)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog extracted")

	return products, nil
}

// planPages determines the fetch working set, per category when the site
// has a taxonomy, from a single count probe otherwise.
func (e *SiteExtractor) planPages(ctx context.Context, fetcher Fetcher, entry string) ([]*Page, error) {
	if e.profile.Categories == nil {
		total, err := e.probeCount(ctx, fetcher, entry)
		if err != nil {
			return nil, err
		}
		return PlanPages(0, "", total, e.profile.PageSize), nil
	}

	categories, err := e.resolver.Resolve(ctx, fetcher, e.profile, entry)
	if err != nil {
		return nil, err
	}

	var pages []*Page
	for _, c := range categories {
		pages = append(pages, PlanPages(c.ID, c.Title, c.ProductAmount, e.profile.PageSize)...)
	}
	return pages, nil
}

// probeCount fetches the count page and parses the total item count.
// The count element is load-bearing for flat-listing sites.
func (e *SiteExtractor) probeCount(ctx context.Context, fetcher Fetcher, entry string) (int, error) {
	doc, err := fetcher.Fetch(ctx, e.profile.CountURL(entry))
	if err != nil {
		return 0, err
	}

	countText := doc.Find(e.profile.Selectors.Count).First().Text()
	total := helpers.ParseIntDefault(countText, CountUnknown)
	if total <= 0 {
		return 0, errors.NewParse(e.profile.Name, "item count element missing or unparsable", nil)
	}
	return int(total), nil
}

// fetchPage retrieves one listing page and maps its item nodes.
func (e *SiteExtractor) fetchPage(ctx context.Context, fetcher Fetcher, entry string, pg *Page) error {
	doc, err := fetcher.Fetch(ctx, e.profile.PageURL(entry, pg.CategoryID, pg.Num))
	if err != nil {
		return err
	}
	pg.Products = e.parseItems(doc, pg)
	return nil
}

// parseItems maps each item node of a listing page into a Product. The
// popularity index is computed from the page's declared number, never from
// fetch-completion order, so it stays deterministic under concurrency.
func (e *SiteExtractor) parseItems(doc *goquery.Document, pg *Page) []Product {
	sel := e.profile.Selectors
	var products []Product

	doc.Find(sel.Item).Each(func(i int, s *goquery.Selection) {
		id, ok := e.profile.ProductID(s)
		if !ok {
			return
		}

		title := strings.TrimSpace(s.Find(sel.Title).First().Text())
		if title == "" {
			return
		}

		// A missing price node defaults to zero rather than erroring.
		price := helpers.ParseIntDefault(s.Find(sel.Price).First().Text(), 0)

		products = append(products, Product{
			ID:              id,
			Title:           title,
			Price:           price,
			PopularityIndex: (pg.Num-1)*e.profile.PageSize + i,
			IsSoldOut:       e.soldOut(s),
			Category:        pg.Category,
		})
	})

	return products
}

// soldOut checks the item node for the site's sold-out marker. An absent
// node defaults to false.
func (e *SiteExtractor) soldOut(s *goquery.Selection) bool {
	sel := e.profile.Selectors
	if sel.SoldOut == "" {
		return false
	}

	node := s.Find(sel.SoldOut).First()
	if node.Length() == 0 {
		return false
	}
	if sel.SoldOutMark == "" {
		return true
	}

	// Some sites bury the marker class in nested child nodes.
	html, err := node.Html()
	if err != nil {
		return false
	}
	return strings.Contains(html, sel.SoldOutMark)
}

func (e *SiteExtractor) observeErr(err error) {
	var serr *errors.ScrapeError
	if stderrors.As(err, &serr) {
		e.metrics.ObserveError(e.profile.Name, string(serr.Type))
		return
	}
	var perr *errors.PartialResultError
	if stderrors.As(err, &perr) {
		e.metrics.ObserveError(e.profile.Name, string(errors.ErrorTypePartial))
		return
	}
	e.metrics.ObserveError(e.profile.Name, "unknown")
}
