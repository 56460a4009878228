package scrape

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"kshyun328/storesnap/helpers"
	"kshyun328/storesnap/pkg/errors"
	"kshyun328/storesnap/services/cache"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// DomainLimiter provides per-host rate limiting so that a scrape with a
// large page fan-out does not hammer one origin.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter that allows requestsPerSecond per host
// with the given burst capacity.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	if burst <= 0 {
		burst = 10
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until a request to urlStr may proceed or ctx is cancelled.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	host := extractHost(urlStr)
	if host == "" {
		// Invalid URL, let it proceed (will fail elsewhere)
		return nil
	}
	return dl.getLimiter(host).Wait(ctx)
}

func (dl *DomainLimiter) getLimiter(host string) *rate.Limiter {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, ok := dl.limiters[host]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = limiter
	return limiter
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

// HTTPFetcher fetches documents over plain HTTPS with a randomized client
// identity, per-host rate limiting, a per-fetch timeout, and a memcache
// backed block list for origins that answered with a rate-limit status.
type HTTPFetcher struct {
	limiter  *DomainLimiter
	cacheSvc cache.CacheService
	blockTTL time.Duration
	timeout  time.Duration
	metrics  *Metrics
}

// NewHTTPFetcher creates an HTTP fetcher. cacheSvc and metrics may be nil.
func NewHTTPFetcher(cacheSvc cache.CacheService, timeout time.Duration, metrics *Metrics) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		limiter:  NewDomainLimiter(5.0, 10),
		cacheSvc: cacheSvc,
		blockTTL: 500 * time.Second,
		timeout:  timeout,
		metrics:  metrics,
	}
}

// Fetch retrieves url and parses it into a goquery document.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*goquery.Document, error) {
	host := extractHost(urlStr)

	// An origin that rate limited us recently stays blocked for blockTTL.
	if f.cacheSvc != nil && host != "" {
		if _, err := f.cacheSvc.Get(blockKey(host)); err == nil {
			return nil, errors.NewRateLimit(host, f.blockTTL)
		}
	}

	if err := f.limiter.Wait(ctx, urlStr); err != nil {
		return nil, errors.NewNetwork(host, "rate limiter wait aborted", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	body, err := helpers.FetchWithRandomHeaders(fetchCtx, urlStr)
	f.metrics.ObserveFetch(host, "get", time.Since(start))
	if err != nil {
		if rl, ok := err.(*helpers.ErrRateLimited); ok {
			if f.cacheSvc != nil && host != "" {
				f.cacheSvc.Set(blockKey(host), []byte(rl.RetryAfter), f.blockTTL)
			}
			return nil, errors.NewRateLimit(host, f.blockTTL)
		}
		return nil, errors.NewNetwork(host, fmt.Sprintf("fetching %s", urlStr), err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParse(host, "building document tree", err)
	}
	return doc, nil
}

func blockKey(host string) string {
	return host + "_blocked"
}
