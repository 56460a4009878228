package scrape

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraping engine.
type Metrics struct {
	Registry         *prometheus.Registry
	FetchesTotal     *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	PageRetriesTotal *prometheus.CounterVec
	ProductsTotal    *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	ScrapeDuration   *prometheus.HistogramVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesnap_fetches_total",
			Help: "Total page fetches issued against source sites.",
		},
		[]string{"site", "phase"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storesnap_fetch_duration_seconds",
			Help:    "Latency of individual page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	pageRetries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesnap_page_retries_total",
			Help: "Pages re-queued because a completed fetch yielded zero items.",
		},
		[]string{"site"},
	)
	products := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesnap_products_total",
			Help: "Products emitted by extraction, before deduplication.",
		},
		[]string{"site"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesnap_errors_total",
			Help: "Scrape errors by type.",
		},
		[]string{"site", "error_type"},
	)
	scrapeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storesnap_scrape_duration_seconds",
			Help:    "End-to-end duration of one full-catalog scrape.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"site"},
	)

	registry.MustRegister(fetches, fetchDuration, pageRetries, products, errorsTotal, scrapeDuration)

	return &Metrics{
		Registry:         registry,
		FetchesTotal:     fetches,
		FetchDuration:    fetchDuration,
		PageRetriesTotal: pageRetries,
		ProductsTotal:    products,
		ErrorsTotal:      errorsTotal,
		ScrapeDuration:   scrapeDuration,
	}
}

// ObserveFetch records one fetch with its latency.
func (m *Metrics) ObserveFetch(site, phase string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(site, phase).Inc()
	m.FetchDuration.Observe(elapsed.Seconds())
}

// ObserveRetry records a page re-queued for another round.
func (m *Metrics) ObserveRetry(site string) {
	if m == nil {
		return
	}
	m.PageRetriesTotal.WithLabelValues(site).Inc()
}

// ObserveProducts records products emitted by one scrape.
func (m *Metrics) ObserveProducts(site string, n int) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(site).Add(float64(n))
}

// ObserveError records one scrape error by type.
func (m *Metrics) ObserveError(site, errType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(site, errType).Inc()
}

// ObserveScrape records the end-to-end duration of one scrape.
func (m *Metrics) ObserveScrape(site string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.WithLabelValues(site).Observe(elapsed.Seconds())
}
