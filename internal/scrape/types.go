package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// CountUnknown marks a category whose item count has not been probed yet,
// or whose count element could not be parsed.
const CountUnknown = -1

// Product is one catalog item as observed at a specific scrape moment.
// It is constructed once by an extractor and never mutated afterwards.
type Product struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Price           int64  `json:"price"`
	PopularityIndex int    `json:"popularity_index"`
	IsSoldOut       bool   `json:"is_sold_out"`
	Category        string `json:"category,omitempty"`
}

// Category is one node of a site's category taxonomy.
type Category struct {
	ID            int
	Title         string
	ProductAmount int
}

// Page is one unit of fetch work. Products stays empty until a fetch
// completes; emptiness after a completed fetch is the retry signal.
type Page struct {
	CategoryID int
	Num        int // 1-based, as declared by the site's pager
	Category   string
	Products   []Product
}

// Fetcher retrieves a URL and parses the body into a queryable document.
// Malformed HTML degrades to a best-effort tree; callers must defend
// against missing nodes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Extractor is the contract the scheduler works against.
type Extractor interface {
	// ExtractAll scrapes the full catalog behind entry and returns it as
	// normalized products.
	ExtractAll(ctx context.Context, entry string) ([]Product, error)

	// Name returns the site name for logging and identification
	Name() string
}

// Selectors contains the CSS selectors a site profile uses to map listing
// markup into products.
type Selectors struct {
	Count       string // element carrying the total item count
	Item        string // one product node in a listing page
	Title       string
	Price       string
	SoldOut     string // optional node checked for the sold-out marker
	SoldOutMark string // class searched inside the SoldOut node; empty means node presence is the marker
}

// CategoryRules describes how a category-taxonomy site exposes its tree.
type CategoryRules struct {
	// DiscoverIDs scans the root listing page for ID-bearing anchors and
	// returns the raw (possibly duplicated) category IDs.
	DiscoverIDs func(doc *goquery.Document) []int

	Count string // item-count element on a category listing page
	Title string // optional display title element
}

// LoginRules describes the browser-automation login sequence for sites
// that gate their catalog behind a session.
type LoginRules struct {
	URL           string
	IDField       string
	PasswordField string
	Submit        string
	Marker        string // element that appears only after a successful login
	ID            string
	Password      string
}

// SiteProfile parameterizes the generic extraction pipeline for one source
// site: URL scheme, page geometry and markup selectors.
type SiteProfile struct {
	Name     string
	Host     string // host fragment used to match tracked store URLs
	PageSize int

	Selectors  Selectors
	Categories *CategoryRules // nil for flat-listing sites
	Login      *LoginRules    // nil for sites reachable over plain GET

	// CountURL returns the URL probed for the total item count.
	CountURL func(entry string) string
	// PageURL returns the URL of one listing page. categoryID is zero for
	// flat-listing sites.
	PageURL func(entry string, categoryID, num int) string
	// CategoryURL returns the listing URL probed for a category's count.
	// Required when Categories is set.
	CategoryURL func(entry string, categoryID int) string
	// ProductID extracts the site-assigned product ID from one item node.
	ProductID func(s *goquery.Selection) (int64, bool)
}
