package scrape

import (
	"strconv"
	"strings"

	"kshyun328/storesnap/config"
	"kshyun328/storesnap/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Registry holds one extractor per supported source site and matches
// tracked store URLs to them by host.
type Registry struct {
	extractors []*SiteExtractor
}

// NewRegistry wires every supported site profile into an extractor sharing
// one HTTP fetcher, one Chrome launcher and one metrics registry.
func NewRegistry(cfg config.Config, cacheSvc cache.CacheService, metrics *Metrics) *Registry {
	fetcher := NewHTTPFetcher(cacheSvc, cfg.FetchTimeout, metrics)
	launcher := &ChromeLauncher{ChromePath: cfg.ChromePath}
	opts := ExtractorOptions{
		Concurrency:      cfg.FetchConcurrency,
		PageRetryRounds:  cfg.PageRetryRounds,
		ProbeRetryRounds: cfg.ProbeRetryRounds,
		Metrics:          metrics,
	}

	profiles := []*SiteProfile{
		smartstoreProfile(cfg.SmartstoreURL),
		carMallProfile(cfg.CarMallURL),
		washMallProfile(cfg.WashMallURL),
		partsDepotProfile(cfg.PartsDepotURL),
		tireLineProfile(cfg.TireLineURL),
		oilBayProfile(cfg.OilBayURL),
		gearboxProfile(cfg.GearboxURL, cfg.GearboxID, cfg.GearboxPassword),
		parcelHubProfile(cfg.ParcelHubURL),
	}

	r := &Registry{}
	for _, p := range profiles {
		r.extractors = append(r.extractors, NewSiteExtractor(p, fetcher, launcher, opts))
	}
	return r
}

// Lookup returns the extractor responsible for storeURL.
func (r *Registry) Lookup(storeURL string) (Extractor, bool) {
	host := extractHost(storeURL)
	if host == "" {
		host = storeURL
	}
	for _, e := range r.extractors {
		if strings.Contains(host, e.profile.Host) {
			return e, true
		}
	}
	return nil, false
}

// Sites returns the names of all registered site extractors.
func (r *Registry) Sites() []string {
	names := make([]string, 0, len(r.extractors))
	for _, e := range r.extractors {
		names = append(names, e.profile.Name)
	}
	return names
}

// idFromHrefTail parses the product ID from the last path segment of the
// item's anchor href, e.g. /products/12345.
func idFromHrefTail(anchor string) func(*goquery.Selection) (int64, bool) {
	return func(s *goquery.Selection) (int64, bool) {
		href, ok := findHref(s, anchor)
		if !ok {
			return 0, false
		}
		href = strings.Split(href, "?")[0]
		parts := strings.Split(strings.TrimRight(href, "/"), "/")
		return parseID(parts[len(parts)-1])
	}
}

// idFromHrefQuery parses the product ID from a query parameter of the
// item's anchor href, e.g. ?goodsNo=12345.
func idFromHrefQuery(anchor, param string) func(*goquery.Selection) (int64, bool) {
	return func(s *goquery.Selection) (int64, bool) {
		href, ok := findHref(s, anchor)
		if !ok {
			return 0, false
		}
		idx := strings.Index(href, param+"=")
		if idx < 0 {
			return 0, false
		}
		value := href[idx+len(param)+1:]
		if amp := strings.IndexByte(value, '&'); amp >= 0 {
			value = value[:amp]
		}
		return parseID(value)
	}
}

// idFromScriptCall parses the product ID out of a javascript call embedded
// in an anchor href, e.g. href="javascript:ProductDetail(12345, ...)".
func idFromScriptCall(call string) func(*goquery.Selection) (int64, bool) {
	return func(s *goquery.Selection) (int64, bool) {
		var id int64
		found := false
		s.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, ok := a.Attr("href")
			if !ok || !strings.Contains(href, call) {
				return true
			}
			arg := href[strings.Index(href, call)+len(call)+1:]
			if comma := strings.IndexAny(arg, ",)"); comma >= 0 {
				arg = arg[:comma]
			}
			if parsed, ok := parseID(arg); ok {
				id, found = parsed, true
				return false
			}
			return true
		})
		return id, found
	}
}

// scriptCallIDs scans every anchor on a page for an ID-bearing javascript
// call, e.g. href="javascript:Redirect(3478, ...)". Used for category
// discovery on sites that route through script handlers.
func scriptCallIDs(call string) func(doc *goquery.Document) []int {
	return func(doc *goquery.Document) []int {
		var ids []int
		doc.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || !strings.Contains(href, call) {
				return
			}
			arg := href[strings.Index(href, call)+len(call)+1:]
			if comma := strings.IndexAny(arg, ",)"); comma >= 0 {
				arg = arg[:comma]
			}
			if id, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil {
				ids = append(ids, id)
			}
		})
		return ids
	}
}

// dataAttrIDs collects category IDs from a data attribute on anchors.
func dataAttrIDs(selector, attr string) func(doc *goquery.Document) []int {
	return func(doc *goquery.Document) []int {
		var ids []int
		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			value, ok := a.Attr(attr)
			if !ok {
				return
			}
			if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				ids = append(ids, id)
			}
		})
		return ids
	}
}

func findHref(s *goquery.Selection, anchor string) (string, bool) {
	node := s.Find(anchor).First()
	if node.Length() == 0 {
		return "", false
	}
	href, ok := node.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return strings.TrimSpace(href), true
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
