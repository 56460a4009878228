package scrape

import "regexp"

// titleDisallowed matches runs of characters outside the persistence
// allowlist: digits, latin letters, Korean jamo and syllables, a fixed
// punctuation set and whitespace. Disallowed runs are deleted, not
// replaced, so sanitization is idempotent.
var titleDisallowed = regexp.MustCompile(`[^0-9A-Za-zㄱ-ㅎㅏ-ㅣ가-힣!@#$%^&*()\-_=+\[{\]}/\\\s]+`)

// SanitizeTitle strips every character outside the allowlist.
func SanitizeTitle(title string) string {
	return titleDisallowed.ReplaceAllString(title, "")
}

// Reconcile merges per-page product lists into one canonical list: duplicate
// IDs are dropped keeping the first occurrence (products reachable from
// several categories), titles are sanitized, and negative prices clamp to
// zero. Input order is preserved.
func Reconcile(products []Product) []Product {
	seen := make(map[int64]struct{}, len(products))
	out := make([]Product, 0, len(products))

	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}

		p.Title = SanitizeTitle(p.Title)
		if p.Price < 0 {
			p.Price = 0
		}
		out = append(out, p)
	}
	return out
}

// MergePages flattens a page working set into one product list in declared
// page order.
func MergePages(pages []*Page) []Product {
	var products []Product
	for _, pg := range pages {
		products = append(products, pg.Products...)
	}
	return products
}
