package scrape

import "fmt"

// oilBayProfile covers the engine-oil shop, a small flat listing.
func oilBayProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "oilbay",
		Host:     extractHost(baseURL),
		PageSize: 30,
		Selectors: Selectors{
			Count:   "div.list-header .count",
			Item:    "div.product-grid div.product-card",
			Title:   ".product-title",
			Price:   ".product-price",
			SoldOut: ".badge-soldout",
		},
		CountURL: func(entry string) string {
			return entry + "/products"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/products?order=best&page=%d", entry, num)
		},
		ProductID: idFromHrefTail("a.product-link"),
	}
}
