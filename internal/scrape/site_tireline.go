package scrape

import "fmt"

// tireLineProfile covers the tire shop. Largest page size of the roster;
// the listing renders the sold-out state as an alt-texted badge image.
func tireLineProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "tireline",
		Host:     extractHost(baseURL),
		PageSize: 120,
		Selectors: Selectors{
			Count:   "span.prd-count",
			Item:    "ul.prd-list > li",
			Title:   "strong.prd-name",
			Price:   "span.prd-price",
			SoldOut: "img[alt='품절']",
		},
		CountURL: func(entry string) string {
			return entry + "/product/list.html"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/product/list.html?sort_method=6&page=%d", entry, num)
		},
		ProductID: idFromHrefQuery("a.prd-link", "product_no"),
	}
}
