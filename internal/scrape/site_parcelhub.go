package scrape

import "fmt"

// parcelHubProfile covers the parcel-portal's packaging storefront.
func parcelHubProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "parcelhub",
		Host:     extractHost(baseURL),
		PageSize: 40,
		Selectors: Selectors{
			Count:   "p.result-count em",
			Item:    "ul.item-list li.item-row",
			Title:   ".item-subject",
			Price:   ".item-price",
			SoldOut: "span.stock-out",
		},
		CountURL: func(entry string) string {
			return entry + "/store/items"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/store/items?sort=sell&page=%d", entry, num)
		},
		ProductID: idFromHrefQuery("a.item-link", "itemNo"),
	}
}
