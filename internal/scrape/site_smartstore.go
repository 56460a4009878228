package scrape

import "fmt"

// smartstoreProfile covers the marketplace storefronts. Class names are
// build-generated and have to be refreshed whenever the marketplace ships a
// new frontend bundle.
func smartstoreProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "smartstore",
		Host:     extractHost(baseURL),
		PageSize: 80,
		Selectors: Selectors{
			Count:       "._3-WhDl_6j2",
			Item:        "li._3S7cLkQgzC",
			Title:       "._1Zvjahn0GA",
			Price:       "._22XUYkkUGJ",
			SoldOut:     "._1NtVbWcccv",
			SoldOutMark: "_1eB0tn9wSc",
		},
		CountURL: func(entry string) string {
			return entry + "/category/ALL"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/category/ALL/?st=POPULAR&free=false&dt=LIST&page=%d&size=80", entry, num)
		},
		ProductID: idFromHrefTail("a._1vVKEk_wsi"),
	}
}
