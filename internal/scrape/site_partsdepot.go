package scrape

import "fmt"

// partsDepotProfile covers the replacement-parts shop, a flat popularity
// listing without a category tree.
func partsDepotProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "partsdepot",
		Host:     extractHost(baseURL),
		PageSize: 112,
		Selectors: Selectors{
			Count:   ".item_total strong",
			Item:    "div.item_gallery div.item_box",
			Title:   "p.item_name",
			Price:   "p.item_price",
			SoldOut: "div.item_sticker .ico_soldout",
		},
		CountURL: func(entry string) string {
			return entry + "/shop/list"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/shop/list?sort=popular&page=%d", entry, num)
		},
		ProductID: idFromHrefQuery("a.item_link", "it_id"),
	}
}
