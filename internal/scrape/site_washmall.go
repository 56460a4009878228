package scrape

import "fmt"

// washMallProfile covers the car-wash supplies mall. Its category tree is
// exposed through data attributes on the sidebar anchors.
func washMallProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "washmall",
		Host:     extractHost(baseURL),
		PageSize: 40,
		Selectors: Selectors{
			Item:    "ul.goods_list li.goods_item",
			Title:   ".goods_name",
			Price:   ".goods_price",
			SoldOut: "img.soldout_icon",
		},
		Categories: &CategoryRules{
			DiscoverIDs: dataAttrIDs("a[data-cate-id]", "data-cate-id"),
			Count:       ".goods_total em",
			Title:       ".cate_title h2",
		},
		CountURL: func(entry string) string {
			return entry + "/goods/catalog"
		},
		CategoryURL: func(entry string, categoryID int) string {
			return fmt.Sprintf("%s/goods/catalog?code=%d", entry, categoryID)
		},
		PageURL: func(entry string, categoryID, num int) string {
			return fmt.Sprintf("%s/goods/catalog?code=%d&page=%d&sort=order&size=40", entry, categoryID, num)
		},
		ProductID: idFromHrefQuery("a.goods_link", "goodsNo"),
	}
}
