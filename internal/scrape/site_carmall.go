package scrape

import "fmt"

const carMallRootCategory = 3478

// carMallProfile covers the car-accessory mall. Categories are reached
// through javascript Redirect() handlers, product details through
// ProductDetail(); both carry the numeric ID as the first argument.
func carMallProfile(baseURL string) *SiteProfile {
	return &SiteProfile{
		Name:     "carmall",
		Host:     extractHost(baseURL),
		PageSize: 100,
		Selectors: Selectors{
			Item:  "div.product_list ul li",
			Title: ".title",
			Price: ".sell_price",
		},
		Categories: &CategoryRules{
			DiscoverIDs: scriptCallIDs("Redirect"),
			Count:       ".list_top_wrap",
		},
		CountURL: func(entry string) string {
			return fmt.Sprintf("%s/product/category/category_main?pcid=%d&rootid=3439", entry, carMallRootCategory)
		},
		CategoryURL: func(entry string, categoryID int) string {
			return fmt.Sprintf("%s/product/category/category_main?pcid=%d&rootid=3439", entry, categoryID)
		},
		PageURL: func(entry string, categoryID, num int) string {
			return fmt.Sprintf("%s/product/category/category_main?pcid=%d&rootid=3439&page=%d&recodeCount=100&search.orderBy=sellCount&search.order=desc",
				entry, categoryID, num)
		},
		ProductID: idFromScriptCall("ProductDetail"),
	}
}
