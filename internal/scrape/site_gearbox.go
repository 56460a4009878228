package scrape

import "fmt"

// gearboxProfile covers the wholesale gear shop. The catalog is only
// visible to a logged-in session, so extraction runs through a driven
// browser that submits the credentials and waits for the member bar.
func gearboxProfile(baseURL, id, password string) *SiteProfile {
	return &SiteProfile{
		Name:     "gearbox",
		Host:     extractHost(baseURL),
		PageSize: 60,
		Selectors: Selectors{
			Count:   "span.total-goods",
			Item:    "div.goods-grid div.goods-cell",
			Title:   ".goods-subject",
			Price:   ".goods-amount",
			SoldOut: ".goods-soldout",
		},
		Login: &LoginRules{
			URL:           baseURL + "/member/login",
			IDField:       "input#loginId",
			PasswordField: "input#loginPwd",
			Submit:        "button.btn-login",
			Marker:        "div.member-bar",
			ID:            id,
			Password:      password,
		},
		CountURL: func(entry string) string {
			return entry + "/goods/list"
		},
		PageURL: func(entry string, _ int, num int) string {
			return fmt.Sprintf("%s/goods/list?orderBy=hit&page=%d", entry, num)
		},
		ProductID: idFromHrefQuery("a.goods-link", "goodsIdx"),
	}
}
