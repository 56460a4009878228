package scrape

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"kshyun328/storesnap/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

func testFlatProfile(pageSize int) *SiteProfile {
	return &SiteProfile{
		Name:     "smartstore",
		Host:     "smartstore.example.com",
		PageSize: pageSize,
		Selectors: Selectors{
			Count:       ".total_count",
			Item:        "li.product",
			Title:       ".title",
			Price:       ".price",
			SoldOut:     ".badge_area",
			SoldOutMark: "soldout_mark",
		},
		CountURL: func(entry string) string {
			return entry + "/category/ALL"
		},
		PageURL: func(entry string, categoryID, num int) string {
			return fmt.Sprintf("%s/category/ALL?page=%d", entry, num)
		},
		ProductID: idFromHrefTail("a.product_link"),
	}
}

func productItemHTML(id int, title string, price string, soldOut bool) string {
	badge := ""
	if soldOut {
		badge = `<div class="badge_area"><span class="soldout_mark">품절</span></div>`
	}
	return fmt.Sprintf(`<li class="product">
<a class="product_link" href="/products/%d"></a>
<span class="title">%s</span>
<span class="price">%s</span>
%s
</li>`, id, title, price, badge)
}

func listingPageHTML(items ...string) string {
	return `<html><body><ul>` + strings.Join(items, "\n") + `</ul></body></html>`
}

func countPageHTML(count string) string {
	return `<html><body><span class="total_count">` + count + `</span></body></html>`
}

func TestExtractAllFlatSite(t *testing.T) {
	entry := "https://smartstore.example.com/teststore"
	fetcher := newStubFetcher(map[string]string{
		entry + "/category/ALL": countPageHTML("3개"),
		entry + "/category/ALL?page=1": listingPageHTML(
			productItemHTML(11, "엔진오일 5W30", "32,000원", false),
			productItemHTML(12, "와이퍼 세트", "15,000원", true),
		),
		entry + "/category/ALL?page=2": listingPageHTML(
			productItemHTML(13, "세차용품 거품건", "8,900원", false),
		),
	})

	e := NewSiteExtractor(testFlatProfile(2), fetcher, nil, ExtractorOptions{
		Concurrency:     2,
		PageRetryRounds: 3,
	})

	products, err := e.ExtractAll(context.Background(), entry)
	assert.NoError(t, err)
	assert.Len(t, products, 3)

	assert.Equal(t, int64(11), products[0].ID)
	assert.Equal(t, "엔진오일 5W30", products[0].Title)
	assert.Equal(t, int64(32000), products[0].Price)
	assert.Equal(t, 0, products[0].PopularityIndex)
	assert.False(t, products[0].IsSoldOut)

	assert.True(t, products[1].IsSoldOut)
	assert.Equal(t, 1, products[1].PopularityIndex)

	// Page 2 items continue the popularity sequence from the page number
	assert.Equal(t, int64(13), products[2].ID)
	assert.Equal(t, 2, products[2].PopularityIndex)
}

func TestExtractAllMissingCountElement(t *testing.T) {
	entry := "https://smartstore.example.com/teststore"
	fetcher := newStubFetcher(map[string]string{
		entry + "/category/ALL": "<html><body>준비 중</body></html>",
	})

	e := NewSiteExtractor(testFlatProfile(2), fetcher, nil, ExtractorOptions{})

	_, err := e.ExtractAll(context.Background(), entry)
	assert.Error(t, err)

	var serr *errors.ScrapeError
	assert.True(t, stderrors.As(err, &serr))
	assert.Equal(t, errors.ErrorTypeParse, serr.Type)
}

func TestParseItemsSkipsUnidentifiableItems(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPageHTML(
		productItemHTML(21, "정상 상품", "1,000원", false),
		`<li class="product"><span class="title">링크 없는 상품</span></li>`,
		`<li class="product"><a class="product_link" href="/products/22"></a><span class="title"></span></li>`,
	)))
	assert.NoError(t, err)

	e := NewSiteExtractor(testFlatProfile(40), nil, nil, ExtractorOptions{})
	products := e.parseItems(doc, &Page{Num: 1})

	// Items without an ID or a title are dropped, not errored
	assert.Len(t, products, 1)
	assert.Equal(t, int64(21), products[0].ID)
}

func TestParseItemsMissingPriceDefaultsToZero(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPageHTML(
		`<li class="product"><a class="product_link" href="/products/31"></a><span class="title">가격 없는 상품</span></li>`,
	)))
	assert.NoError(t, err)

	e := NewSiteExtractor(testFlatProfile(40), nil, nil, ExtractorOptions{})
	products := e.parseItems(doc, &Page{Num: 1})

	assert.Len(t, products, 1)
	assert.Equal(t, int64(0), products[0].Price)
}

func TestSoldOutMarkerNestedInChildren(t *testing.T) {
	e := NewSiteExtractor(testFlatProfile(40), nil, nil, ExtractorOptions{})

	// Marker class buried below the badge node
	nested := `<li class="product"><div class="badge_area"><div><span class="soldout_mark">품절</span></div></div></li>`
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(nested))
	assert.True(t, e.soldOut(doc.Find("li.product").First()))

	// Badge node present without the marker
	unmarked := `<li class="product"><div class="badge_area"><span class="new_mark">NEW</span></div></li>`
	doc, _ = goquery.NewDocumentFromReader(strings.NewReader(unmarked))
	assert.False(t, e.soldOut(doc.Find("li.product").First()))

	// No badge node at all
	absent := `<li class="product"></li>`
	doc, _ = goquery.NewDocumentFromReader(strings.NewReader(absent))
	assert.False(t, e.soldOut(doc.Find("li.product").First()))
}

// stubLauncher hands out a pre-built fetcher as the logged-in session.
type stubLauncher struct {
	fetcher  Fetcher
	err      error
	launched int
	released int
}

func (l *stubLauncher) Launch(ctx context.Context, rules *LoginRules) (Fetcher, func(), error) {
	l.launched++
	if l.err != nil {
		return nil, nil, l.err
	}
	return l.fetcher, func() { l.released++ }, nil
}

func TestExtractAllLoginSite(t *testing.T) {
	entry := "https://gear.example.com"
	profile := testFlatProfile(2)
	profile.Name = "gearbox"
	profile.Login = &LoginRules{
		URL:    entry + "/member/login",
		Marker: "div.member-bar",
	}
	profile.CountURL = func(e string) string { return e + "/goods" }
	profile.PageURL = func(e string, _ int, num int) string {
		return fmt.Sprintf("%s/goods?page=%d", e, num)
	}

	sessionFetcher := newStubFetcher(map[string]string{
		entry + "/goods": countPageHTML("1개"),
		entry + "/goods?page=1": listingPageHTML(
			productItemHTML(41, "공구 세트", "45,000원", false),
		),
	})
	launcher := &stubLauncher{fetcher: sessionFetcher}

	// The plain fetcher must never be touched for a login-gated site
	e := NewSiteExtractor(profile, newStubFetcher(nil), launcher, ExtractorOptions{
		Concurrency:     2,
		PageRetryRounds: 3,
	})

	products, err := e.ExtractAll(context.Background(), entry)
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int64(41), products[0].ID)

	// The session is acquired once and released after the run
	assert.Equal(t, 1, launcher.launched)
	assert.Equal(t, 1, launcher.released)
}

func TestExtractAllLoginFailureRejectsRun(t *testing.T) {
	profile := testFlatProfile(2)
	profile.Name = "gearbox"
	profile.Login = &LoginRules{Marker: "div.member-bar"}

	launcher := &stubLauncher{err: errors.NewLogin("gearbox", "login marker never appeared", nil)}
	e := NewSiteExtractor(profile, newStubFetcher(nil), launcher, ExtractorOptions{})

	_, err := e.ExtractAll(context.Background(), "https://gear.example.com")
	assert.Error(t, err)

	var serr *errors.ScrapeError
	assert.True(t, stderrors.As(err, &serr))
	assert.Equal(t, errors.ErrorTypeLogin, serr.Type)
}
