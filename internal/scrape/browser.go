package scrape

import (
	"context"
	"strings"
	"time"

	"kshyun328/storesnap/logger"
	"kshyun328/storesnap/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const loginWaitTimeout = 10 * time.Second

// SessionLauncher opens an authenticated browser session for one extraction
// call. The returned release func must be called on every exit path.
type SessionLauncher interface {
	Launch(ctx context.Context, login *LoginRules) (Fetcher, func(), error)
}

// ChromeLauncher launches headless Chrome sessions via chromedp.
type ChromeLauncher struct {
	ChromePath string
	UserAgent  string
}

// BrowserSession is a logged-in headless Chrome tab. It is exclusive to one
// extraction call and must be released when the call finishes.
type BrowserSession struct {
	ctx  context.Context
	site string
}

// Launch starts a browser, runs the login sequence and returns the session
// as a Fetcher. On login failure the browser is already torn down.
func (l *ChromeLauncher) Launch(ctx context.Context, login *LoginRules) (Fetcher, func(), error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1280,800"),
	)
	if l.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.ChromePath))
	}
	if l.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(l.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	release := func() {
		browserCancel()
		allocCancel()
	}

	host := extractHost(login.URL)
	session := &BrowserSession{ctx: browserCtx, site: host}

	if err := session.login(login); err != nil {
		release()
		return nil, nil, err
	}

	logger.ForSite(host).Debug().Msg("browser session logged in")
	return session, release, nil
}

// login submits credentials into the named form fields and waits for the
// post-login marker element.
func (s *BrowserSession) login(rules *LoginRules) error {
	loginCtx, cancel := context.WithTimeout(s.ctx, loginWaitTimeout)
	defer cancel()

	err := chromedp.Run(loginCtx,
		network.Enable(),
		chromedp.Navigate(rules.URL),
		chromedp.WaitVisible(rules.IDField, chromedp.ByQuery),
		chromedp.SendKeys(rules.IDField, rules.ID, chromedp.ByQuery),
		chromedp.SendKeys(rules.PasswordField, rules.Password, chromedp.ByQuery),
		chromedp.Click(rules.Submit, chromedp.ByQuery),
		chromedp.WaitVisible(rules.Marker, chromedp.ByQuery),
	)
	if err != nil {
		return errors.NewLogin(s.site, "post-login marker never appeared", err)
	}
	return nil
}

// Fetch navigates the session's tab to url and parses the rendered markup.
func (s *BrowserSession) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	fetchCtx, cancel := context.WithTimeout(s.ctx, loginWaitTimeout)
	defer cancel()

	// Honor cancellation of the caller's context as well as the session's.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-fetchCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(fetchCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, errors.NewNetwork(s.site, "browser navigation failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParse(s.site, "building document tree", err)
	}
	return doc, nil
}
