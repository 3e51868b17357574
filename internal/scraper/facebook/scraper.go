// Log in to Facebook
// Navigate to a group feed with the requested sorting
// Extract the newest post

package facebook

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/unicode/norm"

	"fbgroup-notifier/internal/browser"
	"fbgroup-notifier/internal/logging"
	"fbgroup-notifier/internal/scraper"
)

const BaseURL = "https://www.facebook.com"

const (
	loggedInSelector = `div[role="navigation"], div[role="banner"]`
	postSelector     = `div[role="feed"] div[aria-posinset], div[role="feed"] div[role="article"]`
	messageSelector  = `div[data-ad-preview="message"], div[data-ad-comet-preview="message"]`
	listingSelector  = `a[href*="/commerce/listing/"], a[href*="/marketplace/item/"]`
	seeMoreSelector  = `div[role="button"]:text-is("See more")`
)

var (
	postPathRe    = regexp.MustCompile(`^/groups/([^/]+)/(?:posts|permalink)/(\d+)`)
	listingPathRe = regexp.MustCompile(`^/(?:commerce/listing|marketplace/item)/(\d+)`)
)

var logger = logging.GetModuleLogger("facebook")

var _ scraper.GroupScraper = (*Scraper)(nil)

type Scraper struct {
	page        playwright.Page
	baseURL     string
	timeout     time.Duration
	cookiesPath string
	screenshots *browser.ScreenshotDebugger
}

type Options struct {
	// CookiesPath receives the session after a successful login
	CookiesPath string
	Screenshots *browser.ScreenshotDebugger
}

func New(page playwright.Page, opts Options) *Scraper {
	return &Scraper{
		page:        page,
		baseURL:     BaseURL,
		timeout:     30 * time.Second,
		cookiesPath: opts.CookiesPath,
		screenshots: opts.Screenshots,
	}
}

func (s *Scraper) timeoutMs() *float64 {
	return playwright.Float(float64(s.timeout.Milliseconds()))
}

func (s *Scraper) capture(name string) {
	if s.screenshots != nil {
		s.screenshots.Capture(s.page, name)
	}
}

// Login signs in with the form unless the cookie jar already carries a session.
func (s *Scraper) Login(ctx context.Context, account, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info("🔐 Opening Facebook login page...")
	if _, err := s.page.Goto(s.baseURL+"/login/", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   s.timeoutMs(),
	}); err != nil {
		return errors.Wrap(err, "failed to load login page")
	}

	email := s.page.Locator(`input[name="email"]`)
	count, err := email.Count()
	if err != nil {
		return errors.Wrap(err, "look up login form")
	}
	if count == 0 {
		logger.Info("🍪 Session restored from cookies, skipping login form.")
		return nil
	}

	if err := email.First().Fill(account); err != nil {
		return errors.Wrap(err, "fill account")
	}
	if err := browser.Pause(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
		return err
	}
	if err := s.page.Locator(`input[name="pass"]`).First().Fill(password); err != nil {
		return errors.Wrap(err, "fill password")
	}
	if err := browser.Pause(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
		return err
	}
	if err := s.page.Locator(`button[name="login"], [data-testid="royal_login_button"]`).First().Click(); err != nil {
		return errors.Wrap(err, "submit login form")
	}

	if err := s.page.Locator(loggedInSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: s.timeoutMs(),
	}); err != nil {
		s.capture("facebook-login")
		return errors.Wrapf(err, "login verification failed at %s (checkpoint or wrong credentials?)", s.page.URL())
	}
	logger.Info("✅ Login confirmed.")

	//warm up like a human before the first group visit
	if err := browser.HumanScroll(ctx, s.page, 3); err != nil {
		logger.WithError(err).Debug("warm-up scroll failed")
	}

	if s.cookiesPath != "" {
		n, err := browser.SaveCookies(s.cookiesPath, s.page.Context())
		if err != nil {
			logger.WithError(err).Warn("⚠️ Could not save session cookies")
		} else {
			logger.Infof("💾 Saved %d cookies to %s", n, s.cookiesPath)
		}
	}
	return nil
}

// GroupURL is the feed address of a group in the given ordering.
func GroupURL(baseURL, groupID string, sort scraper.Sort) string {
	return fmt.Sprintf("%s/groups/%s/?sorting_setting=%s", baseURL, url.PathEscape(groupID), sort)
}

// ToGroup opens the group feed and waits until its first story is rendered.
func (s *Scraper) ToGroup(ctx context.Context, groupID string, sort scraper.Sort) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := GroupURL(s.baseURL, groupID, sort)
	logger.Debugf("🌐 Visiting %s", target)
	if _, err := s.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   s.timeoutMs(),
	}); err != nil {
		return s.navigationError(groupID, err)
	}

	if err := s.page.Locator(postSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: s.timeoutMs(),
	}); err != nil {
		return s.navigationError(groupID, err)
	}

	if err := browser.MouseJiggle(ctx, s.page); err != nil {
		logger.WithError(err).Debug("mouse jiggle failed")
	}
	return nil
}

func (s *Scraper) navigationError(groupID string, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		s.capture("facebook-group-timeout")
		return errors.Wrapf(scraper.ErrTimeout, "group %s: %v", groupID, err)
	}
	return errors.Wrapf(err, "failed to open group %s", groupID)
}

// FetchPost reads the first story of the feed currently open.
func (s *Scraper) FetchPost(ctx context.Context) (scraper.Post, error) {
	if err := ctx.Err(); err != nil {
		return scraper.Post{}, err
	}

	first := s.page.Locator(postSelector).First()
	count, err := first.Count()
	if err != nil {
		return scraper.Post{}, errors.Wrap(err, "look up first post")
	}
	if count == 0 {
		return scraper.Post{}, scraper.ErrNoPost
	}

	// long posts are truncated behind "See more"
	seeMore := first.Locator(seeMoreSelector).First()
	if n, _ := seeMore.Count(); n > 0 {
		if err := seeMore.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
			logger.WithError(err).Debug("could not expand post")
		}
	}

	content, err := innerText(first.Locator(messageSelector))
	if err != nil {
		return scraper.Post{}, errors.Wrap(err, "read post content")
	}
	listingText, err := innerText(first.Locator(listingSelector))
	if err != nil {
		return scraper.Post{}, errors.Wrap(err, "read listing text")
	}

	hrefs, err := linkHrefs(first)
	if err != nil {
		return scraper.Post{}, errors.Wrap(err, "read post links")
	}
	id, link, ok := PostLink(hrefs)
	if !ok {
		// permalinks are filled in lazily when the timestamp is hovered
		hoverPlaceholderLinks(first)
		if hrefs, err = linkHrefs(first); err != nil {
			return scraper.Post{}, errors.Wrap(err, "read post links")
		}
		id, link, ok = PostLink(hrefs)
	}
	if !ok {
		s.capture("facebook-no-permalink")
		return scraper.Post{}, errors.Wrap(scraper.ErrNoPost, "first post has no permalink")
	}

	return scraper.Post{
		ID:          id,
		Content:     normalize(content),
		ListingText: normalize(listingText),
		URL:         link,
	}, nil
}

func innerText(l playwright.Locator) (string, error) {
	l = l.First()
	n, err := l.Count()
	if err != nil || n == 0 {
		return "", err
	}
	return l.InnerText()
}

func linkHrefs(post playwright.Locator) ([]string, error) {
	raw, err := post.Locator("a[href]").EvaluateAll("els => els.map(e => e.href)")
	if err != nil {
		return nil, err
	}
	list, _ := raw.([]interface{})
	hrefs := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			hrefs = append(hrefs, s)
		}
	}
	return hrefs, nil
}

func hoverPlaceholderLinks(post playwright.Locator) {
	links, err := post.Locator(`a[href="#"], a[href^="#"]`).All()
	if err != nil {
		return
	}
	for i, l := range links {
		if i >= 5 {
			break
		}
		l.Hover(playwright.LocatorHoverOptions{Timeout: playwright.Float(2000)})
	}
}

// PostLink picks the post id and canonical url out of a story's links.
// Group permalinks win over marketplace listing links.
func PostLink(hrefs []string) (id, link string, ok bool) {
	var listingID, listingLink string
	for _, h := range hrefs {
		u, err := url.Parse(h)
		if err != nil {
			continue
		}
		if m := postPathRe.FindStringSubmatch(u.Path); m != nil {
			return m[2], fmt.Sprintf("%s/groups/%s/posts/%s/", BaseURL, m[1], m[2]), true
		}
		if fbid := u.Query().Get("story_fbid"); fbid != "" && isDigits(fbid) {
			return fbid, fmt.Sprintf("%s/permalink.php?story_fbid=%s&id=%s", BaseURL, fbid, u.Query().Get("id")), true
		}
		if m := listingPathRe.FindStringSubmatch(u.Path); m != nil && listingID == "" {
			listingID = m[1]
			listingLink = fmt.Sprintf("%s/commerce/listing/%s/", BaseURL, m[1])
		}
	}
	if listingID != "" {
		return listingID, listingLink, true
	}
	return "", "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
