package browser

import (
	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywright starts the driver and launches Chromium.
func NewPlaywright(headless bool) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "could not start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-notifications",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, errors.Wrap(err, "could not launch chromium")
	}

	return &PlaywrightManager{
		pw:      pw,
		browser: browser,
	}, nil
}

// NewContext opens a browser context carrying the given cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Locale:    playwright.String("en-US"),
		Viewport: &playwright.Size{
			Width:  1366,
			Height: 900,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create browser context")
	}

	if len(cookies) > 0 {
		if err := ctx.AddCookies(cookies); err != nil {
			ctx.Close()
			return nil, errors.Wrap(err, "could not add cookies")
		}
	}
	return ctx, nil
}

func (pm *PlaywrightManager) Close() error {
	if err := pm.browser.Close(); err != nil {
		pm.pw.Stop()
		return err
	}
	return pm.pw.Stop()
}
