package browser

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// Cookie struct represents a browser cookie in the JSON jar
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads a cookie jar. A missing file yields no cookies.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cookie jar")
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrap(err, "parse cookie jar")
	}

	pwCookies := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pwCookies[i] = c.ToPlaywright()
	}
	return pwCookies, nil
}

// SaveCookies writes the context's cookies to path so the session survives restarts.
func SaveCookies(path string, ctx playwright.BrowserContext) (int, error) {
	pwCookies, err := ctx.Cookies()
	if err != nil {
		return 0, errors.Wrap(err, "read context cookies")
	}

	cookies := make([]Cookie, len(pwCookies))
	for i, c := range pwCookies {
		cookies[i] = FromPlaywright(c)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return 0, errors.Wrap(err, "marshal cookies")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return 0, errors.Wrap(err, "create cookie dir")
		}
	}
	// session cookies are credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return 0, errors.Wrap(err, "write cookie jar")
	}
	return len(cookies), nil
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	pwCookie := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.Expires > 0 {
		pwCookie.Expires = playwright.Float(c.Expires)
	}

	if c.HTTPOnly {
		pwCookie.HttpOnly = playwright.Bool(true)
	}

	if c.Secure {
		pwCookie.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax":
		pwCookie.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		pwCookie.SameSite = playwright.SameSiteAttributeStrict
	case "None":
		pwCookie.SameSite = playwright.SameSiteAttributeNone
	}

	return pwCookie
}

func FromPlaywright(c playwright.Cookie) Cookie {
	cookie := Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		HTTPOnly: c.HttpOnly,
		Secure:   c.Secure,
	}
	if c.SameSite != nil {
		cookie.SameSite = string(*c.SameSite)
	}
	return cookie
}
