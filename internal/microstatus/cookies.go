package microstatus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Cookie is a browser cookie as persisted between runs. Keeping the portal's
// remembered-device cookie lets later runs skip the verification challenge.
type Cookie struct {
	Name     string  `yaml:"name"`
	Value    string  `yaml:"value"`
	Domain   string  `yaml:"domain"`
	Path     string  `yaml:"path"`
	Expires  float64 `yaml:"expires"`
	HttpOnly bool    `yaml:"http_only"`
	Secure   bool    `yaml:"secure"`
	SameSite string  `yaml:"same_site,omitempty"`
}

func cookieFromPlaywright(cookie playwright.Cookie) Cookie {
	c := Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   cookie.Domain,
		Path:     cookie.Path,
		Expires:  cookie.Expires,
		HttpOnly: cookie.HttpOnly,
		Secure:   cookie.Secure,
	}
	if cookie.SameSite != nil {
		c.SameSite = string(*cookie.SameSite)
	}
	return c
}

func (c Cookie) toPlaywright() playwright.Cookie {
	cookie := playwright.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
	}
	if c.SameSite != "" {
		sameSite := playwright.SameSiteAttribute(c.SameSite)
		cookie.SameSite = &sameSite
	}
	return cookie
}

// Expired reports whether the cookie has an expiry that is before t.
// Session cookies (expires <= 0) never expire by this measure.
func (c Cookie) Expired(t time.Time) bool {
	if c.Expires <= 0 {
		return false
	}
	return time.Unix(int64(c.Expires), 0).Before(t)
}

// CookieJar is implemented by sessions backed by a real browser context.
type CookieJar interface {
	Cookies() ([]Cookie, error)
	AddCookies(cookies []Cookie) error
}

type CookieStore struct {
	Fs   afero.Fs
	Path string
}

// Load returns the stored, unexpired cookies. A missing file is not an error.
func (s *CookieStore) Load(now time.Time) ([]Cookie, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	var stored []Cookie
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse cookies: %w", err)
	}

	cookies := []Cookie{}
	for _, cookie := range stored {
		if cookie.Expired(now) {
			continue
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

func (s *CookieStore) Save(cookies []Cookie) error {
	data, err := yaml.Marshal(cookies)
	if err != nil {
		return err
	}

	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	return afero.WriteFile(s.Fs, s.Path, data, 0o600)
}
