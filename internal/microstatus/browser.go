package microstatus

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"
)

type LaunchOptions struct {
	BaseURL  string
	Headless bool
	// Timeout is the default for playwright actions without an explicit one.
	Timeout time.Duration
	Cookies []Cookie
}

var runOptions = &playwright.RunOptions{
	Browsers: []string{"chromium"},
	Verbose:  false,
	Stdout:   io.Discard,
	Stderr:   io.Discard,
}

// Install downloads the playwright driver and chromium.
func Install() error {
	if err := playwright.Install(runOptions); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Launch starts chromium with a fresh browser context and a single page.
// The returned session owns all of it; callers must Close it.
func Launch(opts LaunchOptions) (*Session, error) {
	var closers []func() error
	cleanup := func() error {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		return err
	}

	pw, err := playwright.Run(runOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	closers = append(closers, pw.Stop)

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to launch browser: %w", err), cleanup())
	}
	closers = append(closers, func() error { return browser.Close() })

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(opts.BaseURL),
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create context: %w", err), cleanup())
	}
	closers = append(closers, func() error { return context.Close() })

	jar := &contextJar{context: context}
	if len(opts.Cookies) > 0 {
		if err := jar.AddCookies(opts.Cookies); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to restore cookies: %w", err), cleanup())
		}
	}

	page, err := context.NewPage()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create page: %w", err), cleanup())
	}

	if opts.Timeout > 0 {
		page.SetDefaultTimeout(milliseconds(opts.Timeout))
		page.SetDefaultNavigationTimeout(milliseconds(opts.Timeout))
	}

	p := &playwrightPage{page: page}
	closers = append(closers, p.Close)

	return &Session{
		URL:   opts.BaseURL,
		State: Unauthenticated,
		Page:  p,
		jar:   jar,
		close: cleanup,
	}, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) (bool, error) {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(milliseconds(timeout)),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return true, nil
}

func (p *playwrightPage) WaitForText(text string, timeout time.Duration) (bool, error) {
	_, err := p.page.WaitForFunction(
		`(text) => !!document.body && document.body.innerText.includes(text)`,
		text,
		playwright.PageWaitForFunctionOptions{Timeout: playwright.Float(milliseconds(timeout))},
	)
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("waiting for text %q: %w", text, err)
	}
	return true, nil
}

func (p *playwrightPage) Click(selector string) error {
	err := p.page.Locator(selector).First().Click()
	if errors.Is(err, playwright.ErrTimeout) {
		return selectorError(selector)
	}
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Fill(selector, value string) error {
	err := p.page.Locator(selector).First().Fill(value)
	if errors.Is(err, playwright.ErrTimeout) {
		return selectorError(selector)
	}
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) HasClass(selector, class string) (bool, error) {
	v, err := p.page.Locator(selector).First().Evaluate(`(el, cls) => el.classList.contains(cls)`, class)
	if errors.Is(err, playwright.ErrTimeout) {
		return false, selectorError(selector)
	}
	if err != nil {
		return false, fmt.Errorf("class check on %s: %w", selector, err)
	}
	has, _ := v.(bool)
	return has, nil
}

func (p *playwrightPage) RemoveAll(selector string) (int, error) {
	v, err := p.page.Evaluate(`(selector) => {
		const elements = document.querySelectorAll(selector);
		elements.forEach((el) => el.remove());
		return elements.length;
	}`, selector)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", selector, err)
	}
	return toInt(v), nil
}

func (p *playwrightPage) ClickAll(selector string) (int, error) {
	v, err := p.page.Evaluate(`(selector) => {
		const elements = document.querySelectorAll(selector);
		elements.forEach((el) => el.click());
		return elements.length;
	}`, selector)
	if err != nil {
		return 0, fmt.Errorf("click all %s: %w", selector, err)
	}
	return toInt(v), nil
}

func (p *playwrightPage) PostForm(path string, form map[string]string) (string, error) {
	v, err := p.page.Evaluate(`async ({ path, form }) => {
		const response = await fetch(path, {
			method: "POST",
			credentials: "same-origin",
			headers: { "Content-Type": "application/x-www-form-urlencoded; charset=UTF-8" },
			body: new URLSearchParams(form).toString(),
		});
		if (!response.ok) {
			throw new Error("status " + response.status);
		}
		return await response.text();
	}`, map[string]interface{}{
		"path": path,
		"form": form,
	})
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	body, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("post %s: %w: body is %T", path, ErrUnexpectedResponse, v)
	}
	return body, nil
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Close() error {
	if p.page.IsClosed() {
		return nil
	}
	return p.page.Close()
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// contextJar exposes the browser context's cookies in the store's format.
type contextJar struct {
	context playwright.BrowserContext
}

func (j *contextJar) Cookies() ([]Cookie, error) {
	cookies, err := j.context.Cookies()
	if err != nil {
		return nil, err
	}

	out := make([]Cookie, len(cookies))
	for i, cookie := range cookies {
		out[i] = cookieFromPlaywright(cookie)
	}
	return out, nil
}

func (j *contextJar) AddCookies(cookies []Cookie) error {
	optional := make([]playwright.OptionalCookie, len(cookies))
	for i, cookie := range cookies {
		optional[i] = cookie.toPlaywright().ToOptionalCookie()
	}
	return j.context.AddCookies(optional)
}
