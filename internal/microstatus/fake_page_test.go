package microstatus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// fakePage is an in-memory portal. Elements exist when listed in present;
// onClick hooks let a test change the page in response to a click.
type fakePage struct {
	url      string
	present  map[string]bool
	classes  map[string][]string
	texts    map[string]bool
	fills    map[string]string
	clicks   []string
	posts    []map[string]string
	postPath string
	postBody string
	postErr  error
	waitErr  error
	content  string
	closed   bool

	onClick map[string]func(f *fakePage)
}

func newFakePage() *fakePage {
	return &fakePage{
		present: map[string]bool{},
		classes: map[string][]string{},
		texts:   map[string]bool{},
		fills:   map[string]string{},
		onClick: map[string]func(f *fakePage){},
	}
}

// withLoginForm adds the elements of the portal's login page.
func (f *fakePage) withLoginForm() *fakePage {
	for _, s := range []string{employeeButtonSelector, employeeIDSelector, passwordSelector, loginSubmitSelector} {
		f.present[s] = true
	}
	return f
}

func (f *fakePage) withDashboard() *fakePage {
	for _, d := range []Direction{TimeIn, TimeOut} {
		f.present[d.buttonSelector()] = true
		f.present[d.buttonSelector()+" "+buttonInnerSelector] = true
	}
	f.present[graphSelector] = true
	return f
}

func (f *fakePage) Goto(url string) error {
	f.url = url
	return nil
}

func (f *fakePage) WaitForSelector(selector string, _ time.Duration) (bool, error) {
	if f.waitErr != nil {
		return false, f.waitErr
	}
	return f.present[selector], nil
}

func (f *fakePage) WaitForText(text string, _ time.Duration) (bool, error) {
	if f.waitErr != nil {
		return false, f.waitErr
	}
	return f.texts[text], nil
}

func (f *fakePage) Click(selector string) error {
	if !f.present[selector] {
		return selectorError(selector)
	}
	f.clicks = append(f.clicks, selector)
	if hook, ok := f.onClick[selector]; ok {
		hook(f)
	}
	return nil
}

func (f *fakePage) Fill(selector, value string) error {
	if !f.present[selector] {
		return selectorError(selector)
	}
	f.fills[selector] = value
	return nil
}

func (f *fakePage) HasClass(selector, class string) (bool, error) {
	if !f.present[selector] {
		return false, selectorError(selector)
	}
	for _, c := range f.classes[selector] {
		if c == class {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePage) RemoveAll(selector string) (int, error) {
	if !f.present[selector] {
		return 0, nil
	}
	delete(f.present, selector)
	return 1, nil
}

func (f *fakePage) ClickAll(selector string) (int, error) {
	if !f.present[selector] {
		return 0, nil
	}
	f.clicks = append(f.clicks, selector)
	delete(f.present, selector)
	delete(f.present, dialogSelector)
	return 1, nil
}

func (f *fakePage) PostForm(path string, form map[string]string) (string, error) {
	f.postPath = path
	f.posts = append(f.posts, form)
	return f.postBody, f.postErr
}

func (f *fakePage) Content() (string, error) {
	return f.content, nil
}

func (f *fakePage) Close() error {
	f.closed = true
	return nil
}

func (f *fakePage) clickCount(selector string) int {
	n := 0
	for _, c := range f.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

// scriptedPrompter hands out codes in order and cancels once they run out.
type scriptedPrompter struct {
	codes   []string
	prompts int
}

func (p *scriptedPrompter) PromptCode(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.prompts >= len(p.codes) {
		return "", ErrVerificationCancelled
	}
	code := p.codes[p.prompts]
	p.prompts++
	return code, nil
}

// recordingProgress keeps every message for assertions.
type recordingProgress struct {
	events []string
}

func (p *recordingProgress) Start(msg string)   { p.events = append(p.events, "start:"+msg) }
func (p *recordingProgress) Succeed(msg string) { p.events = append(p.events, "succeed:"+msg) }
func (p *recordingProgress) Fail(msg string)    { p.events = append(p.events, "fail:"+msg) }
func (p *recordingProgress) Info(msg string)    { p.events = append(p.events, "info:"+msg) }
func (p *recordingProgress) Stop()              {}

func (p *recordingProgress) has(prefix string) bool {
	for _, e := range p.events {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTimeouts() Timeouts {
	return Timeouts{
		Element:            time.Millisecond,
		VerificationDetect: time.Millisecond,
		Rejection:          time.Millisecond,
		Dialog:             time.Millisecond,
	}
}

// withVerification makes the page ask for a code and reject every code in
// rejected with the portal's error dialog.
func (f *fakePage) withVerification(rejected ...string) *fakePage {
	f.present[authCodeSelector] = true
	f.present[authCodeSubmitSelector] = true
	f.onClick[authCodeSubmitSelector] = func(f *fakePage) {
		f.texts[invalidAuthCodeText] = false
		for _, code := range rejected {
			if f.fills[authCodeSelector] == code {
				f.texts[invalidAuthCodeText] = true
				f.present[dialogSelector] = true
				f.present[dialogCloseSelector] = true
			}
		}
	}
	return f
}

var errBrowserCrashed = errors.New("browser crashed")
