package microstatus

import (
	"errors"
	"time"
)

var (
	ErrSelectorNotFound      = errors.New("selector not found")
	ErrNotAuthenticated      = errors.New("session is not authenticated")
	ErrVerificationCancelled = errors.New("verification cancelled")
	ErrVerificationExhausted = errors.New("verification attempts exhausted")
	ErrUnexpectedResponse    = errors.New("unexpected status response")
)

// Page is the subset of browser page behaviour the portal automation needs.
//
// Wait methods report absence within the timeout as (false, nil) so callers
// decide whether absence is fine or fatal. Any other failure is returned as an
// error.
type Page interface {
	Goto(url string) error
	WaitForSelector(selector string, timeout time.Duration) (bool, error)
	WaitForText(text string, timeout time.Duration) (bool, error)
	Click(selector string) error
	Fill(selector, value string) error
	HasClass(selector, class string) (bool, error)

	// RemoveAll removes every element matching selector from the DOM.
	RemoveAll(selector string) (int, error)
	// ClickAll clicks every element matching selector.
	ClickAll(selector string) (int, error)
	// PostForm issues a form-encoded POST from inside the page so the
	// request carries the page's cookies. It returns the raw response body.
	PostForm(path string, form map[string]string) (string, error)

	Content() (string, error)
	Close() error
}

// requireSelector waits for selector and converts absence into ErrSelectorNotFound.
func requireSelector(page Page, selector string, timeout time.Duration) error {
	found, err := page.WaitForSelector(selector, timeout)
	if err != nil {
		return err
	}
	if !found {
		return selectorError(selector)
	}
	return nil
}

func selectorError(selector string) error {
	return &SelectorError{Selector: selector}
}

// SelectorError reports a required element that never appeared.
type SelectorError struct {
	Selector string
}

func (e *SelectorError) Error() string {
	return "selector not found: " + e.Selector
}

func (e *SelectorError) Unwrap() error {
	return ErrSelectorNotFound
}
