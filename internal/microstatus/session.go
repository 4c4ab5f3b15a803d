package microstatus

import "errors"

type AuthState int

const (
	Unauthenticated AuthState = iota
	CredentialsSubmitted
	VerificationRequired
	VerificationRetry
	Authenticated
	Failed
)

func (s AuthState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case CredentialsSubmitted:
		return "credentials-submitted"
	case VerificationRequired:
		return "verification-required"
	case VerificationRetry:
		return "verification-retry"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the browser tab bound to the portal for the whole run.
type Session struct {
	URL   string
	State AuthState
	Page  Page

	jar   CookieJar
	close func() error
}

// NewSession wraps an existing page. Used when the caller manages the browser.
func NewSession(url string, page Page) *Session {
	return &Session{
		URL:   url,
		State: Unauthenticated,
		Page:  page,
	}
}

func (s *Session) Navigate() error {
	return s.Page.Goto(s.URL)
}

// Cookies returns the browser cookies, if the session has a cookie jar.
func (s *Session) Cookies() ([]Cookie, error) {
	if s.jar == nil {
		return nil, errors.New("session has no cookie jar")
	}
	return s.jar.Cookies()
}

// Close tears down the page and everything Launch started. Safe to call twice.
func (s *Session) Close() error {
	closeFn, page := s.close, s.Page
	s.close, s.Page = nil, nil

	if closeFn != nil {
		return closeFn()
	}
	if page != nil {
		return page.Close()
	}
	return nil
}
