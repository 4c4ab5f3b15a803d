package microstatus

import (
	"log/slog"
	"time"
)

type Outcome int

const (
	NotFound Outcome = iota
	Found
	Error
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not-found"
	default:
		return "error"
	}
}

// Dismissal is the result of clearing one kind of obstruction.
type Dismissal struct {
	Outcome Outcome
	Count   int
	Err     error
}

func DismissAnnouncements(page Page, timeout time.Duration) Dismissal {
	return dismiss(page, announcementsSelector, timeout, func() (int, error) {
		return page.RemoveAll(announcementsSelector)
	})
}

func DismissDialogs(page Page, timeout time.Duration) Dismissal {
	return dismiss(page, dialogSelector, timeout, func() (int, error) {
		return page.ClickAll(dialogCloseSelector)
	})
}

func dismiss(page Page, selector string, timeout time.Duration, clear func() (int, error)) Dismissal {
	found, err := page.WaitForSelector(selector, timeout)
	if err != nil {
		return Dismissal{Outcome: Error, Err: err}
	}
	if !found {
		return Dismissal{Outcome: NotFound}
	}

	n, err := clear()
	if err != nil {
		return Dismissal{Outcome: Error, Err: err}
	}
	return Dismissal{Outcome: Found, Count: n}
}

// DismissPopups clears announcements and dialogs. It never fails the run.
func DismissPopups(page Page, timeout time.Duration, logger *slog.Logger) {
	results := []struct {
		name string
		Dismissal
	}{
		{"announcements", DismissAnnouncements(page, timeout)},
		{"dialogs", DismissDialogs(page, timeout)},
	}

	for _, r := range results {
		name, d := r.name, r.Dismissal
		switch d.Outcome {
		case Found:
			logger.Debug("dismissed popups", "kind", name, "count", d.Count)
		case NotFound:
			logger.Debug("no popups to dismiss", "kind", name)
		case Error:
			logger.Warn("failed to dismiss popups", "kind", name, "err", d.Err)
		}
	}
}
