package microstatus

import (
	"context"
	"fmt"
	"strings"
)

type Direction string

const (
	TimeIn  = Direction("time-in")
	TimeOut = Direction("time-out")
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case TimeIn, "in":
		return TimeIn, nil
	case TimeOut, "out":
		return TimeOut, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// StatusCode is the short code the portal's status endpoint uses.
func (d Direction) StatusCode() string {
	if d == TimeOut {
		return "W2"
	}
	return "W1"
}

func (d Direction) buttonSelector() string {
	if d == TimeOut {
		return "#btndiv_EW"
	}
	return "#btndiv_W1"
}

func (d Direction) alreadyRecordedMessage() string {
	if d == TimeOut {
		return "You have already ended work for today."
	}
	return "You have already started work for today."
}

type Result struct {
	Success bool
	// AlreadyRecorded is set when the portal shows the action as done today.
	AlreadyRecorded bool
	Message         string
	Log             *AttendanceLog
}

// Recorder performs a time-in or time-out on an authenticated session.
type Recorder interface {
	Record(ctx context.Context, session *Session, direction Direction) (Result, error)
}

const (
	StrategyUI  = "ui"
	StrategyAPI = "api"
)

func NewRecorder(strategy string, endpoint string, timeouts Timeouts) (Recorder, error) {
	switch strategy {
	case "", StrategyUI:
		return &UIRecorder{Timeouts: timeouts}, nil
	case StrategyAPI:
		if endpoint == "" {
			endpoint = DefaultStatusEndpoint
		}
		return &APIRecorder{Endpoint: endpoint, Timeouts: timeouts}, nil
	}
	return nil, fmt.Errorf("unknown recording strategy %q", strategy)
}

// checkRecordable enforces the preconditions shared by every strategy. A
// non-nil Result means the action must not be attempted.
func checkRecordable(ctx context.Context, session *Session, direction Direction, timeouts Timeouts) (*Result, error) {
	if session.State != Authenticated {
		return nil, fmt.Errorf("%w: state is %s", ErrNotAuthenticated, session.State)
	}

	selector := direction.buttonSelector()
	if err := requireSelector(session.Page, selector, timeouts.Element); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	if err := settle(ctx, timeouts.Settle); err != nil {
		return nil, err
	}

	disabled, err := session.Page.HasClass(selector, buttonDisabledClass)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if disabled {
		return &Result{
			Success:         false,
			AlreadyRecorded: true,
			Message:         direction.alreadyRecordedMessage(),
		}, nil
	}
	return nil, nil
}

// UIRecorder clicks the dashboard buttons like a person would.
type UIRecorder struct {
	Timeouts Timeouts
}

func (r *UIRecorder) Record(ctx context.Context, session *Session, direction Direction) (Result, error) {
	done, err := checkRecordable(ctx, session, direction, r.Timeouts)
	if err != nil {
		return Result{}, err
	}
	if done != nil {
		return *done, nil
	}

	page := session.Page
	if err := page.Click(direction.buttonSelector() + " " + buttonInnerSelector); err != nil {
		return Result{}, fmt.Errorf("dashboard: %w", err)
	}

	if direction == TimeOut {
		confirm, err := page.WaitForText(endShiftConfirmText, r.Timeouts.Element)
		if err != nil {
			return Result{}, fmt.Errorf("end shift confirmation: %w", err)
		}
		if !confirm {
			return Result{}, fmt.Errorf("end shift confirmation: %w", selectorError(dialogConfirmSelector))
		}
		if err := page.Click(dialogConfirmSelector); err != nil {
			return Result{}, fmt.Errorf("end shift confirmation: %w", err)
		}
	}

	return Result{Success: true}, nil
}
