package microstatus

import (
	"context"
	"time"
)

// Progress receives step-by-step feedback for the operator.
type Progress interface {
	Start(msg string)
	// Succeed and Fail end the current step. An empty msg reuses the step text.
	Succeed(msg string)
	Fail(msg string)
	Info(msg string)
	Stop()
}

type nopProgress struct{}

func (nopProgress) Start(string)   {}
func (nopProgress) Succeed(string) {}
func (nopProgress) Fail(string)    {}
func (nopProgress) Info(string)    {}
func (nopProgress) Stop()          {}

// NopProgress discards all feedback.
var NopProgress Progress = nopProgress{}

type Timeouts struct {
	// Element bounds waits for elements the run cannot continue without.
	Element            time.Duration
	VerificationDetect time.Duration
	Rejection          time.Duration
	Dialog             time.Duration
	// Settle is how long to let the dashboard finish rendering before its
	// button state is trusted.
	Settle time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Element:            30 * time.Second,
		VerificationDetect: 2 * time.Second,
		Rejection:          5 * time.Second,
		Dialog:             3 * time.Second,
		Settle:             1500 * time.Millisecond,
	}
}

// settle waits d for the page to finish rendering, or until ctx is done.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
