package microstatus

import (
	"context"
	"fmt"
	"log/slog"
)

type Credentials struct {
	EmployeeID string
	Password   string
}

// Run is what one invocation did, ready for the presentation layer.
type Run struct {
	Direction Direction
	Result    Result
	Log       AttendanceLog
}

// Client drives one session through login, verification and recording.
type Client struct {
	Session       *Session
	Credentials   Credentials
	Authenticator *Authenticator
	Recorder      Recorder
	Progress      Progress
	Logger        *slog.Logger
	Timeouts      Timeouts

	// Cookies, when set, receives the browser cookies after authentication.
	Cookies *CookieStore
}

func (c *Client) connect(ctx context.Context) error {
	c.Progress.Start("Connecting to MicroStatus.")
	if err := c.Session.Navigate(); err != nil {
		c.Progress.Fail("")
		return err
	}
	c.Progress.Succeed("")

	if err := c.Authenticator.Login(c.Session, c.Credentials.EmployeeID, c.Credentials.Password); err != nil {
		return err
	}

	if err := c.Authenticator.Verify(ctx, c.Session); err != nil {
		return err
	}
	c.saveCookies()

	c.Progress.Start("Removing dialogs and popups.")
	DismissPopups(c.Session.Page, c.Timeouts.Dialog, c.Logger)
	c.Progress.Succeed("")

	return nil
}

func (c *Client) saveCookies() {
	if c.Cookies == nil {
		return
	}

	cookies, err := c.Session.Cookies()
	if err != nil {
		c.Logger.Warn("failed to read session cookies", "err", err)
		return
	}

	if err := c.Cookies.Save(cookies); err != nil {
		c.Logger.Warn("failed to save session cookies", "err", err)
		return
	}
	c.Logger.Debug("saved session cookies", "count", len(cookies))
}

// Record logs in and performs direction. An already recorded action is not an
// error: the returned run carries the existing log and AlreadyRecorded.
func (c *Client) Record(ctx context.Context, direction Direction) (Run, error) {
	if err := c.connect(ctx); err != nil {
		return Run{}, err
	}

	if direction == TimeOut {
		c.Progress.Start("Ending work session.")
	} else {
		c.Progress.Start("Starting work.")
	}

	result, err := c.Recorder.Record(ctx, c.Session, direction)
	if err != nil {
		c.Progress.Fail("")
		return Run{}, err
	}

	run := Run{Direction: direction, Result: result}

	switch {
	case result.AlreadyRecorded:
		c.Progress.Info(result.Message)
	case result.Success:
		c.Progress.Succeed("")
	default:
		c.Progress.Fail(result.Message)
		return run, fmt.Errorf("%s: %s", direction, result.Message)
	}

	if result.Log != nil {
		run.Log = *result.Log
		return run, nil
	}

	log, err := c.readLog(ctx)
	if err != nil {
		return run, err
	}
	run.Log = log
	return run, nil
}

// ReadLog logs in and reads today's log without recording anything.
func (c *Client) ReadLog(ctx context.Context) (AttendanceLog, error) {
	if err := c.connect(ctx); err != nil {
		return AttendanceLog{}, err
	}
	return c.readLog(ctx)
}

func (c *Client) readLog(ctx context.Context) (AttendanceLog, error) {
	c.Progress.Start("Reading attendance log.")
	log, err := ReadAttendanceLog(ctx, c.Session.Page, c.Timeouts)
	if err != nil {
		c.Progress.Fail("")
		return AttendanceLog{}, err
	}
	c.Progress.Succeed("")
	return log, nil
}
