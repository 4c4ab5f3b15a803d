package microstatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

var authCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidateAuthCode checks a one-time code is exactly six digits.
func ValidateAuthCode(code string) error {
	if !authCodePattern.MatchString(code) {
		return errors.New("please enter a valid 6-digit code")
	}
	return nil
}

// CodePrompter asks the operator for a one-time verification code.
// Implementations return ErrVerificationCancelled when the operator backs out.
type CodePrompter interface {
	PromptCode(ctx context.Context) (string, error)
}

func SubmitCredentials(session *Session, id, secret string, timeout time.Duration) error {
	page := session.Page

	if err := requireSelector(page, employeeButtonSelector, timeout); err != nil {
		return fmt.Errorf("login page: %w", err)
	}
	if err := page.Click(employeeButtonSelector); err != nil {
		return fmt.Errorf("login page: %w", err)
	}

	if err := page.Fill(employeeIDSelector, id); err != nil {
		return fmt.Errorf("login page: %w", err)
	}
	if err := page.Fill(passwordSelector, secret); err != nil {
		return fmt.Errorf("login page: %w", err)
	}

	if err := requireSelector(page, loginSubmitSelector, timeout); err != nil {
		return fmt.Errorf("login page: %w", err)
	}
	if err := page.Click(loginSubmitSelector); err != nil {
		return fmt.Errorf("login page: %w", err)
	}

	session.State = CredentialsSubmitted
	return nil
}

// DetectVerificationChallenge reports whether the portal asks for a one-time
// code. Not seeing the input within timeout means no verification is needed.
func DetectVerificationChallenge(session *Session, timeout time.Duration) (bool, error) {
	found, err := session.Page.WaitForSelector(authCodeSelector, timeout)
	if err != nil {
		return false, fmt.Errorf("verification check: %w", err)
	}

	if found {
		session.State = VerificationRequired
	} else {
		session.State = Authenticated
	}
	return found, nil
}

func SubmitVerificationCode(session *Session, code string) error {
	if err := session.Page.Fill(authCodeSelector, code); err != nil {
		return fmt.Errorf("verification: %w", err)
	}
	if err := session.Page.Click(authCodeSubmitSelector); err != nil {
		return fmt.Errorf("verification: %w", err)
	}
	return nil
}

// VerificationRejected waits up to timeout for the portal to report the code
// as invalid. No rejection within the wait counts as acceptance.
func VerificationRejected(session *Session, timeout time.Duration) (bool, error) {
	rejected, err := session.Page.WaitForText(invalidAuthCodeText, timeout)
	if err != nil {
		return false, fmt.Errorf("verification result: %w", err)
	}
	return rejected, nil
}

type Authenticator struct {
	Prompter CodePrompter
	Progress Progress
	Logger   *slog.Logger
	Timeouts Timeouts

	// MaxAttempts caps rejected codes. Zero leaves the loop bounded only by
	// the operator cancelling, which requires an interactive prompter.
	MaxAttempts int
}

func (a *Authenticator) Login(session *Session, id, secret string) error {
	a.Progress.Start("Logging you in.")
	if err := SubmitCredentials(session, id, secret, a.Timeouts.Element); err != nil {
		session.State = Failed
		a.Progress.Fail("")
		return err
	}
	a.Progress.Succeed("")
	return nil
}

// Verify resolves the optional verification challenge. On return without
// error the session is Authenticated; otherwise it is Failed.
func (a *Authenticator) Verify(ctx context.Context, session *Session) error {
	a.Progress.Start("Checking for 2-step verification.")

	required, err := DetectVerificationChallenge(session, a.Timeouts.VerificationDetect)
	if err != nil {
		session.State = Failed
		a.Progress.Fail("")
		return err
	}
	if !required {
		a.Progress.Info("2-step verification not needed, skipped.")
		return nil
	}
	a.Progress.Succeed("")

	for attempt := 1; ; attempt++ {
		a.Progress.Stop()

		code, err := a.promptCode(ctx)
		if err != nil {
			session.State = Failed
			return err
		}

		a.Progress.Start("Executing verification.")
		if err := SubmitVerificationCode(session, code); err != nil {
			session.State = Failed
			a.Progress.Fail("")
			return err
		}

		rejected, err := VerificationRejected(session, a.Timeouts.Rejection)
		if err != nil {
			session.State = Failed
			a.Progress.Fail("")
			return err
		}

		if !rejected {
			session.State = Authenticated
			a.Progress.Succeed("")
			return nil
		}

		session.State = VerificationRetry
		a.Progress.Fail("Wrong auth code. Please try again.")
		a.Logger.Info("verification code rejected", "attempt", attempt)

		if a.MaxAttempts > 0 && attempt >= a.MaxAttempts {
			session.State = Failed
			return fmt.Errorf("%w after %d attempts", ErrVerificationExhausted, attempt)
		}

		// the rejection is shown in a dialog that covers the code input
		if d := DismissDialogs(session.Page, a.Timeouts.Dialog); d.Outcome == Error {
			a.Logger.Warn("failed to close rejection dialog", "err", d.Err)
		}
		session.State = VerificationRequired
	}
}

func (a *Authenticator) promptCode(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerificationCancelled, err)
	}

	code, err := a.Prompter.PromptCode(ctx)
	if err != nil {
		if errors.Is(err, ErrVerificationCancelled) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", ErrVerificationCancelled, ctxErr)
		}
		return "", fmt.Errorf("failed to read verification code: %w", err)
	}

	if err := ValidateAuthCode(code); err != nil {
		return "", fmt.Errorf("invalid verification code: %w", err)
	}
	return code, nil
}
