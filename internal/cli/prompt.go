package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
)

// DirectionOptions are the choices offered when no direction is given.
func DirectionOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("DTR Login", string(microstatus.TimeIn)),
		huh.NewOption("DTR Logout", string(microstatus.TimeOut)),
	}
}

func SelectDirection(ctx context.Context) (microstatus.Direction, error) {
	var choice string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to do?").
				Options(DirectionOptions()...).
				Value(&choice),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("action prompt cancelled: %w", err)
	}

	return microstatus.ParseDirection(choice)
}

// CodePrompter asks for the verification code in the terminal.
type CodePrompter struct{}

func (CodePrompter) PromptCode(ctx context.Context) (string, error) {
	var code string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your auth code (6-digit)").
				CharLimit(6).
				Value(&code).
				Validate(func(s string) error {
					return microstatus.ValidateAuthCode(strings.TrimSpace(s))
				}),
		),
	)

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", microstatus.ErrVerificationCancelled
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(code), nil
}

// NoninteractivePrompter is used when stdin is not a terminal; nobody can
// answer, so the verification loop ends straight away.
type NoninteractivePrompter struct{}

func (NoninteractivePrompter) PromptCode(context.Context) (string, error) {
	return "", fmt.Errorf("%w: 2-step verification needs an interactive terminal", microstatus.ErrVerificationCancelled)
}

// PromptCredentials asks for the employee id and password, prefilled with
// the current values.
func PromptCredentials(ctx context.Context, employeeID, password string) (string, string, error) {
	required := func(name string) func(string) error {
		return func(s string) error {
			if len(strings.TrimSpace(s)) == 0 {
				return fmt.Errorf("%s is required", name)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Employee ID").
				Value(&employeeID).
				Validate(required("employee id")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(required("password")),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return "", "", fmt.Errorf("setup cancelled: %w", err)
	}

	return strings.TrimSpace(employeeID), password, nil
}
