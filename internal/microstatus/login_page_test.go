package microstatus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(prompter CodePrompter) (*Authenticator, *recordingProgress) {
	progress := &recordingProgress{}
	return &Authenticator{
		Prompter: prompter,
		Progress: progress,
		Logger:   testLogger(),
		Timeouts: testTimeouts(),
	}, progress
}

func TestSubmitCredentials(t *testing.T) {
	page := newFakePage().withLoginForm()
	session := NewSession(DefaultBaseURL, page)

	err := SubmitCredentials(session, "E-1001", "hunter2", testTimeouts().Element)
	require.NoError(t, err)

	assert.Equal(t, CredentialsSubmitted, session.State)
	assert.Equal(t, "E-1001", page.fills[employeeIDSelector])
	assert.Equal(t, "hunter2", page.fills[passwordSelector])
	assert.Equal(t, []string{employeeButtonSelector, loginSubmitSelector}, page.clicks)
}

func TestSubmitCredentials_MissingLoginForm(t *testing.T) {
	page := newFakePage()
	session := NewSession(DefaultBaseURL, page)

	err := SubmitCredentials(session, "E-1001", "hunter2", testTimeouts().Element)
	require.ErrorIs(t, err, ErrSelectorNotFound)
	assert.Contains(t, err.Error(), employeeButtonSelector)
	assert.Empty(t, page.clicks)
}

func TestDetectVerificationChallenge(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		session := NewSession(DefaultBaseURL, newFakePage())
		found, err := DetectVerificationChallenge(session, testTimeouts().VerificationDetect)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, Authenticated, session.State)
	})

	t.Run("present", func(t *testing.T) {
		session := NewSession(DefaultBaseURL, newFakePage().withVerification())
		found, err := DetectVerificationChallenge(session, testTimeouts().VerificationDetect)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, VerificationRequired, session.State)
	})

	t.Run("failure propagates", func(t *testing.T) {
		page := newFakePage()
		page.waitErr = errBrowserCrashed
		session := NewSession(DefaultBaseURL, page)
		_, err := DetectVerificationChallenge(session, testTimeouts().VerificationDetect)
		require.ErrorIs(t, err, errBrowserCrashed)
	})
}

func TestVerify_NotRequired(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"123456"}}
	auth, progress := newTestAuthenticator(prompter)
	session := NewSession(DefaultBaseURL, newFakePage())
	session.State = CredentialsSubmitted

	require.NoError(t, auth.Verify(context.Background(), session))

	assert.Equal(t, Authenticated, session.State)
	assert.Zero(t, prompter.prompts)
	assert.True(t, progress.has("info:2-step verification not needed"))
}

func TestVerify_AcceptedFirstTry(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"123456"}}
	auth, _ := newTestAuthenticator(prompter)
	page := newFakePage().withVerification()
	session := NewSession(DefaultBaseURL, page)

	require.NoError(t, auth.Verify(context.Background(), session))

	assert.Equal(t, Authenticated, session.State)
	assert.Equal(t, 1, prompter.prompts)
	assert.Equal(t, "123456", page.fills[authCodeSelector])
	assert.Equal(t, 1, page.clickCount(authCodeSubmitSelector))
}

func TestVerify_RejectedThenAccepted(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"111111", "222222"}}
	auth, progress := newTestAuthenticator(prompter)
	page := newFakePage().withVerification("111111")
	session := NewSession(DefaultBaseURL, page)

	require.NoError(t, auth.Verify(context.Background(), session))

	assert.Equal(t, Authenticated, session.State)
	assert.Equal(t, 2, prompter.prompts)
	assert.Equal(t, 2, page.clickCount(authCodeSubmitSelector))
	assert.Equal(t, 1, page.clickCount(dialogCloseSelector))
	assert.True(t, progress.has("fail:Wrong auth code"))
}

func TestVerify_OperatorCancels(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"111111"}}
	auth, _ := newTestAuthenticator(prompter)
	session := NewSession(DefaultBaseURL, newFakePage().withVerification("111111"))

	err := auth.Verify(context.Background(), session)
	require.ErrorIs(t, err, ErrVerificationCancelled)
	assert.Equal(t, Failed, session.State)
	assert.Equal(t, 1, prompter.prompts)
}

func TestVerify_ContextCancelled(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"123456"}}
	auth, _ := newTestAuthenticator(prompter)
	session := NewSession(DefaultBaseURL, newFakePage().withVerification())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := auth.Verify(ctx, session)
	require.ErrorIs(t, err, ErrVerificationCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, session.State)
	assert.Zero(t, prompter.prompts)
}

func TestVerify_AttemptsExhausted(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"111111", "111111", "111111", "222222"}}
	auth, _ := newTestAuthenticator(prompter)
	auth.MaxAttempts = 3
	session := NewSession(DefaultBaseURL, newFakePage().withVerification("111111"))

	err := auth.Verify(context.Background(), session)
	require.ErrorIs(t, err, ErrVerificationExhausted)
	assert.Equal(t, Failed, session.State)
	assert.Equal(t, 3, prompter.prompts)
}

func TestVerify_InvalidCodeFromPrompter(t *testing.T) {
	prompter := &scriptedPrompter{codes: []string{"12ab"}}
	auth, _ := newTestAuthenticator(prompter)
	page := newFakePage().withVerification()
	session := NewSession(DefaultBaseURL, page)

	err := auth.Verify(context.Background(), session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid verification code")
	assert.Zero(t, page.clickCount(authCodeSubmitSelector))
}

func TestValidateAuthCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12a456", false},
		{" 123456", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateAuthCode(tt.code)
		if tt.valid {
			assert.NoError(t, err, tt.code)
		} else {
			assert.Error(t, err, tt.code)
		}
	}
}
