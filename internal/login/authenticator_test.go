package login

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/browser/browsertest"
	"github.com/Bangnus/Check-Unfollows-IG/internal/challenge"
	"github.com/Bangnus/Check-Unfollows-IG/internal/consent"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
)

var creds = models.Credentials{Username: "alice", Password: "s3cret"}

func testOptions() Options {
	opts := DefaultOptions()
	opts.HomeTimeout = 10 * time.Millisecond
	opts.ChallengeWait = 0
	opts.KeyDelay = 0
	return opts
}

func newTestAuthenticator(opts Options) *Authenticator {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	a := NewAuthenticator(
		consent.NewDismisser(logger).WithSettle(0),
		challenge.NewDetector(logger).WithTiming(time.Millisecond, 0),
		opts,
		logger,
	)
	a.sleep = func(context.Context, time.Duration) {}
	return a
}

// loginPage renders a working login form; submitting it shows the Home icon
// unless html replaces the post-submit document.
func loginPage(html string) *browsertest.Page {
	page := browsertest.NewPage("input", UsernameSelectors[0], passwordSelector, submitSelector)
	page.PageTitle = "Login • Instagram"
	page.OnClick = func(p *browsertest.Page, selector, _ string) {
		if selector != submitSelector {
			return
		}
		if html != "" {
			p.SetHTML(html)
			return
		}
		p.Show(challenge.HomeSelector)
	}
	return page
}

func TestLogin_Success(t *testing.T) {
	page := loginPage("")

	out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)

	if !out.Success || out.State != StateSuccess {
		t.Fatalf("Login() = %+v, want success", out)
	}
	if got := page.Typed(UsernameSelectors[0]); got != "alice" {
		t.Errorf("typed username = %q", got)
	}
	if got := page.Typed(passwordSelector); got != "s3cret" {
		t.Errorf("typed password = %q", got)
	}
	if nav := page.CallsWithPrefix("navigate"); len(nav) != 1 || nav[0] != "navigate "+LoginURL {
		t.Errorf("navigations = %v", nav)
	}
	if len(page.CallsWithPrefix("mouse")) != 2 {
		t.Errorf("mouse moves = %v, want one before and one after entry", page.CallsWithPrefix("mouse"))
	}
}

func TestLogin_UsernameFallbackStopsAtFirstMatch(t *testing.T) {
	third := UsernameSelectors[2]
	page := browsertest.NewPage("input", third, `input[type="text"]`, passwordSelector, submitSelector)
	page.OnClick = func(p *browsertest.Page, selector, _ string) {
		if selector == submitSelector {
			p.Show(challenge.HomeSelector)
		}
	}

	out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)
	if !out.Success {
		t.Fatalf("Login() = %+v, want success", out)
	}

	var tried []string
	for _, c := range page.CallsWithPrefix("waitVisible ") {
		sel := strings.TrimPrefix(c, "waitVisible ")
		for _, candidate := range UsernameSelectors {
			if sel == candidate {
				tried = append(tried, sel)
			}
		}
	}
	want := UsernameSelectors[:3]
	if len(tried) != len(want) {
		t.Fatalf("candidates tried = %v, want %v", tried, want)
	}
	for i := range want {
		if tried[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, tried[i], want[i])
		}
	}
	if got := page.Typed(third); got != "alice" {
		t.Errorf("typed into third candidate = %q, want alice", got)
	}
}

func TestLogin_UsernameNotFound(t *testing.T) {
	page := browsertest.NewPage(passwordSelector)
	page.PageTitle = "Page Not Found • Instagram"

	out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)

	if out.Success || out.State != StateError {
		t.Fatalf("Login() = %+v, want error state", out)
	}
	want := "Could not find username input field. Page: Page Not Found • Instagram"
	if out.Reason != want {
		t.Errorf("Reason = %q, want %q", out.Reason, want)
	}
}

func TestLogin_Classification(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		opts       func(*Options)
		wantState  State
		wantReason string
	}{
		{
			name:       "incorrect password",
			html:       "<p>Sorry, your password was incorrect. Please double-check your password.</p>",
			wantState:  StateInvalidCredentials,
			wantReason: ReasonIncorrectPassword,
		},
		{
			name:       "incorrect password has priority",
			html:       "Help us confirm it's you. Suspicious login attempt. Sorry, your password was incorrect.",
			wantState:  StateInvalidCredentials,
			wantReason: ReasonIncorrectPassword,
		},
		{
			name:       "suspicious login",
			html:       "<h2>Suspicious login attempt</h2>",
			wantState:  StateBlocked,
			wantReason: ReasonSuspiciousLogin,
		},
		{
			name:       "checkpoint terminal without wait",
			html:       "<h2>Help us confirm it's you</h2>",
			wantState:  StateChallengeRequired,
			wantReason: ReasonChallengeRequired,
		},
		{
			name:       "checkpoint auto check times out",
			html:       "<h2>Help us confirm it's you</h2>",
			opts:       func(o *Options) { o.ChallengeWait = 5 * time.Millisecond },
			wantState:  StateChallengeRequired,
			wantReason: ReasonChallengeAutoFailed,
		},
		{
			name: "checkpoint manual check times out",
			html: "<h2>Help us confirm it's you</h2>",
			opts: func(o *Options) {
				o.ChallengeWait = 5 * time.Millisecond
				o.ManualChallenge = true
			},
			wantState:  StateChallengeRequired,
			wantReason: ReasonChallengeManualFailed,
		},
		{
			name:       "home never appears",
			html:       "<html><body>loading</body></html>",
			wantState:  StateVerificationFailed,
			wantReason: ReasonHomeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}

			out := newTestAuthenticator(opts).Login(context.Background(), loginPage(tt.html), creds)

			if out.Success {
				t.Fatalf("Login() = %+v, want failure", out)
			}
			if out.State != tt.wantState {
				t.Errorf("State = %q, want %q", out.State, tt.wantState)
			}
			if out.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", out.Reason, tt.wantReason)
			}
		})
	}
}

func TestLogin_CheckpointClears(t *testing.T) {
	page := loginPage("<h2>Help us confirm it's you</h2>")
	page.Buttons = map[string][]string{"button": {"Next"}}
	base := page.OnClick
	page.OnClick = func(p *browsertest.Page, selector, text string) {
		base(p, selector, text)
		if text == "Next" {
			p.Show(challenge.HomeSelector)
		}
	}

	opts := testOptions()
	opts.ChallengeWait = time.Second

	out := newTestAuthenticator(opts).Login(context.Background(), page, creds)
	if !out.Success {
		t.Fatalf("Login() = %+v, want success after checkpoint", out)
	}
}

func TestLogin_NavigationRetry(t *testing.T) {
	page := loginPage("")
	page.NavigateErrs = []error{browser.ErrNavigationTimeout}

	out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)

	if !out.Success {
		t.Fatalf("Login() = %+v, want success after reload", out)
	}
	if got := len(page.CallsWithPrefix("reload")); got != 1 {
		t.Errorf("reloads = %d, want 1", got)
	}
}

func TestLogin_DismissesConsent(t *testing.T) {
	page := loginPage("")
	page.Buttons = map[string][]string{"button": {"Allow all cookies"}}

	out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)
	if !out.Success {
		t.Fatalf("Login() = %+v", out)
	}
	if got := page.CallsWithPrefix("clickText button Allow all cookies"); len(got) != 1 {
		t.Errorf("consent clicks = %v", got)
	}
}

func TestLogin_Submit(t *testing.T) {
	t.Run("settle timeout still classifies", func(t *testing.T) {
		page := loginPage("Sorry, your password was incorrect.")
		page.SubmitErr = browser.ErrNavigationTimeout

		out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)
		if out.State != StateInvalidCredentials {
			t.Errorf("State = %q, want %q", out.State, StateInvalidCredentials)
		}
	})

	t.Run("other errors are login errors", func(t *testing.T) {
		page := loginPage("")
		page.SubmitErr = errors.New("target closed")

		out := newTestAuthenticator(testOptions()).Login(context.Background(), page, creds)
		if out.State != StateError || out.Reason != "Login Error: target closed" {
			t.Errorf("Login() = %+v", out)
		}
	})
}

func TestLogin_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestAuthenticator(testOptions()).Login(ctx, loginPage(""), creds)
	if out.Success || out.State != StateError {
		t.Errorf("Login() = %+v, want error", out)
	}
}

func TestFirstMatch(t *testing.T) {
	page := browsertest.NewPage("b", "c")

	sel, ok := FirstMatch(context.Background(), page, []string{"a", "b", "c"}, time.Millisecond)
	if !ok || sel != "b" {
		t.Errorf("FirstMatch() = %q, %v, want b", sel, ok)
	}
	if calls := page.CallsWithPrefix("waitVisible"); len(calls) != 2 {
		t.Errorf("calls = %v, want a then b only", calls)
	}

	if _, ok := FirstMatch(context.Background(), page, []string{"x", "y"}, time.Millisecond); ok {
		t.Error("FirstMatch() found a missing selector")
	}
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateSuccess, StateChallengeRequired, StateInvalidCredentials, StateBlocked, StateVerificationFailed, StateError} {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range []State{StateNavigatingToLogin, StateHandlingCookieConsent, StateEnteringCredentials, StateSubmitting, StateAwaitingResult} {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}
