package login

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/challenge"
	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
	"github.com/Bangnus/Check-Unfollows-IG/internal/consent"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

// LoginURL is the web login form.
const LoginURL = "https://www.instagram.com/accounts/login/"

const (
	passwordSelector = `input[name="password"]`
	submitSelector   = `button[type="submit"]`
)

// Options holds the login timeouts.
type Options struct {
	NavigationTimeout time.Duration
	InputWait         time.Duration
	CandidateTimeout  time.Duration
	PasswordTimeout   time.Duration
	SubmitTimeout     time.Duration
	HomeTimeout       time.Duration
	KeyDelay          time.Duration
	// ChallengeWait is how long a checkpoint may take to clear; 0 makes it terminal.
	ChallengeWait time.Duration
	// ManualChallenge marks a visible browser where a person can complete the checkpoint.
	ManualChallenge bool
	// HumanPauses enables the cosmetic mouse movement around credential entry.
	HumanPauses bool
}

// DefaultOptions returns the standard timeouts.
func DefaultOptions() Options {
	return Options{
		NavigationTimeout: 60 * time.Second,
		InputWait:         15 * time.Second,
		CandidateTimeout:  3 * time.Second,
		PasswordTimeout:   30 * time.Second,
		SubmitTimeout:     60 * time.Second,
		HomeTimeout:       15 * time.Second,
		KeyDelay:          100 * time.Millisecond,
		ChallengeWait:     30 * time.Second,
		HumanPauses:       true,
	}
}

// OptionsFromConfig applies the environment-dependent challenge policy.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.ChallengeWait = cfg.ChallengeWait
	opts.ManualChallenge = !cfg.Headless
	return opts
}

// Authenticator runs the login state machine.
type Authenticator struct {
	consent  *consent.Dismisser
	detector *challenge.Detector
	opts     Options
	logger   *slog.Logger

	rand  *rand.Rand
	sleep func(context.Context, time.Duration)
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(dismisser *consent.Dismisser, detector *challenge.Detector, opts Options, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		consent:  dismisser,
		detector: detector,
		opts:     opts,
		logger:   logger,
		rand:     newRand(),
		sleep:    pacing.Sleep,
	}
}

// Login signs in with creds on page.
func (a *Authenticator) Login(ctx context.Context, page browser.Page, creds models.Credentials) Outcome {
	start := time.Now()
	out := a.login(ctx, page, creds)

	attrs := []any{"user", creds.Username, "state", out.State, "duration", time.Since(start)}
	if out.Success {
		a.logger.Info("login succeeded", attrs...)
	} else {
		a.logger.Warn("login failed", append(attrs, "reason", out.Reason)...)
	}
	return out
}

func (a *Authenticator) login(ctx context.Context, page browser.Page, creds models.Credentials) Outcome {
	state := StateNavigatingToLogin
	a.logger.Debug("login step", "state", state)

	if err := page.Navigate(ctx, LoginURL, a.opts.NavigationTimeout); err != nil {
		if ctx.Err() != nil {
			return errored(ctx.Err())
		}
		a.logger.Warn("login page navigation failed, reloading", "error", err)
		if err := page.Reload(ctx, a.opts.NavigationTimeout); err != nil {
			return errored(err)
		}
	}
	if a.opts.HumanPauses {
		a.humanPause(ctx, page)
	}

	state = StateHandlingCookieConsent
	a.logger.Debug("login step", "state", state)
	a.consent.Dismiss(ctx, page)
	if !page.WaitVisible(ctx, "input", a.opts.InputWait) {
		a.logger.Debug("no input rendered yet", "wait", a.opts.InputWait)
	}

	state = StateEnteringCredentials
	a.logger.Debug("login step", "state", state)
	userSel, ok := FirstMatch(ctx, page, UsernameSelectors, a.opts.CandidateTimeout)
	if !ok {
		if ctx.Err() != nil {
			return errored(ctx.Err())
		}
		return failed(StateError, reasonUsernameNotFound+page.Title(ctx))
	}
	a.logger.Debug("username field found", "selector", userSel)

	if err := page.Type(ctx, userSel, creds.Username, a.opts.KeyDelay); err != nil {
		return errored(err)
	}
	if !page.WaitVisible(ctx, passwordSelector, a.opts.PasswordTimeout) {
		if ctx.Err() != nil {
			return errored(ctx.Err())
		}
		return errored(errors.New("password input not found"))
	}
	if err := page.Type(ctx, passwordSelector, creds.Password, a.opts.KeyDelay); err != nil {
		return errored(err)
	}
	if a.opts.HumanPauses {
		a.humanPause(ctx, page)
	}

	state = StateSubmitting
	a.logger.Debug("login step", "state", state)
	if err := page.ClickAndWaitNavigation(ctx, submitSelector, a.opts.SubmitTimeout); err != nil {
		// wrong passwords render in place without a navigation, so a settle
		// timeout still goes on to classification
		if !errors.Is(err, browser.ErrNavigationTimeout) {
			return errored(err)
		}
		a.logger.Debug("no navigation after submit", "timeout", a.opts.SubmitTimeout)
	}

	state = StateAwaitingResult
	a.logger.Debug("login step", "state", state)
	return a.awaitResult(ctx, page)
}

func (a *Authenticator) awaitResult(ctx context.Context, page browser.Page) Outcome {
	typ, err := a.detector.Detect(ctx, page)
	if err != nil {
		return errored(err)
	}

	switch typ {
	case challenge.TypeIncorrectPassword:
		return failed(StateInvalidCredentials, ReasonIncorrectPassword)
	case challenge.TypeSuspiciousLogin:
		return failed(StateBlocked, ReasonSuspiciousLogin)
	case challenge.TypeCheckpoint:
		return a.handleCheckpoint(ctx, page)
	}

	if a.detector.WaitForHome(ctx, page, a.opts.HomeTimeout) {
		return succeeded()
	}
	if ctx.Err() != nil {
		return errored(ctx.Err())
	}
	return failed(StateVerificationFailed, ReasonHomeNotFound)
}

func (a *Authenticator) handleCheckpoint(ctx context.Context, page browser.Page) Outcome {
	if a.opts.ChallengeWait <= 0 {
		return failed(StateChallengeRequired, ReasonChallengeRequired)
	}

	a.logger.Info("checkpoint shown, waiting for it to clear", "wait", a.opts.ChallengeWait, "manual", a.opts.ManualChallenge)
	a.detector.ClickThrough(ctx, page)

	if a.detector.WaitForHome(ctx, page, a.opts.ChallengeWait) {
		return succeeded()
	}
	if ctx.Err() != nil {
		return errored(ctx.Err())
	}
	if a.opts.ManualChallenge {
		return failed(StateChallengeRequired, ReasonChallengeManualFailed)
	}
	return failed(StateChallengeRequired, ReasonChallengeAutoFailed)
}
