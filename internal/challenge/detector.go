// Package challenge classifies the page Instagram shows after a login submit
// and waits out verification checkpoints.
package challenge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

// HomeSelector is the navigation icon present only for a logged-in session.
const HomeSelector = `svg[aria-label="Home"]`

// Type represents what the post-submit page shows.
type Type string

const (
	// TypeNone indicates no known failure text was found.
	TypeNone Type = "none"
	// TypeIncorrectPassword indicates the password was rejected.
	TypeIncorrectPassword Type = "incorrect_password"
	// TypeSuspiciousLogin indicates Instagram blocked the attempt outright.
	TypeSuspiciousLogin Type = "suspicious_login"
	// TypeCheckpoint indicates an identity confirmation step.
	TypeCheckpoint Type = "checkpoint"
)

// Marker texts in priority order. The first present one wins.
var markers = []struct {
	text string
	typ  Type
}{
	{"Sorry, your password was incorrect", TypeIncorrectPassword},
	{"Suspicious login attempt", TypeSuspiciousLogin},
	{"Help us confirm it's you", TypeCheckpoint},
}

// Buttons pressed on a checkpoint page to trigger the automatic check.
var checkpointButtons = []string{"Next", "Send Security Code"}

// Classify inspects rendered HTML for known post-login states.
func Classify(html string) Type {
	// the checkpoint text is rendered with a typographic apostrophe on some locales
	normalized := strings.ReplaceAll(html, "’", "'")
	normalized = strings.ReplaceAll(normalized, "&#x27;", "'")
	normalized = strings.ReplaceAll(normalized, "&#39;", "'")
	for _, m := range markers {
		if strings.Contains(normalized, m.text) {
			return m.typ
		}
	}
	return TypeNone
}

// Detector detects and waits out login challenges.
type Detector struct {
	logger       *slog.Logger
	pollInterval time.Duration
	settle       time.Duration
	sleep        func(context.Context, time.Duration)
}

// NewDetector creates a new challenge detector.
func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{
		logger:       logger,
		pollInterval: 1 * time.Second,
		settle:       2 * time.Second,
		sleep:        pacing.Sleep,
	}
}

// WithTiming overrides the Home poll interval and the pause after a checkpoint click.
func (d *Detector) WithTiming(poll, settle time.Duration) *Detector {
	d.pollInterval = poll
	d.settle = settle
	return d
}

// Detect classifies the current page.
func (d *Detector) Detect(ctx context.Context, page browser.Page) (Type, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return TypeNone, err
	}
	return Classify(html), nil
}

// ClickThrough presses the checkpoint's continue buttons that are present.
func (d *Detector) ClickThrough(ctx context.Context, page browser.Page) {
	for _, text := range checkpointButtons {
		clicked, err := page.ClickText(ctx, "button", text)
		if err != nil {
			d.logger.Debug("checkpoint button search failed", "text", text, "error", err)
			continue
		}
		if clicked {
			d.logger.Info("clicked checkpoint button", "text", text)
			d.sleep(ctx, d.settle)
		}
	}
}

// WaitForHome polls for the Home indicator until timeout. Returns true once it appears.
func (d *Detector) WaitForHome(ctx context.Context, page browser.Page, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		if page.WaitVisible(ctx, HomeSelector, d.pollInterval) {
			return true
		}
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			return false
		}
		d.sleep(ctx, d.pollInterval)
	}
}
