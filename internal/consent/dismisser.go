// Package consent dismisses Instagram's cookie consent banner.
package consent

import (
	"context"
	"log/slog"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

// bannerButtonSelector is Instagram's own "Allow all cookies" button class pair.
const bannerButtonSelector = `button._a9--._a9_0`

// Button texts tried in order when the known selector is absent.
var buttonTexts = []string{
	"Allow all cookies",
	"Decline optional cookies",
	"Accept",
	"Allow",
}

// Elements that may carry the button text.
var textSelectors = []string{
	`button`,
	`div[role="button"]`,
}

// Dismisser handles cookie consent banner dismissal.
type Dismisser struct {
	logger *slog.Logger
	settle time.Duration
	sleep  func(context.Context, time.Duration)
}

// NewDismisser creates a new cookie consent dismisser.
func NewDismisser(logger *slog.Logger) *Dismisser {
	return &Dismisser{
		logger: logger,
		settle: 1 * time.Second,
		sleep:  pacing.Sleep,
	}
}

// WithSettle overrides the pause after a successful click.
func (d *Dismisser) WithSettle(settle time.Duration) *Dismisser {
	d.settle = settle
	return d
}

// Dismiss clicks the first consent control found. Returns true if one was clicked.
// A missing banner is not an error.
func (d *Dismisser) Dismiss(ctx context.Context, page browser.Page) bool {
	if page.Exists(ctx, bannerButtonSelector) {
		err := page.Click(ctx, bannerButtonSelector, 2*time.Second)
		if err == nil {
			d.logger.Info("dismissed cookie consent banner", "selector", bannerButtonSelector)
			d.sleep(ctx, d.settle)
			return true
		}
		d.logger.Debug("failed to click consent button", "selector", bannerButtonSelector, "error", err)
	}

	for _, text := range buttonTexts {
		for _, sel := range textSelectors {
			clicked, err := page.ClickText(ctx, sel, text)
			if err != nil {
				d.logger.Debug("consent text search failed", "text", text, "error", err)
				continue
			}
			if clicked {
				d.logger.Info("dismissed cookie consent banner", "method", "text_search", "text", text)
				d.sleep(ctx, d.settle)
				return true
			}
		}
	}

	return false
}
