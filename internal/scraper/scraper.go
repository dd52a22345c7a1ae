// Package scraper collects a profile's following or followers list from the
// web UI's relationship dialog.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

var (
	// ErrLinkNotFound is returned when the profile has no link to the list.
	ErrLinkNotFound = errors.New("list link not found")
	// ErrDialogNotFound is returned when clicking the link opened no dialog.
	ErrDialogNotFound = errors.New("list dialog not found")
)

// Options controls profile navigation and the collection loop.
type Options struct {
	NavigationTimeout time.Duration
	LinkWait          time.Duration
	DialogWait        time.Duration
	DialogSettle      time.Duration
	CloseSettle       time.Duration
	Collector         CollectorOptions
}

// DefaultOptions returns the standard timeouts.
func DefaultOptions() Options {
	return Options{
		NavigationTimeout: 30 * time.Second,
		LinkWait:          5 * time.Second,
		DialogWait:        10 * time.Second,
		DialogSettle:      1 * time.Second,
		CloseSettle:       1 * time.Second,
		Collector:         DefaultCollectorOptions(),
	}
}

// OptionsFromConfig applies the configured loop bounds and pacing.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Collector.MaxIterations = cfg.ScrapeMaxIterations
	opts.Collector.SaturationLimit = cfg.ScrapeSaturationLimit
	opts.Collector.JitterMin = cfg.ScrollDelayMin
	opts.Collector.JitterMax = cfg.ScrollDelayMax
	opts.Collector.RichRows = cfg.ScrapeRichRows
	return opts
}

// Scraper opens a list dialog on a profile and collects it.
type Scraper struct {
	opts      Options
	collector *Collector
	logger    *slog.Logger
	sleep     func(context.Context, time.Duration)
	now       func() time.Time
}

// New creates a scraper.
func New(opts Options, logger *slog.Logger) *Scraper {
	return &Scraper{
		opts:      opts,
		collector: NewCollector(opts.Collector, logger),
		logger:    logger,
		sleep:     pacing.Sleep,
		now:       time.Now,
	}
}

// ScrapeList collects list for owner. The result is always usable; a non-nil
// error explains an empty or partial result.
func (s *Scraper) ScrapeList(ctx context.Context, page browser.Page, owner string, list models.ListType, deadline time.Time) (models.UserListResult, error) {
	result := models.UserListResult{
		Owner: owner,
		List:  list,
		Users: []models.ScrapedUser{},
	}
	logger := s.logger.With("owner", owner, "list", list)

	if !deadline.IsZero() && !s.now().Before(deadline) {
		logger.Warn("time budget exhausted before scrape, skipping")
		result.StopReason = models.StopTimeBudget
		return result, nil
	}

	start := s.now()
	if err := page.Navigate(ctx, fmt.Sprintf(profileURLFormat, owner), s.opts.NavigationTimeout); err != nil {
		result.StopReason = stopReasonFor(ctx)
		return result, fmt.Errorf("open profile %s: %w", owner, err)
	}

	link := fmt.Sprintf(listLinkFormat, list)
	if !page.WaitVisible(ctx, link, s.opts.LinkWait) {
		result.StopReason = models.StopLinkNotFound
		return result, fmt.Errorf("%w: %s", ErrLinkNotFound, list)
	}
	if err := page.Click(ctx, link, s.opts.LinkWait); err != nil {
		result.StopReason = stopReasonFor(ctx)
		return result, fmt.Errorf("open %s: %w", list, err)
	}
	if !page.WaitVisible(ctx, dialogSelector, s.opts.DialogWait) {
		result.StopReason = models.StopDialogNotFound
		return result, fmt.Errorf("%w: %s", ErrDialogNotFound, list)
	}
	s.sleep(ctx, s.opts.DialogSettle)

	dialog, marked := newDOMDialog(ctx, page)
	if !marked {
		logger.Debug("no scroll container marked, falling back to tallest div")
	}

	result.Users, result.StopReason, result.Iterations = s.collector.Collect(ctx, dialog, deadline)

	dialog.Close(ctx)
	s.sleep(ctx, s.opts.CloseSettle)

	logger.Info("list scraped",
		"users", len(result.Users),
		"stop_reason", result.StopReason,
		"iterations", result.Iterations,
		"duration", s.now().Sub(start),
	)
	return result, nil
}

func stopReasonFor(ctx context.Context) models.StopReason {
	if ctx.Err() != nil {
		return models.StopCancelled
	}
	return models.StopError
}
