package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

// CollectorOptions bounds the collection loop.
type CollectorOptions struct {
	MaxIterations   int
	SaturationLimit int
	RowWait         time.Duration
	JitterMin       time.Duration
	JitterMax       time.Duration
	RichRows        bool
}

// DefaultCollectorOptions returns the standard loop bounds.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		MaxIterations:   300,
		SaturationLimit: 5,
		RowWait:         2 * time.Second,
		JitterMin:       200 * time.Millisecond,
		JitterMax:       400 * time.Millisecond,
	}
}

// Collector scrolls a dialog until the list saturates or a bound is hit.
type Collector struct {
	opts   CollectorOptions
	logger *slog.Logger
	sleep  func(context.Context, time.Duration)
	now    func() time.Time
}

// NewCollector creates a collector.
func NewCollector(opts CollectorOptions, logger *slog.Logger) *Collector {
	return &Collector{
		opts:   opts,
		logger: logger,
		sleep:  pacing.Sleep,
		now:    time.Now,
	}
}

// Collect gathers unique users from d in first-seen order.
// It returns the users, why it stopped and how many iterations ran.
func (c *Collector) Collect(ctx context.Context, d Dialog, deadline time.Time) ([]models.ScrapedUser, models.StopReason, int) {
	var (
		users      = []models.ScrapedUser{}
		seen       = make(map[string]struct{})
		noGrowth   int
		iterations int
	)

	for iterations < c.opts.MaxIterations {
		if ctx.Err() != nil {
			return users, models.StopCancelled, iterations
		}
		if !deadline.IsZero() && c.now().After(deadline) {
			c.logger.Warn("time budget reached, stopping scrape", "users", len(users), "iterations", iterations)
			return users, models.StopTimeBudget, iterations
		}
		iterations++

		if !d.WaitForRows(ctx, c.opts.RowWait) {
			c.logger.Debug("no rows yet, scrolling anyway", "iteration", iterations)
		}
		c.sleep(ctx, c.jitter())

		rows, err := d.Rows(ctx, c.opts.RichRows)
		if err != nil {
			if ctx.Err() != nil {
				return users, models.StopCancelled, iterations
			}
			c.logger.Error("failed to read dialog rows", "error", err, "iteration", iterations)
			return users, models.StopError, iterations
		}

		before := len(users)
		users = append(users, ExtractUsers(rows, seen, c.opts.RichRows)...)
		c.logger.Debug("rows collected", "iteration", iterations, "new", len(users)-before, "total", len(users))

		c.sleep(ctx, 100*time.Millisecond)

		grew, err := d.Scroll(ctx)
		if err != nil {
			c.logger.Debug("programmatic scroll failed", "error", err)
		}
		if grew {
			c.sleep(ctx, 200*time.Millisecond)
		} else {
			if err := d.Wheel(ctx); err != nil {
				c.logger.Debug("wheel scroll failed", "error", err)
			}
			c.sleep(ctx, 500*time.Millisecond)
		}

		if len(users) > before {
			noGrowth = 0
		} else {
			noGrowth++
		}
		if noGrowth >= c.opts.SaturationLimit {
			return users, models.StopSaturated, iterations
		}
	}

	return users, models.StopMaxIterations, iterations
}

func (c *Collector) jitter() time.Duration {
	return pacing.Between(c.opts.JitterMin, c.opts.JitterMax)
}

// ExtractUsers converts dialog rows to users, dropping non-account links and
// usernames already in seen. seen is updated in place.
func ExtractUsers(rows []Row, seen map[string]struct{}, rich bool) []models.ScrapedUser {
	var out []models.ScrapedUser
	for _, r := range rows {
		username := strings.ReplaceAll(r.Href, "/", "")
		if username == "" {
			continue
		}
		if _, skip := nonUserPaths[username]; skip {
			continue
		}
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		u := models.NewScrapedUser(username)
		if rich {
			u.FullName = nonEmpty(r.FullName)
			u.ProfilePic = nonEmpty(r.ProfilePic)
		}
		out = append(out, u)
	}
	return out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
