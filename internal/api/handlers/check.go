// Package handlers provides HTTP handlers for the check service API.
package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser"
	"github.com/Bangnus/Check-Unfollows-IG/internal/compare"
	"github.com/Bangnus/Check-Unfollows-IG/internal/config"
	"github.com/Bangnus/Check-Unfollows-IG/internal/logging"
	"github.com/Bangnus/Check-Unfollows-IG/internal/login"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/pacing"
)

const (
	msgTargetRequired   = "Target user (clientuser or username) is required."
	msgPasswordRequired = "Password is required."
	msgBrowser          = "Browser unavailable"
	msgInternal         = "Internal Server Error"
)

// Authenticator logs in on a leased page.
type Authenticator interface {
	Login(ctx context.Context, page browser.Page, creds models.Credentials) login.Outcome
}

// ListScraper collects one relationship list.
type ListScraper interface {
	ScrapeList(ctx context.Context, page browser.Page, owner string, list models.ListType, deadline time.Time) (models.UserListResult, error)
}

// RunRecorder stores a journal row per run.
type RunRecorder interface {
	Record(ctx context.Context, run models.RunRecord) error
}

// CheckOptions holds the per-run budget and pacing.
type CheckOptions struct {
	ScrapeBudget     time.Duration
	DelayMin         time.Duration
	DelayMax         time.Duration
	DebugScreenshots bool
}

// CheckOptionsFromConfig derives handler options from the service config.
func CheckOptionsFromConfig(cfg *config.Config) CheckOptions {
	return CheckOptions{
		ScrapeBudget:     cfg.EffectiveScrapeBudget(),
		DelayMin:         cfg.RequestDelayMin,
		DelayMax:         cfg.RequestDelayMax,
		DebugScreenshots: cfg.DebugScreenshots,
	}
}

// CheckHandler runs login, both scrapes and the comparison for one request.
type CheckHandler struct {
	manager *browser.Manager
	auth    Authenticator
	scraper ListScraper
	journal RunRecorder
	opts    CheckOptions
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration)
	now     func() time.Time
}

// NewCheckHandler creates a check handler. journal may be nil.
func NewCheckHandler(
	manager *browser.Manager,
	auth Authenticator,
	scraper ListScraper,
	journal RunRecorder,
	opts CheckOptions,
	logger *slog.Logger,
) *CheckHandler {
	return &CheckHandler{
		manager: manager,
		auth:    auth,
		scraper: scraper,
		journal: journal,
		opts:    opts,
		logger:  logger,
		sleep:   pacing.Sleep,
		now:     time.Now,
	}
}

// Handle processes a check request.
func (h *CheckHandler) Handle(ctx context.Context, req *models.CheckRequest) (*models.CheckResponse, error) {
	target := req.Target()
	if target == "" {
		return nil, &CheckError{Status: http.StatusBadRequest, Message: msgTargetRequired}
	}
	if req.Password == "" {
		return nil, &CheckError{Status: http.StatusBadRequest, Message: msgPasswordRequired}
	}

	start := h.now()
	runID := ulid.Make().String()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx, h.logger)
	creds := req.Credentials()

	logger.Info("check request received",
		"target", target,
		"creds", creds,
		"include_lists", req.IncludeLists,
	)

	run := models.RunRecord{ID: runID, Target: target}
	defer func() {
		run.DurationMS = h.now().Sub(start).Milliseconds()
		h.record(ctx, logger, run)
	}()

	lease, err := h.manager.Lease(ctx)
	if err != nil {
		logger.Error("failed to lease browser", "error", err)
		run.Outcome, run.Error = models.OutcomeError, err.Error()
		return nil, &CheckError{Status: http.StatusInternalServerError, Message: msgBrowser, Details: err.Error()}
	}
	defer lease.Release()

	page := lease.Page()
	deadline := start.Add(h.opts.ScrapeBudget)
	if h.opts.ScrapeBudget <= 0 {
		deadline = time.Time{}
	}

	outcome := h.auth.Login(ctx, page, creds)
	run.LoginState = string(outcome.State)
	if !outcome.Success {
		run.Outcome, run.Error = models.OutcomeLoginFailed, outcome.Reason
		return nil, &CheckError{
			Status:     http.StatusUnauthorized,
			Message:    outcome.Reason,
			State:      string(outcome.State),
			Screenshot: h.screenshot(ctx, req, lease),
		}
	}

	following, err := h.scrape(ctx, logger, page, target, models.ListFollowing, deadline)
	if err != nil {
		return nil, h.fail(ctx, logger, req, lease, &run, err)
	}
	h.sleep(ctx, h.delay())
	followers, err := h.scrape(ctx, logger, page, target, models.ListFollowers, deadline)
	if err != nil {
		return nil, h.fail(ctx, logger, req, lease, &run, err)
	}
	if err := lease.Check(); err != nil {
		return nil, h.fail(ctx, logger, req, lease, &run, err)
	}

	cmp := compare.Compare(following.Users, followers.Users)
	durationMS := h.now().Sub(start).Milliseconds()
	resp := models.NewCheckResponse(runID, cmp, following, followers, req.IncludeLists, durationMS)

	run.Outcome = models.OutcomeOK
	run.FollowingCount = cmp.Stats.FollowingCount
	run.FollowersCount = cmp.Stats.FollowersCount
	run.NotFollowingBackCount = cmp.Stats.NotFollowingBackCount
	run.FollowingStopReason = following.StopReason
	run.FollowersStopReason = followers.StopReason

	logger.Info("check completed",
		"following", cmp.Stats.FollowingCount,
		"followers", cmp.Stats.FollowersCount,
		"not_following_back", cmp.Stats.NotFollowingBackCount,
		"partial", resp.Diagnostics.Partial,
		"duration_ms", durationMS,
	)
	return resp, nil
}

// fail converts an unclassified error into a 500 and marks the run.
func (h *CheckHandler) fail(ctx context.Context, logger *slog.Logger, req *models.CheckRequest, lease *browser.Lease, run *models.RunRecord, err error) *CheckError {
	logger.Error("check failed", "error", err)
	run.Outcome, run.Error = models.OutcomeError, err.Error()
	return &CheckError{
		Status:     http.StatusInternalServerError,
		Message:    msgInternal,
		Details:    err.Error(),
		Screenshot: h.screenshot(ctx, req, lease),
	}
}

// scrape runs one list. A missing link or dialog degrades to an empty list;
// only cancellation aborts the run.
func (h *CheckHandler) scrape(ctx context.Context, logger *slog.Logger, page browser.Page, target string, list models.ListType, deadline time.Time) (models.UserListResult, error) {
	result, err := h.scraper.ScrapeList(ctx, page, target, list, deadline)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, err
	}
	logger.Warn("list scrape failed, continuing with partial data", "list", list, "stop_reason", result.StopReason, "error", err)
	return result, nil
}

func (h *CheckHandler) screenshot(ctx context.Context, req *models.CheckRequest, lease *browser.Lease) string {
	if !req.Screenshot && !h.opts.DebugScreenshots {
		return ""
	}
	png := lease.Screenshot(ctx)
	if png == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

func (h *CheckHandler) record(ctx context.Context, logger *slog.Logger, run models.RunRecord) {
	if h.journal == nil {
		return
	}
	// The request context may already be cancelled; the row is still wanted.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := h.journal.Record(rctx, run); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}

func (h *CheckHandler) delay() time.Duration {
	return pacing.Between(h.opts.DelayMin, h.opts.DelayMax)
}
