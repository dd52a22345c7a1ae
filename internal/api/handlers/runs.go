package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
)

// RunLister reads recent journal rows.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// RunsHandler serves the run journal.
type RunsHandler struct {
	journal RunLister
}

// NewRunsHandler creates a runs handler. A nil journal answers 404.
func NewRunsHandler(journal RunLister) *RunsHandler {
	return &RunsHandler{journal: journal}
}

// Handle returns the most recent runs, newest first.
func (h *RunsHandler) Handle(ctx context.Context, limit int) (*models.RunsResponse, error) {
	if h.journal == nil {
		return nil, huma.Error404NotFound("run journal is disabled (set RUN_DB_PATH)")
	}
	runs, err := h.journal.Recent(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to read run journal", err)
	}
	return &models.RunsResponse{Runs: runs}, nil
}
