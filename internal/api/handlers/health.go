package handlers

import (
	"context"

	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/version"
)

// StatsSource reports the browser handle state.
type StatsSource interface {
	Stats() models.BrowserStats
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	browser StatsSource
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(browser StatsSource) *HealthHandler {
	return &HealthHandler{browser: browser}
}

// Handle returns the health status. The browser is not launched by a health check.
func (h *HealthHandler) Handle(ctx context.Context) *models.HealthResponse {
	return &models.HealthResponse{
		Status:  "healthy",
		Version: version.Get().Version,
		Browser: h.browser.Stats(),
	}
}
