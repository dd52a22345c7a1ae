package handlers

import (
	"context"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/version"
)

// CheckPath is the route the web UI calls.
const CheckPath = "/api/instagram/notfollowingback"

// NewHumaConfig returns the API config shared by the server and the OpenAPI generator.
func NewHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("Check Unfollows IG", version.Get().Short())
	cfg.Info.Description = "Lists the accounts an Instagram profile follows that do not follow it back"
	return cfg
}

// RegisterHealth registers GET /health.
func RegisterHealth(api huma.API, h *HealthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns health status and browser handle statistics",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*models.HumaHealthResponse, error) {
		return &models.HumaHealthResponse{Body: *h.Handle(ctx)}, nil
	})
}

// RegisterCheck registers the check endpoint at CheckPath and /v1/check.
func RegisterCheck(api huma.API, h *CheckHandler) {
	handle := func(ctx context.Context, input *models.HumaCheckRequest) (*models.HumaCheckResponse, error) {
		resp, err := h.Handle(ctx, &input.Body)
		if err != nil {
			return nil, err
		}
		return &models.HumaCheckResponse{Body: *resp}, nil
	}
	huma.Register(api, huma.Operation{
		OperationID: "checkNotFollowingBack",
		Method:      http.MethodPost,
		Path:        CheckPath,
		Summary:     "Check who does not follow back",
		Description: "Logs in, scrapes the following and followers lists and returns the difference",
		Tags:        []string{"Check"},
		Responses:   checkErrorResponses(api),
	}, handle)

	huma.Register(api, huma.Operation{
		OperationID: "check",
		Method:      http.MethodPost,
		Path:        "/v1/check",
		Summary:     "Check who does not follow back (v1)",
		Description: "Alias of " + CheckPath,
		Tags:        []string{"Check"},
		Responses:   checkErrorResponses(api),
	}, handle)
}

// checkErrorResponses documents the failure statuses with the CheckError
// body the handler actually writes, instead of huma's default error model.
func checkErrorResponses(api huma.API) map[string]*huma.Response {
	schema := api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(CheckError{}), true, "CheckError")
	response := func(desc string) *huma.Response {
		return &huma.Response{
			Description: desc,
			Content: map[string]*huma.MediaType{
				"application/json": {Schema: schema},
			},
		}
	}
	return map[string]*huma.Response{
		"400": response("Missing username or password"),
		"401": response("Login failed; state names the failure"),
		"500": response("Browser unavailable or unexpected failure"),
	}
}

// RegisterRuns registers GET /v1/runs.
func RegisterRuns(api huma.API, h *RunsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/v1/runs",
		Summary:     "Recent runs",
		Description: "Lists recent check runs from the journal",
		Tags:        []string{"Runs"},
	}, func(ctx context.Context, input *models.RunsRequest) (*models.HumaRunsResponse, error) {
		resp, err := h.Handle(ctx, input.Limit)
		if err != nil {
			return nil, err
		}
		return &models.HumaRunsResponse{Body: *resp}, nil
	})
}
