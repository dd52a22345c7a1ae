package models

// Diagnostics describes how each list scrape ended.
type Diagnostics struct {
	FollowingStopReason StopReason `json:"followingStopReason"`
	FollowersStopReason StopReason `json:"followersStopReason"`
	FollowingIterations int        `json:"followingIterations"`
	FollowersIterations int        `json:"followersIterations"`
	// Partial is set when either list stopped before saturating.
	Partial bool `json:"partial"`
}

// CheckResponse is returned on a successful check.
type CheckResponse struct {
	RunID            string        `json:"runId"`
	NotFollowingBack []ScrapedUser `json:"notFollowingBack"`
	Stats            Stats         `json:"stats"`
	Following        []ScrapedUser `json:"following,omitempty"`
	Followers        []ScrapedUser `json:"followers,omitempty"`
	Diagnostics      Diagnostics   `json:"diagnostics"`
	DurationMS       int64         `json:"durationMs"`
}

// HumaCheckResponse wraps CheckResponse for Huma API.
type HumaCheckResponse struct {
	Body CheckResponse
}

// NewCheckResponse assembles the success body from the two scrapes.
func NewCheckResponse(runID string, cmp ComparisonResult, following, followers UserListResult, includeLists bool, durationMS int64) *CheckResponse {
	resp := &CheckResponse{
		RunID:            runID,
		NotFollowingBack: cmp.NotFollowingBack,
		Stats:            cmp.Stats,
		Diagnostics: Diagnostics{
			FollowingStopReason: following.StopReason,
			FollowersStopReason: followers.StopReason,
			FollowingIterations: following.Iterations,
			FollowersIterations: followers.Iterations,
			Partial:             !following.StopReason.Complete() || !followers.StopReason.Complete(),
		},
		DurationMS: durationMS,
	}
	if resp.NotFollowingBack == nil {
		resp.NotFollowingBack = []ScrapedUser{}
	}
	if includeLists {
		resp.Following = following.Users
		resp.Followers = followers.Users
	}
	return resp
}

// BrowserStats is the health view of the browser manager.
type BrowserStats struct {
	BrowserAlive bool   `json:"browserAlive"`
	PageOpen     bool   `json:"pageOpen"`
	Generation   uint64 `json:"generation"`
	Leased       bool   `json:"leased"`
	Launching    bool   `json:"launching"`
	IdleSeconds  int64  `json:"idleSeconds"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version"`
	Browser BrowserStats `json:"browser"`
}

// HumaHealthResponse wraps HealthResponse for Huma API.
type HumaHealthResponse struct {
	Body HealthResponse
}

// RunRecord is one row of the run journal. No credentials or user lists.
type RunRecord struct {
	ID                    string     `json:"id"`
	Target                string     `json:"target"`
	Outcome               string     `json:"outcome"`
	LoginState            string     `json:"loginState,omitempty"`
	FollowingCount        int        `json:"followingCount"`
	FollowersCount        int        `json:"followersCount"`
	NotFollowingBackCount int        `json:"notFollowingBackCount"`
	FollowingStopReason   StopReason `json:"followingStopReason,omitempty"`
	FollowersStopReason   StopReason `json:"followersStopReason,omitempty"`
	DurationMS            int64      `json:"durationMs"`
	Error                 string     `json:"error,omitempty"`
	CreatedAt             int64      `json:"createdAt"` // Unix timestamp ms
}

// Run outcomes stored in the journal.
const (
	OutcomeOK          = "ok"
	OutcomeLoginFailed = "login_failed"
	OutcomeError       = "error"
)

// RunsResponse lists recent runs.
type RunsResponse struct {
	Runs []RunRecord `json:"runs"`
}

// HumaRunsResponse wraps RunsResponse for Huma API.
type HumaRunsResponse struct {
	Body RunsResponse
}
