package models

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCheckResponse(t *testing.T) {
	following := UserListResult{
		List:       ListFollowing,
		Users:      []ScrapedUser{NewScrapedUser("a"), NewScrapedUser("b")},
		StopReason: StopSaturated,
		Iterations: 7,
	}
	followers := UserListResult{
		List:       ListFollowers,
		Users:      []ScrapedUser{NewScrapedUser("a")},
		StopReason: StopTimeBudget,
		Iterations: 3,
	}
	cmp := ComparisonResult{
		NotFollowingBack: []ScrapedUser{NewScrapedUser("b")},
		Stats:            Stats{FollowingCount: 2, FollowersCount: 1, NotFollowingBackCount: 1},
	}

	t.Run("without lists", func(t *testing.T) {
		resp := NewCheckResponse("run-1", cmp, following, followers, false, 1500)

		if resp.RunID != "run-1" {
			t.Errorf("RunID = %q, want %q", resp.RunID, "run-1")
		}
		if resp.Following != nil || resp.Followers != nil {
			t.Error("lists should be omitted when includeLists is false")
		}
		if resp.Diagnostics.FollowingStopReason != StopSaturated {
			t.Errorf("FollowingStopReason = %q", resp.Diagnostics.FollowingStopReason)
		}
		if resp.Diagnostics.FollowersIterations != 3 {
			t.Errorf("FollowersIterations = %d, want 3", resp.Diagnostics.FollowersIterations)
		}
		if !resp.Diagnostics.Partial {
			t.Error("Partial = false, want true when a list hit the time budget")
		}
		if resp.DurationMS != 1500 {
			t.Errorf("DurationMS = %d, want 1500", resp.DurationMS)
		}
	})

	t.Run("with lists", func(t *testing.T) {
		resp := NewCheckResponse("run-2", cmp, following, followers, true, 0)
		if len(resp.Following) != 2 || len(resp.Followers) != 1 {
			t.Errorf("lists = %d/%d, want 2/1", len(resp.Following), len(resp.Followers))
		}
	})

	t.Run("empty result encodes as array", func(t *testing.T) {
		resp := NewCheckResponse("run-3", ComparisonResult{}, following, followers, false, 0)
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if !strings.Contains(string(data), `"notFollowingBack":[]`) {
			t.Errorf("body = %s, want empty notFollowingBack array", data)
		}
	})
}

func TestNewScrapedUser(t *testing.T) {
	u := NewScrapedUser("jane.doe")
	if u.ProfileLink != "https://www.instagram.com/jane.doe" {
		t.Errorf("ProfileLink = %q", u.ProfileLink)
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"username":"jane.doe","fullName":null,"profilePic":null,"profileLink":"https://www.instagram.com/jane.doe"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestCheckRequest_Target(t *testing.T) {
	tests := []struct {
		name string
		req  CheckRequest
		want string
	}{
		{"clientuser wins", CheckRequest{Username: "me", ClientUser: "them"}, "them"},
		{"falls back to username", CheckRequest{Username: "me"}, "me"},
		{"blank clientuser ignored", CheckRequest{Username: "me", ClientUser: "  "}, "me"},
		{"neither", CheckRequest{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Target(); got != tt.want {
				t.Errorf("Target() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCredentials_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("login", "creds", Credentials{Username: "me", Password: "hunter2"})

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("log output leaked password: %s", out)
	}
	if !strings.Contains(out, "creds.username=me") {
		t.Errorf("log output missing username: %s", out)
	}
}

func TestStopReason_Complete(t *testing.T) {
	if !StopSaturated.Complete() {
		t.Error("saturated should be complete")
	}
	for _, r := range []StopReason{StopTimeBudget, StopMaxIterations, StopLinkNotFound, StopDialogNotFound, StopError, StopCancelled} {
		if r.Complete() {
			t.Errorf("%q should not be complete", r)
		}
	}
}
