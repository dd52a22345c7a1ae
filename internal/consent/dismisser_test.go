package consent

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser/browsertest"
)

func newTestDismisser() *Dismisser {
	d := NewDismisser(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	d.sleep = func(context.Context, time.Duration) {}
	return d
}

func TestDismiss(t *testing.T) {
	tests := []struct {
		name      string
		visible   []string
		buttons   map[string][]string
		want      bool
		wantClick string
	}{
		{
			name:      "known selector",
			visible:   []string{bannerButtonSelector},
			buttons:   map[string][]string{"button": {"Allow all cookies"}},
			want:      true,
			wantClick: "click " + bannerButtonSelector,
		},
		{
			name:      "allow all text",
			buttons:   map[string][]string{"button": {"Decline optional cookies", "Allow all cookies"}},
			want:      true,
			wantClick: "clickText button Allow all cookies",
		},
		{
			name:      "decline when allow all missing",
			buttons:   map[string][]string{"button": {"Decline optional cookies"}},
			want:      true,
			wantClick: "clickText button Decline optional cookies",
		},
		{
			name:      "role button",
			buttons:   map[string][]string{`div[role="button"]`: {"Accept"}},
			want:      true,
			wantClick: `clickText div[role="button"] Accept`,
		},
		{
			name: "no banner",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.NewPage(tt.visible...)
			page.Buttons = tt.buttons

			got := newTestDismisser().Dismiss(context.Background(), page)
			if got != tt.want {
				t.Fatalf("Dismiss() = %v, want %v", got, tt.want)
			}

			clicks := append(page.CallsWithPrefix("click "), page.CallsWithPrefix("clickText ")...)
			if tt.wantClick == "" {
				if len(clicks) != 0 {
					t.Errorf("clicks = %v, want none", clicks)
				}
				return
			}
			if len(clicks) != 1 || clicks[0] != tt.wantClick {
				t.Errorf("clicks = %v, want [%s]", clicks, tt.wantClick)
			}
		})
	}
}
