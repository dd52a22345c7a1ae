package scraper

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/browser/browsertest"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
)

func newTestScraper() *Scraper {
	s := New(DefaultOptions(), testLogger())
	s.sleep = noSleep
	s.collector.sleep = noSleep
	return s
}

// dialogPage scripts a profile page whose dialog serves batches in order.
func dialogPage(list models.ListType, batches ...[]Row) *browsertest.Page {
	page := browsertest.NewPage(`a[href*="/`+string(list)+`"]`, dialogSelector, dialogLinks)
	call := 0
	page.EvalFunc = func(js string, args []any) (any, error) {
		switch js {
		case markScrollTargetJS:
			return true, nil
		case rowsJS:
			i := call
			call++
			if i >= len(batches) {
				i = len(batches) - 1
			}
			return batches[i], nil
		case scrollJS:
			return false, nil
		case dialogCenterJS:
			return map[string]any{"ok": true, "x": 960, "y": 540}, nil
		case closeDialogJS:
			return true, nil
		}
		return nil, errors.New("unexpected script")
	}
	return page
}

func TestScrapeList(t *testing.T) {
	page := dialogPage(models.ListFollowing, rows("/a/", "/b/"), rows("/b/", "/c/"))

	result, err := newTestScraper().ScrapeList(context.Background(), page, "alice", models.ListFollowing, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("ScrapeList() error = %v", err)
	}

	if got, want := names(result.Users), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("users = %v, want %v", got, want)
	}
	if result.StopReason != models.StopSaturated {
		t.Errorf("StopReason = %q, want saturated", result.StopReason)
	}
	if result.Owner != "alice" || result.List != models.ListFollowing {
		t.Errorf("result = %+v", result)
	}
	if nav := page.CallsWithPrefix("navigate"); len(nav) != 1 || nav[0] != "navigate https://www.instagram.com/alice/" {
		t.Errorf("navigations = %v", nav)
	}
	if clicks := page.CallsWithPrefix("click "); len(clicks) != 1 || !strings.Contains(clicks[0], "/following") {
		t.Errorf("clicks = %v", clicks)
	}
	if wheels := page.CallsWithPrefix("wheel 960,540 1000"); len(wheels) != result.Iterations {
		t.Errorf("wheel calls = %d, want %d", len(wheels), result.Iterations)
	}
}

func TestScrapeList_LinkNotFound(t *testing.T) {
	page := browsertest.NewPage()

	result, err := newTestScraper().ScrapeList(context.Background(), page, "alice", models.ListFollowers, time.Time{})

	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("error = %v, want ErrLinkNotFound", err)
	}
	if result.StopReason != models.StopLinkNotFound || len(result.Users) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestScrapeList_DialogNotFound(t *testing.T) {
	page := browsertest.NewPage(`a[href*="/followers"]`)

	result, err := newTestScraper().ScrapeList(context.Background(), page, "alice", models.ListFollowers, time.Time{})

	if !errors.Is(err, ErrDialogNotFound) {
		t.Errorf("error = %v, want ErrDialogNotFound", err)
	}
	if result.StopReason != models.StopDialogNotFound {
		t.Errorf("StopReason = %q", result.StopReason)
	}
}

func TestScrapeList_PastDeadlineSkips(t *testing.T) {
	page := dialogPage(models.ListFollowing, rows("/a/"))

	result, err := newTestScraper().ScrapeList(context.Background(), page, "alice", models.ListFollowing, time.Now().Add(-time.Second))

	if err != nil {
		t.Fatalf("ScrapeList() error = %v", err)
	}
	if result.StopReason != models.StopTimeBudget || result.Iterations != 0 {
		t.Errorf("result = %+v, want time_budget with no iterations", result)
	}
	if len(page.Calls()) != 0 {
		t.Errorf("page was touched: %v", page.Calls())
	}
}

func TestScrapeList_NavigationError(t *testing.T) {
	page := dialogPage(models.ListFollowing, rows("/a/"))
	page.NavigateErrs = []error{errors.New("net::ERR_CONNECTION_RESET")}

	result, err := newTestScraper().ScrapeList(context.Background(), page, "alice", models.ListFollowing, time.Time{})

	if err == nil {
		t.Fatal("ScrapeList() error = nil, want navigation error")
	}
	if result.StopReason != models.StopError {
		t.Errorf("StopReason = %q, want error", result.StopReason)
	}
}
