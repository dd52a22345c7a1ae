// Package models defines the domain and API types shared across packages.
package models

import "log/slog"

// ProfileURLPrefix is prepended to a username to build its profile link.
const ProfileURLPrefix = "https://www.instagram.com/"

// ListType selects which relationship dialog of a profile is scraped.
type ListType string

const (
	ListFollowing ListType = "following"
	ListFollowers ListType = "followers"
)

// StopReason records why a list scrape ended.
type StopReason string

const (
	StopSaturated      StopReason = "saturated"
	StopTimeBudget     StopReason = "time_budget"
	StopMaxIterations  StopReason = "max_iterations"
	StopLinkNotFound   StopReason = "link_not_found"
	StopDialogNotFound StopReason = "dialog_not_found"
	StopError          StopReason = "error"
	StopCancelled      StopReason = "cancelled"
)

// Complete reports whether the scrape reached the end of the list.
func (r StopReason) Complete() bool {
	return r == StopSaturated
}

// Credentials are supplied per request and never persisted.
type Credentials struct {
	Username string
	Password string
}

// LogValue keeps the password out of every log record.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", "[REDACTED]"),
	)
}

// ScrapedUser is one row of a following/followers dialog.
type ScrapedUser struct {
	Username    string  `json:"username"`
	FullName    *string `json:"fullName"`
	ProfilePic  *string `json:"profilePic"`
	ProfileLink string  `json:"profileLink"`
}

// NewScrapedUser builds a user with the derived profile link.
func NewScrapedUser(username string) ScrapedUser {
	return ScrapedUser{
		Username:    username,
		ProfileLink: ProfileURLPrefix + username,
	}
}

// UserListResult is the outcome of scraping one list.
type UserListResult struct {
	Owner      string        `json:"owner"`
	List       ListType      `json:"list"`
	Users      []ScrapedUser `json:"users"`
	StopReason StopReason    `json:"stopReason"`
	Iterations int           `json:"iterations"`
}

// Stats carries the counts returned alongside a comparison.
type Stats struct {
	FollowingCount        int `json:"followingCount"`
	FollowersCount        int `json:"followersCount"`
	NotFollowingBackCount int `json:"notFollowingBackCount"`
}

// ComparisonResult is the difference of the two lists.
type ComparisonResult struct {
	NotFollowingBack []ScrapedUser `json:"notFollowingBack"`
	Stats            Stats         `json:"stats"`
}
