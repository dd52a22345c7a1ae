// Package compare computes which followed accounts do not follow back.
package compare

import "github.com/Bangnus/Check-Unfollows-IG/internal/models"

// NotFollowingBack returns the entries of following whose username does not
// appear in followers, in following order. Neither input is modified.
func NotFollowingBack(following, followers []models.ScrapedUser) []models.ScrapedUser {
	back := make(map[string]struct{}, len(followers))
	for _, u := range followers {
		back[u.Username] = struct{}{}
	}

	out := make([]models.ScrapedUser, 0)
	for _, u := range following {
		if _, ok := back[u.Username]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Compare builds the full comparison result with counts.
func Compare(following, followers []models.ScrapedUser) models.ComparisonResult {
	nfb := NotFollowingBack(following, followers)
	return models.ComparisonResult{
		NotFollowingBack: nfb,
		Stats: models.Stats{
			FollowingCount:        len(following),
			FollowersCount:        len(followers),
			NotFollowingBackCount: len(nfb),
		},
	}
}
