package filter

import (
	"strings"

	"fbgroup-notifier/internal/scraper"
)

// Match reports whether the post should be relayed.
// No keywords means everything matches; otherwise any keyword found in the
// content or the listing text is enough. Matching is case sensitive.
func Match(keywords []string, post scraper.Post) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(post.Content, kw) || strings.Contains(post.ListingText, kw) {
			return true
		}
	}
	return false
}
