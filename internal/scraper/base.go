// Shared types for group scrapers

package scraper

import (
	"context"

	"github.com/pkg/errors"
)

// Post is the newest entry of a group feed, read fresh on every poll.
type Post struct {
	ID          string
	Content     string
	ListingText string
	URL         string
}

// Sort is the feed ordering requested from the group page.
type Sort string

const (
	SortChronological         Sort = "CHRONOLOGICAL"
	SortChronologicalListings Sort = "CHRONOLOGICAL_LISTINGS"
)

var (
	// ErrTimeout marks a navigation that timed out and can be retried.
	ErrTimeout     = errors.New("navigation timed out")
	ErrUnknownSort = errors.New(`expected type "listing" or "post"`)
	ErrNoPost      = errors.New("no post found in group feed")
)

// ParseSort maps the CLI post type to a feed ordering.
func ParseSort(kind string) (Sort, error) {
	switch kind {
	case "listing":
		return SortChronologicalListings, nil
	case "post":
		return SortChronological, nil
	}
	return "", ErrUnknownSort
}

// GroupScraper reads the newest post of a group
type GroupScraper interface {
	Login(ctx context.Context, account, password string) error

	// ToGroup opens the group feed. Transient timeouts wrap ErrTimeout.
	ToGroup(ctx context.Context, groupID string, sort Sort) error

	FetchPost(ctx context.Context) (Post, error)
}
