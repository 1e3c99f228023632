// Package feed fetches posts from a Truth Social account.
package feed

import (
	"context"
	"time"
)

// Post is a single status as returned by the feed API. Posts are immutable
// once fetched; identity is the ID.
type Post struct {
	ID        string
	CreatedAt time.Time
	Content   string
}

// Fetcher returns candidate posts for one polling cycle. When sinceID is
// set, only posts strictly after that id are returned. When sinceID is
// empty (cold start), posts created after createdAfter are returned instead.
type Fetcher interface {
	Fetch(ctx context.Context, sinceID string, createdAfter time.Time) ([]Post, error)
}

// Newest returns the post with the latest creation time. Equal timestamps
// fall back to id ordering so the selection is deterministic.
func Newest(posts []Post) Post {
	newest := posts[0]
	for _, p := range posts[1:] {
		if p.CreatedAt.After(newest.CreatedAt) {
			newest = p
			continue
		}
		if p.CreatedAt.Equal(newest.CreatedAt) && p.ID > newest.ID {
			newest = p
		}
	}
	return newest
}
