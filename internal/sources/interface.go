package sources

import (
	"context"
	"errors"
	"time"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	userAgent      = "ViralEdge/2.0"
	defaultTimeout = 30 * time.Second
)

// ErrSourceDisabled is returned when a source is called without its credentials
var ErrSourceDisabled = errors.New("source disabled")

// Source is the part shared by every external data source
type Source interface {
	GetName() string
	IsEnabled() bool
}

// CommentSource fetches the comments of one piece of content
type CommentSource interface {
	Source
	FetchComments(ctx context.Context, url string, limit int) (*models.RawFeed, error)
}

// MentionSearcher searches a forum or social network for a query
type MentionSearcher interface {
	Source
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// InterestSource reports a search-interest value per term
type InterestSource interface {
	Source
	Interest(ctx context.Context, terms []string) (map[string]float64, error)
}

var (
	_ CommentSource   = (*YouTubeSource)(nil)
	_ CommentSource   = (*TikTokSource)(nil)
	_ CommentSource   = (*RedditSource)(nil)
	_ MentionSearcher = (*RedditSource)(nil)
	_ MentionSearcher = (*HackerNewsSource)(nil)
	_ MentionSearcher = (*StackOverflowSource)(nil)
	_ MentionSearcher = (*TwitterSource)(nil)
	_ InterestSource  = (*GoogleTrendsSource)(nil)
)

// DeduplicateResults drops results whose URL was already seen, keeping the first
func DeduplicateResults(results []models.SearchResult) []models.SearchResult {
	seen := make(map[string]bool)
	unique := make([]models.SearchResult, 0, len(results))

	for _, r := range results {
		key := r.Source + "|" + r.URL
		if r.URL == "" {
			key = r.Source + "|" + r.Title
		}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, r)
		}
	}

	return unique
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}
