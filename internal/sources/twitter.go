package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	twitterHost       = "https://api.twitter.com"
	twitterMinResults = 10
	twitterMaxResults = 100
	tweetTitleLength  = 140
)

// TwitterSource searches recent tweets through the v2 API
type TwitterSource struct {
	bearerToken string
	client      *twitter.Client
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// NewTwitterSource creates a new Twitter source
func NewTwitterSource(bearerToken string, timeout time.Duration) *TwitterSource {
	return &TwitterSource{
		bearerToken: bearerToken,
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     &http.Client{Timeout: timeoutOrDefault(timeout)},
			Host:       twitterHost,
		},
	}
}

// WithHost points the client at another API host
func (t *TwitterSource) WithHost(host string) *TwitterSource {
	t.client.Host = host
	return t
}

func (t *TwitterSource) GetName() string {
	return "twitter"
}

func (t *TwitterSource) IsEnabled() bool {
	return t.bearerToken != ""
}

func (t *TwitterSource) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if !t.IsEnabled() {
		return nil, fmt.Errorf("twitter: %w", ErrSourceDisabled)
	}

	switch {
	case limit < twitterMinResults:
		limit = twitterMinResults
	case limit > twitterMaxResults:
		limit = twitterMaxResults
	}

	resp, err := t.client.TweetRecentSearch(ctx, t.buildSearchQuery(query), twitter.TweetRecentSearchOpts{
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
			twitter.TweetFieldAuthorID,
		},
		MaxResults: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("twitter search failed: %w", err)
	}
	if resp == nil || resp.Raw == nil {
		return []models.SearchResult{}, nil
	}

	results := make([]models.SearchResult, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil {
			continue
		}
		likes := 0
		if tweet.PublicMetrics != nil {
			likes = tweet.PublicMetrics.Likes
		}
		results = append(results, models.SearchResult{
			Source: t.GetName(),
			Query:  query,
			Title:  truncateText(tweet.Text, tweetTitleLength),
			URL:    fmt.Sprintf("https://twitter.com/i/web/status/%s", tweet.ID),
			Score:  likes,
		})
	}

	logrus.Debugf("Found %d tweets for %q", len(results), query)
	return results, nil
}

// buildSearchQuery quotes the term and drops retweets
func (t *TwitterSource) buildSearchQuery(term string) string {
	term = strings.ReplaceAll(strings.TrimSpace(term), `"`, "")
	return fmt.Sprintf(`"%s" -is:retweet lang:en`, term)
}

func truncateText(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
