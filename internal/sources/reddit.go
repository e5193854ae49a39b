package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/normalize"
)

const (
	redditPublicURL = "https://www.reddit.com"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditSearchMax = 100
)

// RedditSource reads post comment trees and searches Reddit. Search uses OAuth when
// credentials are configured and the public JSON endpoints otherwise.
type RedditSource struct {
	clientID     string
	clientSecret string
	publicURL    string
	oauthURL     string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

type redditListing struct {
	Data struct {
		Children []interface{} `json:"children"`
	} `json:"data"`
}

// NewRedditSource creates a new Reddit source
func NewRedditSource(clientID, clientSecret string, timeout time.Duration) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		publicURL:    redditPublicURL,
		oauthURL:     redditOAuthURL,
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", userAgent),
	}
}

// WithBaseURLs points the public and OAuth endpoints elsewhere
func (r *RedditSource) WithBaseURLs(publicURL, oauthURL string) *RedditSource {
	r.publicURL = publicURL
	r.oauthURL = oauthURL
	return r
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

// IsEnabled is always true; the public endpoints need no credentials
func (r *RedditSource) IsEnabled() bool {
	return true
}

func (r *RedditSource) hasCredentials() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// FetchComments loads a post's JSON listing and flattens its whole reply tree
func (r *RedditSource) FetchComments(ctx context.Context, postURL string, limit int) (*models.RawFeed, error) {
	postPath, err := redditPostPath(postURL)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("raw_json", "1").
		Get(strings.TrimRight(r.publicURL, "/") + postPath + "/.json")
	if err != nil {
		return nil, fmt.Errorf("reddit: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listings []redditListing
	if err := json.Unmarshal(resp.Body(), &listings); err != nil {
		return nil, fmt.Errorf("failed to parse Reddit post: %w", err)
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("reddit: unexpected post payload with %d listings", len(listings))
	}

	feed := &models.RawFeed{
		Platform: string(normalize.PlatformRedditComment),
		URL:      redditPublicURL + postPath,
		Title:    postTitle(listings[0]),
		Items:    normalize.FlattenReplyTree(listings[1].Data.Children, limit),
	}
	if feed.Items == nil {
		feed.Items = []models.RawRecord{}
	}

	logrus.Debugf("Fetched %d Reddit comments for %s", len(feed.Items), postPath)
	return feed, nil
}

// redditPostPath validates a post URL and returns its path on reddit.com.
// Only Reddit hosts are accepted; redd.it short links map to /comments/<id>.
func redditPostPath(postURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(postURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("reddit: %q is not a post URL", postURL)
	}

	postPath := strings.TrimRight(u.EscapedPath(), "/")
	switch strings.ToLower(u.Hostname()) {
	case "reddit.com", "www.reddit.com", "old.reddit.com":
	case "redd.it":
		id := strings.Trim(postPath, "/")
		if id == "" || strings.Contains(id, "/") {
			return "", fmt.Errorf("reddit: %q is not a post URL", postURL)
		}
		postPath = "/comments/" + id
	default:
		return "", fmt.Errorf("reddit: host %q is not a Reddit host", u.Hostname())
	}

	if !strings.Contains(postPath, "/comments/") || strings.Contains(postPath, "..") {
		return "", fmt.Errorf("reddit: %q is not a post URL", postURL)
	}
	return postPath, nil
}

func postTitle(listing redditListing) string {
	if len(listing.Data.Children) == 0 {
		return ""
	}
	node, _ := listing.Data.Children[0].(map[string]interface{})
	data, _ := node["data"].(map[string]interface{})
	title, _ := data["title"].(string)
	return title
}

// Search finds posts from the past week matching query, ordered by relevance
func (r *RedditSource) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 || limit > redditSearchMax {
		limit = redditSearchMax
	}

	req := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     query,
			"sort":  "relevance",
			"t":     "week",
			"limit": strconv.Itoa(limit),
		})

	endpoint := r.publicURL + "/search.json"
	if r.hasCredentials() {
		token, err := r.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("reddit authentication failed: %w", err)
		}
		req.SetAuthToken(token)
		endpoint = r.oauthURL + "/search.json"
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("reddit: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var searchResp redditSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Reddit search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(searchResp.Data.Children))
	for _, child := range searchResp.Data.Children {
		post := child.Data
		results = append(results, models.SearchResult{
			Source:    r.GetName(),
			Query:     query,
			Title:     post.Title,
			Community: "r/" + post.Subreddit,
			URL:       "https://reddit.com" + post.Permalink,
			Score:     post.Score,
		})
	}

	return DeduplicateResults(results), nil
}

// token returns a cached access token, authenticating when it is missing or expired
func (r *RedditSource) token(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return r.accessToken, nil
	}
	if err := r.authenticate(ctx); err != nil {
		return "", err
	}
	return r.accessToken, nil
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.publicURL + "/api/v1/access_token")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}
	if authResp.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}

	r.accessToken = authResp.AccessToken
	// refresh a minute early
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	return nil
}
