package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const hackerNewsBaseURL = "https://hn.algolia.com/api/v1"

// HackerNewsSource searches Hacker News stories through the Algolia API
type HackerNewsSource struct {
	baseURL string
	client  *resty.Client
}

type hackerNewsSearchResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Author      string `json:"author"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
		CreatedAtI  int64  `json:"created_at_i"`
	} `json:"hits"`
}

// NewHackerNewsSource creates a new Hacker News source
func NewHackerNewsSource(timeout time.Duration) *HackerNewsSource {
	return &HackerNewsSource{
		baseURL: hackerNewsBaseURL,
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", userAgent),
	}
}

// WithBaseURL points the source at another API root
func (h *HackerNewsSource) WithBaseURL(baseURL string) *HackerNewsSource {
	h.baseURL = baseURL
	return h
}

func (h *HackerNewsSource) GetName() string {
	return "hackernews"
}

func (h *HackerNewsSource) IsEnabled() bool {
	return true // Algolia search needs no authentication
}

func (h *HackerNewsSource) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       query,
			"tags":        "story",
			"hitsPerPage": strconv.Itoa(limit),
		}).
		Get(h.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("hackernews: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d", resp.StatusCode())
	}

	var searchResp hackerNewsSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Hacker News response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(searchResp.Hits))
	for _, hit := range searchResp.Hits {
		result := models.SearchResult{
			Source:    h.GetName(),
			Query:     query,
			Title:     hit.Title,
			Community: "Hacker News",
			URL:       fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID),
			Score:     hit.Points,
		}
		results = append(results, result)
	}

	return results, nil
}
