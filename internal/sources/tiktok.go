package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	tikTokBaseURL   = "https://www.tiktok.com"
	tikTokPageLimit = 50
	tikTokUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
)

var tikTokVideoPattern = regexp.MustCompile(`/video/(\d+)`)

// TikTokSource reads the public comment list of a TikTok video
type TikTokSource struct {
	baseURL string
	client  *resty.Client
}

type tikTokCommentsResponse struct {
	StatusCode int `json:"status_code"`
	Comments   []struct {
		Text       string `json:"text"`
		DiggCount  int    `json:"digg_count"`
		CreateTime int64  `json:"create_time"`
		User       struct {
			UniqueID string `json:"unique_id"`
		} `json:"user"`
	} `json:"comments"`
}

// NewTikTokSource creates a new TikTok source
func NewTikTokSource(timeout time.Duration) *TikTokSource {
	return &TikTokSource{
		baseURL: tikTokBaseURL,
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", tikTokUserAgent).
			SetHeader("Referer", "https://www.tiktok.com/"),
	}
}

// WithBaseURL points the source at another host
func (t *TikTokSource) WithBaseURL(baseURL string) *TikTokSource {
	t.baseURL = baseURL
	return t
}

func (t *TikTokSource) GetName() string {
	return "tiktok"
}

func (t *TikTokSource) IsEnabled() bool {
	return true // public endpoint, no credentials
}

// FetchComments returns at most 50 comments; the endpoint serves a single page
func (t *TikTokSource) FetchComments(ctx context.Context, videoURL string, limit int) (*models.RawFeed, error) {
	m := tikTokVideoPattern.FindStringSubmatch(videoURL)
	if m == nil {
		return nil, fmt.Errorf("tiktok: invalid video URL %q", videoURL)
	}
	if limit <= 0 || limit > tikTokPageLimit {
		limit = tikTokPageLimit
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"aweme_id": m[1],
			"count":    strconv.Itoa(limit),
		}).
		Get(t.baseURL + "/api/comment/list/")
	if err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("tiktok API returned status %d", resp.StatusCode())
	}

	var payload tikTokCommentsResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse TikTok response (request likely blocked): %w", err)
	}

	feed := &models.RawFeed{
		Platform: "tiktok",
		URL:      videoURL,
		Items:    make([]models.RawRecord, 0, len(payload.Comments)),
	}
	for _, c := range payload.Comments {
		if len(feed.Items) >= limit {
			break
		}
		feed.Items = append(feed.Items, models.RawRecord{
			"text":        c.Text,
			"author":      c.User.UniqueID,
			"digg_count":  c.DiggCount,
			"create_time": c.CreateTime,
		})
	}
	return feed, nil
}
