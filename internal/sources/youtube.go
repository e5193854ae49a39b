package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	youTubeBaseURL  = "https://www.googleapis.com/youtube/v3"
	youTubePageSize = 100
)

var (
	youTubeURLPattern = regexp.MustCompile(`(?:[?&]v=|youtu\.be/|/shorts/|/embed/|/live/)([A-Za-z0-9_-]{11})`)
	youTubeIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// YouTubeSource fetches video comments through the YouTube Data API
type YouTubeSource struct {
	apiKey  string
	baseURL string
	client  *resty.Client
}

type youTubeCommentsResponse struct {
	NextPageToken string           `json:"nextPageToken"`
	Items         []youTubeComment `json:"items"`
}

type youTubeComment struct {
	ID      string `json:"id"`
	Snippet struct {
		TopLevelComment struct {
			Snippet struct {
				TextOriginal      string `json:"textOriginal"`
				TextDisplay       string `json:"textDisplay"`
				AuthorDisplayName string `json:"authorDisplayName"`
				PublishedAt       string `json:"publishedAt"`
				LikeCount         int    `json:"likeCount"`
			} `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type youTubeVideosResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// NewYouTubeSource creates a new YouTube source
func NewYouTubeSource(apiKey string, timeout time.Duration) *YouTubeSource {
	return &YouTubeSource{
		apiKey:  apiKey,
		baseURL: youTubeBaseURL,
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", userAgent),
	}
}

// WithBaseURL points the source at another API root
func (y *YouTubeSource) WithBaseURL(baseURL string) *YouTubeSource {
	y.baseURL = baseURL
	return y
}

func (y *YouTubeSource) GetName() string {
	return "youtube"
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.apiKey != ""
}

// FetchComments pages through commentThreads until limit comments are collected
func (y *YouTubeSource) FetchComments(ctx context.Context, videoURL string, limit int) (*models.RawFeed, error) {
	if !y.IsEnabled() {
		return nil, fmt.Errorf("youtube: %w", ErrSourceDisabled)
	}

	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return nil, fmt.Errorf("youtube: no video ID in %q", videoURL)
	}

	feed := &models.RawFeed{
		Platform: "youtube",
		URL:      videoURL,
		Title:    y.videoTitle(ctx, videoID),
		Items:    []models.RawRecord{},
	}

	pageToken := ""
	for len(feed.Items) < limit {
		page, err := y.commentPage(ctx, videoID, pageToken, min(youTubePageSize, limit-len(feed.Items)))
		if err != nil {
			if len(feed.Items) > 0 {
				logrus.Warnf("YouTube pagination stopped after %d comments: %v", len(feed.Items), err)
				break
			}
			return nil, err
		}

		for _, item := range page.Items {
			s := item.Snippet.TopLevelComment.Snippet
			text := s.TextOriginal
			if text == "" {
				text = s.TextDisplay
			}
			feed.Items = append(feed.Items, models.RawRecord{
				"author": s.AuthorDisplayName,
				"text":   text,
				"likes":  s.LikeCount,
				"time":   s.PublishedAt,
			})
			if len(feed.Items) >= limit {
				break
			}
		}

		if page.NextPageToken == "" || len(page.Items) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	logrus.Debugf("Fetched %d YouTube comments for video %s", len(feed.Items), videoID)
	return feed, nil
}

func (y *YouTubeSource) commentPage(ctx context.Context, videoID, pageToken string, pageSize int) (*youTubeCommentsResponse, error) {
	req := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"videoId":    videoID,
			"maxResults": strconv.Itoa(pageSize),
			"order":      "relevance",
			"textFormat": "plainText",
			"key":        y.apiKey,
		})
	if pageToken != "" {
		req.SetQueryParam("pageToken", pageToken)
	}

	resp, err := req.Get(y.baseURL + "/commentThreads")
	if err != nil {
		return nil, fmt.Errorf("youtube: %w", err)
	}

	switch resp.StatusCode() {
	case 200:
	case 403:
		return nil, fmt.Errorf("youtube: comments disabled or quota exceeded for video %s", videoID)
	default:
		return nil, fmt.Errorf("youtube comments API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var page youTubeCommentsResponse
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("failed to parse YouTube comments response: %w", err)
	}
	return &page, nil
}

// videoTitle is best effort; an empty title does not fail the fetch
func (y *YouTubeSource) videoTitle(ctx context.Context, videoID string) string {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part": "snippet",
			"id":   videoID,
			"key":  y.apiKey,
		}).
		Get(y.baseURL + "/videos")
	if err != nil || resp.StatusCode() != 200 {
		logrus.Debugf("Could not load title for video %s", videoID)
		return ""
	}

	var videos youTubeVideosResponse
	if err := json.Unmarshal(resp.Body(), &videos); err != nil || len(videos.Items) == 0 {
		return ""
	}
	return videos.Items[0].Snippet.Title
}

// ExtractVideoID returns the 11-character video ID from a watch, youtu.be, shorts,
// embed or live URL, or from a bare ID. It returns "" when none is found.
func ExtractVideoID(videoURL string) string {
	if m := youTubeURLPattern.FindStringSubmatch(videoURL); m != nil {
		return m[1]
	}
	if youTubeIDPattern.MatchString(videoURL) {
		return videoURL
	}
	return ""
}
