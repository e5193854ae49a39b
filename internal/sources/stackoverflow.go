package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const stackExchangeBaseURL = "https://api.stackexchange.com/2.3"

// StackOverflowSource searches Stack Overflow questions
type StackOverflowSource struct {
	baseURL string
	site    string
	client  *resty.Client
}

type stackOverflowResponse struct {
	Items []stackOverflowQuestion `json:"items"`
}

type stackOverflowQuestion struct {
	QuestionID   int      `json:"question_id"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	CreationDate int64    `json:"creation_date"`
	Score        int      `json:"score"`
	AnswerCount  int      `json:"answer_count"`
	Link         string   `json:"link"`
}

// NewStackOverflowSource creates a new Stack Overflow source
func NewStackOverflowSource(timeout time.Duration) *StackOverflowSource {
	return &StackOverflowSource{
		baseURL: stackExchangeBaseURL,
		site:    "stackoverflow",
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", userAgent),
	}
}

// WithBaseURL points the source at another API root
func (s *StackOverflowSource) WithBaseURL(baseURL string) *StackOverflowSource {
	s.baseURL = baseURL
	return s
}

func (s *StackOverflowSource) GetName() string {
	return "stackoverflow"
}

func (s *StackOverflowSource) IsEnabled() bool {
	return true // Stack Exchange allows anonymous search
}

func (s *StackOverflowSource) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"order":    "desc",
			"sort":     "relevance",
			"q":        query,
			"site":     s.site,
			"pagesize": strconv.Itoa(limit),
		}).
		Get(s.baseURL + "/search/advanced")
	if err != nil {
		return nil, fmt.Errorf("stackoverflow: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("stack overflow API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp stackOverflowResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Stack Overflow response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(searchResp.Items))
	for _, question := range searchResp.Items {
		community := ""
		if len(question.Tags) > 0 {
			community = question.Tags[0]
		}
		results = append(results, models.SearchResult{
			Source:    s.GetName(),
			Query:     query,
			Title:     s.stripHTMLTags(html.UnescapeString(question.Title)),
			Community: community,
			URL:       question.Link,
			Score:     question.Score,
		})
	}

	return results, nil
}

func (s *StackOverflowSource) stripHTMLTags(content string) string {
	content = strings.ReplaceAll(content, "<p>", "\n")
	content = strings.ReplaceAll(content, "</p>", "\n")
	content = strings.ReplaceAll(content, "<br>", "\n")
	content = strings.ReplaceAll(content, "<br/>", "\n")
	content = strings.ReplaceAll(content, "<code>", "`")
	content = strings.ReplaceAll(content, "</code>", "`")

	for strings.Contains(content, "<") && strings.Contains(content, ">") {
		start := strings.Index(content, "<")
		end := strings.Index(content, ">")
		if start < end {
			content = content[:start] + content[end+1:]
		} else {
			break
		}
	}

	return strings.TrimSpace(content)
}
