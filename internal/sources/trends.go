package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	serpAPIBaseURL   = "https://serpapi.com"
	maxTrendTerms    = 5
	defaultTimeframe = "now 7-d"
)

// GoogleTrendsSource reads Google Trends interest over time through SerpApi
type GoogleTrendsSource struct {
	apiKey    string
	timeframe string
	baseURL   string
	client    *resty.Client
}

type serpTrendsResponse struct {
	Error            string `json:"error"`
	InterestOverTime struct {
		TimelineData []struct {
			Date   string `json:"date"`
			Values []struct {
				Query          string  `json:"query"`
				ExtractedValue float64 `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
}

// NewGoogleTrendsSource creates a new Google Trends source
func NewGoogleTrendsSource(apiKey, timeframe string, timeout time.Duration) *GoogleTrendsSource {
	if timeframe == "" {
		timeframe = defaultTimeframe
	}
	return &GoogleTrendsSource{
		apiKey:    apiKey,
		timeframe: timeframe,
		baseURL:   serpAPIBaseURL,
		client: resty.New().
			SetTimeout(timeoutOrDefault(timeout)).
			SetHeader("User-Agent", userAgent),
	}
}

// WithBaseURL points the source at another API root
func (g *GoogleTrendsSource) WithBaseURL(baseURL string) *GoogleTrendsSource {
	g.baseURL = baseURL
	return g
}

func (g *GoogleTrendsSource) GetName() string {
	return "google_trends"
}

func (g *GoogleTrendsSource) IsEnabled() bool {
	return g.apiKey != ""
}

// Interest returns the peak interest of each of the first five terms over the
// configured timeframe. Terms without data report 0.
func (g *GoogleTrendsSource) Interest(ctx context.Context, terms []string) (map[string]float64, error) {
	if !g.IsEnabled() {
		return nil, fmt.Errorf("google trends: %w", ErrSourceDisabled)
	}
	if len(terms) > maxTrendTerms {
		terms = terms[:maxTrendTerms]
	}
	values := make(map[string]float64, len(terms))
	if len(terms) == 0 {
		return values, nil
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":    "google_trends",
			"q":         strings.Join(terms, ","),
			"data_type": "TIMESERIES",
			"date":      g.timeframe,
			"api_key":   g.apiKey,
		}).
		Get(g.baseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("google trends: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode())
	}

	var payload serpTrendsResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse SerpApi response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", payload.Error)
	}

	for _, term := range terms {
		values[term] = 0
	}
	for _, point := range payload.InterestOverTime.TimelineData {
		for _, v := range point.Values {
			if current, ok := values[v.Query]; ok && v.ExtractedValue > current {
				values[v.Query] = v.ExtractedValue
			}
		}
	}

	return values, nil
}

// SumInterest adds up per-term interest values
func SumInterest(values map[string]float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
