// Package summary turns fused analysis signals into an AI-generated content summary.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/llm"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const rawPrefixLimit = 200

var (
	errNoJSON        = errors.New("no JSON object in response")
	errEmptyResponse = errors.New("empty response")
)

// GenerationError is returned when the model call or the parse of its output failed
// and no repair could recover it
type GenerationError struct {
	// RawPrefix holds at most 200 bytes of the raw model text
	RawPrefix string
	Err       error
}

func (e *GenerationError) Error() string {
	if e.RawPrefix == "" {
		return fmt.Sprintf("summary generation failed: %v", e.Err)
	}
	return fmt.Sprintf("summary generation failed: %v (raw: %q)", e.Err, e.RawPrefix)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Config holds the generation request parameters
type Config struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	GeneratedBy     string
	FallbackEnabled bool
}

// Generator produces AI summaries through a chat client, spaced by a shared cooldown
type Generator struct {
	client   llm.ChatClient
	cooldown *Cooldown
	config   Config
}

// NewGenerator creates a generator. The cooldown must be shared by every generator in
// the process.
func NewGenerator(client llm.ChatClient, cooldown *Cooldown, config Config) *Generator {
	if config.GeneratedBy == "" {
		config.GeneratedBy = config.Model + " via OpenRouter"
	}
	return &Generator{
		client:   client,
		cooldown: cooldown,
		config:   config,
	}
}

// Generate calls the model and returns a validated summary tagged as live
func (g *Generator) Generate(ctx context.Context, signals Signals, tier Tier) (*models.AISummary, error) {
	prompt := BuildPrompt(signals, tier)

	var raw string
	err := g.cooldown.Do(ctx, func(ctx context.Context) error {
		callCtx := ctx
		if g.config.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
			defer cancel()
		}

		resp, err := g.client.ChatCompletion(callCtx, llm.ChatCompletionRequest{
			Model:       g.config.Model,
			Messages:    []llm.Message{{Role: "user", Content: prompt}},
			Temperature: g.config.Temperature,
			MaxTokens:   g.config.MaxTokens,
		})
		if err != nil {
			return err
		}
		raw = resp.Content()
		return nil
	})
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	summary, err := ParseSummary(raw, tier)
	if err != nil {
		return nil, err
	}
	summary.GeneratedBy = g.config.GeneratedBy
	return summary, nil
}

// GenerateWithFallback behaves like Generate, but substitutes FallbackSummary for a
// GenerationError when fallback is enabled. Cancellation is always returned.
func (g *Generator) GenerateWithFallback(ctx context.Context, signals Signals, tier Tier) (*models.AISummary, error) {
	summary, err := g.Generate(ctx, signals, tier)
	if err == nil {
		return summary, nil
	}
	if ctx.Err() != nil || !g.config.FallbackEnabled {
		return nil, err
	}

	logrus.Warnf("AI summary unavailable, using fallback payload: %v", err)
	return FallbackSummary(tier), nil
}

// ParseSummary extracts, repairs if needed, and validates the model output
func ParseSummary(raw string, tier Tier) (*models.AISummary, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &GenerationError{Err: errEmptyResponse}
	}

	candidate, ok := ExtractJSON(raw)
	if !ok {
		return nil, &GenerationError{RawPrefix: rawPrefix(raw), Err: errNoJSON}
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &sections); err != nil {
		logrus.Debugf("Model output failed to parse, attempting repair: %v", err)
		if err := json.Unmarshal([]byte(RepairJSON(candidate)), &sections); err != nil {
			return nil, &GenerationError{
				RawPrefix: rawPrefix(raw),
				Err:       fmt.Errorf("JSON parse error after repair: %w", err),
			}
		}
	}

	summary, err := decodeSections(sections, tier)
	if err != nil {
		return nil, &GenerationError{RawPrefix: rawPrefix(raw), Err: err}
	}
	return summary, nil
}

type rawPrediction struct {
	Score    interface{} `json:"score"`
	Category string      `json:"category"`
	Reasons  []string    `json:"reasons"`
}

type rawIdea struct {
	Title     string          `json:"title"`
	Score     interface{}     `json:"score"`
	Reason    string          `json:"reason"`
	Blueprint json.RawMessage `json:"blueprint"`
}

type rawRecommendations struct {
	NextBestContent []rawIdea `json:"next_best_content"`
}

func decodeSections(sections map[string]json.RawMessage, tier Tier) (*models.AISummary, error) {
	predictionJSON, ok := sections["viral_prediction_engine"]
	if !ok {
		return nil, errors.New("missing viral_prediction_engine")
	}
	recommendationsJSON, ok := sections["ai_recommendations"]
	if !ok {
		return nil, errors.New("missing ai_recommendations")
	}

	var prediction rawPrediction
	if err := json.Unmarshal(predictionJSON, &prediction); err != nil {
		return nil, fmt.Errorf("invalid viral_prediction_engine: %w", err)
	}
	var recommendations rawRecommendations
	if err := json.Unmarshal(recommendationsJSON, &recommendations); err != nil {
		return nil, fmt.Errorf("invalid ai_recommendations: %w", err)
	}

	score := coerceScore(prediction.Score)
	summary := &models.AISummary{
		ViralPrediction: models.ViralPrediction{
			Score:    score,
			Category: normalizeCategory(prediction.Category, score),
			Reasons:  prediction.Reasons,
		},
		Recommendations: models.Recommendations{
			NextBestContent: []models.ContentIdea{},
		},
		ContentCategory:        sections["content_category_classifier"],
		ViralPatterns:          sections["viral_pattern_detection"],
		SEOKeywords:            sections["seo_keyword_generator"],
		CompetitorIntelligence: sections["competitor_intelligence"],
		TrendSignals:           sections["trend_signals"],
		Tier:                   string(tier),
		Provenance:             models.ProvenanceLive,
	}
	if summary.ViralPrediction.Reasons == nil {
		summary.ViralPrediction.Reasons = []string{}
	}

	limit := tier.IdeaCount()
	for _, idea := range recommendations.NextBestContent {
		if len(summary.Recommendations.NextBestContent) >= limit {
			break
		}
		if strings.TrimSpace(idea.Title) == "" {
			continue
		}
		summary.Recommendations.NextBestContent = append(summary.Recommendations.NextBestContent, models.ContentIdea{
			Title:     idea.Title,
			Score:     coerceScore(idea.Score),
			Reason:    idea.Reason,
			Blueprint: idea.Blueprint,
		})
	}

	return summary, nil
}

// coerceScore accepts numbers and numeric strings and clamps to [0,100]
func coerceScore(v interface{}) int {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return int(math.Round(f))
}

func normalizeCategory(category string, score int) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "high":
		return "High"
	case "medium":
		return "Medium"
	case "low":
		return "Low"
	}
	switch {
	case score >= 70:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}

func rawPrefix(raw string) string {
	if len(raw) <= rawPrefixLimit {
		return raw
	}
	return strings.ToValidUTF8(raw[:rawPrefixLimit], "")
}
