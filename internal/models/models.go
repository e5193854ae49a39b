package models

import (
	"encoding/json"
	"time"
)

// Comment is the canonical unit of user-generated content
type Comment struct {
	Author         string `json:"author"`
	Text           string `json:"text"`
	Likes          int    `json:"likes"`
	Timestamp      string `json:"timestamp"`
	SourcePlatform string `json:"source_platform"` // "youtube", "tiktok", "reddit_comment", "reddit_reply"
}

// RawRecord is a single scraped record before normalization. Field names differ per platform.
type RawRecord map[string]interface{}

// RawFeed is the payload a comment source returns for one URL
type RawFeed struct {
	Platform string      `json:"platform"`
	URL      string      `json:"url"`
	Title    string      `json:"title,omitempty"`
	Error    string      `json:"error,omitempty"` // collaborator-level failure, treated as total source failure
	Items    []RawRecord `json:"items"`
}

// SearchResult is one hit from a secondary (forum/social) search
type SearchResult struct {
	Source    string `json:"source"`
	Query     string `json:"query"`
	Title     string `json:"title"`
	Community string `json:"community,omitempty"` // subreddit, tag, etc.
	URL       string `json:"url"`
	Score     int    `json:"score"`
}

// TopicSignal is a ranked keyword or phrase derived from the comment corpus
type TopicSignal struct {
	Topic        string  `json:"topic"`
	Weight       float64 `json:"weight"`
	MentionCount int     `json:"mention_count"`
	Percentage   float64 `json:"percentage"` // share of documents mentioning the topic
}

// SentimentSummary holds bucket percentages (each rounded independently) and the mean polarity
type SentimentSummary struct {
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
	AvgScore float64 `json:"avg_score"`
}

// Features is the output of text feature extraction
type Features struct {
	Questions []Comment        `json:"questions"`
	Topics    []TopicSignal    `json:"topics"`
	Sentiment SentimentSummary `json:"sentiment"`
}

// EngagementStats summarizes likes for a set of comments
type EngagementStats struct {
	CommentsCount int       `json:"comments_count"`
	TotalLikes    int       `json:"total_likes"`
	AvgLikes      float64   `json:"avg_likes"`
	TopComments   []Comment `json:"top_comments"`
}

// TrendType classifies a trend probability score
type TrendType string

const (
	TrendNotTrending         TrendType = "not_trending"
	TrendSinglePlatform      TrendType = "single_platform"
	TrendMultiPlatformLow    TrendType = "multi_platform_low"
	TrendMultiPlatformMedium TrendType = "multi_platform_medium"
	TrendMultiPlatformHigh   TrendType = "multi_platform_high"
)

// TrendFusionResult is the fused multi-source trend estimate
type TrendFusionResult struct {
	TrendProbability int       `json:"trend_probability"`
	TrendType        TrendType `json:"trend_type"`
	TrendReason      string    `json:"trend_reason"`
}

// Provenance marks where an AI summary came from
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
)

// ViralPrediction is the required scoring section of an AI summary
type ViralPrediction struct {
	Score    int      `json:"score"`
	Category string   `json:"category"` // High, Medium, Low
	Reasons  []string `json:"reasons"`
}

// ContentIdea is one suggested piece of content
type ContentIdea struct {
	Title     string          `json:"title"`
	Score     int             `json:"score"`
	Reason    string          `json:"reason"`
	Blueprint json.RawMessage `json:"blueprint,omitempty"`
}

// Recommendations holds the generated content ideas
type Recommendations struct {
	NextBestContent []ContentIdea `json:"next_best_content"`
}

// AISummary is the validated result of the summary generator.
// Auxiliary sections are kept verbatim; only their presence as JSON values is checked.
type AISummary struct {
	ViralPrediction        ViralPrediction `json:"viral_prediction_engine"`
	Recommendations        Recommendations `json:"ai_recommendations"`
	ContentCategory        json.RawMessage `json:"content_category_classifier,omitempty"`
	ViralPatterns          json.RawMessage `json:"viral_pattern_detection,omitempty"`
	SEOKeywords            json.RawMessage `json:"seo_keyword_generator,omitempty"`
	CompetitorIntelligence json.RawMessage `json:"competitor_intelligence,omitempty"`
	TrendSignals           json.RawMessage `json:"trend_signals,omitempty"`
	Tier                   string          `json:"tier"`
	GeneratedBy            string          `json:"generated_by"`
	Provenance             Provenance      `json:"provenance"`
}

// ReportStats carries the counters of an analysis report
type ReportStats struct {
	CommentsFetched  int `json:"comments_fetched"`
	CommentsAnalyzed int `json:"comments_analyzed"`
	QuestionsFound   int `json:"questions_found"`
	TopicsCounted    int `json:"topics_counted"`
}

// EngagementReport carries combined and per-source engagement
type EngagementReport struct {
	Combined EngagementStats            `json:"combined"`
	BySource map[string]EngagementStats `json:"by_source"`
}

// ForumSearchReport records the secondary-source queries and their hits
type ForumSearchReport struct {
	Queries       []string       `json:"queries"`
	Results       []SearchResult `json:"results"`
	TotalMentions int            `json:"total_mentions"`
}

// InterestReport records the external interest signal
type InterestReport struct {
	Terms  []string           `json:"terms"`
	Values map[string]float64 `json:"values"`
	Sum    float64            `json:"sum"`
}

// PlatformReport carries provenance and the raw per-source results
type PlatformReport struct {
	Source       string            `json:"source"`
	URL          string            `json:"url"`
	Title        string            `json:"title,omitempty"`
	ForumSearch  ForumSearchReport `json:"forum_search"`
	Interest     InterestReport    `json:"interest"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
}

// AnalysisReport is the response produced for one analyze request
type AnalysisReport struct {
	ID         string            `json:"id"`
	Engine     string            `json:"engine"`
	AnalyzedAt string            `json:"analyzed_at"`
	Stats      ReportStats       `json:"stats"`
	NLP        Features          `json:"nlp"`
	Engagement EngagementReport  `json:"engagement"`
	Platform   PlatformReport    `json:"platform"`
	Summary    TrendFusionResult `json:"summary"`
	Generation *AISummary        `json:"m3_generation,omitempty"`
}

// Report is a periodic watchlist digest
type Report struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	Period        string            `json:"period"`
	TotalAnalyzed int               `json:"total_analyzed"`
	Threshold     int               `json:"threshold"`
	Trending      []AnalysisReport  `json:"trending"`
	Failed        map[string]string `json:"failed,omitempty"`
}
