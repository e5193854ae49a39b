package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Log file rotation; empty LogFile logs to stdout only
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// API Keys and credentials
	YouTubeAPIKey      string
	RedditClientID     string
	RedditClientSecret string
	TwitterBearerToken string
	SerpAPIKey         string
	OpenRouterAPIKey   string
	OpenRouterBaseURL  string

	// AI summary generation
	Model              string
	Temperature        float64
	MaxTokens          int
	GenerationTimeout  time.Duration
	GenerationCooldown time.Duration
	FallbackEnabled    bool

	// Collaborator timeouts
	CommentFetchTimeout time.Duration
	SearchTimeout       time.Duration
	TrendsTimeout       time.Duration
	TrendsTimeframe     string

	// Fusion weights and scales
	WeightEngagement  float64
	WeightMentions    float64
	WeightInterest    float64
	EngagementScale   float64 // average likes per point
	MentionScale      float64 // points per forum mention
	InterestScale     float64 // points per unit of search interest
	QueryTermCount    int
	SearchResultLimit int

	// Feature extraction caps
	QuestionLimit       int
	TopicLimit          int
	DefaultCommentLimit int
	MaxCommentLimit     int

	// Azure Storage configuration
	StorageAccount      string
	StorageContainer    string
	ReportDir           string // local archive used when no storage account is set
	ReportRetentionDays int    // 0 keeps reports forever

	// Watchlist
	WatchURLs      []string
	WatchSchedule  string // cron expression with seconds
	AlertThreshold int

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	NATSURL           string
	NATSSubject       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getIntEnv("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 28),

		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		SerpAPIKey:         getEnv("SERPAPI_KEY", ""),
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL:  getEnv("OPENROUTER_BASE_URL", ""),

		Model:              getEnv("LLM_MODEL", "deepseek/deepseek-chat"),
		Temperature:        getFloatEnv("LLM_TEMPERATURE", 0.7),
		MaxTokens:          getIntEnv("LLM_MAX_TOKENS", 4000),
		GenerationTimeout:  getDurationEnv("GENERATION_TIMEOUT", 60*time.Second),
		GenerationCooldown: getDurationEnv("GENERATION_COOLDOWN", 1200*time.Millisecond),
		FallbackEnabled:    getBoolEnv("GENERATION_FALLBACK", true),

		CommentFetchTimeout: getDurationEnv("COMMENT_FETCH_TIMEOUT", 30*time.Second),
		SearchTimeout:       getDurationEnv("SEARCH_TIMEOUT", 15*time.Second),
		TrendsTimeout:       getDurationEnv("TRENDS_TIMEOUT", 20*time.Second),
		TrendsTimeframe:     getEnv("TRENDS_TIMEFRAME", "now 7-d"),

		WeightEngagement:  getFloatEnv("TREND_WEIGHT_ENGAGEMENT", 0.4),
		WeightMentions:    getFloatEnv("TREND_WEIGHT_MENTIONS", 0.3),
		WeightInterest:    getFloatEnv("TREND_WEIGHT_INTEREST", 0.3),
		EngagementScale:   getFloatEnv("TREND_ENGAGEMENT_SCALE", 5),
		MentionScale:      getFloatEnv("TREND_MENTION_SCALE", 2),
		InterestScale:     getFloatEnv("TREND_INTEREST_SCALE", 1),
		QueryTermCount:    getIntEnv("QUERY_TERM_COUNT", 6),
		SearchResultLimit: getIntEnv("SEARCH_RESULT_LIMIT", 25),

		QuestionLimit:       getIntEnv("QUESTION_LIMIT", 20),
		TopicLimit:          getIntEnv("TOPIC_LIMIT", 12),
		DefaultCommentLimit: getIntEnv("COMMENT_LIMIT", 100),
		MaxCommentLimit:     getIntEnv("MAX_COMMENT_LIMIT", 500),

		StorageAccount:      getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer:    getEnv("AZURE_STORAGE_CONTAINER", "reports"),
		ReportDir:           getEnv("REPORT_DIR", ""),
		ReportRetentionDays: getIntEnv("REPORT_RETENTION_DAYS", 30),

		WatchURLs:      getSliceEnv("WATCH_URLS", nil),
		WatchSchedule:  getEnv("WATCH_SCHEDULE", ""),
		AlertThreshold: getIntEnv("ALERT_THRESHOLD", 60),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubject:       getEnv("NATS_SUBJECT", "viraledge.trends"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	weights := map[string]float64{
		"TREND_WEIGHT_ENGAGEMENT": c.WeightEngagement,
		"TREND_WEIGHT_MENTIONS":   c.WeightMentions,
		"TREND_WEIGHT_INTEREST":   c.WeightInterest,
	}
	for name, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	if sum := c.WeightEngagement + c.WeightMentions + c.WeightInterest; math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("trend weights must sum to 1.0, got %.3f", sum)
	}

	if c.EngagementScale <= 0 || c.MentionScale <= 0 || c.InterestScale <= 0 {
		return fmt.Errorf("TREND_ENGAGEMENT_SCALE, TREND_MENTION_SCALE and TREND_INTEREST_SCALE must be > 0")
	}

	if c.GenerationCooldown < 0 {
		return fmt.Errorf("GENERATION_COOLDOWN must be >= 0")
	}

	if c.QuestionLimit < 1 || c.QuestionLimit > 50 {
		return fmt.Errorf("QUESTION_LIMIT must be between 1 and 50")
	}
	if c.TopicLimit < 1 || c.TopicLimit > 50 {
		return fmt.Errorf("TOPIC_LIMIT must be between 1 and 50")
	}

	if c.MaxCommentLimit < 1 || c.DefaultCommentLimit < 1 || c.DefaultCommentLimit > c.MaxCommentLimit {
		return fmt.Errorf("COMMENT_LIMIT must be between 1 and MAX_COMMENT_LIMIT")
	}

	if c.AlertThreshold < 0 || c.AlertThreshold > 100 {
		return fmt.Errorf("ALERT_THRESHOLD must be between 0 and 100")
	}

	if c.ReportRetentionDays < 0 {
		return fmt.Errorf("REPORT_RETENTION_DAYS must be >= 0")
	}

	if len(c.WatchURLs) > 0 && c.WatchSchedule == "" {
		return fmt.Errorf("WATCH_SCHEDULE is required when WATCH_URLS is set")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
