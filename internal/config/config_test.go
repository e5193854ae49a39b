package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1200*time.Millisecond, cfg.GenerationCooldown)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 30*time.Second, cfg.CommentFetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 20*time.Second, cfg.TrendsTimeout)
	assert.Equal(t, "deepseek/deepseek-chat", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 4000, cfg.MaxTokens)
	assert.True(t, cfg.FallbackEnabled)
	assert.Equal(t, 0.4, cfg.WeightEngagement)
	assert.Equal(t, 0.3, cfg.WeightMentions)
	assert.Equal(t, 0.3, cfg.WeightInterest)
	assert.Equal(t, 5.0, cfg.EngagementScale)
	assert.Equal(t, 20, cfg.QuestionLimit)
	assert.Equal(t, 12, cfg.TopicLimit)
	assert.Equal(t, 100, cfg.DefaultCommentLimit)
	assert.Equal(t, 500, cfg.MaxCommentLimit)
	assert.Empty(t, cfg.WatchURLs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("GENERATION_COOLDOWN", "2s")
	t.Setenv("TREND_WEIGHT_ENGAGEMENT", "0.5")
	t.Setenv("TREND_WEIGHT_MENTIONS", "0.25")
	t.Setenv("TREND_WEIGHT_INTEREST", "0.25")
	t.Setenv("WATCH_URLS", " https://youtu.be/dQw4w9WgXcQ , ,https://www.tiktok.com/@a/video/1 ")
	t.Setenv("WATCH_SCHEDULE", "0 0 * * * *")
	t.Setenv("ALERT_THRESHOLD", "70")
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Second, cfg.GenerationCooldown)
	assert.Equal(t, 0.5, cfg.WeightEngagement)
	assert.Equal(t, []string{"https://youtu.be/dQw4w9WgXcQ", "https://www.tiktok.com/@a/video/1"}, cfg.WatchURLs)
	assert.Equal(t, 70, cfg.AlertThreshold)
	assert.Equal(t, 4000, cfg.MaxTokens, "unparsable values keep the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
		{
			name:    "weights do not sum to one",
			modify:  func(c *Config) { c.WeightInterest = 0.5 },
			wantErr: "sum to 1.0",
		},
		{
			name: "negative weight",
			modify: func(c *Config) {
				c.WeightEngagement = -0.2
				c.WeightMentions = 0.6
				c.WeightInterest = 0.6
			},
			wantErr: "must be >= 0",
		},
		{
			name:    "zero scale",
			modify:  func(c *Config) { c.MentionScale = 0 },
			wantErr: "must be > 0",
		},
		{
			name:    "negative cooldown",
			modify:  func(c *Config) { c.GenerationCooldown = -time.Second },
			wantErr: "GENERATION_COOLDOWN",
		},
		{
			name:    "question cap too large",
			modify:  func(c *Config) { c.QuestionLimit = 51 },
			wantErr: "QUESTION_LIMIT",
		},
		{
			name:    "topic cap zero",
			modify:  func(c *Config) { c.TopicLimit = 0 },
			wantErr: "TOPIC_LIMIT",
		},
		{
			name:    "comment limit above max",
			modify:  func(c *Config) { c.DefaultCommentLimit = 600 },
			wantErr: "COMMENT_LIMIT",
		},
		{
			name:    "alert threshold out of range",
			modify:  func(c *Config) { c.AlertThreshold = 101 },
			wantErr: "ALERT_THRESHOLD",
		},
		{
			name:    "negative retention",
			modify:  func(c *Config) { c.ReportRetentionDays = -1 },
			wantErr: "REPORT_RETENTION_DAYS",
		},
		{
			name:    "watchlist without schedule",
			modify:  func(c *Config) { c.WatchURLs = []string{"https://youtu.be/dQw4w9WgXcQ"} },
			wantErr: "WATCH_SCHEDULE",
		},
		{
			name:    "email without smtp",
			modify:  func(c *Config) { c.NotificationEmail = "team@example.com" },
			wantErr: "SMTP configuration",
		},
		{
			name: "email with smtp",
			modify: func(c *Config) {
				c.NotificationEmail = "team@example.com"
				c.SMTPHost = "smtp.example.com"
				c.SMTPUsername = "bot"
				c.SMTPPassword = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.modify(cfg)
			err = cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
