package notifications

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func trendingAnalysis() models.AnalysisReport {
	return models.AnalysisReport{
		ID:         "a1",
		AnalyzedAt: "2026-10-19T08:30:00Z",
		Stats:      models.ReportStats{CommentsAnalyzed: 120},
		NLP: models.Features{Topics: []models.TopicSignal{
			{Topic: "meal prep"}, {Topic: "protein"}, {Topic: "budget"}, {Topic: "oats"},
		}},
		Platform: models.PlatformReport{
			Source: "youtube",
			URL:    "https://youtu.be/dQw4w9WgXcQ",
			Title:  "Budget meal prep",
		},
		Summary: models.TrendFusionResult{
			TrendProbability: 78,
			TrendType:        models.TrendMultiPlatformHigh,
			TrendReason:      "engagement 600 avg likes, 40 forum mentions, search interest 85",
		},
	}
}

func sampleReport() *models.Report {
	return &models.Report{
		GeneratedAt:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Period:        "Watchlist",
		TotalAnalyzed: 3,
		Threshold:     60,
		Trending:      []models.AnalysisReport{trendingAnalysis()},
		Failed:        map[string]string{"https://www.tiktok.com/@x/video/1": "primary comment fetch failed"},
	}
}

func TestService_SendReport_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL}, nil)
	require.NoError(t, service.SendReport(sampleReport()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "ViralEdge Trend Report - Watchlist", received.Title)
	assert.Equal(t, "1 of 3 watched items at or above 60% trend probability", received.Text)
	require.Len(t, received.Sections, 3)
	assert.Equal(t, "Trending Content", received.Sections[1].ActivityTitle)
	assert.Contains(t, received.Sections[1].ActivityText, "**[Budget meal prep](https://youtu.be/dQw4w9WgXcQ)** - 78% multi_platform_high (youtube)")
	assert.Equal(t, "Failed Analyses", received.Sections[2].ActivityTitle)
}

func TestService_SendReport_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad card"))
	}))
	defer server.Close()

	cfg := &config.Config{
		TeamsWebhookURL:   server.URL,
		NotificationEmail: "team@example.com",
		SMTPUsername:      "bot@example.com",
	}
	service := NewService(cfg, nil)
	service.mailer = &fakeMailer{err: errors.New("connection refused")}

	err := service.SendReport(sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams: Teams webhook returned status 400: bad card")
	assert.Contains(t, err.Error(), "Email: failed to send email: connection refused")
}

func TestService_SendReport_Email(t *testing.T) {
	cfg := &config.Config{
		NotificationEmail: "team@example.com",
		SMTPUsername:      "bot@example.com",
	}
	mailer := &fakeMailer{}
	service := NewService(cfg, nil)
	service.mailer = mailer

	require.NoError(t, service.SendReport(sampleReport()))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"ViralEdge Trend Report - Watchlist (1 trending)"}, mailer.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"team@example.com"}, mailer.sent[0].GetHeader("To"))
}

func TestService_BuildEmailBodies(t *testing.T) {
	service := NewService(&config.Config{}, nil)
	report := sampleReport()

	html, err := service.buildEmailHTML(report)
	require.NoError(t, err)
	assert.Contains(t, html, `<a href="https://youtu.be/dQw4w9WgXcQ" target="_blank">Budget meal prep</a>`)
	assert.Contains(t, html, "78% multi_platform_high on youtube")
	assert.Contains(t, html, "Topics: meal prep, protein, budget")
	assert.NotContains(t, html, "oats")

	text := service.buildEmailText(report)
	assert.Contains(t, text, "Trending (>= 60%): 1")
	assert.Contains(t, text, "1. Budget meal prep")
	assert.Contains(t, text, "Failed: 1")
	assert.True(t, strings.HasSuffix(text, "generated automatically by ViralEdge.\n"))
}

func TestService_SendAlert(t *testing.T) {
	analysis := trendingAnalysis()

	t.Run("publishes on detected subject", func(t *testing.T) {
		publisher := &fakePublisher{}
		service := NewService(&config.Config{}, NewTrendEvents(publisher, "viraledge.trends"))

		require.NoError(t, service.SendAlert(&analysis))
		assert.Equal(t, "viraledge.trends.detected", publisher.subject)

		var event TrendEvent
		require.NoError(t, json.Unmarshal(publisher.data, &event))
		assert.Equal(t, "a1", event.ID)
		assert.Equal(t, 78, event.TrendProbability)
		assert.Equal(t, models.TrendMultiPlatformHigh, event.TrendType)
		assert.Equal(t, []string{"meal prep", "protein", "budget", "oats"}, event.Topics)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		publisher := &fakePublisher{err: errors.New("nats: connection closed")}
		service := NewService(&config.Config{}, NewTrendEvents(publisher, "viraledge.trends"))

		err := service.SendAlert(&analysis)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nats: connection closed")
	})

	t.Run("no event channel", func(t *testing.T) {
		service := NewService(&config.Config{}, nil)
		assert.NoError(t, service.SendAlert(&analysis))
	})
}
