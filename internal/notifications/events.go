package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const maxEventTopics = 5

// Publisher is the part of a NATS connection used for trend events
type Publisher interface {
	Publish(subject string, data []byte) error
}

// TrendEvent is the payload published on <subject>.detected
type TrendEvent struct {
	ID               string           `json:"id"`
	URL              string           `json:"url"`
	Platform         string           `json:"platform"`
	Title            string           `json:"title,omitempty"`
	TrendProbability int              `json:"trend_probability"`
	TrendType        models.TrendType `json:"trend_type"`
	TrendReason      string           `json:"trend_reason"`
	Topics           []string         `json:"topics"`
	AnalyzedAt       string           `json:"analyzed_at"`
}

// TrendEvents publishes trend-detected events
type TrendEvents struct {
	conn    Publisher
	subject string
}

// NewTrendEvents creates a publisher for events under the given subject prefix
func NewTrendEvents(conn Publisher, subject string) *TrendEvents {
	return &TrendEvents{conn: conn, subject: subject}
}

// Subject returns the subject events are published on
func (e *TrendEvents) Subject() string {
	return fmt.Sprintf("%s.detected", e.subject)
}

// PublishTrend publishes one analysis as a trend event
func (e *TrendEvents) PublishTrend(analysis *models.AnalysisReport) error {
	event := NewTrendEvent(analysis)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal trend event: %w", err)
	}
	if err := e.conn.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish trend event %s: %w", event.ID, err)
	}
	return nil
}

// NewTrendEvent builds the event payload of an analysis
func NewTrendEvent(analysis *models.AnalysisReport) TrendEvent {
	topics := make([]string, 0, maxEventTopics)
	for _, topic := range analysis.NLP.Topics {
		if len(topics) == maxEventTopics {
			break
		}
		topics = append(topics, topic.Topic)
	}

	return TrendEvent{
		ID:               analysis.ID,
		URL:              analysis.Platform.URL,
		Platform:         analysis.Platform.Source,
		Title:            analysis.Platform.Title,
		TrendProbability: analysis.Summary.TrendProbability,
		TrendType:        analysis.Summary.TrendType,
		TrendReason:      analysis.Summary.TrendReason,
		Topics:           topics,
		AnalyzedAt:       analysis.AnalyzedAt,
	}
}

// ConnectNATS opens a NATS connection that reconnects in the background
func ConnectNATS(url string) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("viraledge"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logrus.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logrus.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}
