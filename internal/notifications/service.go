package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	teamsTrendingLimit = 5
	emailTrendingLimit = 10
	topicsPerItem      = 3
)

// mailSender is the part of gomail.Dialer used to deliver email
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
	mailer mailSender
	events *TrendEvents
}

var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service. events may be nil when NATS is not configured.
func NewService(cfg *config.Config, events *TrendEvents) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		mailer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		events: events,
	}
}

// SendReport sends a watchlist digest via configured notification channels
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(report); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent trend report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent trend report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert publishes a trend-detected event for one analysis
func (s *Service) SendAlert(analysis *models.AnalysisReport) error {
	if s.events == nil {
		logrus.Debugf("No event channel configured, skipping trend event for %s", analysis.ID)
		return nil
	}
	if err := s.events.PublishTrend(analysis); err != nil {
		return err
	}
	logrus.Infof("Published trend event for %s (%d%%) on %s",
		analysis.Platform.URL, analysis.Summary.TrendProbability, s.events.Subject())
	return nil
}

func (s *Service) sendToTeams(report *models.Report) error {
	message := s.buildTeamsMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.Report) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: "FF0050",
		Title:      fmt.Sprintf("ViralEdge Trend Report - %s", report.Period),
		Text: fmt.Sprintf("%d of %d watched items at or above %d%% trend probability",
			len(report.Trending), report.TotalAnalyzed, report.Threshold),
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts: []TeamsFact{
			{Name: "Analyzed", Value: fmt.Sprintf("%d", report.TotalAnalyzed)},
			{Name: "Trending", Value: fmt.Sprintf("%d", len(report.Trending))},
			{Name: "Failed", Value: fmt.Sprintf("%d", len(report.Failed))},
			{Name: "Generated", Value: report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		},
		Markdown: true,
	})

	if len(report.Trending) > 0 {
		var lines []string
		for i, item := range report.Trending {
			if i == teamsTrendingLimit {
				break
			}
			lines = append(lines, fmt.Sprintf("**[%s](%s)** - %d%% %s (%s)",
				displayTitle(item), item.Platform.URL, item.Summary.TrendProbability,
				item.Summary.TrendType, item.Platform.Source))
		}

		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Trending Content",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	if len(report.Failed) > 0 {
		var facts []TeamsFact
		for url, reason := range report.Failed {
			facts = append(facts, TeamsFact{Name: url, Value: reason})
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Failed Analyses",
			Facts:         facts,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("ViralEdge Trend Report - %s (%d trending)", report.Period, len(report.Trending))

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"title":  displayTitle,
	"topics": topTopics,
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>ViralEdge Trend Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #111111; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .item { border-left: 4px solid #ff0050; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .item-title { font-weight: bold; margin-bottom: 5px; }
        .item-meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>ViralEdge Trend Report</h1>
        <p>{{.Period}} run on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Analyzed:</strong> {{.TotalAnalyzed}}</p>
        <p><strong>Trending (&ge; {{.Threshold}}%):</strong> {{len .Trending}}</p>
        {{if .Failed}}<p><strong>Failed:</strong> {{len .Failed}}</p>{{end}}
    </div>

    {{if .Trending}}
    <h2>Trending Content</h2>
    {{range $index, $item := .Trending}}
        {{if lt $index 10}}
        <div class="item">
            <div class="item-title">
                <a href="{{$item.Platform.URL}}" target="_blank">{{title $item}}</a>
            </div>
            <div class="item-meta">
                {{$item.Summary.TrendProbability}}% {{$item.Summary.TrendType}} on {{$item.Platform.Source}}
                | {{$item.Stats.CommentsAnalyzed}} comments | {{$item.Engagement.Combined.TotalLikes}} likes
            </div>
            <p>{{$item.Summary.TrendReason}}</p>
            {{with topics $item}}<p>Topics: {{.}}</p>{{end}}
        </div>
        {{end}}
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by ViralEdge.</small></p>
</body>
</html>
`))

func (s *Service) buildEmailHTML(report *models.Report) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.Report) string {
	var text strings.Builder

	fmt.Fprintf(&text, "ViralEdge Trend Report - %s\n", report.Period)
	fmt.Fprintf(&text, "Generated: %s\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	fmt.Fprintf(&text, "Analyzed: %d\n", report.TotalAnalyzed)
	fmt.Fprintf(&text, "Trending (>= %d%%): %d\n", report.Threshold, len(report.Trending))
	if len(report.Failed) > 0 {
		fmt.Fprintf(&text, "Failed: %d\n", len(report.Failed))
	}

	if len(report.Trending) > 0 {
		text.WriteString("\nTRENDING CONTENT\n")
		text.WriteString("================\n")

		for i, item := range report.Trending {
			if i == emailTrendingLimit {
				break
			}
			fmt.Fprintf(&text, "\n%d. %s\n", i+1, displayTitle(item))
			fmt.Fprintf(&text, "   %d%% %s | Platform: %s\n",
				item.Summary.TrendProbability, item.Summary.TrendType, item.Platform.Source)
			fmt.Fprintf(&text, "   URL: %s\n", item.Platform.URL)
			fmt.Fprintf(&text, "   Signals: %s\n", item.Summary.TrendReason)
			if topics := topTopics(item); topics != "" {
				fmt.Fprintf(&text, "   Topics: %s\n", topics)
			}
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by ViralEdge.\n")

	return text.String()
}

func displayTitle(item models.AnalysisReport) string {
	if item.Platform.Title != "" {
		return item.Platform.Title
	}
	return item.Platform.URL
}

func topTopics(item models.AnalysisReport) string {
	var names []string
	for _, topic := range item.NLP.Topics {
		if len(names) == topicsPerItem {
			break
		}
		names = append(names, topic.Topic)
	}
	return strings.Join(names, ", ")
}
