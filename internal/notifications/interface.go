package notifications

import "github.com/thilak-404/AGENTICEYE-M4/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	// SendReport delivers a watchlist digest over Teams and email
	SendReport(report *models.Report) error
	// SendAlert publishes a trend event for one analysis that crossed the alert threshold
	SendAlert(analysis *models.AnalysisReport) error
}
