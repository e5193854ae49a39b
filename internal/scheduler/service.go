package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/notifications"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
)

const (
	// Daily at 03:30 UTC
	pruneSchedule = "0 30 3 * * *"
	runTimeout    = 30 * time.Minute
	watchlist     = "Watchlist"
)

// Analyzer runs one analysis
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.AnalysisReport, error)
}

// Service handles the watchlist and archive retention jobs
type Service struct {
	config        *config.Config
	analyzer      Analyzer
	notifications notifications.NotificationInterface
	archive       storage.StorageInterface
	cron          *cron.Cron
	now           func() time.Time
}

// NewService creates a new scheduler service. archive may be nil.
func NewService(cfg *config.Config, analyzer Analyzer, notifier notifications.NotificationInterface, archive storage.StorageInterface) *Service {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	runner := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	return &Service{
		config:        cfg,
		analyzer:      analyzer,
		notifications: notifier,
		archive:       archive,
		cron:          runner,
		now:           time.Now,
	}
}

// Start registers the configured jobs and starts the cron runner
func (s *Service) Start() error {
	jobs := 0

	if len(s.config.WatchURLs) > 0 {
		_, err := s.cron.AddFunc(s.config.WatchSchedule, func() {
			logrus.Info("Starting scheduled watchlist run")
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			if _, err := s.RunWatchlist(ctx); err != nil {
				logrus.Errorf("Scheduled watchlist run failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid WATCH_SCHEDULE %q: %w", s.config.WatchSchedule, err)
		}
		jobs++
	}

	if s.archive != nil && s.config.ReportRetentionDays > 0 {
		_, err := s.cron.AddFunc(pruneSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			if _, err := s.PruneArchive(ctx); err != nil {
				logrus.Errorf("Report archive pruning failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		jobs++
	}

	if jobs == 0 {
		logrus.Info("Scheduler has no jobs configured")
		return nil
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %d job(s), watching %d URL(s) on %q",
		jobs, len(s.config.WatchURLs), s.config.WatchSchedule)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}

// RunWatchlist analyzes every watched URL without AI generation, publishes a trend event for
// each result at or above the alert threshold, and sends a digest when anything is trending.
func (s *Service) RunWatchlist(ctx context.Context) (*models.Report, error) {
	start := time.Now()
	report := &models.Report{
		GeneratedAt: s.now().UTC(),
		Period:      watchlist,
		Threshold:   s.config.AlertThreshold,
		Trending:    []models.AnalysisReport{},
	}

	for _, url := range s.config.WatchURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.analyzer.Analyze(ctx, analysis.Request{URL: url})
		if err != nil {
			logrus.Warnf("Watchlist analysis of %s failed: %v", url, err)
			if report.Failed == nil {
				report.Failed = make(map[string]string)
			}
			report.Failed[url] = err.Error()
			continue
		}

		report.TotalAnalyzed++
		if result.Summary.TrendProbability >= s.config.AlertThreshold {
			report.Trending = append(report.Trending, *result)
		}
	}

	sort.SliceStable(report.Trending, func(i, j int) bool {
		return report.Trending[i].Summary.TrendProbability > report.Trending[j].Summary.TrendProbability
	})

	for i := range report.Trending {
		if err := s.notifications.SendAlert(&report.Trending[i]); err != nil {
			logrus.Errorf("Failed to publish trend event for %s: %v", report.Trending[i].Platform.URL, err)
		}
	}

	logrus.Infof("Watchlist run analyzed %d of %d URLs in %v, %d trending",
		report.TotalAnalyzed, len(s.config.WatchURLs), time.Since(start), len(report.Trending))

	if len(report.Trending) == 0 {
		return report, nil
	}
	if err := s.notifications.SendReport(report); err != nil {
		return report, fmt.Errorf("failed to send watchlist report: %w", err)
	}
	return report, nil
}

// PruneArchive removes archived reports older than the retention period
func (s *Service) PruneArchive(ctx context.Context) (int, error) {
	if s.archive == nil || s.config.ReportRetentionDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -s.config.ReportRetentionDays)
	removed, err := storage.PruneReports(ctx, s.archive, cutoff)
	if err != nil {
		return removed, err
	}
	logrus.Infof("Pruned %d archived report(s) older than %s", removed, cutoff.UTC().Format("2006-01-02"))
	return removed, nil
}
