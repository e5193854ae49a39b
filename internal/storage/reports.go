package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	reportPrefix = "reports/"
	dateLayout   = "2006-01-02"
)

// ReportName returns the archive name of a report: reports/<date>/<id>.json
func ReportName(report *models.AnalysisReport) string {
	date := "undated"
	if t, err := time.Parse(time.RFC3339, report.AnalyzedAt); err == nil {
		date = t.UTC().Format(dateLayout)
	}
	return path.Join("reports", date, report.ID+".json")
}

// SaveReport writes the report as indented JSON and returns its archive name
func SaveReport(ctx context.Context, store StorageInterface, report *models.AnalysisReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}
	name := ReportName(report)
	if err := store.Store(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// LoadReport reads one archived report
func LoadReport(ctx context.Context, store StorageInterface, name string) (*models.AnalysisReport, error) {
	data, err := store.Retrieve(ctx, name)
	if err != nil {
		return nil, err
	}
	var report models.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", name, err)
	}
	return &report, nil
}

// ListReports returns the archive names of reports for one day, or all days when date is empty
func ListReports(ctx context.Context, store StorageInterface, date string) ([]string, error) {
	prefix := reportPrefix
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid report date %q, want YYYY-MM-DD", date)
		}
		prefix += date + "/"
	}
	return store.List(ctx, prefix)
}

// PruneReports deletes archived reports dated before the cutoff day and returns how many it removed
func PruneReports(ctx context.Context, store StorageInterface, cutoff time.Time) (int, error) {
	names, err := store.List(ctx, reportPrefix)
	if err != nil {
		return 0, err
	}

	cutoffDay := cutoff.UTC().Format(dateLayout)
	removed := 0
	for _, name := range names {
		parts := strings.SplitN(strings.TrimPrefix(name, reportPrefix), "/", 2)
		if len(parts) != 2 {
			continue
		}
		if _, err := time.Parse(dateLayout, parts[0]); err != nil {
			continue
		}
		if parts[0] >= cutoffDay {
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			logrus.Warnf("Failed to prune %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}
