package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Store(ctx, "reports/2026-10-19/a.json", []byte(`{"id":"a"}`)))
	require.NoError(t, store.Store(ctx, "reports/2026-10-20/b.json", []byte(`{"id":"b"}`)))
	require.NoError(t, store.Store(ctx, "other/c.json", []byte(`{}`)))

	data, err := store.Retrieve(ctx, "reports/2026-10-19/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a"}`, string(data))

	names, err := store.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/2026-10-19/a.json", "reports/2026-10-20/b.json"}, names)

	require.NoError(t, store.Delete(ctx, "reports/2026-10-19/a.json"))
	require.NoError(t, store.Delete(ctx, "reports/2026-10-19/a.json"), "deleting a missing object is not an error")

	_, err = store.Retrieve(ctx, "reports/2026-10-19/a.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	tests := []string{"../escape.json", "/etc/passwd", "."}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			err := store.Store(context.Background(), name, []byte("x"))
			assert.Error(t, err)
		})
	}
}

func TestReportName(t *testing.T) {
	tests := []struct {
		name       string
		analyzedAt string
		expected   string
	}{
		{"utc timestamp", "2026-10-19T08:30:00Z", "reports/2026-10-19/r1.json"},
		{"offset converted to utc", "2026-10-19T23:30:00-05:00", "reports/2026-10-20/r1.json"},
		{"unparsable timestamp", "yesterday", "reports/undated/r1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &models.AnalysisReport{ID: "r1", AnalyzedAt: tt.analyzedAt}
			assert.Equal(t, tt.expected, ReportName(report))
		})
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	report := &models.AnalysisReport{
		ID:         "abc",
		Engine:     "ViralEdge-NLP-v2.0",
		AnalyzedAt: "2026-10-19T08:30:00Z",
		Summary: models.TrendFusionResult{
			TrendProbability: 42,
			TrendType:        models.TrendMultiPlatformLow,
		},
	}

	name, err := SaveReport(ctx, store, report)
	require.NoError(t, err)
	assert.Equal(t, "reports/2026-10-19/abc.json", name)

	loaded, err := LoadReport(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, report.ID, loaded.ID)
	assert.Equal(t, 42, loaded.Summary.TrendProbability)

	names, err := ListReports(ctx, store, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	_, err = ListReports(ctx, store, "19/10/2026")
	assert.Error(t, err)
}

func TestPruneReports(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		"reports/2026-09-01/old.json",
		"reports/2026-10-18/recent.json",
		"reports/2026-10-19/today.json",
		"reports/undated/keep.json",
	} {
		require.NoError(t, store.Store(ctx, name, []byte("{}")))
	}

	removed, err := PruneReports(ctx, store, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names, err := store.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reports/2026-10-18/recent.json",
		"reports/2026-10-19/today.json",
		"reports/undated/keep.json",
	}, names)
}
