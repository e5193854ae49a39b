package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
	"github.com/thilak-404/AGENTICEYE-M4/internal/summary"
)

const reportID = "3f2b8c1e-5d4a-4e7b-9c6d-1a2b3c4d5e6f"

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*models.AnalysisReport, error) {
	args := m.Called(ctx, req)
	if report := args.Get(0); report != nil {
		return report.(*models.AnalysisReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func sampleReport() *models.AnalysisReport {
	return &models.AnalysisReport{
		ID:         reportID,
		Engine:     analysis.EngineName,
		AnalyzedAt: "2026-10-19T08:30:00Z",
		Platform:   models.PlatformReport{Source: "youtube", URL: "https://youtu.be/dQw4w9WgXcQ"},
		Summary: models.TrendFusionResult{
			TrendProbability: 50,
			TrendType:        models.TrendMultiPlatformMedium,
		},
	}
}

func newTestServer(analyzer Analyzer, store storage.StorageInterface) *Server {
	server := NewServer(analyzer, store, prometheus.NewRegistry())
	server.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return server
}

func serve(t *testing.T, server *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_RootAndHealth(t *testing.T) {
	server := newTestServer(&MockAnalyzer{}, nil)

	rec := serve(t, server, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"engine":   "ViralEdge-NLP-v2.0",
		"status":   "online",
		"endpoint": "/m3/analyze",
	}, decodeBody(t, rec))

	rec = serve(t, server, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2026-10-19T09:00:00Z", body["time"])
}

func TestServer_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "viraledge_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	server := NewServer(&MockAnalyzer{}, nil, registry)
	rec := serve(t, server, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "viraledge_test_total 1")
}

func TestServer_Analyze(t *testing.T) {
	analyzer := &MockAnalyzer{}
	analyzer.On("Analyze", mock.Anything, analysis.Request{
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Platform: "youtube",
		Tier:     "Diamond",
		Limit:    50,
		Generate: false,
	}).Return(sampleReport(), nil)

	server := newTestServer(analyzer, nil)
	rec := serve(t, server, http.MethodGet,
		"/m3/analyze?url=https://youtu.be/dQw4w9WgXcQ&platform=YouTube&tier=Diamond&limit=50&generate=false")

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, reportID, report.ID)
	assert.Equal(t, models.TrendMultiPlatformMedium, report.Summary.TrendType)
	analyzer.AssertExpectations(t)
}

func TestServer_AnalyzeDefaults(t *testing.T) {
	analyzer := &MockAnalyzer{}
	analyzer.On("Analyze", mock.Anything, analysis.Request{
		URL:      "https://www.tiktok.com/@chef/video/7301",
		Tier:     "Free",
		Generate: true,
	}).Return(sampleReport(), nil)

	server := newTestServer(analyzer, nil)
	rec := serve(t, server, http.MethodGet, "/m3/analyze?url=https://www.tiktok.com/@chef/video/7301")

	assert.Equal(t, http.StatusOK, rec.Code)
	analyzer.AssertExpectations(t)
}

func TestServer_AnalyzeValidation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{name: "missing url", query: "", wantErr: "url must satisfy required"},
		{name: "malformed url", query: "url=not-a-url", wantErr: "url must satisfy url"},
		{name: "unknown tier", query: "url=https://youtu.be/x&tier=Gold", wantErr: "tier must satisfy oneof"},
		{name: "unknown platform", query: "url=https://youtu.be/x&platform=vimeo", wantErr: "platform must satisfy oneof"},
		{name: "limit too large", query: "url=https://youtu.be/x&limit=900", wantErr: "limit must satisfy max=500"},
		{name: "limit not a number", query: "url=https://youtu.be/x&limit=ten", wantErr: "limit must be an integer"},
		{name: "bad generate flag", query: "url=https://youtu.be/x&generate=maybe", wantErr: "generate must be true or false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &MockAnalyzer{}
			server := newTestServer(analyzer, nil)

			rec := serve(t, server, http.MethodGet, "/m3/analyze?"+tt.query)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tt.wantErr)
			analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
		})
	}
}

func TestServer_AnalyzeErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "primary fetch failure",
			err:        &analysis.PrimaryFetchError{Source: "youtube", Err: errors.New("video is private")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generation failure",
			err:        &summary.GenerationError{RawPrefix: "I cannot", Err: errors.New("no JSON object")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &MockAnalyzer{}
			analyzer.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)
			server := newTestServer(analyzer, nil)

			rec := serve(t, server, http.MethodGet, "/m3/analyze?url=https://youtu.be/dQw4w9WgXcQ")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.err.Error(), decodeBody(t, rec)["error"])
		})
	}
}

func TestServer_CORS(t *testing.T) {
	server := newTestServer(&MockAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/m3/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_GenerateScript(t *testing.T) {
	server := newTestServer(&MockAnalyzer{}, nil)

	t.Run("short form by default", func(t *testing.T) {
		rec := serve(t, server, http.MethodPost, "/m3/generate-script?title=Budget+meal+prep")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Generated", body["status"])
		script := body["script"].(string)
		assert.Contains(t, script, "**Duration:** 60s")
		assert.Contains(t, script, "**Tone:** Energetic")
		assert.Contains(t, script, "**[0:45-60s] CTA**")
		assert.Contains(t, script, "1. Do this. 2. Then this. 3. Profit.")
	})

	t.Run("long form with notes", func(t *testing.T) {
		rec := serve(t, server, http.MethodPost,
			"/m3/generate-script?title=Oats&duration=3min&tone=Calm&notes=Soak+overnight")

		require.Equal(t, http.StatusOK, rec.Code)
		script := decodeBody(t, rec)["script"].(string)
		assert.Contains(t, script, "**[1:30-3min] Call to Action**")
		assert.Contains(t, script, `"I bet you didn't know this about Oats..."`)
		assert.Contains(t, script, "Soak overnight")
		assert.NotContains(t, script, "(Insert specific details here)")
	})

	t.Run("title required", func(t *testing.T) {
		rec := serve(t, server, http.MethodPost, "/m3/generate-script?duration=90")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/generate-script?title=x")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server := newTestServer(&MockAnalyzer{}, nil)

	tests := []struct {
		method string
		target string
	}{
		{method: http.MethodPost, target: "/m3/analyze?url=https://youtu.be/x"},
		{method: http.MethodGet, target: "/m3/generate-script?title=x"},
		{method: http.MethodDelete, target: "/m3/reports"},
		{method: http.MethodPost, target: "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(t, server, tt.method, tt.target)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestIsLongForm(t *testing.T) {
	tests := []struct {
		duration string
		want     bool
	}{
		{"60s", false},
		{"60", false},
		{"61", true},
		{"90", true},
		{"2min", true},
		{"1 min", true},
		{"45s", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLongForm(tt.duration), tt.duration)
	}
}

func TestServer_Reports(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	_, err = storage.SaveReport(context.Background(), store, sampleReport())
	require.NoError(t, err)

	server := newTestServer(&MockAnalyzer{}, store)

	t.Run("list by date", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports?date=2026-10-19")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, []interface{}{"reports/2026-10-19/" + reportID + ".json"}, body["reports"])
	})

	t.Run("empty day", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports?date=2026-10-18")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []interface{}{}, decodeBody(t, rec)["reports"])
	})

	t.Run("bad date", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports?date=19-10-2026")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get one", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports/2026-10-19/"+reportID)
		require.Equal(t, http.StatusOK, rec.Code)
		var report models.AnalysisReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", report.Platform.URL)
	})

	t.Run("missing report", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports/2026-10-18/"+reportID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := serve(t, server, http.MethodGet, "/m3/reports/2026-10-19/latest")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["error"], "id must satisfy uuid")
	})
}

func TestServer_ReportsWithoutArchive(t *testing.T) {
	server := newTestServer(&MockAnalyzer{}, nil)

	rec := serve(t, server, http.MethodGet, "/m3/reports")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "not configured"))
}
