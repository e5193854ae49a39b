package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
	"github.com/thilak-404/AGENTICEYE-M4/internal/summary"
)

// AnalyzeQuery is the query string accepted by GET /m3/analyze
type AnalyzeQuery struct {
	URL      string `validate:"required,url"`
	Platform string `validate:"omitempty,oneof=youtube tiktok reddit"`
	Tier     string `validate:"oneof=Free Diamond Solitaire"`
	Limit    int    `validate:"omitempty,min=1,max=500"`
	Generate bool
}

// ScriptQuery is the query string accepted by POST /m3/generate-script
type ScriptQuery struct {
	Title    string `validate:"required,max=200"`
	Duration string `validate:"required,max=20"`
	Tone     string `validate:"required,max=50"`
	Notes    string `validate:"max=2000"`
}

type reportQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
	ID   string `validate:"required,uuid"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"engine":   analysis.EngineName,
		"status":   "online",
		"endpoint": "/m3/analyze",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
		"time":    s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	query, err := parseAnalyzeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(query); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), analysis.Request{
		URL:      query.URL,
		Platform: query.Platform,
		Tier:     query.Tier,
		Limit:    query.Limit,
		Generate: query.Generate,
	})
	if err != nil {
		writeError(w, analyzeStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func parseAnalyzeQuery(r *http.Request) (AnalyzeQuery, error) {
	values := r.URL.Query()
	query := AnalyzeQuery{
		URL:      strings.TrimSpace(values.Get("url")),
		Platform: strings.ToLower(strings.TrimSpace(values.Get("platform"))),
		Tier:     string(summary.TierFree),
		Generate: true,
	}

	if tier := strings.TrimSpace(values.Get("tier")); tier != "" {
		query.Tier = tier
	}
	if limit := values.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return query, fmt.Errorf("limit must be an integer, got %q", limit)
		}
		query.Limit = n
	}
	if generate := values.Get("generate"); generate != "" {
		b, err := strconv.ParseBool(generate)
		if err != nil {
			return query, fmt.Errorf("generate must be true or false, got %q", generate)
		}
		query.Generate = b
	}
	return query, nil
}

func analyzeStatus(err error) int {
	var genErr *summary.GenerationError
	switch {
	case errors.Is(err, analysis.ErrPrimaryFetch):
		return http.StatusBadRequest
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		logrus.Errorf("Analysis failed: %v", err)
		return http.StatusInternalServerError
	}
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := ScriptQuery{
		Title:    strings.TrimSpace(values.Get("title")),
		Duration: valueOr(values.Get("duration"), "60s"),
		Tone:     valueOr(values.Get("tone"), "Energetic"),
		Notes:    strings.TrimSpace(values.Get("notes")),
	}
	if err := s.validate.Struct(query); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	script, err := GenerateScript(query)
	if err != nil {
		logrus.Errorf("Script rendering failed: %v", err)
		writeError(w, http.StatusInternalServerError, "script generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"script": script,
		"status": "Generated",
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if err := s.validate.Var(date, "omitempty,datetime=2006-01-02"); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	names, err := storage.ListReports(r.Context(), s.store, date)
	if err != nil {
		logrus.Errorf("Failed to list reports: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"count":   len(names),
		"reports": names,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}

	vars := mux.Vars(r)
	query := reportQuery{Date: vars["date"], ID: vars["id"]}
	if err := s.validate.Struct(query); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	name := fmt.Sprintf("reports/%s/%s.json", query.Date, query.ID)
	report, err := storage.LoadReport(r.Context(), s.store, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		logrus.Errorf("Failed to load report %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	var parts []string
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func valueOr(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
