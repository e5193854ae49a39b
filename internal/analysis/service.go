// Package analysis runs the end-to-end pipeline: primary comment fetch, normalization,
// feature extraction and engagement, secondary search and interest signals, trend fusion,
// the optional AI summary, and report archival.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/engagement"
	"github.com/thilak-404/AGENTICEYE-M4/internal/llm"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/nlp"
	"github.com/thilak-404/AGENTICEYE-M4/internal/normalize"
	"github.com/thilak-404/AGENTICEYE-M4/internal/sources"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
	"github.com/thilak-404/AGENTICEYE-M4/internal/summary"
	"github.com/thilak-404/AGENTICEYE-M4/internal/trend"
)

// EngineName identifies the analysis engine in every report
const EngineName = "ViralEdge-NLP-v2.0"

const archiveTimeout = 30 * time.Second

// Primary platforms accepted by Analyze
const (
	PlatformYouTube = "youtube"
	PlatformTikTok  = "tiktok"
	PlatformReddit  = "reddit"
)

// Summarizer produces the AI summary of a fused analysis
type Summarizer interface {
	GenerateWithFallback(ctx context.Context, signals summary.Signals, tier summary.Tier) (*models.AISummary, error)
}

// Request describes one analysis
type Request struct {
	URL      string
	Platform string // detected from the URL when empty
	Tier     string
	Limit    int
	Generate bool
}

// Service runs the analysis pipeline
type Service struct {
	config         *config.Config
	storage        storage.StorageInterface
	commentSources map[string]sources.CommentSource
	searchers      []sources.MentionSearcher
	interest       sources.InterestSource
	extractor      *nlp.Extractor
	scorer         *trend.Scorer
	summarizer     Summarizer
	metrics        *Metrics
	now            func() time.Time
	newID          func() string
}

// Option customizes a Service
type Option func(*Service)

// WithCommentSource replaces the comment source of a platform
func WithCommentSource(platform string, src sources.CommentSource) Option {
	return func(s *Service) { s.commentSources[platform] = src }
}

// WithSearchers replaces the secondary mention searchers
func WithSearchers(searchers ...sources.MentionSearcher) Option {
	return func(s *Service) { s.searchers = searchers }
}

// WithInterestSource replaces the search-interest source; nil disables it
func WithInterestSource(src sources.InterestSource) Option {
	return func(s *Service) { s.interest = src }
}

// WithSummarizer replaces the AI summary generator
func WithSummarizer(summarizer Summarizer) Option {
	return func(s *Service) { s.summarizer = summarizer }
}

// WithMetrics sets the collectors the service records into
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source used for report timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the report ID generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates the pipeline from configuration. store may be nil to skip archival.
func NewService(cfg *config.Config, store storage.StorageInterface, opts ...Option) (*Service, error) {
	scorer, err := trend.NewScorer(
		trend.Weights{
			Engagement: cfg.WeightEngagement,
			Mentions:   cfg.WeightMentions,
			Interest:   cfg.WeightInterest,
		},
		trend.Scales{
			LikesPerPoint:     cfg.EngagementScale,
			PointsPerMention:  cfg.MentionScale,
			PointsPerInterest: cfg.InterestScale,
		},
		trend.DefaultBands(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid trend scorer settings: %w", err)
	}

	service := &Service{
		config:         cfg,
		storage:        store,
		commentSources: make(map[string]sources.CommentSource),
		extractor:      nlp.NewExtractor(cfg.QuestionLimit, cfg.TopicLimit, nil),
		scorer:         scorer,
		now:            time.Now,
		newID:          uuid.NewString,
	}

	service.initializeSources()
	service.summarizer = newGenerator(cfg)

	for _, opt := range opts {
		opt(service)
	}
	if service.metrics == nil {
		service.metrics = NewMetrics(nil)
	}

	return service, nil
}

func (s *Service) initializeSources() {
	reddit := sources.NewRedditSource(s.config.RedditClientID, s.config.RedditClientSecret, s.config.CommentFetchTimeout)

	s.commentSources[PlatformYouTube] = sources.NewYouTubeSource(s.config.YouTubeAPIKey, s.config.CommentFetchTimeout)
	s.commentSources[PlatformTikTok] = sources.NewTikTokSource(s.config.CommentFetchTimeout)
	s.commentSources[PlatformReddit] = reddit

	s.searchers = []sources.MentionSearcher{
		reddit,
		sources.NewHackerNewsSource(s.config.SearchTimeout),
		sources.NewStackOverflowSource(s.config.SearchTimeout),
		sources.NewTwitterSource(s.config.TwitterBearerToken, s.config.SearchTimeout),
	}
	s.interest = sources.NewGoogleTrendsSource(s.config.SerpAPIKey, s.config.TrendsTimeframe, s.config.TrendsTimeout)
}

func newGenerator(cfg *config.Config) *summary.Generator {
	opts := []llm.Option{llm.WithTimeout(cfg.GenerationTimeout)}
	if cfg.OpenRouterBaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.OpenRouterBaseURL))
	}

	return summary.NewGenerator(
		llm.NewClient(cfg.OpenRouterAPIKey, opts...),
		summary.NewCooldown(cfg.GenerationCooldown),
		summary.Config{
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			MaxTokens:       cfg.MaxTokens,
			Timeout:         cfg.GenerationTimeout,
			FallbackEnabled: cfg.FallbackEnabled,
		},
	)
}

// Sources returns every collaborator the service can call
func (s *Service) Sources() []sources.Source {
	var all []sources.Source
	seen := make(map[sources.Source]bool)
	add := func(src sources.Source) {
		if src != nil && !seen[src] {
			seen[src] = true
			all = append(all, src)
		}
	}

	for _, platform := range []string{PlatformYouTube, PlatformTikTok, PlatformReddit} {
		if src, ok := s.commentSources[platform]; ok {
			add(src)
		}
	}
	for _, searcher := range s.searchers {
		add(searcher)
	}
	if s.interest != nil {
		add(s.interest)
	}
	return all
}

// DetectPlatform picks the primary platform from a content URL
func DetectPlatform(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "tiktok.com"):
		return PlatformTikTok
	case strings.Contains(lower, "reddit.com"), strings.Contains(lower, "redd.it"):
		return PlatformReddit
	default:
		return PlatformYouTube
	}
}

func (s *Service) withDefaults(req Request) Request {
	req.URL = strings.TrimSpace(req.URL)
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	if req.Platform == "" {
		req.Platform = DetectPlatform(req.URL)
	}
	if req.Limit <= 0 {
		req.Limit = s.config.DefaultCommentLimit
	}
	if req.Limit > s.config.MaxCommentLimit {
		req.Limit = s.config.MaxCommentLimit
	}
	return req
}

// Analyze runs the full pipeline for one piece of content. Only a failed primary fetch
// (*PrimaryFetchError), cancellation, or an unrecoverable AI summary (*summary.GenerationError)
// is returned as an error; secondary sources degrade to zero.
func (s *Service) Analyze(ctx context.Context, req Request) (*models.AnalysisReport, error) {
	start := time.Now()
	req = s.withDefaults(req)
	tier := summary.ParseTier(req.Tier)

	outcome := "error"
	defer func() {
		s.metrics.observeAnalysis(req.Platform, outcome, time.Since(start))
	}()

	log := logrus.WithFields(logrus.Fields{"platform": req.Platform, "url": req.URL})
	log.Info("Starting analysis")

	feed, comments, err := s.fetchPrimary(ctx, req)
	if err != nil {
		outcome = "primary_fetch_failed"
		s.metrics.SourceFailures.WithLabelValues(req.Platform).Inc()
		log.Warnf("Primary fetch failed: %v", err)
		return nil, err
	}
	log.Infof("Fetched %d records, %d comments after normalization", len(feed.Items), len(comments))

	var (
		features   models.Features
		combined   models.EngagementStats
		bySource   map[string]models.EngagementStats
		analysisWG sync.WaitGroup
	)
	analysisWG.Add(2)
	go func() {
		defer analysisWG.Done()
		features = s.extractor.Extract(comments)
	}()
	go func() {
		defer analysisWG.Done()
		combined = engagement.Aggregate(comments)
		bySource = engagement.AggregateBySource(comments)
	}()
	analysisWG.Wait()

	terms := queryTerms(features.Topics, s.config.QueryTermCount)
	forum, interest, sourceErrors := s.gatherSignals(ctx, terms)
	if err := ctx.Err(); err != nil {
		outcome = "cancelled"
		return nil, err
	}

	fusion := s.scorer.Fuse(combined, forum.TotalMentions, interest.Sum)
	log.Infof("Trend probability %d (%s)", fusion.TrendProbability, fusion.TrendType)

	report := &models.AnalysisReport{
		ID:         s.newID(),
		Engine:     EngineName,
		AnalyzedAt: s.now().UTC().Format(time.RFC3339),
		Stats: models.ReportStats{
			CommentsFetched:  len(feed.Items),
			CommentsAnalyzed: len(comments),
			QuestionsFound:   len(features.Questions),
			TopicsCounted:    len(features.Topics),
		},
		NLP: features,
		Engagement: models.EngagementReport{
			Combined: combined,
			BySource: bySource,
		},
		Platform: models.PlatformReport{
			Source:       req.Platform,
			URL:          req.URL,
			Title:        feed.Title,
			ForumSearch:  forum,
			Interest:     interest,
			SourceErrors: sourceErrors,
		},
		Summary: fusion,
	}

	if req.Generate && s.summarizer != nil {
		generated, err := s.summarizer.GenerateWithFallback(ctx, summary.Signals{
			Features:   features,
			Engagement: combined,
			Trend:      fusion,
		}, tier)
		if err != nil {
			outcome = "generation_failed"
			log.Errorf("AI summary failed: %v", err)
			return nil, err
		}
		s.metrics.Generations.WithLabelValues(string(generated.Provenance)).Inc()
		report.Generation = generated
	}

	s.archive(ctx, report)

	outcome = "ok"
	s.metrics.LastTrendProbability.Set(float64(fusion.TrendProbability))
	log.Infof("Analysis %s completed in %v", report.ID, time.Since(start))
	return report, nil
}

func (s *Service) fetchPrimary(ctx context.Context, req Request) (*models.RawFeed, []models.Comment, error) {
	src, ok := s.commentSources[req.Platform]
	if !ok {
		return nil, nil, &PrimaryFetchError{Source: req.Platform, Err: fmt.Errorf("unsupported platform %q", req.Platform)}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.CommentFetchTimeout)
	defer cancel()

	feed, err := src.FetchComments(fetchCtx, req.URL, req.Limit)
	if err != nil {
		return nil, nil, &PrimaryFetchError{Source: src.GetName(), Err: err}
	}
	if feed == nil {
		return nil, nil, &PrimaryFetchError{Source: src.GetName(), Err: errNoComments}
	}
	if feed.Error != "" {
		return nil, nil, &PrimaryFetchError{Source: src.GetName(), Err: errors.New(feed.Error)}
	}

	comments := normalize.Normalize(feed.Items, normalize.Platform(feed.Platform))
	if len(comments) == 0 {
		return nil, nil, &PrimaryFetchError{Source: src.GetName(), Err: errNoComments}
	}
	return feed, comments, nil
}

// queryTerms turns the top topics into distinct search queries
func queryTerms(topics []models.TopicSignal, limit int) []string {
	terms := make([]string, 0, limit)
	seen := make(map[string]bool)
	for _, topic := range topics {
		if len(terms) >= limit {
			break
		}
		term := normalize.QueryTerm(topic.Topic)
		if term == "" || seen[strings.ToLower(term)] {
			continue
		}
		seen[strings.ToLower(term)] = true
		terms = append(terms, term)
	}
	return terms
}

type sourceError struct {
	source string
	err    error
}

// gatherSignals queries every enabled searcher for every term, and the interest source once,
// concurrently. Failures are collected per source and never returned.
func (s *Service) gatherSignals(ctx context.Context, terms []string) (models.ForumSearchReport, models.InterestReport, map[string]string) {
	forum := models.ForumSearchReport{Queries: terms, Results: []models.SearchResult{}}
	interest := models.InterestReport{Terms: []string{}, Values: map[string]float64{}}
	if len(terms) == 0 {
		return forum, interest, nil
	}

	var enabled []sources.MentionSearcher
	for _, searcher := range s.searchers {
		if searcher.IsEnabled() {
			enabled = append(enabled, searcher)
		} else {
			logrus.Debugf("Skipping disabled source %s", searcher.GetName())
		}
	}

	var wg sync.WaitGroup
	resultsChan := make(chan []models.SearchResult, len(enabled)*len(terms))
	errorsChan := make(chan sourceError, len(enabled)*len(terms)+1)

	for _, searcher := range enabled {
		for _, term := range terms {
			wg.Add(1)
			go func(src sources.MentionSearcher, term string) {
				defer wg.Done()

				searchCtx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
				defer cancel()

				results, err := src.Search(searchCtx, term, s.config.SearchResultLimit)
				if err != nil {
					errorsChan <- sourceError{source: src.GetName(), err: err}
					return
				}
				logrus.Debugf("Found %d %s results for %q", len(results), src.GetName(), term)
				resultsChan <- results
			}(searcher, term)
		}
	}

	if s.interest != nil && s.interest.IsEnabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()

			trendsCtx, cancel := context.WithTimeout(ctx, s.config.TrendsTimeout)
			defer cancel()

			values, err := s.interest.Interest(trendsCtx, terms)
			if err != nil {
				errorsChan <- sourceError{source: s.interest.GetName(), err: err}
				return
			}
			for _, term := range terms {
				if v, ok := values[term]; ok {
					interest.Terms = append(interest.Terms, term)
					interest.Values[term] = v
				}
			}
			interest.Sum = sources.SumInterest(interest.Values)
		}()
	}

	// Close channels when all goroutines complete
	go func() {
		wg.Wait()
		close(resultsChan)
		close(errorsChan)
	}()

	var all []models.SearchResult
	for results := range resultsChan {
		all = append(all, results...)
	}

	var sourceErrors map[string]string
	for se := range errorsChan {
		logrus.WithField("source", se.source).Warnf("Source failed, contributing 0: %v", se.err)
		s.metrics.SourceFailures.WithLabelValues(se.source).Inc()
		if sourceErrors == nil {
			sourceErrors = make(map[string]string)
		}
		if _, exists := sourceErrors[se.source]; !exists {
			sourceErrors[se.source] = se.err.Error()
		}
	}

	all = sources.DeduplicateResults(sortResults(all))
	forum.Results = all
	forum.TotalMentions = len(all)
	return forum, interest, sourceErrors
}

func sortResults(results []models.SearchResult) []models.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.URL != b.URL {
			return a.URL < b.URL
		}
		return a.Query < b.Query
	})
	return results
}

func (s *Service) archive(ctx context.Context, report *models.AnalysisReport) {
	if s.storage == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	name, err := storage.SaveReport(archiveCtx, s.storage, report)
	if err != nil {
		logrus.Errorf("Failed to archive report %s: %v", report.ID, err)
		return
	}
	logrus.Debugf("Archived report %s as %s", report.ID, name)
}
