package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilak-404/AGENTICEYE-M4/internal/llm"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

type fakeChatClient struct {
	response string
	err      error
	calls    int
	lastReq  llm.ChatCompletionRequest
}

func (f *fakeChatClient) ChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	choice := llm.Choice{}
	choice.Message.Content = f.response
	return &llm.ChatCompletionResponse{Choices: []llm.Choice{choice}}, nil
}

const validSummary = `{
  "viral_prediction_engine": {"score": 82, "category": "High", "reasons": ["Many how-to questions", "Positive tone"]},
  "content_category_classifier": {"best_format": "YouTube Long-form"},
  "ai_recommendations": {"next_best_content": [
    {"title": "Beginner guide", "score": 90, "reason": "Top question", "blueprint": {"hooks": ["Hook"]}},
    {"title": "Advanced tricks", "score": "75", "reason": "Follow-up"}
  ]},
  "trend_signals": {"google_trends": "Rising"}
}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{name: "Embedded in prose", raw: "Sure! Here it is:\n```json\n{\"a\": {\"b\": 1}}\n```\nEnjoy.", expected: `{"a": {"b": 1}}`, ok: true},
		{name: "Last closing brace wins", raw: `x {"a": 1} y {"b": 2} z`, expected: `{"a": 1} y {"b": 2}`, ok: true},
		{name: "No closing brace", raw: `here: {"a": [1, 2`, expected: `{"a": [1, 2`, ok: true},
		{name: "Closing brace before opening", raw: `} oops {"a": 1`, expected: `{"a": 1`, ok: true},
		{name: "No JSON", raw: "I cannot help with that.", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, candidate)
		})
	}
}

func TestExtractJSON_RecoversObjectExactly(t *testing.T) {
	raw := "Here is your analysis.\n\n" + validSummary + "\n\nLet me know if you need more."

	candidate, ok := ExtractJSON(raw)
	require.True(t, ok)

	var got, want map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(candidate), &got))
	require.NoError(t, json.Unmarshal([]byte(validSummary), &want))
	assert.Equal(t, want, got)
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]interface{}
	}{
		{
			name:  "Truncated inside array string",
			input: `{"a": 1, "list": ["x", "y", "unfini`,
			expected: map[string]interface{}{
				"a":    float64(1),
				"list": []interface{}{"x", "y"},
			},
		},
		{
			name:  "Truncated inside value string",
			input: `{"a": "done", "nested": {"b": true, "c": "half`,
			expected: map[string]interface{}{
				"a":      "done",
				"nested": map[string]interface{}{"b": true},
			},
		},
		{
			name:     "Trailing comma and missing braces",
			input:    `{"a": {"b": [1, 2],`,
			expected: map[string]interface{}{"a": map[string]interface{}{"b": []interface{}{float64(1), float64(2)}}},
		},
		{
			name:     "Truncated inside key",
			input:    `{"a": 1, "ke`,
			expected: map[string]interface{}{"a": float64(1)},
		},
		{
			name:     "Already valid",
			input:    `{"a": [1]}`,
			expected: map[string]interface{}{"a": []interface{}{float64(1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := RepairJSON(tt.input)

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(repaired), &got), "repaired: %s", repaired)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSummary(t *testing.T) {
	summary, err := ParseSummary("Result:\n"+validSummary, TierFree)

	require.NoError(t, err)
	assert.Equal(t, 82, summary.ViralPrediction.Score)
	assert.Equal(t, "High", summary.ViralPrediction.Category)
	require.Len(t, summary.Recommendations.NextBestContent, 2)
	assert.Equal(t, 75, summary.Recommendations.NextBestContent[1].Score)
	assert.JSONEq(t, `{"hooks": ["Hook"]}`, string(summary.Recommendations.NextBestContent[0].Blueprint))
	assert.JSONEq(t, `{"google_trends": "Rising"}`, string(summary.TrendSignals))
	assert.Equal(t, models.ProvenanceLive, summary.Provenance)
	assert.Equal(t, "Free", summary.Tier)
}

func TestParseSummary_RepairsTruncatedOutput(t *testing.T) {
	raw := `{"viral_prediction_engine": {"score": 140, "category": "viral!!", "reasons": ["a"]},
  "ai_recommendations": {"next_best_content": [{"title": "One", "score": -3, "reason": "r"}, {"title": "Tw`

	summary, err := ParseSummary(raw, TierDiamond)

	require.NoError(t, err)
	assert.Equal(t, 100, summary.ViralPrediction.Score)
	assert.Equal(t, "High", summary.ViralPrediction.Category)
	require.Len(t, summary.Recommendations.NextBestContent, 1)
	assert.Equal(t, 0, summary.Recommendations.NextBestContent[0].Score)
}

func TestParseSummary_TruncatesIdeasToTier(t *testing.T) {
	var ideas []string
	for i := 0; i < 25; i++ {
		ideas = append(ideas, fmt.Sprintf(`{"title": "Idea %d", "score": %d, "reason": "r"}`, i, 50+i))
	}
	raw := `{"viral_prediction_engine": {"score": 60, "category": "Medium", "reasons": []},
  "ai_recommendations": {"next_best_content": [` + strings.Join(ideas, ",") + `]}}`

	free, err := ParseSummary(raw, TierFree)
	require.NoError(t, err)
	assert.Len(t, free.Recommendations.NextBestContent, 10)

	diamond, err := ParseSummary(raw, TierDiamond)
	require.NoError(t, err)
	assert.Len(t, diamond.Recommendations.NextBestContent, 20)
}

func TestParseSummary_Errors(t *testing.T) {
	long := strings.Repeat("x", 500)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "Empty", raw: "   "},
		{name: "No JSON", raw: long},
		{name: "Unrepairable", raw: `{"viral_prediction_engine": {"score": 1}, "ai_recommendations": {"next_best_content": [}` + long},
		{name: "Missing required section", raw: `{"viral_prediction_engine": {"score": 1}}`},
		{name: "Wrong section type", raw: `{"viral_prediction_engine": [], "ai_recommendations": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSummary(tt.raw, TierFree)

			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr), "got %v", err)
			assert.LessOrEqual(t, len(genErr.RawPrefix), rawPrefixLimit)
		})
	}
}

func TestGenerate(t *testing.T) {
	client := &fakeChatClient{response: validSummary}
	generator := NewGenerator(client, NewCooldown(0), Config{
		Model:       "deepseek/deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   4000,
		Timeout:     time.Second,
	})

	summary, err := generator.Generate(context.Background(), Signals{}, TierSolitaire)

	require.NoError(t, err)
	assert.Equal(t, "deepseek/deepseek-chat via OpenRouter", summary.GeneratedBy)
	assert.Equal(t, "Solitaire", summary.Tier)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 4000, client.lastReq.MaxTokens)
	assert.Contains(t, client.lastReq.Messages[0].Content, "Generate exactly 30 distinct")
}

func TestGenerateWithFallback(t *testing.T) {
	tests := []struct {
		name            string
		client          *fakeChatClient
		fallbackEnabled bool
		wantErr         bool
		provenance      models.Provenance
	}{
		{name: "Live result", client: &fakeChatClient{response: validSummary}, fallbackEnabled: true, provenance: models.ProvenanceLive},
		{name: "Call failure uses fallback", client: &fakeChatClient{err: errors.New("boom")}, fallbackEnabled: true, provenance: models.ProvenanceFallback},
		{name: "Garbage uses fallback", client: &fakeChatClient{response: "no json here"}, fallbackEnabled: true, provenance: models.ProvenanceFallback},
		{name: "Fallback disabled propagates", client: &fakeChatClient{err: errors.New("boom")}, fallbackEnabled: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := NewGenerator(tt.client, NewCooldown(0), Config{Model: "m", FallbackEnabled: tt.fallbackEnabled})

			summary, err := generator.GenerateWithFallback(context.Background(), Signals{}, TierFree)

			if tt.wantErr {
				var genErr *GenerationError
				assert.True(t, errors.As(err, &genErr))
				assert.Nil(t, summary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provenance, summary.Provenance)
			if tt.provenance == models.ProvenanceFallback {
				assert.Equal(t, FallbackGeneratedBy, summary.GeneratedBy)
			}
		})
	}
}

func TestGenerateWithFallback_CancelledContextIsNotMasked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	generator := NewGenerator(&fakeChatClient{response: validSummary}, NewCooldown(0), Config{FallbackEnabled: true})
	_, err := generator.GenerateWithFallback(ctx, Signals{}, TierFree)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackSummary_SchemaValid(t *testing.T) {
	summary := FallbackSummary(TierDiamond)

	data, err := json.Marshal(summary)
	require.NoError(t, err)

	parsed, err := ParseSummary(string(data), TierDiamond)
	require.NoError(t, err)
	assert.Equal(t, summary.ViralPrediction.Score, parsed.ViralPrediction.Score)
	assert.Equal(t, models.ProvenanceFallback, summary.Provenance)
}

func TestFallbackSummary_IdeaCountFollowsTier(t *testing.T) {
	tests := []struct {
		tier Tier
		want int
	}{
		{TierFree, 10},
		{TierDiamond, 20},
		{TierSolitaire, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			ideas := FallbackSummary(tt.tier).Recommendations.NextBestContent
			require.Len(t, ideas, tt.want)

			titles := make(map[string]bool)
			scores := make(map[int]bool)
			for _, idea := range ideas {
				assert.False(t, titles[idea.Title], "duplicate title %q", idea.Title)
				assert.False(t, scores[idea.Score], "duplicate score %d", idea.Score)
				titles[idea.Title] = true
				scores[idea.Score] = true
				assert.True(t, idea.Score >= 0 && idea.Score <= 100)
			}
			assert.Equal(t, "Answer the most asked question in under 60 seconds (part 2)", ideas[3].Title)
			assert.Equal(t, 69, ideas[3].Score)
		})
	}
}

func TestCooldown_LastDoesNotWaitForCallInProgress(t *testing.T) {
	cooldown := NewCooldown(0)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- cooldown.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	returned := make(chan time.Time, 1)
	go func() { returned <- cooldown.Last() }()
	select {
	case last := <-returned:
		assert.True(t, last.IsZero())
	case <-time.After(time.Second):
		t.Fatal("Last blocked while a call was running")
	}

	close(release)
	require.NoError(t, <-done)
	assert.False(t, cooldown.Last().IsZero())
}

func TestCooldown_ConcurrentCallsAreSpaced(t *testing.T) {
	const interval = 50 * time.Millisecond
	cooldown := NewCooldown(interval)

	type span struct{ start, end time.Time }
	var (
		mu    sync.Mutex
		spans []span
		wg    sync.WaitGroup
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := cooldown.Do(context.Background(), func(ctx context.Context) error {
				s := span{start: time.Now()}
				time.Sleep(5 * time.Millisecond)
				s.end = time.Now()
				mu.Lock()
				spans = append(spans, s)
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, spans, 2)
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	assert.GreaterOrEqual(t, spans[1].start.Sub(spans[0].end), interval)
}

func TestCooldown_CancelWhileWaitingKeepsTimestamp(t *testing.T) {
	cooldown := NewCooldown(time.Hour)
	require.NoError(t, cooldown.Do(context.Background(), func(ctx context.Context) error { return nil }))
	last := cooldown.Last()
	require.False(t, last.IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err := cooldown.Do(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	assert.Equal(t, last, cooldown.Last())
}

func TestCooldown_AbandonedCallDoesNotRecord(t *testing.T) {
	cooldown := NewCooldown(time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	err := cooldown.Do(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, cooldown.Last().IsZero())
}

func TestCooldown_FailedCallStillRecords(t *testing.T) {
	cooldown := NewCooldown(time.Second)

	err := cooldown.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("http 500")
	})

	assert.Error(t, err)
	assert.False(t, cooldown.Last().IsZero())
}

func TestBuildPrompt(t *testing.T) {
	var topics []models.TopicSignal
	for i := 0; i < 20; i++ {
		topics = append(topics, models.TopicSignal{Topic: fmt.Sprintf("topic%02d", i)})
	}
	var questions []models.Comment
	for i := 0; i < 15; i++ {
		questions = append(questions, models.Comment{Text: fmt.Sprintf("q%02d %s?", i, strings.Repeat("z", 200))})
	}
	signals := Signals{
		Features: models.Features{
			Topics:    topics,
			Questions: questions,
			Sentiment: models.SentimentSummary{Positive: 64},
		},
		Engagement: models.EngagementStats{CommentsCount: 321},
		Trend:      models.TrendFusionResult{TrendProbability: 47, TrendType: models.TrendMultiPlatformMedium},
	}

	prompt := BuildPrompt(signals, TierDiamond)

	assert.Contains(t, prompt, "expert viral strategist")
	assert.Contains(t, prompt, "Generate exactly 20 distinct")
	assert.Contains(t, prompt, "topic11")
	assert.NotContains(t, prompt, "topic12")
	assert.Contains(t, prompt, "q09 ")
	assert.NotContains(t, prompt, "q10 ")
	assert.NotContains(t, prompt, strings.Repeat("z", 137))
	assert.Contains(t, prompt, strings.Repeat("z", 136))
	assert.Contains(t, prompt, "Positive sentiment: 64%")
	assert.Contains(t, prompt, "321 comments analyzed")
	assert.Contains(t, prompt, "47 (multi_platform_medium)")
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierDiamond, ParseTier("diamond"))
	assert.Equal(t, TierSolitaire, ParseTier(" Solitaire "))
	assert.Equal(t, TierFree, ParseTier("platinum"))
	assert.Equal(t, 10, Tier("bogus").IdeaCount())
}
