// Package nlp derives questions, topics and sentiment from normalized comments.
package nlp

import (
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	DefaultQuestionLimit = 20
	DefaultTopicLimit    = 12
)

// Extractor runs the three feature passes over a comment set
type Extractor struct {
	QuestionLimit int
	TopicLimit    int
	Scorer        PolarityScorer
}

// NewExtractor creates an extractor. Non-positive limits and a nil scorer get defaults.
func NewExtractor(questionLimit, topicLimit int, scorer PolarityScorer) *Extractor {
	if questionLimit <= 0 {
		questionLimit = DefaultQuestionLimit
	}
	if topicLimit <= 0 {
		topicLimit = DefaultTopicLimit
	}
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &Extractor{
		QuestionLimit: questionLimit,
		TopicLimit:    topicLimit,
		Scorer:        scorer,
	}
}

// Extract returns questions, topics and the sentiment summary. An empty input yields
// empty lists and an all-zero summary.
func (e *Extractor) Extract(comments []models.Comment) models.Features {
	features := models.Features{
		Questions: []models.Comment{},
		Topics:    []models.TopicSignal{},
	}
	if len(comments) == 0 {
		return features
	}

	features.Questions = ExtractQuestions(comments, e.QuestionLimit)
	features.Topics = ExtractTopics(comments, e.TopicLimit)
	features.Sentiment = SummarizeSentiment(comments, e.Scorer)
	return features
}
