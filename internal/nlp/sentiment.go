package nlp

import (
	"math"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// PolarityScorer maps text to a polarity in [-1, 1]
type PolarityScorer interface {
	Polarity(text string) float64
}

// LexiconScorer is a word-list polarity scorer with negation and intensifier handling
type LexiconScorer struct {
	lexicon      map[string]float64
	negations    map[string]bool
	intensifiers map[string]float64
}

// NewLexiconScorer creates a scorer backed by the built-in English word list
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		lexicon:      defaultLexicon,
		negations:    defaultNegations,
		intensifiers: defaultIntensifiers,
	}
}

// Polarity averages the scores of the opinion words found in text. Text without
// opinion words scores 0.
func (s *LexiconScorer) Polarity(text string) float64 {
	tokens := Tokenize(text)

	var sum float64
	matched := 0
	for i, tok := range tokens {
		score, ok := s.lexicon[tok]
		if !ok {
			continue
		}

		if i > 0 {
			if boost, ok := s.intensifiers[tokens[i-1]]; ok {
				score *= boost
			}
		}
		for back := 1; back <= 2 && i-back >= 0; back++ {
			if s.negations[tokens[i-back]] {
				score *= -0.5
				break
			}
		}

		sum += score
		matched++
	}

	if matched == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, sum/float64(matched)))
}

// Bucket classifies a polarity score as positive, negative or neutral
func Bucket(polarity float64) string {
	switch {
	case polarity > positiveThreshold:
		return "positive"
	case polarity < negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}

// SummarizeSentiment buckets each comment and reports independently rounded
// percentages plus the mean polarity.
func SummarizeSentiment(comments []models.Comment, scorer PolarityScorer) models.SentimentSummary {
	if len(comments) == 0 {
		return models.SentimentSummary{}
	}
	if scorer == nil {
		scorer = NewLexiconScorer()
	}

	var pos, neg, neu int
	var total float64
	for _, c := range comments {
		p := scorer.Polarity(c.Text)
		if math.IsNaN(p) {
			p = 0
		}
		total += p
		switch Bucket(p) {
		case "positive":
			pos++
		case "negative":
			neg++
		default:
			neu++
		}
	}

	n := float64(len(comments))
	return models.SentimentSummary{
		Positive: int(math.Round(float64(pos) / n * 100)),
		Negative: int(math.Round(float64(neg) / n * 100)),
		Neutral:  int(math.Round(float64(neu) / n * 100)),
		AvgScore: round(total/n, 3),
	}
}
