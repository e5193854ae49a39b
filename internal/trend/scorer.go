// Package trend fuses engagement, forum mentions and search interest into a trend score.
package trend

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const weightTolerance = 0.001

// Weights splits the final score across the three signals. They must sum to 1.
type Weights struct {
	Engagement float64
	Mentions   float64
	Interest   float64
}

// Scales turn each raw signal into a 0-100 sub-score
type Scales struct {
	// LikesPerPoint is the average likes worth one point
	LikesPerPoint float64
	// PointsPerMention is the score contributed by each forum mention
	PointsPerMention float64
	// PointsPerInterest is the score contributed by each unit of search interest
	PointsPerInterest float64
}

// Band maps scores strictly above Above to Type
type Band struct {
	Above int
	Type  models.TrendType
}

// DefaultWeights is the reference 40/30/30 split
func DefaultWeights() Weights {
	return Weights{Engagement: 0.4, Mentions: 0.3, Interest: 0.3}
}

// DefaultScales matches the reference scoring: avg likes / 5, mentions * 2, interest as-is
func DefaultScales() Scales {
	return Scales{LikesPerPoint: 5, PointsPerMention: 2, PointsPerInterest: 1}
}

// DefaultBands returns the reference classification bands
func DefaultBands() []Band {
	return []Band{
		{Above: 75, Type: models.TrendMultiPlatformHigh},
		{Above: 45, Type: models.TrendMultiPlatformMedium},
		{Above: 30, Type: models.TrendMultiPlatformLow},
		{Above: 20, Type: models.TrendSinglePlatform},
	}
}

// Scorer computes TrendFusionResult values. It holds no mutable state.
type Scorer struct {
	weights Weights
	scales  Scales
	bands   []Band
}

// NewScorer validates the tuning constants and returns a scorer
func NewScorer(weights Weights, scales Scales, bands []Band) (*Scorer, error) {
	for name, w := range map[string]float64{
		"engagement": weights.Engagement,
		"mentions":   weights.Mentions,
		"interest":   weights.Interest,
	} {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%s weight must be non-negative, got %v", name, w)
		}
	}
	sum := weights.Engagement + weights.Mentions + weights.Interest
	if math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	if scales.LikesPerPoint <= 0 || scales.PointsPerMention <= 0 || scales.PointsPerInterest <= 0 {
		return nil, fmt.Errorf("scales must be positive: %+v", scales)
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Above > sorted[j].Above })
	for i, b := range sorted {
		if b.Above < 0 || b.Above >= 100 {
			return nil, fmt.Errorf("band %s threshold %d outside [0,100)", b.Type, b.Above)
		}
		if i > 0 && sorted[i-1].Above == b.Above {
			return nil, fmt.Errorf("duplicate band threshold %d", b.Above)
		}
	}

	return &Scorer{weights: weights, scales: scales, bands: sorted}, nil
}

// DefaultScorer returns a scorer with the reference constants
func DefaultScorer() *Scorer {
	s, err := NewScorer(DefaultWeights(), DefaultScales(), DefaultBands())
	if err != nil {
		panic(err)
	}
	return s
}

// Fuse combines the three raw signals. Each sub-score is clamped to [0,100] before
// weighting, so the result stays in range for any input. An unavailable source is
// passed as 0.
func (s *Scorer) Fuse(engagement models.EngagementStats, mentions int, interestSum float64) models.TrendFusionResult {
	engagementScore := clampScore(engagement.AvgLikes / s.scales.LikesPerPoint)
	mentionScore := clampScore(float64(mentions) * s.scales.PointsPerMention)
	interestScore := clampScore(interestSum * s.scales.PointsPerInterest)

	combined := s.weights.Engagement*engagementScore +
		s.weights.Mentions*mentionScore +
		s.weights.Interest*interestScore
	probability := int(clampScore(math.Round(combined)))

	return models.TrendFusionResult{
		TrendProbability: probability,
		TrendType:        s.Classify(probability),
		TrendReason: fmt.Sprintf("engagement %s avg likes, %d forum mentions, search interest %s",
			formatRaw(engagement.AvgLikes), mentions, formatRaw(interestSum)),
	}
}

// Classify maps a score to its band. Scores not above any band are not trending.
func (s *Scorer) Classify(score int) models.TrendType {
	for _, b := range s.bands {
		if score > b.Above {
			return b.Type
		}
	}
	return models.TrendNotTrending
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
