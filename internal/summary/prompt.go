package summary

import (
	"strings"
	"text/template"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	promptTopicLimit    = 12
	promptQuestionLimit = 10
	questionCharLimit   = 140
)

// Tier selects the idea count and persona of a generation request
type Tier string

const (
	TierFree      Tier = "Free"
	TierDiamond   Tier = "Diamond"
	TierSolitaire Tier = "Solitaire"
)

type tierProfile struct {
	ideas   int
	persona string
}

var tierProfiles = map[Tier]tierProfile{
	TierFree: {
		ideas:   10,
		persona: "You are ViralEdge-M3, an advanced viral content engine.",
	},
	TierDiamond: {
		ideas:   20,
		persona: "You are ViralEdge-M3, an expert viral strategist and senior content consultant.",
	},
	TierSolitaire: {
		ideas:   30,
		persona: "You are ViralEdge-M3, an elite viral mastermind and executive media producer.",
	},
}

// ParseTier maps a tier name to a Tier; unknown names are Free
func ParseTier(name string) Tier {
	for tier := range tierProfiles {
		if strings.EqualFold(string(tier), strings.TrimSpace(name)) {
			return tier
		}
	}
	return TierFree
}

// IdeaCount is the number of content ideas requested for a tier
func (t Tier) IdeaCount() int {
	return profileFor(t).ideas
}

func profileFor(t Tier) tierProfile {
	if p, ok := tierProfiles[t]; ok {
		return p
	}
	return tierProfiles[TierFree]
}

// Signals is the fused analysis handed to the generator
type Signals struct {
	Features   models.Features
	Engagement models.EngagementStats
	Trend      models.TrendFusionResult
}

type promptData struct {
	Persona       string
	Topics        string
	Questions     string
	Positive      int
	CommentsCount int
	Probability   int
	TrendType     models.TrendType
	IdeaCount     int
}

var promptTemplate = template.Must(template.New("prompt").Parse(`{{.Persona}}

Real data from audience comments:
- Topics: {{.Topics}}
- Top questions: {{.Questions}}
- Positive sentiment: {{.Positive}}%
- Engagement intensity: {{.CommentsCount}} comments analyzed
- Cross-platform trend probability: {{.Probability}} ({{.TrendType}})

TASK: Analyze the data above. Using the intensity of the questions, topic relevance and sentiment, PREDICT a viral score (0-100) for future content.

Return ONLY this JSON structure. Keep descriptions short so the JSON stays valid.

{
  "viral_prediction_engine": {
    "score": <PREDICTED_SCORE_INTEGER>,
    "category": "<High/Medium/Low>",
    "reasons": ["Reason 1", "Reason 2", "Reason 3"]
  },
  "content_category_classifier": {
    "best_format": "YouTube Long-form",
    "alternative_formats": ["Instagram Reel", "X Thread", "TikTok Short"],
    "reason": "Brief strategy explanation"
  },
  "viral_pattern_detection": {
    "detected_patterns": ["Pattern 1", "Pattern 2", "Pattern 3"],
    "confidence": 0.9
  },
  "ai_recommendations": {
    "next_best_content": [
      {
        "title": "Title idea",
        "score": 88,
        "reason": "Why this idea fits the audience",
        "blueprint": {
          "hooks": ["Hook 1 (5s)", "Hook 2 (question)", "Hook 3 (statement)"],
          "script_mini": "Scene 1: ... Scene 2: ...",
          "voiceover": {"gender": "Male/Female", "tone": "Motivational/Cinematic", "language": "English"},
          "captions": "Sample caption",
          "multi_platform": {
            "instagram_reel": "Visual concept",
            "twitter_thread": "Thread hook",
            "linkedin_post": "Professional angle",
            "blog_post": "Title and outline",
            "podcast_segment": "Discussion point"
          },
          "scene_directions": ["Scene 1: ...", "Scene 2: ..."]
        }
      }
    ]
  },
  "seo_keyword_generator": {
    "primary_keywords": ["Key1", "Key2", "Key3", "Key4"],
    "secondary_keywords": ["Key5", "Key6", "Key7", "Key8"],
    "search_volume": {"Key1": "10K/mo", "Key2": "5K/mo"}
  },
  "competitor_intelligence": {
    "gaps": ["Gap 1", "Gap 2"],
    "opportunities": ["Opportunity 1", "Opportunity 2"]
  },
  "trend_signals": {
    "google_trends": "Rising/Falling/Stable",
    "reddit_discussions": "Hot/Warm/Cold",
    "prediction": "Brief trend prediction"
  }
}

Generate exactly {{.IdeaCount}} distinct entries in next_best_content, each with a unique predicted score (0-100) and a full blueprint.
Ensure the JSON is valid and complete. Do not truncate.
START JSON NOW:`))

// BuildPrompt renders the generation instruction for the given signals and tier
func BuildPrompt(signals Signals, tier Tier) string {
	profile := profileFor(tier)

	topics := make([]string, 0, promptTopicLimit)
	for i, t := range signals.Features.Topics {
		if i >= promptTopicLimit {
			break
		}
		topics = append(topics, t.Topic)
	}

	questions := make([]string, 0, promptQuestionLimit)
	for i, q := range signals.Features.Questions {
		if i >= promptQuestionLimit {
			break
		}
		questions = append(questions, truncateRunes(q.Text, questionCharLimit))
	}

	var b strings.Builder
	// the template is fixed and every field is a plain value
	_ = promptTemplate.Execute(&b, promptData{
		Persona:       profile.persona,
		Topics:        strings.Join(topics, ", "),
		Questions:     strings.Join(questions, " | "),
		Positive:      signals.Features.Sentiment.Positive,
		CommentsCount: signals.Engagement.CommentsCount,
		Probability:   signals.Trend.TrendProbability,
		TrendType:     signals.Trend.TrendType,
		IdeaCount:     profile.ideas,
	})
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
