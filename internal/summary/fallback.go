package summary

import (
	"encoding/json"
	"fmt"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

// FallbackGeneratedBy marks payloads that did not come from the model
const FallbackGeneratedBy = "ViralEdge demo payload (fallback)"

var fallbackIdeas = []models.ContentIdea{
	{
		Title:  "Answer the most asked question in under 60 seconds",
		Score:  72,
		Reason: "Direct answers to recurring audience questions",
		Blueprint: json.RawMessage(`{"hooks":["You asked, here is the answer"],` +
			`"script_mini":"Scene 1: restate the question. Scene 2: show the answer.",` +
			`"scene_directions":["Scene 1: Close up","Scene 2: Screen capture"]}`),
	},
	{
		Title:  "Common mistakes and how to fix them",
		Score:  65,
		Reason: "Problem and fix formats hold attention",
		Blueprint: json.RawMessage(`{"hooks":["Stop doing this"],` +
			`"script_mini":"Scene 1: the mistake. Scene 2: the fix.",` +
			`"scene_directions":["Scene 1: Split screen"]}`),
	},
	{
		Title:  "Behind the scenes of the original video",
		Score:  58,
		Reason: "Follow-up content for an engaged audience",
		Blueprint: json.RawMessage(`{"hooks":["What you did not see"],` +
			`"script_mini":"Scene 1: setup. Scene 2: outtakes.",` +
			`"scene_directions":["Scene 1: Wide shot"]}`),
	},
}

// FallbackSummary returns a static, schema-valid summary tagged with fallback provenance.
// It carries tier.IdeaCount() ideas, cycling the stock ideas with a part suffix and a lower score on each repeat.
func FallbackSummary(tier Tier) *models.AISummary {
	count := tier.IdeaCount()
	ideas := make([]models.ContentIdea, 0, count)
	for i := 0; i < count; i++ {
		idea := fallbackIdeas[i%len(fallbackIdeas)]
		if round := i / len(fallbackIdeas); round > 0 {
			idea.Title = fmt.Sprintf("%s (part %d)", idea.Title, round+1)
			idea.Score -= 3 * round
		}
		ideas = append(ideas, idea)
	}

	return &models.AISummary{
		ViralPrediction: models.ViralPrediction{
			Score:    50,
			Category: "Medium",
			Reasons: []string{
				"Demo payload: the AI generator was unavailable",
				"Scores are placeholders, not predictions",
			},
		},
		Recommendations: models.Recommendations{NextBestContent: ideas},
		ContentCategory: json.RawMessage(`{"best_format":"YouTube Short","alternative_formats":["Instagram Reel","TikTok Short"],"reason":"Demo payload"}`),
		TrendSignals:    json.RawMessage(`{"prediction":"Unavailable in demo payload"}`),
		Tier:            string(tier),
		GeneratedBy:     FallbackGeneratedBy,
		Provenance:      models.ProvenanceFallback,
	}
}
