// Package engagement computes like-based statistics over normalized comments.
package engagement

import (
	"math"
	"sort"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

// TopCommentCount is the number of comments kept in TopComments
const TopCommentCount = 5

// Aggregate returns counts, like totals and the five most-liked comments. Ties keep
// input order. The average is 0 for an empty set.
func Aggregate(comments []models.Comment) models.EngagementStats {
	stats := models.EngagementStats{
		CommentsCount: len(comments),
		TopComments:   []models.Comment{},
	}
	if len(comments) == 0 {
		return stats
	}

	for _, c := range comments {
		stats.TotalLikes += c.Likes
	}
	stats.AvgLikes = math.Round(float64(stats.TotalLikes)/float64(len(comments))*100) / 100

	sorted := make([]models.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes > sorted[j].Likes
	})
	if len(sorted) > TopCommentCount {
		sorted = sorted[:TopCommentCount]
	}
	stats.TopComments = sorted

	return stats
}

// AggregateBySource groups comments by SourcePlatform and aggregates each group
func AggregateBySource(comments []models.Comment) map[string]models.EngagementStats {
	groups := make(map[string][]models.Comment)
	for _, c := range comments {
		groups[c.SourcePlatform] = append(groups[c.SourcePlatform], c)
	}

	out := make(map[string]models.EngagementStats, len(groups))
	for source, group := range groups {
		out[source] = Aggregate(group)
	}
	return out
}
