package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

// Platform identifies the origin of a raw record and selects its adapter
type Platform string

const (
	PlatformYouTube       Platform = "youtube"
	PlatformTikTok        Platform = "tiktok"
	PlatformRedditComment Platform = "reddit_comment"
	PlatformRedditReply   Platform = "reddit_reply"
	PlatformForumPost     Platform = "forum_post"
)

var (
	errEmptyText = errors.New("empty text after cleaning")
	errNoText    = errors.New("no text field")
)

// Adapter converts one raw record into a canonical comment
type Adapter func(rec models.RawRecord) (models.Comment, error)

// fieldKeys lists, per canonical field, the raw keys to probe in order
type fieldKeys struct {
	author    []string
	text      []string
	likes     []string
	timestamp []string
}

var adapters = map[Platform]Adapter{
	PlatformYouTube: fieldAdapter(PlatformYouTube, fieldKeys{
		author:    []string{"author"},
		text:      []string{"text"},
		likes:     []string{"likes", "votes"},
		timestamp: []string{"time", "time_parsed"},
	}),
	PlatformTikTok: fieldAdapter(PlatformTikTok, fieldKeys{
		author:    []string{"author", "unique_id"},
		text:      []string{"text"},
		likes:     []string{"digg_count", "likes"},
		timestamp: []string{"create_time", "time"},
	}),
	PlatformRedditComment: redditAdapter,
	PlatformRedditReply:   redditAdapter,
	PlatformForumPost: fieldAdapter(PlatformForumPost, fieldKeys{
		author:    []string{"author", "by"},
		text:      []string{"text", "selftext", "title"},
		likes:     []string{"likes", "score", "ups"},
		timestamp: []string{"time", "created_utc"},
	}),
}

var redditKeys = fieldKeys{
	author:    []string{"author"},
	text:      []string{"body", "text"},
	likes:     []string{"score", "ups", "likes"},
	timestamp: []string{"created_utc", "time"},
}

// redditAdapter tags nested replies separately from top-level comments
func redditAdapter(rec models.RawRecord) (models.Comment, error) {
	platform := PlatformRedditComment
	if depthOf(rec) > 0 {
		platform = PlatformRedditReply
	}
	return fieldAdapter(platform, redditKeys)(rec)
}

// AdapterFor returns the adapter registered for the platform
func AdapterFor(platform Platform) (Adapter, bool) {
	adapter, ok := adapters[platform]
	return adapter, ok
}

// Normalize converts raw per-platform records into canonical comments.
// Records that cannot be converted are skipped; nothing is returned as an error.
func Normalize(records []models.RawRecord, platform Platform) []models.Comment {
	adapter, ok := AdapterFor(platform)
	if !ok {
		logrus.Warnf("No adapter for platform %q, using forum post adapter", platform)
		adapter = adapters[PlatformForumPost]
	}

	comments := make([]models.Comment, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if rec == nil {
			skipped++
			continue
		}
		comment, err := adapter(rec)
		if err != nil {
			skipped++
			continue
		}
		comments = append(comments, comment)
	}

	if skipped > 0 {
		logrus.Debugf("Normalization skipped %d of %d %s records", skipped, len(records), platform)
	}
	return comments
}

func fieldAdapter(platform Platform, keys fieldKeys) Adapter {
	return func(rec models.RawRecord) (models.Comment, error) {
		rawText, ok := firstPresent(rec, keys.text)
		if !ok {
			return models.Comment{}, errNoText
		}
		text := CleanText(stringValue(rawText))
		if text == "" {
			return models.Comment{}, errEmptyText
		}

		comment := models.Comment{
			Text:           text,
			SourcePlatform: string(platform),
		}
		if author, ok := firstPresent(rec, keys.author); ok {
			comment.Author = stringValue(author)
		}
		if likes, ok := firstPresent(rec, keys.likes); ok {
			comment.Likes = ParseLikes(likes)
		}
		if ts, ok := firstPresent(rec, keys.timestamp); ok {
			comment.Timestamp = stringValue(ts)
		}
		return comment, nil
	}
}

// firstPresent returns the first non-null value under any of the keys
func firstPresent(rec models.RawRecord, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
