package normalize

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`http\S+`)
	mentionPattern    = regexp.MustCompile(`@\w+`)
	hashtagPattern    = regexp.MustCompile(`#\w+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	queryPattern      = regexp.MustCompile(`[^\w\s-]`)
)

// CleanText strips URLs, @mentions and #hashtags, then collapses whitespace
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = hashtagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// QueryTerm turns a topic into a search-safe query. It returns "" for terms too short to search.
func QueryTerm(topic string) string {
	term := strings.TrimSpace(queryPattern.ReplaceAllString(topic, ""))
	term = whitespacePattern.ReplaceAllString(term, " ")
	if len(term) <= 1 {
		return ""
	}
	return term
}
