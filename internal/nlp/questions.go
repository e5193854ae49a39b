package nlp

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	minQuestionLength = 10
	dedupPrefixLength = 60
)

var interrogatives = map[string]bool{
	"how": true, "what": true, "why": true, "when": true, "can": true,
	"where": true, "which": true, "who": true,
}

// IsQuestion reports whether cleaned comment text reads as a question
func IsQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, "is it ") || lower == "is it" {
		return true
	}
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return interrogatives[first]
}

// ExtractQuestions returns question comments longer than 10 characters, deduplicated
// by their first 60 lower-cased characters and ordered by likes (stable).
func ExtractQuestions(comments []models.Comment, limit int) []models.Comment {
	seen := make(map[string]bool)
	questions := []models.Comment{}

	for _, c := range comments {
		if utf8.RuneCountInString(c.Text) <= minQuestionLength || !IsQuestion(c.Text) {
			continue
		}
		key := dedupKey(c.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		questions = append(questions, c)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Likes > questions[j].Likes
	})

	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	return questions
}

func dedupKey(text string) string {
	runes := []rune(strings.ToLower(text))
	if len(runes) > dedupPrefixLength {
		runes = runes[:dedupPrefixLength]
	}
	return string(runes)
}
