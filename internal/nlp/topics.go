package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

const (
	// fallbackTopicCount bounds the frequency fallback
	fallbackTopicCount = 5
	minWeightedDocs    = 2
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}']{2,}`)

// Tokenize lower-cases text and returns word tokens of two or more characters
func Tokenize(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := tokens[:0]
	for _, tok := range tokens {
		tok = strings.Trim(tok, "'")
		if len(tok) < 2 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func contentTerms(text string) []string {
	var words []string
	for _, tok := range Tokenize(text) {
		if isStopword(tok) || isNumeric(tok) {
			continue
		}
		words = append(words, tok)
	}

	terms := make([]string, 0, 2*len(words))
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// documentTerms is every term a document can be credited with: its weighted unigrams and
// bigrams plus the raw tokens used by the frequency fallback
func documentTerms(doc string) map[string]bool {
	set := make(map[string]bool)
	for _, term := range contentTerms(doc) {
		set[term] = true
	}
	for _, tok := range Tokenize(doc) {
		set[tok] = true
	}
	return set
}

// ExtractTopics ranks unigram and bigram terms by summed TF-IDF weight across comments.
// With fewer than two usable documents it falls back to the five most frequent words.
func ExtractTopics(comments []models.Comment, limit int) []models.TopicSignal {
	docs := make([]string, 0, len(comments))
	for _, c := range comments {
		if text := strings.TrimSpace(c.Text); text != "" {
			docs = append(docs, strings.ToLower(text))
		}
	}
	if len(docs) == 0 {
		return []models.TopicSignal{}
	}

	weights := tfidfWeights(docs)
	if len(weights) == 0 {
		weights = frequencyWeights(docs)
		if limit <= 0 || limit > fallbackTopicCount {
			limit = fallbackTopicCount
		}
	}

	docSets := make([]map[string]bool, len(docs))
	for i, doc := range docs {
		docSets[i] = documentTerms(doc)
	}

	topics := make([]models.TopicSignal, 0, len(weights))
	for term, w := range weights {
		mentions := 0
		for _, set := range docSets {
			if set[term] {
				mentions++
			}
		}
		topics = append(topics, models.TopicSignal{
			Topic:        term,
			Weight:       round(w, 4),
			MentionCount: mentions,
			Percentage:   round(float64(mentions)/float64(len(docs))*100, 1),
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Weight != topics[j].Weight {
			return topics[i].Weight > topics[j].Weight
		}
		return topics[i].Topic < topics[j].Topic
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

// tfidfWeights uses raw term counts, smoothed idf and per-document l2 normalisation
func tfidfWeights(docs []string) map[string]float64 {
	docTerms := make([]map[string]float64, 0, len(docs))
	df := make(map[string]int)
	for _, doc := range docs {
		counts := make(map[string]float64)
		for _, term := range contentTerms(doc) {
			counts[term]++
		}
		if len(counts) == 0 {
			continue
		}
		for term := range counts {
			df[term]++
		}
		docTerms = append(docTerms, counts)
	}

	if len(docTerms) < minWeightedDocs {
		return nil
	}

	n := float64(len(docTerms))
	weights := make(map[string]float64, len(df))
	for _, counts := range docTerms {
		var norm float64
		for term, tf := range counts {
			v := tf * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			counts[term] = v
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for term, v := range counts {
			weights[term] += v / norm
		}
	}
	return weights
}

func frequencyWeights(docs []string) map[string]float64 {
	counts := make(map[string]float64)
	for _, doc := range docs {
		for _, tok := range Tokenize(doc) {
			if !isStopword(tok) {
				counts[tok]++
			}
		}
	}
	if len(counts) > 0 {
		return counts
	}

	// stopwords only; count them rather than report nothing
	for _, doc := range docs {
		for _, tok := range Tokenize(doc) {
			counts[tok]++
		}
	}
	return counts
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
