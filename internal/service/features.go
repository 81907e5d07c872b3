package service

import (
	"math"
	"strings"
	"unicode"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

// Word lists for stylometric feature extraction. Matches are case
// insensitive and whole-word.
var (
	personalPronouns = []string{
		"i", "me", "my", "mine", "we", "us", "our", "you", "your",
	}

	emotionalWords = []string{
		"love", "hate", "happy", "sad", "angry", "excited", "afraid",
		"amazing", "terrible", "wonderful", "awful", "feel", "felt",
	}

	// Common misspellings; a hit suggests a human author
	typoWords = []string{
		"teh", "recieve", "definately", "seperate", "occured",
		"untill", "wich", "becuase", "alot",
	}
)

// ExtractFeatures computes the stylometric snapshot stored with learning
// samples.
func ExtractFeatures(content string) domain.FeatureSnapshot {
	words := strings.Fields(content)
	sentences := countSentences(content)

	avgSentenceLength := 0.0
	if sentences > 0 {
		avgSentenceLength = math.Round(float64(len(words))/float64(sentences)*100) / 100
	}

	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[normalizeWord(w)] = true
	}

	return domain.FeatureSnapshot{
		SchemaVersion:       domain.FeatureSnapshotVersion,
		ContentLength:       len(content),
		WordCount:           len(words),
		SentenceCount:       sentences,
		AvgSentenceLength:   avgSentenceLength,
		HasPersonalPronouns: containsAny(wordSet, personalPronouns),
		HasEmotionalWords:   containsAny(wordSet, emotionalWords),
		HasTypos:            containsAny(wordSet, typoWords),
	}
}

func countSentences(content string) int {
	n := 0
	for _, r := range content {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	return n
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}))
}

func containsAny(wordSet map[string]bool, list []string) bool {
	for _, w := range list {
		if wordSet[w] {
			return true
		}
	}
	return false
}
