// Package summarizer produces short extractive digests of document
// text for display alongside analysis results.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Frequency ranks sentences by normalized token frequency and keeps
// the top ones in their original order. Stopwords are ignored when
// counting so the digest tracks content words.
type Frequency struct {
	stopwords map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{stopwords: stopwordSet()}
}

// Summarize returns at most maxSentences sentences from text,
// selected by frequency score. Text without sentence punctuation is
// returned trimmed as-is.
func (s *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.contentTokens(sent) {
			freq[tok]++
		}
	}
	peak := 0.0
	for _, v := range freq {
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for k, v := range freq {
			freq[k] = v / peak
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.contentTokens(sent)
		total := 0.0
		for _, tok := range toks {
			total += freq[tok]
		}
		// Length-normalize so long sentences do not dominate.
		if n := float64(len(toks)); n > 0 {
			total /= math.Sqrt(n)
		}
		ranked[i] = scored{i, total}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})

	if maxSentences > len(ranked) {
		maxSentences = len(ranked)
	}
	keep := make([]int, maxSentences)
	for i := range keep {
		keep[i] = ranked[i].idx
	}
	sort.Ints(keep)

	out := make([]string, 0, len(keep))
	for _, idx := range keep {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (s *Frequency) contentTokens(text string) []string {
	toks := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := toks[:0]
	for _, tok := range toks {
		if _, skip := s.stopwords[tok]; !skip {
			out = append(out, tok)
		}
	}
	return out
}

func stopwordSet() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "being", "it",
		"this", "that", "these", "those", "from", "up", "down",
		"over", "under", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "out",
		"off", "too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
