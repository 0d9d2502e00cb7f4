// Package summarizer picks a few representative sentences from a document.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}]+(?:'[\p{L}]+)?`)
)

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by",
	"with", "as", "is", "are", "was", "were", "be", "been", "it", "its", "this", "that", "these",
	"those", "from", "so", "into", "about", "than", "can", "will", "just", "not", "no",
)

// Overview returns up to maxSentences sentences of text in their original
// order, chosen by how many frequent content words they contain.
func Overview(text string, maxSentences int) string {
	if maxSentences <= 0 {
		return ""
	}
	var sentences []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}

	freq := make(map[string]float64)
	top := 0.0
	for _, s := range sentences {
		for _, w := range contentWords(s) {
			freq[w]++
			top = math.Max(top, freq[w])
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		words := contentWords(s)
		total := 0.0
		for _, w := range words {
			total += freq[w] / top
		}
		if len(words) > 0 {
			total /= math.Sqrt(float64(len(words)))
		}
		ranked[i] = scored{i, total}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = ranked[i].idx
	}
	sort.Ints(picked)
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func contentWords(sentence string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(sentence), -1) {
		if _, stop := stopwords[w]; !stop {
			out = append(out, w)
		}
	}
	return out
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
