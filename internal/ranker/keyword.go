// Package ranker orders chunks by how many of a question's words they contain.
package ranker

import (
	"sort"
	"strings"

	"docqa/internal/domain"
)

const DefaultMaxChunks = 3

// KeywordRanker scores chunks by lexical overlap: the fraction of the
// question's distinct lowercase words that also occur in the chunk.
// There is no stemming and no stop-word removal.
type KeywordRanker struct {
	maxChunks int
}

func NewKeywordRanker(maxChunks int) *KeywordRanker {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return &KeywordRanker{maxChunks: maxChunks}
}

// Score returns every chunk with its overlap score, best first.
// Equal scores keep the chunks' original order.
func (r *KeywordRanker) Score(question string, chunks []domain.Chunk) []domain.ScoredChunk {
	qset := toWordSet(question)
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, ch := range chunks {
		scored[i] = domain.ScoredChunk{Chunk: ch, Score: overlapScore(qset, ch.Text)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Rank returns at most maxChunks chunks, most relevant first.
func (r *KeywordRanker) Rank(question string, chunks []domain.Chunk) []domain.Chunk {
	scored := r.Score(question, chunks)
	n := min(r.maxChunks, len(scored))
	out := make([]domain.Chunk, 0, n)
	for _, sc := range scored[:n] {
		out = append(out, sc.Chunk)
	}
	return out
}

func toWordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func overlapScore(qset map[string]struct{}, text string) float64 {
	if len(qset) == 0 {
		return 0
	}
	seen := toWordSet(text)
	inter := 0
	for w := range qset {
		if _, ok := seen[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(qset))
}
