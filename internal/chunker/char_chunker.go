// Package chunker splits normalized document text into overlapping windows.
package chunker

import (
	"fmt"
	"unicode"

	"docqa/internal/domain"
)

const (
	// DefaultChunkSize is the window length in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many characters consecutive windows share.
	DefaultOverlap = 100

	// sentenceLookback is how far back from a window's end a period may sit
	// and still be used as the window boundary.
	sentenceLookback = 200
)

// CharChunker splits text into windows of at most chunkSize characters that
// overlap by up to overlap characters, preferring to end a window on a period.
type CharChunker struct {
	chunkSize int
	overlap   int
}

// NewCharChunker validates the window settings. overlap must be smaller than
// chunkSize or the cursor could never advance.
func NewCharChunker(chunkSize, overlap int) (*CharChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap cannot be negative, got %d", domain.ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, overlap, chunkSize)
	}
	return &CharChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk returns the ordered chunks of text. Lengths and offsets count runes.
// The cursor moves to end-overlap after every window and chunking stops once it
// reaches the end of the text, so a short tail chunk may follow the window that
// covers the end.
func (c *CharChunker) Chunk(text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	var chunks []domain.Chunk
	for start := 0; start < n; {
		end := start + c.chunkSize
		if end < n {
			// A boundary is only taken when the next window still starts after this one.
			if p := lastPeriod(runes, start, end); p >= start && p > end-sentenceLookback && p+1-c.overlap > start {
				end = p + 1
			}
		}
		chunks = appendChunk(chunks, runes, start, min(end, n))
		start = end - c.overlap
	}
	return chunks
}

func lastPeriod(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if runes[i] == '.' {
			return i
		}
	}
	return -1
}

func appendChunk(chunks []domain.Chunk, runes []rune, start, end int) []domain.Chunk {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start == end {
		return chunks
	}
	return append(chunks, domain.Chunk{
		Index:  len(chunks),
		Offset: start,
		Text:   string(runes[start:end]),
	})
}
