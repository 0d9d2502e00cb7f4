package domain

import (
	"context"
	"time"
)

// DocumentInfo holds descriptive statistics extracted from a normalized document.
type DocumentInfo struct {
	WordCount  int
	CharCount  int
	HasNumbers bool
	HasDates   bool
	HasEmails  bool
}

// Document is a single uploaded text file together with its derived forms.
type Document struct {
	ID       string
	Name     string
	MIMEType string
	Raw      string
	Content  string
	Info     DocumentInfo
}

// Chunk is a contiguous, trimmed slice of a document's normalized content.
// Offset is the rune position of the first character of Text in the content.
type Chunk struct {
	Index  int
	Offset int
	Text   string
}

// ScoredChunk pairs a chunk with its keyword overlap score against a question.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// AnswerResult is what the remote question-answering model returned.
type AnswerResult struct {
	Answer string
	Score  float64
}

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the chat transcript.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Chunker splits normalized text into ordered chunks.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Ranker selects the chunks most relevant to a question.
type Ranker interface {
	Rank(question string, chunks []Chunk) []Chunk
}

// Answerer asks the remote model a question against a context string.
type Answerer interface {
	Answer(ctx context.Context, question, docContext string) (AnswerResult, error)
}
