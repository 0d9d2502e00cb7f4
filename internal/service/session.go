package service

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// Session is the state of one conversation: the current document, its chunks
// and the chat transcript. Handlers take a Session and return the updated one.
type Session struct {
	ID       string
	Document *domain.Document
	Chunks   []domain.Chunk
	Overview string
	Messages []domain.Message
}

func NewSession() Session {
	return Session{ID: uuid.NewString()}
}

// HasDocument reports whether a document has been loaded.
func (s Session) HasDocument() bool {
	return s.Document != nil
}

func (s Session) withMessage(role domain.Role, content string, at time.Time) Session {
	msgs := slices.Clip(slices.Clone(s.Messages))
	s.Messages = append(msgs, domain.Message{Role: role, Content: content, Timestamp: at})
	return s
}

// ClearHistory drops the transcript and keeps the document.
func ClearHistory(s Session) Session {
	s.Messages = nil
	return s
}
