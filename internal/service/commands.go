package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/loader"
)

const HelpText = `Commands:
  /open <path>  load a text document
  /info         show statistics for the loaded document
  /clear        clear the chat history
  /help         show this help
  /quit         leave the session
Anything else is asked as a question about the document.`

// Outcome is the result of handling one line of chat input.
type Outcome struct {
	Session Session
	Notice  string
	Reply   *Reply
	Quit    bool
}

// Handle dispatches a chat line: slash commands manage the session, any other
// text is asked as a question.
func (s *QAService) Handle(ctx context.Context, sess Session, line string) Outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		return Outcome{Session: sess}
	}
	if !strings.HasPrefix(line, "/") {
		next, reply := s.Ask(ctx, sess, line)
		return Outcome{Session: next, Reply: &reply}
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "/open":
		return s.open(sess, arg)
	case "/info":
		return Outcome{Session: sess, Notice: DescribeDocument(sess)}
	case "/clear":
		return Outcome{Session: ClearHistory(sess), Notice: "Chat history cleared."}
	case "/help":
		return Outcome{Session: sess, Notice: HelpText}
	case "/quit", "/exit":
		return Outcome{Session: sess, Quit: true}
	default:
		return Outcome{Session: sess, Notice: fmt.Sprintf("Unknown command %s. Type /help for commands.", cmd)}
	}
}

func (s *QAService) open(sess Session, path string) Outcome {
	if path == "" {
		return Outcome{Session: sess, Notice: "Usage: /open <path>"}
	}
	next, err := s.OpenFile(sess, path)
	if err != nil {
		return Outcome{Session: sess, Notice: UploadErrorMessage(err)}
	}
	return Outcome{Session: next, Notice: DescribeDocument(next)}
}

// OpenFile reads path from disk and loads it into the session.
func (s *QAService) OpenFile(sess Session, path string) (Session, error) {
	up, err := loader.ReadFile(path)
	if err != nil {
		return sess, err
	}
	return s.LoadDocument(sess, up)
}

// UploadErrorMessage turns a load failure into the text shown to the user.
func UploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		return loader.UnsupportedMessage
	case errors.Is(err, domain.ErrEmptyDocument):
		return "The document has no readable text."
	default:
		return "Could not load document: " + err.Error()
	}
}
