package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/loader"
	"docqa/internal/logger"
	"docqa/internal/preprocess"
	"docqa/internal/prompt"
	"docqa/internal/summarizer"
)

const (
	NoDocumentReply  = "Please upload a document first to ask questions about it."
	FallbackAnswer   = "Sorry, I could not find an answer."
	errorReplyPrefix = "An error occurred while processing your question: "
)

// Reply is the assistant's response to one question.
type Reply struct {
	Text       string
	Result     *domain.AnswerResult
	ChunksUsed int
	Err        error
}

type QAService struct {
	chunker           domain.Chunker
	ranker            domain.Ranker
	answerer          domain.Answerer
	overviewSentences int
	log               logger.Logger
	now               func() time.Time
}

// Option configures a QAService.
type Option func(*QAService)

// WithOverviewSentences sets how many sentences the upload overview keeps.
func WithOverviewSentences(n int) Option {
	return func(s *QAService) { s.overviewSentences = n }
}

func WithLogger(l logger.Logger) Option {
	return func(s *QAService) { s.log = l }
}

func NewQAService(chunker domain.Chunker, ranker domain.Ranker, answerer domain.Answerer, opts ...Option) *QAService {
	s := &QAService{
		chunker:           chunker,
		ranker:            ranker,
		answerer:          answerer,
		overviewSentences: 2,
		log:               logger.Default(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDocument normalizes and chunks an upload and makes it the session's document.
// On error the session is returned unchanged.
func (s *QAService) LoadDocument(sess Session, up loader.Upload) (Session, error) {
	raw, err := up.Text()
	if err != nil {
		s.log.Warn("upload rejected", "name", up.Name, "err", err)
		return sess, err
	}
	content := preprocess.Normalize(raw)
	if content == "" {
		return sess, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, up.Name)
	}
	// Flags look at the raw text because '@' and '/' do not survive normalization.
	info := preprocess.ExtractInfo(raw)
	counts := preprocess.ExtractInfo(content)
	info.WordCount, info.CharCount = counts.WordCount, counts.CharCount

	doc := &domain.Document{
		ID:       uuid.NewString(),
		Name:     up.Name,
		MIMEType: up.MIMEType(),
		Raw:      raw,
		Content:  content,
		Info:     info,
	}
	sess.Document = doc
	sess.Chunks = s.chunker.Chunk(content)
	sess.Overview = summarizer.Overview(content, s.overviewSentences)
	s.log.Info("document loaded",
		"session", sess.ID,
		"name", doc.Name,
		"mime", doc.MIMEType,
		"words", doc.Info.WordCount,
		"chunks", len(sess.Chunks),
	)
	return sess, nil
}

// Ask answers question against the session's document. Both the question and
// the reply are appended to the transcript, including failure replies.
func (s *QAService) Ask(ctx context.Context, sess Session, question string) (Session, Reply) {
	log := s.log.With("session", sess.ID)
	ctx = logger.ContextWithLogger(ctx, log)
	sess = sess.withMessage(domain.RoleUser, question, s.now())
	reply := s.answer(ctx, log, sess, question)
	sess = sess.withMessage(domain.RoleAssistant, reply.Text, s.now())
	return sess, reply
}

func (s *QAService) answer(ctx context.Context, log logger.Logger, sess Session, question string) Reply {
	if !sess.HasDocument() {
		return Reply{Text: NoDocumentReply, Err: domain.ErrNoDocument}
	}
	selected := s.ranker.Rank(question, sess.Chunks)
	payload := prompt.Compose(question, prompt.JoinContext(selected))
	log.Debug("question ranked", "chunks", len(selected), "context_chars", len(payload))

	res, err := s.answerer.Answer(ctx, question, payload)
	if err != nil {
		log.Error("answer failed", "err", err)
		return Reply{Text: errorReplyPrefix + err.Error(), ChunksUsed: len(selected), Err: err}
	}
	return Reply{Text: RenderAnswer(res, len(selected)), Result: &res, ChunksUsed: len(selected)}
}

// RenderAnswer formats an answer with its confidence and the number of chunks searched.
func RenderAnswer(res domain.AnswerResult, chunks int) string {
	answer := res.Answer
	if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}
	return fmt.Sprintf("%s\n\n*Confidence: %.2f%%*\n*Searched %d relevant text chunks*", answer, res.Score*100, chunks)
}

// DescribeDocument renders the upload report for the session's document.
func DescribeDocument(sess Session) string {
	if !sess.HasDocument() {
		return "No document loaded."
	}
	doc := sess.Document
	var b strings.Builder
	fmt.Fprintf(&b, "File uploaded: %s\n", doc.Name)
	b.WriteString("Document Information:\n")
	fmt.Fprintf(&b, "- Word count: %d\n", doc.Info.WordCount)
	fmt.Fprintf(&b, "- Character count: %d\n", doc.Info.CharCount)
	fmt.Fprintf(&b, "- Number of chunks: %d\n", len(sess.Chunks))
	fmt.Fprintf(&b, "- Contains numbers: %s, dates: %s, emails: %s", yesNo(doc.Info.HasNumbers), yesNo(doc.Info.HasDates), yesNo(doc.Info.HasEmails))
	if sess.Overview != "" {
		b.WriteString("\n\nOverview: " + sess.Overview)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
