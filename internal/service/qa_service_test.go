package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/loader"
	"docqa/internal/logger"
	"docqa/internal/ranker"
)

const franceDoc = "France is a country in Western Europe. Its capital is Paris."

type stubAnswerer struct {
	result   domain.AnswerResult
	err      error
	calls    int
	question string
	context  string
}

func (s *stubAnswerer) Answer(_ context.Context, question, docContext string) (domain.AnswerResult, error) {
	s.calls++
	s.question = question
	s.context = docContext
	return s.result, s.err
}

func newService(t *testing.T, ans domain.Answerer) *QAService {
	t.Helper()
	ch, err := chunker.NewCharChunker(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	return NewQAService(ch, ranker.NewKeywordRanker(ranker.DefaultMaxChunks), ans, WithLogger(logger.Discard()))
}

func loadText(t *testing.T, svc *QAService, sess Session, text string) Session {
	t.Helper()
	sess, err := svc.LoadDocument(sess, loader.Upload{Name: "doc.txt", Data: []byte(text)})
	require.NoError(t, err)
	return sess
}

func TestLoadDocument(t *testing.T) {
	svc := newService(t, &stubAnswerer{})
	sess := loadText(t, svc, NewSession(), "  France  is a country\n\nin Western Europe.   Its capital is Paris. ")

	require.True(t, sess.HasDocument())
	assert.Equal(t, franceDoc, sess.Document.Content)
	assert.Equal(t, "doc.txt", sess.Document.Name)
	assert.NotEmpty(t, sess.Document.ID)
	assert.Equal(t, 11, sess.Document.Info.WordCount)
	require.Len(t, sess.Chunks, 1)
	assert.Equal(t, franceDoc, sess.Chunks[0].Text)
	assert.Equal(t, franceDoc, sess.Overview)
}

func TestLoadDocument_Rejections(t *testing.T) {
	svc := newService(t, &stubAnswerer{})
	original := loadText(t, svc, NewSession(), franceDoc)

	t.Run("pdf", func(t *testing.T) {
		sess, err := svc.LoadDocument(original, loader.Upload{Name: "a.pdf", Data: []byte("%PDF-1.7\n1 0 obj\n")})
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		assert.Equal(t, loader.UnsupportedMessage, UploadErrorMessage(err))
		assert.Same(t, original.Document, sess.Document)
	})

	t.Run("nothing left after normalization", func(t *testing.T) {
		sess, err := svc.LoadDocument(original, loader.Upload{Name: "sym.txt", Data: []byte("$$$ ### @@@")})
		assert.ErrorIs(t, err, domain.ErrEmptyDocument)
		assert.Same(t, original.Document, sess.Document)
	})
}

func TestAsk_EndToEnd(t *testing.T) {
	ans := &stubAnswerer{result: domain.AnswerResult{Answer: "Paris", Score: 0.92}}
	svc := newService(t, ans)
	sess := loadText(t, svc, NewSession(), franceDoc)

	question := "What is the capital of France?"
	sess, reply := svc.Ask(context.Background(), sess, question)

	require.NoError(t, reply.Err)
	assert.Equal(t, 1, ans.calls)
	assert.Equal(t, question, ans.question)
	assert.Contains(t, ans.context, franceDoc)
	assert.Contains(t, ans.context, question)
	assert.True(t, strings.HasPrefix(ans.context, "Document Content:"))

	assert.Contains(t, reply.Text, "Paris")
	assert.Contains(t, reply.Text, "92.00%")
	assert.Contains(t, reply.Text, "Searched 1 relevant text chunks")
	assert.Equal(t, 1, reply.ChunksUsed)
	require.NotNil(t, reply.Result)
	assert.Equal(t, "Paris", reply.Result.Answer)

	require.Len(t, sess.Messages, 2)
	assert.Equal(t, domain.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, question, sess.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, reply.Text, sess.Messages[1].Content)
}

func TestAsk_NoDocument(t *testing.T) {
	ans := &stubAnswerer{}
	svc := newService(t, ans)

	sess, reply := svc.Ask(context.Background(), NewSession(), "Anyone there?")

	assert.Equal(t, NoDocumentReply, reply.Text)
	assert.ErrorIs(t, reply.Err, domain.ErrNoDocument)
	assert.Zero(t, ans.calls)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "Anyone there?", sess.Messages[0].Content)
	assert.Equal(t, NoDocumentReply, sess.Messages[1].Content)
}

func TestAsk_ServiceFailureKeepsHistory(t *testing.T) {
	transportErr := &domain.ServiceError{Kind: domain.ServiceTransport, Err: errors.New("connection refused")}
	ans := &stubAnswerer{err: transportErr}
	svc := newService(t, ans)
	sess := loadText(t, svc, NewSession(), franceDoc)
	sess, _ = svc.Ask(context.Background(), sess, "first question")

	ans.err = transportErr
	sess, reply := svc.Ask(context.Background(), sess, "What is the capital?")

	assert.True(t, domain.IsServiceKind(reply.Err, domain.ServiceTransport))
	assert.Contains(t, reply.Text, "An error occurred while processing your question: ")
	assert.Contains(t, reply.Text, "connection refused")
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, "first question", sess.Messages[0].Content)
	assert.Equal(t, "What is the capital?", sess.Messages[2].Content)
	assert.Equal(t, domain.RoleUser, sess.Messages[2].Role)
	assert.Equal(t, reply.Text, sess.Messages[3].Content)
}

func TestAsk_DoesNotMutateCallerSession(t *testing.T) {
	svc := newService(t, &stubAnswerer{result: domain.AnswerResult{Answer: "x"}})
	base := loadText(t, svc, NewSession(), franceDoc)
	base, _ = svc.Ask(context.Background(), base, "one")

	a, _ := svc.Ask(context.Background(), base, "two")
	b, _ := svc.Ask(context.Background(), base, "three")

	assert.Len(t, base.Messages, 2)
	assert.Equal(t, "two", a.Messages[2].Content)
	assert.Equal(t, "three", b.Messages[2].Content)
}

func TestAsk_SelectsTopChunks(t *testing.T) {
	ans := &stubAnswerer{result: domain.AnswerResult{Answer: "ok", Score: 0.5}}
	ch, err := chunker.NewCharChunker(60, 10)
	require.NoError(t, err)
	svc := NewQAService(ch, ranker.NewKeywordRanker(2), ans, WithLogger(logger.Discard()))

	text := "Apples grow on trees in the orchard. " +
		"Bananas are yellow and grow in bunches. " +
		"Cherries are small red fruit on stems. " +
		"Dates come from palm trees in deserts."
	sess := loadText(t, svc, NewSession(), text)
	require.Greater(t, len(sess.Chunks), 2)

	_, reply := svc.Ask(context.Background(), sess, "bananas yellow bunches")

	assert.Equal(t, 2, reply.ChunksUsed)
	assert.Contains(t, ans.context, "Bananas are yellow")
	assert.Contains(t, reply.Text, "Searched 2 relevant text chunks")
}

func TestRenderAnswer(t *testing.T) {
	assert.Equal(t,
		"Paris\n\n*Confidence: 92.00%*\n*Searched 3 relevant text chunks*",
		RenderAnswer(domain.AnswerResult{Answer: "Paris", Score: 0.92}, 3))
	assert.Equal(t,
		FallbackAnswer+"\n\n*Confidence: 0.00%*\n*Searched 1 relevant text chunks*",
		RenderAnswer(domain.AnswerResult{}, 1))
}

func TestDescribeDocument(t *testing.T) {
	svc := newService(t, &stubAnswerer{})
	assert.Equal(t, "No document loaded.", DescribeDocument(NewSession()))

	sess := loadText(t, svc, NewSession(), "Contact me at jane@example.com in 2024.")
	got := DescribeDocument(sess)

	assert.Contains(t, got, "File uploaded: doc.txt")
	assert.Contains(t, got, "- Word count: 6")
	assert.Contains(t, got, "- Character count: 38")
	assert.Contains(t, got, "- Number of chunks: 1")
	assert.Contains(t, got, "numbers: yes, dates: yes, emails: yes")
}

func TestOpenFile(t *testing.T) {
	svc := newService(t, &stubAnswerer{})
	path := filepath.Join(t.TempDir(), "france.txt")
	require.NoError(t, os.WriteFile(path, []byte(franceDoc), 0o644))

	sess, err := svc.OpenFile(NewSession(), path)
	require.NoError(t, err)
	assert.Equal(t, "france.txt", sess.Document.Name)

	_, err = svc.OpenFile(NewSession(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, UploadErrorMessage(err), "Could not load document")
}

type loggingAnswerer struct{}

func (loggingAnswerer) Answer(ctx context.Context, _, _ string) (domain.AnswerResult, error) {
	logger.FromContext(ctx).Info("answering")
	return domain.AnswerResult{Answer: "Paris", Score: 0.5}, nil
}

func TestAsk_PassesSessionLoggerToAnswerer(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Output: &buf, Level: "debug", JSON: true})
	ch, err := chunker.NewCharChunker(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	svc := NewQAService(ch, ranker.NewKeywordRanker(ranker.DefaultMaxChunks), loggingAnswerer{}, WithLogger(log))
	sess := loadText(t, svc, NewSession(), franceDoc)
	buf.Reset()

	_, reply := svc.Ask(context.Background(), sess, "What is the capital?")

	require.NoError(t, reply.Err)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Contains(t, line, `"session":"`+sess.ID+`"`)
	}
	assert.Contains(t, buf.String(), `"msg":"answering"`)
	assert.Contains(t, buf.String(), `"msg":"question ranked"`)
}
