// Package huggingface calls a hosted extractive question-answering model.
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

// Ensure Client implements the interface.
var _ domain.Answerer = (*Client)(nil)

const (
	DefaultEndpoint    = "https://api-inference.huggingface.co/models/distilbert/distilbert-base-cased-distilled-squad"
	DefaultAPITokenEnv = "HF_API_TOKEN"
	DefaultTimeout     = 30 * time.Second
)

// Config configures the answer service client.
type Config struct {
	Endpoint    string
	APITokenEnv string
	Timeout     time.Duration
	Logger      logger.Logger
}

// Client posts a question and context to the model endpoint. Calls are never retried.
type Client struct {
	endpoint string
	http     *resty.Client
	log      logger.Logger
}

type inputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type request struct {
	Inputs inputs `json:"inputs"`
}

// NewClient reads the bearer token from the environment variable named by cfg.APITokenEnv.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APITokenEnv == "" {
		cfg.APITokenEnv = DefaultAPITokenEnv
	}
	token := os.Getenv(cfg.APITokenEnv)
	if token == "" {
		return nil, fmt.Errorf("%w: missing API token in env %s", domain.ErrInvalidConfig, cfg.APITokenEnv)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(token).
		SetRetryCount(0).
		SetLogger(restyLogger{cfg.Logger})
	return &Client{endpoint: cfg.Endpoint, http: httpClient, log: cfg.Logger}, nil
}

// Answer asks the model to answer question from context.
func (c *Client) Answer(ctx context.Context, question, docContext string) (domain.AnswerResult, error) {
	log := logger.FromContextOr(ctx, c.log)
	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{Inputs: inputs{Question: question, Context: docContext}}).
		Post(c.endpoint)
	if err != nil {
		se := classifyTransportError(err)
		log.Warn("answer service call failed", "kind", se.Kind, "err", err)
		return domain.AnswerResult{}, se
	}
	if !resp.IsSuccess() {
		se := &domain.ServiceError{
			Kind:       domain.ServiceStatus,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
		}
		log.Warn("answer service rejected request", "status", resp.StatusCode(), "message", se.Message)
		return domain.AnswerResult{}, se
	}
	res, err := decodeAnswer(resp.Body())
	if err != nil {
		log.Warn("answer service response unreadable", "err", err)
		return domain.AnswerResult{}, err
	}
	log.Debug("answer received", "score", res.Score, "elapsed", time.Since(started))
	return res, nil
}

func classifyTransportError(err error) *domain.ServiceError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.ServiceError{Kind: domain.ServiceTimeout, Err: err}
	}
	return &domain.ServiceError{Kind: domain.ServiceTransport, Err: err}
}

// maxErrorRunes caps raw error bodies echoed back to the user.
const maxErrorRunes = 200

// errorMessage pulls the "error" field out of an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error"); msg.Exists() {
			return msg.String()
		}
	}
	msg := []rune(strings.TrimSpace(string(body)))
	if len(msg) > maxErrorRunes {
		msg = msg[:maxErrorRunes]
	}
	return string(msg)
}

// decodeAnswer accepts {"answer": ..., "score": ...} or a list whose first element has that shape.
func decodeAnswer(body []byte) (domain.AnswerResult, error) {
	if !gjson.ValidBytes(body) {
		return domain.AnswerResult{}, malformed("body is not valid JSON")
	}
	res := gjson.ParseBytes(body)
	if res.IsArray() {
		items := res.Array()
		if len(items) == 0 {
			return domain.AnswerResult{}, malformed("empty result list")
		}
		res = items[0]
	}
	if !res.IsObject() {
		return domain.AnswerResult{}, malformed("expected a JSON object")
	}
	if e := res.Get("error"); e.Exists() {
		return domain.AnswerResult{}, malformed(e.String())
	}
	answer := res.Get("answer")
	if answer.Exists() && answer.Type != gjson.String {
		return domain.AnswerResult{}, malformed("answer is not a string")
	}
	score := res.Get("score")
	if score.Exists() && score.Type != gjson.Number {
		return domain.AnswerResult{}, malformed("score is not a number")
	}
	return domain.AnswerResult{Answer: answer.String(), Score: score.Float()}, nil
}

func malformed(msg string) *domain.ServiceError {
	return &domain.ServiceError{Kind: domain.ServiceMalformed, Message: msg}
}

// restyLogger routes resty's own diagnostics into the structured logger.
type restyLogger struct {
	l logger.Logger
}

func (r restyLogger) Errorf(format string, v ...any) { r.l.Error(fmt.Sprintf(format, v...)) }
func (r restyLogger) Warnf(format string, v ...any)  { r.l.Warn(fmt.Sprintf(format, v...)) }
func (r restyLogger) Debugf(format string, v ...any) { r.l.Debug(fmt.Sprintf(format, v...)) }
