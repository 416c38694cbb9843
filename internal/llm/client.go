// Package llm talks to an OpenAI-compatible chat-completions endpoint (LM
// Studio by default) and turns its free-form output into domain citation
// values.  Requests are deterministic (temperature zero), retried with
// exponential backoff on transport failures, and optionally served from a
// response cache keyed by the request payload hash.
package llm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/brankow/citation-extraction/internal/config"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// maxResponseBytes caps how much of a chat-completion body is read.
const maxResponseBytes = 8 << 20

// ResponseCache stores raw model output keyed by request hash.  Implemented
// by the Redis layer; any miss or cache failure falls through to a live call.
type ResponseCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Client is the chat-completions client used by the extraction pipeline.
type Client struct {
	cfg     config.LLMConfig
	httpc   *http.Client
	log     logging.Logger
	metrics *prometheus.AppMetrics
	cache   ResponseCache
}

// Option customizes a Client.
type Option func(*Client)

// WithCache attaches a response cache.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient overrides the underlying HTTP client.  The per-request
// timeout still comes from the configuration.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// NewClient constructs a Client from configuration.  log may be nil.
func NewClient(cfg config.LLMConfig, log logging.Logger, opts ...Option) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Client{
		cfg:     cfg,
		httpc:   &http.Client{},
		log:     log.Named("llm"),
		metrics: prometheus.NewNopAppMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) newRequest(system, user string) chatRequest {
	return chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.0,
		Stream:      false,
	}
}

// Ping verifies the endpoint is reachable and a model is loaded by requesting
// a single-token completion.  It makes exactly one attempt.
func (c *Client) Ping(ctx context.Context) error {
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: "hello"}},
		Temperature: 0.0,
		Stream:      false,
		MaxTokens:   1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode ping request")
	}
	_, err = c.post(ctx, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeLLMUnreachable, "chat-completions endpoint unreachable")
	}
	return nil
}

// complete sends one chat-completion request and returns the raw message
// content.  Transport failures are retried with exponential backoff; an HTTP
// error status fails immediately because retrying a rejected request cannot
// help.
func (c *Client) complete(ctx context.Context, operation string, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode chat request")
	}

	cacheKey := requestKey(body)
	if c.cache != nil {
		cached, ok, cacheErr := c.cache.Get(ctx, cacheKey)
		if cacheErr != nil {
			c.log.Warn("response cache read failed", logging.String("operation", operation), logging.Err(cacheErr))
		} else if ok {
			c.metrics.LLMCacheHitsTotal.WithLabelValues().Inc()
			return cached, nil
		} else {
			c.metrics.LLMCacheMissTotal.WithLabelValues().Inc()
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		timer := prometheus.NewTimer(c.metrics.LLMRequestDuration.WithLabelValues(operation))
		content, err := c.post(ctx, body)
		timer.ObserveDuration()
		if err == nil {
			c.metrics.LLMRequestsTotal.WithLabelValues(operation, "ok").Inc()
			if c.cache != nil {
				if cacheErr := c.cache.Set(ctx, cacheKey, content); cacheErr != nil {
					c.log.Warn("response cache write failed", logging.String("operation", operation), logging.Err(cacheErr))
				}
			}
			return content, nil
		}

		c.metrics.LLMRequestsTotal.WithLabelValues(operation, "error").Inc()
		if !retryable(err) {
			return "", err
		}
		lastErr = err

		if attempt < c.cfg.MaxRetries-1 {
			delay := c.cfg.InitialDelay << attempt
			c.log.Warn("chat-completion attempt failed, retrying",
				logging.String("operation", operation),
				logging.Int("attempt", attempt+1),
				logging.Int("max_retries", c.cfg.MaxRetries),
				logging.Duration("delay", delay),
				logging.Err(err))
			c.metrics.LLMRetriesTotal.WithLabelValues(operation).Inc()
			if err := sleep(ctx, delay); err != nil {
				return "", apperrors.Wrap(err, apperrors.ErrCodeTimeout, "canceled while waiting to retry")
			}
		}
	}
	return "", apperrors.Wrap(lastErr, apperrors.ErrCodeLLMRetriesExpired, "chat completion failed after retries").
		WithDetail(c.cfg.URL)
}

// post performs a single chat-completion round trip and returns the first
// choice's message content.
func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeLLMUnreachable, "chat-completions request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeLLMUnreachable, "read chat-completions response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.Newf(apperrors.ErrCodeLLMBadStatus, "chat-completions endpoint returned %d", resp.StatusCode).
			WithDetail(snippet(string(respBody)))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decode chat-completions response").
			WithDetail(snippet(string(respBody)))
	}
	if len(chat.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeLLMEmptyResponse, "chat-completions response has no choices")
	}
	return chat.Choices[0].Message.Content, nil
}

// retryable reports whether a failed attempt is worth repeating.  Only
// transport-level failures are; a server that answered with an error status
// or an unusable body will do so again.
func retryable(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeLLMUnreachable)
}

func requestKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
