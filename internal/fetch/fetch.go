// Package fetch issues the outbound requests behind each source strategy.
// Failures are values: a non-200 status, malformed body, or network/timeout
// error produces a tagged failure Result, never a panic or uncaught error.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kitcsbs/go-tracker/internal/extract"
)

// Reason tags why a source strategy failed.
type Reason string

const (
	ReasonHTTPError  Reason = "http_error"
	ReasonTimeout    Reason = "timeout"
	ReasonParseError Reason = "parse_error"
	ReasonNotFound   Reason = "not_found"
)

// Result is the outcome of one source strategy.
type Result struct {
	OK      bool
	Payload extract.Payload
	Reason  Reason
	Err     error
}

func failure(reason Reason, err error) Result {
	return Result{Reason: reason, Err: err}
}

// Option customizes one outbound request.
type Option func(*http.Request)

// WithBearer adds a bearer token header. Tokens raise rate limits on some
// sources; their absence is never fatal.
func WithBearer(token string) Option {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) Option {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Client performs HTTP fetches with a fixed timeout and an identifying
// User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a fetch client.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// GetJSON fetches a structured payload.
func (c *Client) GetJSON(ctx context.Context, url string, opts ...Option) Result {
	return c.do(ctx, http.MethodGet, url, nil, extract.SourceAPI, opts)
}

// PostJSON posts a JSON body and decodes a structured response. Used for
// GraphQL sources.
func (c *Client) PostJSON(ctx context.Context, url string, body any, opts ...Option) Result {
	encoded, err := json.Marshal(body)
	if err != nil {
		return failure(ReasonParseError, fmt.Errorf("encode request body: %w", err))
	}
	opts = append(opts, WithHeader("Content-Type", "application/json"))
	return c.do(ctx, http.MethodPost, url, encoded, extract.SourceAPI, opts)
}

// GetHTML fetches a page and parses it into a document for selector rules.
func (c *Client) GetHTML(ctx context.Context, url string, opts ...Option) Result {
	return c.do(ctx, http.MethodGet, url, nil, extract.SourceHTML, opts)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, source extract.Source, opts []Option) Result {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return failure(ReasonHTTPError, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	if source == extract.SourceAPI {
		req.Header.Set("Accept", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return failure(ReasonTimeout, fmt.Errorf("request timed out: %w", err))
		}
		return failure(ReasonHTTPError, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return failure(ReasonNotFound, fmt.Errorf("%s returned status 404", url))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(ReasonHTTPError, fmt.Errorf("%s returned status %d", url, resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(ReasonHTTPError, fmt.Errorf("read response body: %w", err))
	}

	payload := extract.Payload{Source: source, Text: string(raw)}

	switch source {
	case extract.SourceAPI:
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return failure(ReasonParseError, fmt.Errorf("decode response: %w", err))
		}
		payload.JSON = parsed
	case extract.SourceHTML:
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			return failure(ReasonParseError, fmt.Errorf("parse document: %w", err))
		}
		payload.Doc = doc
	}

	return Result{OK: true, Payload: payload}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
