// Package httpx issues JSON requests with a bounded, fixed-interval retry loop.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"WalletReg/internal/proxy"
)

const (
	DefaultMaxAttempts = 30
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 60 * time.Second
)

// ErrRetriesExhausted marks a request that failed on every allowed attempt.
var ErrRetriesExhausted = errors.New("retries exhausted")

// ExhaustedError carries the last failure of an exhausted request.
type ExhaustedError struct {
	Attempts int
	Proxy    string
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrRetriesExhausted }
func (e *ExhaustedError) Unwrap() error        { return e.Last }

// StatusError is an attempt that got a non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }

type Request struct {
	Method  string
	URL     string
	Body    any // JSON-encoded when non-nil
	Headers map[string]string
	Agent   *proxy.Agent // nil means direct
}

type Response struct {
	Status int
	Body   []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client retries every failure the same way: transport errors, timeouts and
// any non-2xx status.
type Client struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration // per attempt
	Log         *zap.SugaredLogger

	direct http.RoundTripper
}

func New(maxAttempts int, retryDelay, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		MaxAttempts: maxAttempts,
		RetryDelay:  retryDelay,
		Timeout:     timeout,
		Log:         log,
		direct:      http.DefaultTransport,
	}
}

// Do runs req until it succeeds or MaxAttempts is used up. Exhaustion is
// reported as *ExhaustedError (errors.Is(err, ErrRetriesExhausted)); a
// cancelled ctx returns ctx.Err().
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	hc := &http.Client{Timeout: c.Timeout, Transport: c.direct}
	if req.Agent != nil {
		hc.Transport = req.Agent.Transport()
	}

	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		resp, err := c.attempt(ctx, hc, req, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt == c.MaxAttempts {
			break
		}
		c.Log.Warnw("request failed, retrying",
			"url", req.URL,
			"attempt", attempt,
			"max", c.MaxAttempts,
			"retry_in", c.RetryDelay,
			"err", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}

	c.Log.Errorw("request failed, giving up",
		"method", req.Method,
		"url", req.URL,
		"attempts", c.MaxAttempts,
		"proxy", proxyLabel(req.Agent),
		"err", lastErr,
	)
	return nil, &ExhaustedError{Attempts: c.MaxAttempts, Proxy: proxyLabel(req.Agent), Last: lastErr}
}

func (c *Client) attempt(ctx context.Context, hc *http.Client, req Request, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	resp, err := hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(data), 256)}
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

func proxyLabel(a *proxy.Agent) string {
	if a == nil {
		return "none"
	}
	return a.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
