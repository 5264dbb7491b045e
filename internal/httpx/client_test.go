package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(max int) (*Client, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(max, time.Millisecond, 5*time.Second, zap.New(core).Sugar())
	return c, logs
}

func TestDo_SucceedsOnLastAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 30 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c, _ := newTestClient(30)
	resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL, Body: map[string]string{"a": "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 30 {
		t.Errorf("expected 30 calls, got %d", got)
	}
	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.JSON(&body); err != nil || !body.OK {
		t.Errorf("unexpected body %q (err %v)", resp.Body, err)
	}
}

func TestDo_WaitsRetryDelayBetweenAttempts(t *testing.T) {
	const (
		attempts = 4
		delay    = 40 * time.Millisecond
	)
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(attempts, delay, 5*time.Second, zap.NewNop().Sugar())
	start := time.Now()
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != attempts {
		t.Errorf("expected %d calls, got %d", attempts, got)
	}
	if want := (attempts - 1) * delay; elapsed < want {
		t.Errorf("%d attempts took %v, want at least %v", attempts, elapsed, want)
	}
}

func TestDo_ExhaustsWithoutExtraAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	c, logs := newTestClient(30)
	resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, URL: server.URL})
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) || ex.Attempts != 30 || ex.Proxy != "none" {
		t.Errorf("unexpected exhausted error %+v", ex)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadRequest {
		t.Errorf("expected wrapped 400 status error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 30 {
		t.Errorf("expected exactly 30 calls, got %d", got)
	}
	if n := logs.FilterMessage("request failed, retrying").Len(); n != 29 {
		t.Errorf("expected 29 retry warnings, got %d", n)
	}
	if n := logs.FilterMessage("request failed, giving up").Len(); n != 1 {
		t.Errorf("expected 1 final error, got %d", n)
	}
}

func TestDo_SendsJSONAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if o := r.Header.Get("Origin"); o != "https://example.org" {
			t.Errorf("expected origin header, got %q", o)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["invite_code"] != "ABC" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, _ := newTestClient(1)
	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     server.URL,
		Body:    map[string]string{"invite_code": "ABC"},
		Headers: map[string]string{"Origin": "https://example.org"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_TransportErrorIsRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, logs := newTestClient(3)
	_, err := c.Do(context.Background(), Request{URL: url})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if n := logs.FilterMessage("request failed, retrying").Len(); n != 2 {
		t.Errorf("expected 2 retry warnings, got %d", n)
	}
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, _ := newTestClient(30)
	c.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, Request{URL: server.URL})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Error("cancellation must not look like exhaustion")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(0, -1, 0, nil)
	if c.MaxAttempts != DefaultMaxAttempts || c.RetryDelay != DefaultRetryDelay || c.Timeout != DefaultTimeout {
		t.Errorf("unexpected defaults: %+v", c)
	}
}
