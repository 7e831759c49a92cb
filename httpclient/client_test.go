package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/resilience"
)

func newClient(t *testing.T, srv *httptest.Server, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{Name: "test", BaseURL: srv.URL, Timeout: 2 * time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestDoBuildsRequest(t *testing.T) {
	var got *http.Request
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	c := newClient(t, srv, func(cfg *Config) {
		cfg.BaseURL = srv.URL + "/"
		cfg.Headers = map[string]string{"Accept": "audio/mpeg"}
		cfg.Auth = APIKeyAuth("secret", "xi-api-key")
	})
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/v1/text-to-speech/voice",
		Query:  map[string]string{"q": "1"},
		Body:   map[string]string{"text": "hi"},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(resp.Body) != "ID3" || resp.ContentType() != "audio/mpeg" || !resp.IsSuccess() {
		t.Errorf("Do() = %+v", resp)
	}
	if got.URL.Path != "/v1/text-to-speech/voice" || got.URL.Query().Get("q") != "1" {
		t.Errorf("url = %s", got.URL)
	}
	if got.Header.Get("xi-api-key") != "secret" || got.Header.Get("Accept") != "audio/mpeg" {
		t.Errorf("headers = %v", got.Header)
	}
	if got.Header.Get("Content-Type") != "application/json" || gotBody != `{"text":"hi"}` {
		t.Errorf("body = %s (%s)", gotBody, got.Header.Get("Content-Type"))
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		want      ErrorCode
		retryable bool
	}{
		{401, ErrCodeAuth, false},
		{403, ErrCodeAuth, false},
		{404, ErrCodeNotFound, false},
		{422, ErrCodeValidation, false},
		{429, ErrCodeRateLimit, true},
		{500, ErrCodeServer, true},
		{503, ErrCodeServer, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			e := ClassifyStatusCode(tt.status, nil)
			if e == nil || e.Code != tt.want || e.Retryable != tt.retryable {
				t.Errorf("ClassifyStatusCode(%d) = %+v", tt.status, e)
			}
		})
	}
	if e := ClassifyStatusCode(204, nil); e != nil {
		t.Errorf("ClassifyStatusCode(204) = %+v", e)
	}
}

func TestDoErrorKeepsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	resp, err := newClient(t, srv, nil).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if !IsAuth(err) {
		t.Fatalf("Do() error = %v, want auth error", err)
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("resp = %+v", resp)
	}

	ae := ToAppError("ElevenLabs", err)
	if ae.Code != apperrors.ErrCodeExternalService || ae.HTTPStatus != http.StatusBadGateway {
		t.Errorf("ToAppError() = %+v", ae)
	}
	if ae.Details["upstream_status"] != 401 || !strings.Contains(ae.Details["upstream_body"].(string), "quota") {
		t.Errorf("details = %v", ae.Details)
	}
}

func TestDoConnectionAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newClient(t, srv, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow"})
	if !IsTimeout(err) {
		t.Errorf("Do() error = %v, want timeout", err)
	}
	if got := ToAppError("Ollama", err); got.Code != apperrors.ErrCodeTimeout {
		t.Errorf("ToAppError() = %+v", got)
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	c2, _ := New(Config{BaseURL: url, Timeout: time.Second})
	_, err = c2.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsConnection(err) {
		t.Errorf("Do() error = %v, want connection error", err)
	}
}

func TestRetryAndCircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	cb := DefaultCircuitBreakerConfig("")
	cb.MaxFailures = 3
	c := newClient(t, srv, func(cfg *Config) {
		cfg.Retry = retry
		cfg.CircuitBreaker = cb
	})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsServerError(err) {
		t.Fatalf("Do() error = %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
	if c.CircuitState() != resilience.StateOpen {
		t.Fatalf("state = %v, want open", c.CircuitState())
	}

	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !hasCode(err, ErrCodeCircuitOpen) || hits.Load() != 3 {
		t.Errorf("Do() while open = %v, hits %d", err, hits.Load())
	}
	if got := ToAppError("Ollama", err); got.Code != apperrors.ErrCodeServiceUnavailable {
		t.Errorf("ToAppError() = %+v", got)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cb := DefaultCircuitBreakerConfig("")
	cb.MaxFailures = 1
	c := newClient(t, srv, func(cfg *Config) { cfg.CircuitBreaker = cb })
	for range 3 {
		_, _ = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	}
	if c.CircuitState() != resilience.StateClosed {
		t.Errorf("state = %v, want closed", c.CircuitState())
	}
}

func TestMaxResponseSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	c := newClient(t, srv, func(cfg *Config) { cfg.MaxResponseSize = 16 })
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestTypedGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"0.5.1"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv, func(cfg *Config) { cfg.Auth = BearerAuth("tok") })
	resp, err := Get[struct {
		Version string `json:"version"`
	}](c, context.Background(), "/api/version")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.Data.Version != "0.5.1" {
		t.Errorf("Data = %+v", resp.Data)
	}

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv2.Close()
	if _, err := Get[map[string]any](newClient(t, srv2, nil), context.Background(), "/"); err == nil {
		t.Error("expected decode error")
	}
}
