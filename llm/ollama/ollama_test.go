package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/voicegate/errors"
)

const tagsBody = `{"models":[
 {"name":"llama3:latest","model":"llama3:latest","modified_at":"2025-01-22T10:00:00Z","size":4661224676,
  "digest":"365c0bd3c000","details":{"format":"gguf","family":"llama","families":["llama"],"parameter_size":"8.0B","quantization_level":"Q4_0"}},
 {"name":"qwen2:0.5b","model":"qwen2:0.5b","modified_at":"2025-01-20T08:30:00Z","size":352000000,"digest":"6f48b936a09f","details":{}}
]}`

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Timeout: time.Second, RetryAttempts: 1}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestListModels(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(tagsBody))
	}))

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len = %d", len(models))
	}
	m := models[0]
	if m.Name != "llama3:latest" || m.Size != 4661224676 || m.Details.ParameterSize != "8.0B" || m.Details.QuantizationLevel != "Q4_0" {
		t.Errorf("models[0] = %+v", m)
	}
	if !m.ModifiedAt.Equal(time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("ModifiedAt = %v", m.ModifiedAt)
	}
	if !c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false")
	}
}

func TestListModelsEmpty(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	models, err := c.ListModels(context.Background())
	if err != nil || models == nil || len(models) != 0 {
		t.Errorf("ListModels() = %v, %v", models, err)
	}
}

func TestVersion(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"0.5.7"}`))
	}))
	v, err := c.Version(context.Background())
	if err != nil || v != "0.5.7" {
		t.Errorf("Version() = %q, %v", v, err)
	}
}

func TestUpstreamDown(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, RetryAttempts: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ListModels(context.Background())
	ae, ok := apperrors.AsAppError(err)
	if !ok || ae.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("ListModels() error = %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 with retry", hits.Load())
	}
	if c.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true")
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := New(Config{BaseURL: "localhost:11434"}, nil); err == nil {
		t.Error("expected error for scheme-less URL")
	}
}
