package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/tts"
)

func newProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := New(Config{APIKey: "sk_test_0123456789", BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("New() error = %v, want ErrNoAPIKey", err)
	}
}

func TestSynthesizeRequestShape(t *testing.T) {
	tests := []struct {
		name       string
		req        tts.Request
		wantPath   string
		wantModel  string
		wantFormat string
	}{
		{
			name:       "defaults",
			req:        tts.Request{Text: "안녕하세요"},
			wantPath:   "/v1/text-to-speech/" + DefaultVoiceID,
			wantModel:  DefaultModelID,
			wantFormat: DefaultOutputFormat,
		},
		{
			name:       "overrides",
			req:        tts.Request{Text: "hi", VoiceID: "v1", ModelID: "eleven_turbo_v2", OutputFormat: "pcm_16000"},
			wantPath:   "/v1/text-to-speech/v1",
			wantModel:  "eleven_turbo_v2",
			wantFormat: "pcm_16000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body synthesizeBody
			p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != tt.wantPath {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				if r.Header.Get("xi-api-key") != "sk_test_0123456789" {
					t.Errorf("xi-api-key = %q", r.Header.Get("xi-api-key"))
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("decode body: %v", err)
				}
				w.Header().Set("Content-Type", "audio/mpeg")
				_, _ = w.Write([]byte("ID3\x04"))
			})

			audio, err := p.Synthesize(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if audio.ContentType != "audio/mpeg" || string(audio.Data) != "ID3\x04" {
				t.Errorf("Synthesize() = %+v", audio)
			}
			if body.Text != tt.req.Text || body.ModelID != tt.wantModel || body.OutputFormat != tt.wantFormat {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestSynthesizeUpstreamError(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	})

	_, err := p.Synthesize(context.Background(), tts.Request{Text: "hi"})
	ae, ok := apperrors.AsAppError(err)
	if !ok || ae.Code != apperrors.ErrCodeExternalService {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if ae.Details["upstream_status"] != http.StatusUnauthorized {
		t.Errorf("details = %v", ae.Details)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	called := false
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	_, err := p.Synthesize(context.Background(), tts.Request{})
	ae, ok := apperrors.AsAppError(err)
	if !ok || ae.HTTPStatus != http.StatusBadRequest {
		t.Errorf("Synthesize() error = %v", err)
	}
	if called {
		t.Error("upstream called for empty text")
	}
}

func TestListVoices(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"voices":[{"voice_id":"abc","name":"Rachel","category":"premade","labels":{"accent":"american"}}]}`))
	})

	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices() error = %v", err)
	}
	if len(voices) != 1 || voices[0].ID != "abc" || voices[0].Labels["accent"] != "american" {
		t.Errorf("ListVoices() = %+v", voices)
	}
}

func TestMaskedKey(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {})
	if got := p.MaskedKey(); got != "sk_t***" {
		t.Errorf("MaskedKey() = %q", got)
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false")
	}
}
