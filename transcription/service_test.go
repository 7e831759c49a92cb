package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/asr/asrtest"
	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/storage"
	"github.com/kbukum/voicegate/storage/local"
)

type fakeProvider struct {
	calls int
	errs  []error
	text  string
	got   Request
}

func (f *fakeProvider) Name() string                     { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) Transcribe(_ context.Context, req Request) (*Response, error) {
	f.calls++
	f.got = req
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &Response{Text: f.text}, nil
}

func newStore(t *testing.T, files map[string]string) storage.Storage {
	t.Helper()
	s, err := local.NewStorage(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if _, err := s.Save(context.Background(), name, strings.NewReader(body)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestTranscribeFile(t *testing.T) {
	p := &fakeProvider{text: "hello"}
	svc := NewService(Config{}, newStore(t, map[string]string{"clip.mp3": "ID3"}), p, nil)

	res, err := svc.TranscribeFile(context.Background(), "clip.mp3")
	if err != nil {
		t.Fatalf("TranscribeFile() error = %v", err)
	}
	if res.Text != "hello" || res.FileName != "clip.mp3" || res.Format != "mp3" {
		t.Errorf("TranscribeFile() = %+v", res)
	}
	if p.got.Format != asr.FormatMP3 || string(p.got.Audio) != "ID3" {
		t.Errorf("provider request = %+v", p.got)
	}
}

func TestTranscribeFileErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		check func(error) bool
	}{
		{"unsupported format", "notes.flac", asr.IsValidation},
		{"missing file", "gone.wav", func(err error) bool {
			ae, ok := apperrors.AsAppError(err)
			return ok && ae.Code == apperrors.ErrCodeNotFound
		}},
		{"traversal", "../clip.wav", func(err error) bool {
			ae, ok := apperrors.AsAppError(err)
			return ok && ae.Code == apperrors.ErrCodeInvalidInput
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			svc := NewService(Config{}, newStore(t, nil), p, nil)
			_, err := svc.TranscribeFile(context.Background(), tt.file)
			if err == nil || !tt.check(err) {
				t.Fatalf("TranscribeFile(%q) error = %v", tt.file, err)
			}
			if p.calls != 0 {
				t.Errorf("provider called %d times", p.calls)
			}
		})
	}
}

func TestTranscribeFileRetriesDialOnly(t *testing.T) {
	dial := &asr.Error{Kind: asr.KindConnect, Op: "recognize", Err: fmt.Errorf("%w: refused", asr.ErrDial)}
	reset := &asr.Error{Kind: asr.KindConnect, Op: "recognize", Err: errors.New("read response: connection reset")}
	engine := &asr.Error{Kind: asr.KindEngine, Op: "recognize", Status: 7}

	tests := []struct {
		name      string
		attempts  int
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"no retry by default", 0, []error{dial}, 1, true},
		{"dial retried", 3, []error{dial, dial}, 3, false},
		{"reset after send not retried", 3, []error{reset}, 1, true},
		{"engine not retried", 3, []error{engine}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{errs: tt.errs, text: "ok"}
			cfg := Config{RetryAttempts: tt.attempts, RetryBackoff: time.Millisecond}
			svc := NewService(cfg, newStore(t, map[string]string{"a.wav": "RIFF"}), p, nil)
			_, err := svc.TranscribeFile(context.Background(), "a.wav")
			if (err != nil) != tt.wantErr {
				t.Fatalf("TranscribeFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", p.calls, tt.wantCalls)
			}
		})
	}
}

func TestTranscribeFileAgainstEngine(t *testing.T) {
	e, err := asrtest.Start(asr.DefaultCheckcode, asrtest.Text("bonjour"))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	reg := NewRegistry()
	p, err := reg.Create(ProviderASR, map[string]any{
		"config": asr.Config{Host: e.Host(), Port: e.Port(), Timeout: 2 * time.Second},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false against a live engine")
	}

	svc := NewService(Config{}, newStore(t, map[string]string{"x.webm": "webm-bytes"}), p, nil)
	res, err := svc.TranscribeFile(context.Background(), "x.webm")
	if err != nil {
		t.Fatalf("TranscribeFile() error = %v", err)
	}
	if res.Text != "bonjour" {
		t.Errorf("Text = %q", res.Text)
	}
	reqs := e.Requests()
	// the ping from IsAvailable comes first
	last := reqs[len(reqs)-1]
	if last.Format != uint8(asr.FormatWebM) || string(last.Audio) != "webm-bytes" {
		t.Errorf("engine request = %+v", last)
	}
}
