package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/config"
	"github.com/kbukum/voicegate/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
}

type mockComponent struct {
	name     string
	startErr error
	health   component.Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "start:"+m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.events != nil {
		*m.events = append(*m.events, "stop:"+m.name)
	}
	return nil
}
func (m *mockComponent) Health(ctx context.Context) component.Health { return m.health }

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test-svc", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryWriter(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	return app
}

func healthy(name string) component.Health {
	return component.Health{Name: name, Status: component.StatusHealthy}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("app = %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied, environment = %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("gracefulTimeout = %v, want 15s", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("gracefulTimeout = %v, want 3s", app.gracefulTimeout)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  []component.Health
		wantErr bool
	}{
		{"empty", nil, false},
		{"all healthy", []component.Health{healthy("a"), healthy("b")}, false},
		{"one unhealthy", []component.Health{healthy("a"), {Name: "asr", Status: component.StatusUnhealthy, Message: "refused"}}, true},
		{"degraded", []component.Health{{Name: "a", Status: component.StatusDegraded}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			for _, h := range tt.health {
				_ = app.RegisterComponent(&mockComponent{name: h.Name, health: h})
			}
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "db", health: healthy("db"), events: &events})
	app.OnStart(func(ctx context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "test-svc" {
			t.Errorf("configure saw cfg.Name %q", a.Cfg.Name)
		}
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(ctx context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error = %v", err)
	}
	want := []string{"start:db", "onStart", "configure", "onReady", "task", "onStop", "stop:db"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t)
	errTask := errors.New("task error")
	if err := app.RunTask(context.Background(), func(ctx context.Context) error { return errTask }); !errors.Is(err, errTask) {
		t.Errorf("RunTask() = %v, want task error", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunTask() = %v, want context.Canceled", err)
	}
}

func TestRunTaskStartFailure(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&mockComponent{name: "db", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "asr", events: &events, startErr: errors.New("refused")})

	ran := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error { ran = true; return nil })
	if err == nil {
		t.Fatal("expected startup error")
	}
	if ran {
		t.Error("task ran after failed startup")
	}
	if !slices.Contains(events, "stop:db") {
		t.Errorf("started component not stopped, events = %v", events)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	second := false
	err := runHooks(context.Background(), []Hook{
		func(ctx context.Context) error { return errors.New("fail") },
		func(ctx context.Context) error { second = true; return nil },
	})
	if err == nil || second {
		t.Errorf("runHooks() = %v, second ran = %v", err, second)
	}
}

func TestSummaryDisplay(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("voicegate", "1.2.0")
	s.out = &buf
	s.TrackClient("elevenlabs", "https://api.elevenlabs.io", "http", "configured")

	reg := component.NewRegistry()
	_ = reg.Register(&mockComponent{name: "asr", health: component.Health{Name: "asr", Status: component.StatusUnhealthy, Message: "refused"}})
	s.Display(context.Background(), reg)

	out := buf.String()
	for _, want := range []string{"voicegate v1.2.0", "elevenlabs", "asr: unhealthy (refused)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
