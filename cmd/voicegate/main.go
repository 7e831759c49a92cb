// Command voicegate serves the speech API: uploads and transcription
// through the ASR engine, ElevenLabs TTS and Ollama model listing.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kbukum/voicegate/adminkey"
	"github.com/kbukum/voicegate/api"
	"github.com/kbukum/voicegate/asr"
	"github.com/kbukum/voicegate/auth"
	"github.com/kbukum/voicegate/auth/jwt"
	"github.com/kbukum/voicegate/bootstrap"
	"github.com/kbukum/voicegate/component"
	"github.com/kbukum/voicegate/config"
	"github.com/kbukum/voicegate/database"
	"github.com/kbukum/voicegate/llm/ollama"
	"github.com/kbukum/voicegate/observability"
	"github.com/kbukum/voicegate/redis"
	"github.com/kbukum/voicegate/server"
	"github.com/kbukum/voicegate/storage"
	_ "github.com/kbukum/voicegate/storage/local"
	"github.com/kbukum/voicegate/transcription"
	"github.com/kbukum/voicegate/tts/elevenlabs"
	"github.com/kbukum/voicegate/version"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "voicegate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg); err != nil {
		return err
	}
	applyBuildVersion(cfg)

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	telemetry, err := observability.Init(ctx, cfg.Telemetry, app.Name, app.Version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	app.OnStop(telemetry.Shutdown)

	db := database.NewComponent(cfg.Database, log).WithMigrations(adminkey.Migrations, "migrations")
	keys := adminkey.NewComponent(db, log)
	engine := asr.NewComponent(cfg.ASR, log.WithComponent("asr"))
	uploads := storage.NewComponent(cfg.Upload, log)
	components := []component.Component{db, keys, engine, uploads}

	var serverOpts []server.Option
	if cfg.Redis.Enabled {
		cache := redis.NewComponent(cfg.Redis, log)
		components = append(components, cache)
		serverOpts = append(serverOpts, server.WithRateLimitStore(cache.RateLimitStore()))
	}
	srv, err := server.New(cfg.Server, log, serverOpts...)
	if err != nil {
		return err
	}

	// The server starts last, so its setup sees the other components running.
	for _, c := range append(components, server.NewComponent(srv)) {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}

	srv.RegisterEndpoints(app.Name, app.Components.HealthAll)
	srv.RegisterMetrics(telemetry.MetricsHandler())
	srv.BeforeStart(func(_ context.Context, s *server.Server) error {
		deps, err := buildDeps(cfg, app, keys, engine, uploads)
		if err != nil {
			return err
		}
		api.New(deps).Register(s.Engine())
		s.ServeStatic(cfg.Static.Asset)
		return nil
	})

	return app.Run(ctx)
}

// applyBuildVersion reports the linked build version unless config sets one.
func applyBuildVersion(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
}

func buildDeps(cfg *Config, app *bootstrap.App[*Config], keys *adminkey.Component, engine *asr.Component, uploads *storage.Component) (api.Deps, error) {
	log := app.Logger

	p, err := transcription.NewRegistry().Create(cfg.Transcription.Provider, map[string]any{"client": engine})
	if err != nil {
		return api.Deps{}, fmt.Errorf("transcription provider: %w", err)
	}

	deps := api.Deps{
		ServiceName:    app.Name,
		Store:          uploads.Storage(),
		UploadPath:     cfg.Upload.Path,
		MaxUploadBytes: cfg.Upload.MaxBytes(),
		Transcriber:    transcription.NewService(cfg.Transcription, uploads.Storage(), p, log),
		Engine:         engine,
		Log:            log,
	}

	speaker, err := elevenlabs.New(cfg.ElevenLabs, log)
	switch {
	case errors.Is(err, elevenlabs.ErrNoAPIKey):
		log.Warn("ElevenLabs API key not set, TTS routes disabled")
		app.Summary.TrackClient("elevenlabs", cfg.ElevenLabs.BaseURL, "http", "disabled")
	case err != nil:
		return api.Deps{}, err
	default:
		deps.Speaker = speaker
		app.Summary.TrackClient("elevenlabs", cfg.ElevenLabs.BaseURL, "http", "configured")
	}

	models, err := ollama.New(cfg.Ollama, log)
	if err != nil {
		return api.Deps{}, err
	}
	deps.Models = models
	app.Summary.TrackClient("ollama", cfg.Ollama.BaseURL, "http", "configured")

	validators := []auth.TokenValidator{keys.Validator()}
	if cfg.JWTEnabled() {
		tokens, err := jwt.NewService(&cfg.JWT, func() *jwt.UserClaims { return &jwt.UserClaims{} })
		if err != nil {
			return api.Deps{}, fmt.Errorf("jwt: %w", err)
		}
		deps.Tokens = tokens
		validators = append(validators, auth.JWTValidator(tokens))
	} else {
		log.Warn("jwt.secret not set, only the admin key authenticates")
	}
	deps.Validator = auth.Chain(validators...)
	return deps, nil
}
