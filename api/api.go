// Package api registers the /api/v1 routes.
//
// Response bodies keep the shapes existing clients expect ({r:"ok", ...} for
// the base routes, {message, ...} for the ASR routes). Failures are rendered
// through server.RespondWithError.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicegate/auth"
	"github.com/kbukum/voicegate/auth/jwt"
	"github.com/kbukum/voicegate/llm/ollama"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/server/middleware"
	"github.com/kbukum/voicegate/storage"
	"github.com/kbukum/voicegate/transcription"
	"github.com/kbukum/voicegate/tts"
)

// Transcriber recognizes stored uploads.
type Transcriber interface {
	TranscribeFile(ctx context.Context, fileName string) (*transcription.Result, error)
}

// Pinger checks the ASR engine.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Speaker is a TTS provider that can show its masked API key.
type Speaker interface {
	tts.Provider
	MaskedKey() string
}

// ModelLister lists LLM models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
	Version(ctx context.Context) (string, error)
}

// TokenIssuer signs user tokens.
type TokenIssuer interface {
	Issue(claims *jwt.UserClaims) (string, error)
}

// Deps are the collaborators of the handlers. Speaker, Models and Tokens may
// be nil, in which case their routes answer 503.
type Deps struct {
	ServiceName string
	Store       storage.Storage

	// UploadPath is reported back as the filePath of an upload.
	UploadPath     string
	MaxUploadBytes int64

	Transcriber Transcriber
	Engine      Pinger
	Speaker     Speaker
	Models      ModelLister
	Tokens      TokenIssuer
	Validator   auth.TokenValidator
	Log         *logger.Logger
}

// Handler serves the API.
type Handler struct {
	deps Deps
	log  *logger.Logger
}

// New returns a Handler.
func New(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "voicegate"
	}
	return &Handler{deps: deps, log: log.WithComponent("api")}
}

// Register mounts every route under /api/v1 on r.
func (h *Handler) Register(r gin.IRouter) {
	authed := middleware.Auth(h.deps.Validator)
	v1 := r.Group("/api/v1")

	v1.GET("/", h.Root)
	v1.GET("/auth", authed, h.AuthCheck)
	v1.POST("/auth/token", authed, middleware.RequireAdmin(), h.IssueToken)

	asr := v1.Group("/asr")
	asr.GET("/", h.ASRInfo)
	asr.POST("/upload", authed, h.Upload)
	asr.GET("/list", authed, h.List)
	asr.GET("/remove/:fileName", authed, h.Remove)
	asr.GET("/stt/:fileName", authed, h.Transcribe)
	asr.GET("/ping", authed, h.Ping)

	voice := v1.Group("/elevenvoice", authed)
	voice.GET("/about", h.VoiceAbout)
	voice.POST("/tts", h.Synthesize)
	voice.GET("/voices", h.Voices)

	models := v1.Group("/ollama", authed)
	models.GET("/models", h.Models)
	models.GET("/version", h.ModelsVersion)
}
