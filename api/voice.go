package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/server"
	"github.com/kbukum/voicegate/tts"
	"github.com/kbukum/voicegate/validation"
	"github.com/kbukum/voicegate/version"
)

func (h *Handler) speaker(c *gin.Context) (Speaker, bool) {
	if h.deps.Speaker == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("text-to-speech service"))
		return nil, false
	}
	return h.deps.Speaker, true
}

// VoiceAbout is GET /api/v1/elevenvoice/about. The API key is masked.
func (h *Handler) VoiceAbout(c *gin.Context) {
	sp, ok := h.speaker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"r": "ok", "info": gin.H{
		"api_key": sp.MaskedKey(),
		"version": version.Get().Version,
	}})
}

// Synthesize is POST /api/v1/elevenvoice/tts. It answers with the audio.
func (h *Handler) Synthesize(c *gin.Context) {
	sp, ok := h.speaker(c)
	if !ok {
		return
	}
	var req tts.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("Request body must be JSON with a text field.").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	audio, err := sp.Synthesize(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}

// Voices is GET /api/v1/elevenvoice/voices.
func (h *Handler) Voices(c *gin.Context) {
	sp, ok := h.speaker(c)
	if !ok {
		return
	}
	voices, err := sp.ListVoices(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"r": "ok", "voices": voices})
}
