package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/server"
)

// Models is GET /api/v1/ollama/models.
func (h *Handler) Models(c *gin.Context) {
	if h.deps.Models == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("Ollama service"))
		return
	}
	models, err := h.deps.Models.ListModels(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// ModelsVersion is GET /api/v1/ollama/version.
func (h *Handler) ModelsVersion(c *gin.Context) {
	if h.deps.Models == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("Ollama service"))
		return
	}
	v, err := h.deps.Models.Version(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": v})
}
